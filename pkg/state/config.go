// Package state implements the reactive geometry engine: edge grouping,
// per-edge line/curve state, and multi-edge path point sequences, derived
// from an externally owned topology and layout.
//
// Recomputation is batched and pull-based: mutations mark stages dirty and
// reads flush them in the enforced order grouping -> edge state -> path
// points, so consumers never observe a half-updated dependency chain.
package state

import (
	"github.com/RainBoltz/v-network-graph/pkg/scene"
	"github.com/RainBoltz/v-network-graph/pkg/style"
)

// Config holds the resolved style configuration of an engine. Style values
// are literal-or-derived; the engine resolves each exactly once per
// recomputation of the entity it applies to.
type Config struct {
	NodeShape style.Value[*scene.Node, style.Shape]
	Edge      EdgeConfig
	Path      PathConfig
}

// EdgeConfig configures edge geometry.
type EdgeConfig struct {
	Type   style.EdgeType
	Gap    float64
	Stroke style.Value[*scene.Edge, style.Stroke]

	// Margin is the configured distance between the node boundary and the
	// edge endpoint. nil draws edges center-to-center with no boundary
	// clipping (unless a marker forces it).
	Margin *float64

	SourceMarker style.Value[*scene.Edge, *style.Marker]
	TargetMarker style.Value[*scene.Edge, *style.Marker]

	// Summarize decides whether a parallel-edge group collapses into one
	// aggregate stroke. nil never summarizes.
	Summarize func(edges []*scene.Edge) bool

	// Aggregate merges member strokes into the summarized group stroke.
	// nil uses the widest stroke and the first non-empty color.
	Aggregate func(strokes []style.Stroke) style.Stroke
}

// PathConfig configures multi-edge path geometry.
type PathConfig struct {
	// CurveInNode keeps all transit sub-points when a path crosses a node
	// that sits on a curved edge; false keeps only the via point.
	CurveInNode bool
	EndType     style.EndType
	Margin      float64
	Stroke      style.Stroke
}

// SummarizeOver returns a summarize predicate that collapses groups with
// more than n member edges.
func SummarizeOver(n int) func(edges []*scene.Edge) bool {
	return func(edges []*scene.Edge) bool { return len(edges) > n }
}

// ConfigFromOptions builds an engine config from literal scene options.
func ConfigFromOptions(o scene.Options) Config {
	cfg := Config{
		NodeShape: style.Literal[*scene.Node](o.NodeShape),
		Edge: EdgeConfig{
			Type:         o.Edge.Type,
			Gap:          o.Edge.Gap,
			Stroke:       style.Literal[*scene.Edge](o.Edge.Stroke),
			Margin:       o.Edge.Margin,
			SourceMarker: style.Literal[*scene.Edge](o.Edge.SourceMarker),
			TargetMarker: style.Literal[*scene.Edge](o.Edge.TargetMarker),
		},
		Path: PathConfig{
			CurveInNode: o.Path.CurveInNode,
			EndType:     o.Path.EndType,
			Margin:      o.Path.Margin,
			Stroke:      o.Path.Stroke,
		},
	}
	if o.Edge.SummarizeOver > 0 {
		cfg.Edge.Summarize = SummarizeOver(o.Edge.SummarizeOver)
	}
	return cfg
}

// aggregateStrokes is the default group-stroke aggregation: widest stroke
// wins, first non-empty color wins.
func aggregateStrokes(strokes []style.Stroke) style.Stroke {
	var out style.Stroke
	for _, s := range strokes {
		if s.Width > out.Width {
			out.Width = s.Width
			out.Dasharray = s.Dasharray
		}
		if out.Color == "" {
			out.Color = s.Color
		}
	}
	return out
}
