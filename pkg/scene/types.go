package scene

import (
	"fmt"

	"github.com/RainBoltz/v-network-graph/pkg/geom2d"
	"github.com/RainBoltz/v-network-graph/pkg/style"
)

// =============================================================================
// Scene - Serialization Format
// =============================================================================

// Scene is the canonical serialization format for a renderable graph scene:
// topology, layout positions, paths, and literal view options. It is used
// for scene files, API payloads, and document storage.
type Scene struct {
	Nodes   []NodeRecord `json:"nodes" bson:"nodes" toml:"nodes"`
	Edges   []EdgeRecord `json:"edges" bson:"edges" toml:"edges"`
	Paths   []Path       `json:"paths,omitempty" bson:"paths,omitempty" toml:"paths"`
	Options Options      `json:"options,omitempty" bson:"options,omitempty" toml:"options"`
}

// NodeRecord is the serialized form of a node plus its layout position and
// optional per-node shape override.
type NodeRecord struct {
	ID    string         `json:"id" bson:"id" toml:"id"`
	X     float64        `json:"x" bson:"x" toml:"x"`
	Y     float64        `json:"y" bson:"y" toml:"y"`
	Shape *style.Shape   `json:"shape,omitempty" bson:"shape,omitempty" toml:"shape"`
	Meta  map[string]any `json:"meta,omitempty" bson:"meta,omitempty" toml:"meta"`
}

// EdgeRecord is the serialized form of an edge.
type EdgeRecord struct {
	ID     string         `json:"id" bson:"id" toml:"id"`
	Source string         `json:"source" bson:"source" toml:"source"`
	Target string         `json:"target" bson:"target" toml:"target"`
	Meta   map[string]any `json:"meta,omitempty" bson:"meta,omitempty" toml:"meta"`
}

// =============================================================================
// Options - Literal View Configuration
// =============================================================================

// Default view option values.
const (
	DefaultScale      = 1.0
	DefaultNodeRadius = 16.0
	DefaultGap        = 10.0
	DefaultPathMargin = 0.0
)

// Options holds the literal style configuration of a scene. Derived
// (function-valued) styles cannot be serialized; they are attached when the
// engine config is built from these options.
type Options struct {
	Scale     float64          `json:"scale,omitempty" bson:"scale,omitempty" toml:"scale,omitzero"`
	NodeShape style.Shape      `json:"node_shape,omitempty" bson:"node_shape,omitempty" toml:"node_shape"`
	Edge      EdgeOptions      `json:"edge,omitempty" bson:"edge,omitempty" toml:"edge"`
	Path      PathOptions      `json:"path,omitempty" bson:"path,omitempty" toml:"path"`
}

// EdgeOptions configures edge geometry and appearance.
type EdgeOptions struct {
	Type          style.EdgeType `json:"type,omitempty" bson:"type,omitempty" toml:"type,omitzero"`
	Gap           float64        `json:"gap,omitempty" bson:"gap,omitempty" toml:"gap,omitzero"`
	Stroke        style.Stroke   `json:"stroke,omitempty" bson:"stroke,omitempty" toml:"stroke"`
	Margin        *float64       `json:"margin,omitempty" bson:"margin,omitempty" toml:"margin"`
	SourceMarker  *style.Marker  `json:"source_marker,omitempty" bson:"source_marker,omitempty" toml:"source_marker"`
	TargetMarker  *style.Marker  `json:"target_marker,omitempty" bson:"target_marker,omitempty" toml:"target_marker"`
	SummarizeOver int            `json:"summarize_over,omitempty" bson:"summarize_over,omitempty" toml:"summarize_over,omitzero"`
}

// PathOptions configures multi-edge path geometry.
type PathOptions struct {
	CurveInNode bool          `json:"curve_in_node,omitempty" bson:"curve_in_node,omitempty" toml:"curve_in_node,omitzero"`
	EndType     style.EndType `json:"end_type,omitempty" bson:"end_type,omitempty" toml:"end_type,omitzero"`
	Margin      float64       `json:"margin,omitempty" bson:"margin,omitempty" toml:"margin,omitzero"`
	Stroke      style.Stroke  `json:"stroke,omitempty" bson:"stroke,omitempty" toml:"stroke"`
}

// ValidateAndSetDefaults checks option values and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.NodeShape.Type == "" {
		o.NodeShape.Type = style.ShapeCircle
	}
	if o.NodeShape.Type == style.ShapeCircle && o.NodeShape.Radius == 0 {
		o.NodeShape.Radius = DefaultNodeRadius
	}
	if o.Edge.Type == "" {
		o.Edge.Type = style.EdgeStraight
	}
	if !style.ValidEdgeTypes[o.Edge.Type] {
		return fmt.Errorf("invalid edge type: %q (must be one of: straight, curve)", o.Edge.Type)
	}
	if o.Edge.Gap == 0 {
		o.Edge.Gap = DefaultGap
	}
	if o.Edge.Stroke.Width == 0 {
		o.Edge.Stroke.Width = 2
	}
	if o.Path.EndType == "" {
		o.Path.EndType = style.EndCenterOfNode
	}
	if !style.ValidEndTypes[o.Path.EndType] {
		return fmt.Errorf("invalid path end type: %q (must be one of: centerOfNode, edgeOfNode)", o.Path.EndType)
	}
	if o.Path.Stroke.Width == 0 {
		o.Path.Stroke.Width = 6
	}
	return nil
}

// =============================================================================
// Scene <-> Topology Conversion
// =============================================================================

// Build converts the serialized scene into a topology and layout.
// Node shape overrides stay accessible through [Scene.ShapeOf].
func (s *Scene) Build() (*Topology, *Layout, error) {
	t := NewTopology()
	l := NewLayout()

	for _, nr := range s.Nodes {
		if err := t.AddNode(Node{ID: nr.ID, Meta: nr.Meta}); err != nil {
			return nil, nil, fmt.Errorf("add node %s: %w", nr.ID, err)
		}
		l.SetPosition(nr.ID, geom2d.Vector{X: nr.X, Y: nr.Y})
	}
	for _, er := range s.Edges {
		e := Edge{ID: er.ID, Source: er.Source, Target: er.Target, Meta: er.Meta}
		if err := t.AddEdge(e); err != nil {
			return nil, nil, fmt.Errorf("add edge %s: %w", er.ID, err)
		}
	}
	return t, l, nil
}

// ShapeOf returns the shape for a node: its per-node override when present,
// otherwise the scene default.
func (s *Scene) ShapeOf(nodeID string) style.Shape {
	for i := range s.Nodes {
		if s.Nodes[i].ID == nodeID && s.Nodes[i].Shape != nil {
			return *s.Nodes[i].Shape
		}
	}
	return s.Options.NodeShape
}
