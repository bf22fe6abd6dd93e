package state

import (
	"github.com/RainBoltz/v-network-graph/pkg/scene"
	"github.com/RainBoltz/v-network-graph/pkg/style"
)

// EdgeGroup is the set of edges connecting one unordered node pair. Each
// member gets a lateral slot symmetric about the group center; the group may
// be summarized into a single aggregate stroke.
type EdgeGroup struct {
	// Pair is the canonical unordered endpoint pair, low ID first.
	Pair [2]string
	// EdgeIDs lists the members in topology insertion order.
	EdgeIDs []string
	// Width is the total lateral extent of the group: (len-1) * gap.
	Width float64
	// Summarized reports whether the group renders as one aggregate stroke.
	Summarized bool
	// Stroke is the aggregate stroke, set when Summarized.
	Stroke style.Stroke

	// offsets holds each member's signed lateral offset from the group
	// center, expressed in the canonical Pair[0] -> Pair[1] direction.
	offsets map[string]float64
}

// PointInGroup returns the member's signed lateral offset from the group
// center in the canonical pair direction. Offsets of a group sum to zero.
func (g *EdgeGroup) PointInGroup(edgeID string) float64 { return g.offsets[edgeID] }

// ShiftFor returns the lateral shift the edge applies to its own
// source-to-target line. Members stored against the canonical direction get
// the negated offset so all lanes stay consistent.
func (g *EdgeGroup) ShiftFor(e *scene.Edge) float64 {
	off := g.offsets[e.ID]
	if e.Source != g.Pair[0] {
		return -off
	}
	return off
}

// Size returns the number of member edges.
func (g *EdgeGroup) Size() int { return len(g.EdgeIDs) }

// computeGroups partitions all edges by unordered endpoint pair and assigns
// slot offsets. Grouping is total: an edge with no siblings is a group of
// size 1 with zero offset.
func computeGroups(t *scene.Topology, cfg *Config) map[string]*EdgeGroup {
	byPair := make(map[[2]string]*EdgeGroup)
	var order [][2]string

	for _, e := range t.Edges() {
		key := e.PairKey()
		g, ok := byPair[key]
		if !ok {
			g = &EdgeGroup{Pair: key, offsets: make(map[string]float64)}
			byPair[key] = g
			order = append(order, key)
		}
		g.EdgeIDs = append(g.EdgeIDs, e.ID)
	}

	byEdge := make(map[string]*EdgeGroup, t.EdgeCount())
	for _, key := range order {
		g := byPair[key]
		n := len(g.EdgeIDs)
		g.Width = float64(n-1) * cfg.Edge.Gap

		for i, id := range g.EdgeIDs {
			g.offsets[id] = float64(i)*cfg.Edge.Gap - g.Width/2
			byEdge[id] = g
		}

		if cfg.Edge.Summarize != nil {
			members := make([]*scene.Edge, 0, n)
			for _, id := range g.EdgeIDs {
				if e, ok := t.Edge(id); ok {
					members = append(members, e)
				}
			}
			if cfg.Edge.Summarize(members) {
				g.Summarized = true
				strokes := make([]style.Stroke, len(members))
				for i, e := range members {
					strokes[i] = cfg.Edge.Stroke.Resolve(e)
				}
				agg := cfg.Edge.Aggregate
				if agg == nil {
					agg = aggregateStrokes
				}
				g.Stroke = agg(strokes)
			}
		}
	}
	return byEdge
}
