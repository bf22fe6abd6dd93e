package state

import (
	"math"

	"github.com/RainBoltz/v-network-graph/pkg/geom2d"
	"github.com/RainBoltz/v-network-graph/pkg/scene"
	"github.com/RainBoltz/v-network-graph/pkg/style"
)

// nodeCoreMarginWidth is the fixed margin subtracted from the node radius
// as one candidate for the inner guide radius at path transit nodes.
const nodeCoreMarginWidth = 4.0

// SegmentKind discriminates path point sequence elements.
type SegmentKind int

const (
	// SegmentLine is a straight hop to Point.
	SegmentLine SegmentKind = iota
	// SegmentCurve is a cubic Bezier through Control to Point.
	SegmentCurve
	// SegmentMove is the reserved pen-up marker: advance to Point without
	// drawing. Unused by current path computation but part of the type.
	SegmentMove
)

// Segment is one element of a path point sequence. The first segment of a
// sequence is always the start anchor.
type Segment struct {
	Kind    SegmentKind
	Control [2]geom2d.Vector // valid when Kind == SegmentCurve
	Point   geom2d.Vector
}

// PathState is the derived point sequence of one multi-edge path. It is
// recomputed on every dependency change and never persisted.
type PathState struct {
	Path     scene.Path
	Stroke   style.Stroke
	Segments []Segment
}

// directedEdge is one path edge resolved to its traversal direction.
type directedEdge struct {
	edge  *scene.Edge
	line  geom2d.Line
	curve *Curve
	// entry and exit are the node IDs in traversal order.
	entry, exit string
}

// computePath derives the full point sequence for one path. ok is false
// when the path references an unknown edge or an edge whose state is not
// yet computed; such paths are excluded from the renderable set entirely.
func (e *Engine) computePath(p scene.Path) (*PathState, bool) {
	edges := make([]*scene.Edge, len(p.Edges))
	for i, id := range p.Edges {
		edge, ok := e.topo.Edge(id)
		if !ok {
			return nil, false
		}
		edges[i] = edge
	}
	if len(edges) == 0 {
		return nil, false
	}

	forward := detectDirections(edges)

	directed := make([]directedEdge, len(edges))
	for i, edge := range edges {
		es, ok := e.edgeStates[edge.ID]
		if !ok || !es.computed {
			return nil, false
		}
		d := directedEdge{edge: edge, line: es.Position, curve: es.Curve, entry: edge.Source, exit: edge.Target}
		if !forward[i] {
			d.line = es.Position.Reverse()
			d.curve = es.Curve.Inverted()
			d.entry, d.exit = edge.Target, edge.Source
		}
		directed[i] = d
	}

	st := &PathState{Path: p, Stroke: e.cfg.Path.Stroke}

	first := directed[0]
	last := directed[len(directed)-1]

	start, startOverrun := e.pathEndpoint(first, false)
	end, endOverrun := e.pathEndpoint(last, true)

	lastPoint := start
	havePoint := !startOverrun
	if havePoint {
		st.Segments = append(st.Segments, Segment{Kind: SegmentLine, Point: start})
	}

	for i := 1; i < len(directed); i++ {
		in, out := directed[i-1], directed[i]
		lastPoint, havePoint = e.emitTransit(st, in, out, lastPoint, havePoint)
	}

	if !endOverrun {
		appendApproach(st, last.curve, lastPoint, havePoint, end)
	}
	return st, true
}

// pathEndpoint computes the start (atEnd=false) or end (atEnd=true) anchor
// of a path: the edge's display endpoint walked inward by the configured
// path margin, plus the node radius when ends stop at the node's edge.
// overrun reports that the requested margin meets or exceeds the available
// edge length; the anchor is then dropped by the caller.
func (e *Engine) pathEndpoint(d directedEdge, atEnd bool) (geom2d.Vector, bool) {
	nodeID := d.entry
	if atEnd {
		nodeID = d.exit
	}
	margin := e.cfg.Path.Margin * e.scale
	if e.cfg.Path.EndType == style.EndEdgeOfNode {
		if n, ok := e.topo.Node(nodeID); ok {
			margin += e.cfg.NodeShape.Resolve(n).EffectiveRadius() * e.scale
		}
	}

	if margin >= d.line.Length() {
		return geom2d.Vector{}, true
	}
	if margin == 0 {
		if atEnd {
			return d.line.Target, false
		}
		return d.line.Source, false
	}

	if d.curve != nil {
		angle := margin / d.curve.Circle.Radius
		sign := 1.0
		if d.curve.Theta < 0 {
			sign = -1
		}
		if atEnd {
			return geom2d.MoveOnCircumference(d.line.Target, d.curve.Circle.Center, -sign*angle), false
		}
		return geom2d.MoveOnCircumference(d.line.Source, d.curve.Circle.Center, sign*angle), false
	}

	unit := d.line.Vector().Normalize()
	if atEnd {
		return d.line.Target.Sub(unit.Mul(margin)), false
	}
	return d.line.Source.Add(unit.Mul(margin)), false
}

// emitTransit appends the point(s) routing the path through the node shared
// by the incoming and outgoing edges, and returns the new trailing point.
func (e *Engine) emitTransit(st *PathState, in, out directedEdge, lastPoint geom2d.Vector, havePoint bool) (geom2d.Vector, bool) {
	center, radius := e.transitNode(in.exit)
	core := math.Max(radius*2/3, radius-nodeCoreMarginWidth*e.scale)
	coreCircle := geom2d.Circle{Center: center, Radius: core}
	nodeCircle := geom2d.Circle{Center: center, Radius: radius}

	ip, ok := transitIntersection(in, out, center)

	var ctrl, tin, tout geom2d.Vector
	switch {
	case ok && geom2d.Distance(ip, center) < core:
		// Tight bend inside the core: curve through the intersection.
		ctrl = ip
		tin = firstCrossing(in, coreCircle, nodeCircle, in.line.Target)
		tout = firstCrossing(out, coreCircle, nodeCircle, out.line.Source)
	case ok && geom2d.Distance(ip, center) <= radius:
		ctrl = ip
		tin = crossingNearest(in, coreCircle, nodeCircle, ip, in.line.Target)
		tout = crossingNearest(out, coreCircle, nodeCircle, ip, out.line.Source)
	default:
		// Parallel or wide-angle lines: route through the node center.
		ctrl = center
		tin, tout = pairedCrossings(in, out, coreCircle, nodeCircle)
	}

	curved := in.curve != nil || out.curve != nil

	if curved && !e.cfg.Path.CurveInNode {
		// Keep only the via point: a straight chord through the node
		// avoids over-smoothing when the node sits on a curve.
		appendApproach(st, in.curve, lastPoint, havePoint, ctrl)
		return ctrl, true
	}

	appendApproach(st, in.curve, lastPoint, havePoint, tin)
	if tin.NearlyEqual(tout) {
		// Anti-parallel pass-through: the transit collapses to one point.
		return tin, true
	}
	st.Segments = append(st.Segments, Segment{
		Kind:    SegmentCurve,
		Control: [2]geom2d.Vector{ctrl, ctrl},
		Point:   tout,
	})
	return tout, true
}

// appendApproach appends the segment from lastPoint to target: a stitched
// Bezier along the incoming curve's circle when the incoming edge is
// curved, a straight hop otherwise. When no point has been emitted yet
// (start margin overrun) the target becomes the opening anchor.
func appendApproach(st *PathState, curve *Curve, lastPoint geom2d.Vector, havePoint bool, target geom2d.Vector) {
	if !havePoint {
		st.Segments = append(st.Segments, Segment{Kind: SegmentLine, Point: target})
		return
	}
	if lastPoint.NearlyEqual(target) {
		return
	}
	if curve != nil {
		cc := curve.Circle.Center
		sweep := geom2d.RelativeAngle(lastPoint.Sub(cc), target.Sub(cc))
		control := geom2d.BezierControlPoints(lastPoint, cc, target, sweep)
		st.Segments = append(st.Segments, Segment{Kind: SegmentCurve, Control: control, Point: target})
		return
	}
	st.Segments = append(st.Segments, Segment{Kind: SegmentLine, Point: target})
}

// transitNode returns the center and scaled guide radius of a transit node.
func (e *Engine) transitNode(nodeID string) (geom2d.Vector, float64) {
	center, _ := e.layout.Position(nodeID)
	radius := 0.0
	if n, ok := e.topo.Node(nodeID); ok {
		radius = e.cfg.NodeShape.Resolve(n).EffectiveRadius() * e.scale
	}
	return center, radius
}

// transitIntersection intersects the incoming and outgoing display lines:
// line/line, line/circle, or circle/circle depending on curvature, biased
// toward the node center when two candidates exist.
func transitIntersection(in, out directedEdge, bias geom2d.Vector) (geom2d.Vector, bool) {
	switch {
	case in.curve == nil && out.curve == nil:
		return geom2d.IntersectLines(in.line, out.line)
	case in.curve != nil && out.curve != nil:
		return geom2d.IntersectCircles(in.curve.Circle, out.curve.Circle, bias)
	case in.curve != nil:
		return lineCircleNearest(out.line, in.curve.Circle, bias)
	default:
		return lineCircleNearest(in.line, out.curve.Circle, bias)
	}
}

// lineCircleNearest returns the line/circle intersection nearer bias,
// considering both the near and far solutions.
func lineCircleNearest(l geom2d.Line, c geom2d.Circle, bias geom2d.Vector) (geom2d.Vector, bool) {
	near, okNear := geom2d.IntersectLineCircle(l.Source, l.Target, c.Center, c.Radius)
	far, okFar := geom2d.IntersectLineCircleFar(l.Source, l.Target, c.Center, c.Radius)
	switch {
	case okNear && okFar:
		if geom2d.Distance(near, bias) <= geom2d.Distance(far, bias) {
			return near, true
		}
		return far, true
	case okNear:
		return near, true
	case okFar:
		return far, true
	}
	return geom2d.Vector{}, false
}

// guideCrossing returns the crossing of a directed display line with a
// guide circle, biased toward the line's node-side endpoint. For straight
// lines the near-side solution is taken from the line's own source and must
// lie within the segment, so a line that starts at or inside the circle has
// no crossing and the caller degrades to its fallbacks.
func guideCrossing(d directedEdge, c geom2d.Circle, nodeSide geom2d.Vector) (geom2d.Vector, bool) {
	if d.curve != nil {
		return geom2d.IntersectCircles(d.curve.Circle, c, nodeSide)
	}
	return geom2d.IntersectLineCircle(d.line.Source, d.line.Target, c.Center, c.Radius)
}

// firstCrossing returns the line's core-circle crossing, falling back to
// the node-circle crossing and finally to the raw line endpoint.
func firstCrossing(d directedEdge, core, node geom2d.Circle, endpoint geom2d.Vector) geom2d.Vector {
	if p, ok := guideCrossing(d, core, endpoint); ok {
		return p
	}
	if p, ok := guideCrossing(d, node, endpoint); ok {
		return p
	}
	return endpoint
}

// crossingNearest returns whichever of the line's core- and node-circle
// crossings lies closer to ref, falling back to the raw endpoint when
// neither exists.
func crossingNearest(d directedEdge, core, node geom2d.Circle, ref, endpoint geom2d.Vector) geom2d.Vector {
	pc, okc := guideCrossing(d, core, endpoint)
	pn, okn := guideCrossing(d, node, endpoint)
	switch {
	case okc && okn:
		if geom2d.Distance(pc, ref) <= geom2d.Distance(pn, ref) {
			return pc
		}
		return pn
	case okc:
		return pc
	case okn:
		return pn
	}
	return endpoint
}

// pairedCrossings returns transit points for the no-intersection tier: the
// core-circle crossings when both lines have one, else the node-circle
// crossings when both have one, else the raw line endpoints.
func pairedCrossings(in, out directedEdge, core, node geom2d.Circle) (geom2d.Vector, geom2d.Vector) {
	if cin, ok1 := guideCrossing(in, core, in.line.Target); ok1 {
		if cout, ok2 := guideCrossing(out, core, out.line.Source); ok2 {
			return cin, cout
		}
	}
	if nin, ok1 := guideCrossing(in, node, in.line.Target); ok1 {
		if nout, ok2 := guideCrossing(out, node, out.line.Source); ok2 {
			return nin, nout
		}
	}
	return in.line.Target, out.line.Source
}

// detectDirections resolves, for each edge in the chain, whether it is
// traversed source-to-target. When the first two edges connect the same
// unordered node pair the opening is ambiguous; with three or more edges
// the third edge's endpoints disambiguate it, otherwise the first edge
// defaults to forward.
func detectDirections(edges []*scene.Edge) []bool {
	forward := make([]bool, len(edges))
	forward[0] = true
	if len(edges) == 1 {
		return forward
	}

	e0, e1 := edges[0], edges[1]
	switch {
	case e0.PairKey() == e1.PairKey() && len(edges) >= 3:
		// Degenerate back-and-forth opening: the node e1 shares with the
		// third edge is e1's exit, so e0 ends at e1's other endpoint.
		shared := sharedNode(e1, edges[2])
		start1 := otherNode(e1, shared)
		forward[0] = e0.Target == start1
	case e0.PairKey() != e1.PairKey():
		forward[0] = e0.Target == sharedNode(e0, e1)
	}

	cur := e0.Target
	if !forward[0] {
		cur = e0.Source
	}
	for i := 1; i < len(edges); i++ {
		e := edges[i]
		if e.Source == cur {
			forward[i] = true
			cur = e.Target
		} else {
			forward[i] = false
			cur = e.Source
		}
	}
	return forward
}

// sharedNode returns an endpoint of a that is also an endpoint of b,
// preferring a's target.
func sharedNode(a, b *scene.Edge) string {
	if a.Target == b.Source || a.Target == b.Target {
		return a.Target
	}
	if a.Source == b.Source || a.Source == b.Target {
		return a.Source
	}
	return a.Target
}

// otherNode returns the endpoint of e that is not id.
func otherNode(e *scene.Edge, id string) string {
	if e.Source == id {
		return e.Target
	}
	return e.Source
}
