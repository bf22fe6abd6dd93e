package state

import (
	"math"

	"github.com/RainBoltz/v-network-graph/pkg/geom2d"
	"github.com/RainBoltz/v-network-graph/pkg/scene"
	"github.com/RainBoltz/v-network-graph/pkg/style"
)

// stubHalfLength is the half-length of the substitute segment an edge
// collapses to when its endpoint margins overrun each other.
const stubHalfLength = 0.5

// Curve describes a curved edge as a circular arc with its cubic-Bezier
// approximation. It is present only for curve-type edges with a non-zero
// group shift that did not degenerate.
type Curve struct {
	// Center is the shifted midpoint the arc passes through.
	Center geom2d.Vector
	// Theta is the signed angle from (circle center -> origin source) to
	// (circle center -> Center); its sign is the rotational direction.
	Theta float64
	// Circle is the circumcircle of the origin endpoints and Center.
	Circle geom2d.Circle
	// Control holds the two cubic-Bezier control points for the arc
	// between the margined endpoints.
	Control []geom2d.Vector
}

// Inverted returns the curve as seen when traversing the edge backwards.
func (c *Curve) Inverted() *Curve {
	if c == nil {
		return nil
	}
	inv := &Curve{
		Center: c.Center,
		Theta:  -c.Theta,
		Circle: c.Circle,
	}
	for i := len(c.Control) - 1; i >= 0; i-- {
		inv.Control = append(inv.Control, c.Control[i])
	}
	return inv
}

// EdgeState is the derived display geometry of one edge. Origin is the raw
// center-to-center line; Position the final margin-and-shift-adjusted line;
// Curve the arc descriptor when the edge renders curved.
type EdgeState struct {
	ID       string
	Origin   geom2d.Line
	Position geom2d.Line
	Curve    *Curve
	Stroke   style.Stroke

	SourceMarker MarkerHandle
	TargetMarker MarkerHandle

	computed bool
	disposed bool
}

// dispose releases marker handles exactly once. The engine invokes it
// synchronously before deleting the state record.
func (s *EdgeState) dispose(markers *MarkerAllocator) {
	if s.disposed {
		return
	}
	s.disposed = true
	markers.Release(s.SourceMarker)
	markers.Release(s.TargetMarker)
	s.SourceMarker = ""
	s.TargetMarker = ""
}

// edgeInputs carries the resolved dependencies of one edge recomputation.
type edgeInputs struct {
	edge      *scene.Edge
	srcPos    geom2d.Vector
	tgtPos    geom2d.Vector
	srcShape  style.Shape
	tgtShape  style.Shape
	shift     float64
	scale     float64
	summarize bool
}

// recompute re-derives the state from its inputs. It is atomic from the
// consumer's perspective: all fields are replaced in one pass.
func (s *EdgeState) recompute(in edgeInputs, cfg *Config, markers *MarkerAllocator) {
	origin := geom2d.Line{Source: in.srcPos, Target: in.tgtPos}
	shifted := origin
	if in.shift != 0 {
		shifted = origin.Shift(in.shift * in.scale)
	}

	stroke := cfg.Edge.Stroke.Resolve(in.edge)
	if in.summarize {
		// Summarized members share the group's aggregate line; markers
		// are dropped so the single stroke stays clean.
		s.updateMarkers(nil, nil, stroke.Width, markers)
	}

	var srcMarker, tgtMarker *style.Marker
	if !in.summarize {
		srcMarker = cfg.Edge.SourceMarker.Resolve(in.edge)
		tgtMarker = cfg.Edge.TargetMarker.Resolve(in.edge)
		s.updateMarkers(srcMarker, tgtMarker, stroke.Width, markers)
	}

	dir := origin.Vector()
	srcMargin := endpointMargin(in.srcShape, dir, srcMarker, stroke.Width, cfg.Edge.Margin) * in.scale
	tgtMargin := endpointMargin(in.tgtShape, dir.Mul(-1), tgtMarker, stroke.Width, cfg.Edge.Margin) * in.scale

	s.ID = in.edge.ID
	s.Origin = origin
	s.Stroke = stroke

	// Straight edges, and curve edges with zero shift, take the collinear
	// shortcut: a circumcircle through three collinear points does not
	// exist.
	if cfg.Edge.Type != style.EdgeCurve || in.shift == 0 {
		s.Position = applyStraightMargins(shifted, srcMargin, tgtMargin)
		s.Curve = nil
		s.computed = true
		return
	}

	s.Position, s.Curve = curveGeometry(origin, shifted, srcMargin, tgtMargin)
	s.computed = true
}

// updateMarkers re-acquires marker handles when the marker style changed,
// releasing the previous handles.
func (s *EdgeState) updateMarkers(src, tgt *style.Marker, strokeWidth float64, markers *MarkerAllocator) {
	newSrc := markers.Acquire(src, strokeWidth)
	newTgt := markers.Acquire(tgt, strokeWidth)
	if newSrc != s.SourceMarker {
		markers.Release(s.SourceMarker)
		s.SourceMarker = newSrc
	} else {
		markers.Release(newSrc)
	}
	if newTgt != s.TargetMarker {
		markers.Release(s.TargetMarker)
		s.TargetMarker = newTgt
	} else {
		markers.Release(newTgt)
	}
}

// endpointMargin computes the distance one endpoint retreats from the node
// center: the shape boundary distance (when a configured margin or a marker
// requires boundary clipping), the configured margin, and the marker margin.
func endpointMargin(shape style.Shape, dir geom2d.Vector, marker *style.Marker, strokeWidth float64, configured *float64) float64 {
	margin := 0.0
	if configured != nil || marker != nil {
		margin = shape.BoundaryDistance(dir)
	}
	if configured != nil {
		margin += *configured
	}
	margin += marker.EndpointMargin(strokeWidth)
	return margin
}

// applyStraightMargins shortens the line by the endpoint margins. When the
// margins overrun each other the line collapses to a stub centered at the
// midpoint, so the displayed line never inverts.
func applyStraightMargins(l geom2d.Line, srcMargin, tgtMargin float64) geom2d.Line {
	length := l.Length()
	if length == 0 {
		return l
	}
	unit := l.Vector().Mul(1 / length)
	if srcMargin+tgtMargin >= length {
		c := l.Center()
		return geom2d.Line{
			Source: c.Sub(unit.Mul(stubHalfLength)),
			Target: c.Add(unit.Mul(stubHalfLength)),
		}
	}
	return geom2d.Line{
		Source: l.Source.Add(unit.Mul(srcMargin)),
		Target: l.Target.Sub(unit.Mul(tgtMargin)),
	}
}

// curveGeometry derives the arc for a curve edge with non-zero shift: the
// circumcircle through the origin endpoints and the shifted midpoint, the
// margined endpoints walked along the circumference, and the Bezier control
// points. Margin overrun collapses the edge to a stub along the shift
// direction at the shifted midpoint.
func curveGeometry(origin, shifted geom2d.Line, srcMargin, tgtMargin float64) (geom2d.Line, *Curve) {
	mid := shifted.Center()
	circle := geom2d.CircleFrom3Points(origin.Source, origin.Target, mid)

	theta0 := geom2d.RelativeAngle(origin.Source.Sub(circle.Center), mid.Sub(circle.Center))
	sign := 1.0
	if theta0 < 0 {
		sign = -1
	}

	srcAngle := srcMargin / circle.Radius
	tgtAngle := tgtMargin / circle.Radius
	newSrc := geom2d.MoveOnCircumference(origin.Source, circle.Center, sign*srcAngle)
	newTgt := geom2d.MoveOnCircumference(origin.Target, circle.Center, -sign*tgtAngle)

	before := geom2d.RelativeAngle(origin.Source.Sub(circle.Center), origin.Target.Sub(circle.Center))
	after := geom2d.RelativeAngle(newSrc.Sub(circle.Center), newTgt.Sub(circle.Center))
	if before != 0 && (after == 0 || math.Signbit(before) != math.Signbit(after)) {
		// Margins overran each other: substitute a short stub along the
		// shift direction instead of an inverted arc.
		stubDir := mid.Sub(origin.Center()).Normalize()
		return geom2d.Line{
			Source: mid.Sub(stubDir.Mul(stubHalfLength)),
			Target: mid.Add(stubDir.Mul(stubHalfLength)),
		}, nil
	}

	sweep := 2*theta0 - sign*(srcAngle+tgtAngle)
	control := geom2d.BezierControlPoints(newSrc, circle.Center, newTgt, sweep)

	position := geom2d.Line{Source: newSrc, Target: newTgt}
	return position, &Curve{
		Center:  mid,
		Theta:   theta0,
		Circle:  circle,
		Control: []geom2d.Vector{control[0], control[1]},
	}
}
