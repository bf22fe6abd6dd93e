package geom2d

import "math"

// Circle is a circle with a center and radius.
type Circle struct {
	Center Vector  `json:"center"`
	Radius float64 `json:"radius"`
}

// IntersectLineCircle returns the intersection of the directed line through
// source and target with the circle, choosing the solution nearer the
// source side. ok is false when the line misses the circle or the near
// solution lies behind the source.
func IntersectLineCircle(source, target, center Vector, radius float64) (Vector, bool) {
	return intersectLineCircle(source, target, center, radius, false)
}

// IntersectLineCircleFar is the far-side variant of IntersectLineCircle:
// it returns the solution farther from the source, for call sites that need
// the exit point rather than the entry point.
func IntersectLineCircleFar(source, target, center Vector, radius float64) (Vector, bool) {
	return intersectLineCircle(source, target, center, radius, true)
}

func intersectLineCircle(source, target, center Vector, radius float64, far bool) (Vector, bool) {
	dir := target.Sub(source)
	length := dir.Len()
	if length == 0 {
		return Vector{}, false
	}
	unit := dir.Mul(1 / length)

	// Parameter of the projection of the center onto the line, in units
	// of the segment length.
	t0 := center.Sub(source).Dot(unit) / length
	foot := source.Add(unit.Mul(t0 * length))
	dist := Distance(foot, center)
	if dist > radius {
		return Vector{}, false
	}

	dt := math.Sqrt(radius*radius-dist*dist) / length
	t := t0 - dt
	if far {
		t = t0 + dt
	}
	if t < 0 || t > 1 {
		return Vector{}, false
	}
	return source.Add(unit.Mul(t * length)), true
}

// IntersectCircles returns one of the up to two intersection points of c1
// and c2, choosing the candidate nearer bias. When both candidates are
// exactly equidistant from bias the one with the smaller X coordinate wins,
// then the smaller Y. ok is false when the circles do not intersect;
// tangency is treated as degenerate and also reports false.
func IntersectCircles(c1, c2 Circle, bias Vector) (Vector, bool) {
	d := Distance(c1.Center, c2.Center)
	if d == 0 {
		return Vector{}, false
	}
	if d > c1.Radius+c2.Radius || d < math.Abs(c1.Radius-c2.Radius) {
		return Vector{}, false
	}

	a := (c1.Radius*c1.Radius - c2.Radius*c2.Radius + d*d) / (2 * d)
	h2 := c1.Radius*c1.Radius - a*a
	if h2 <= 0 {
		return Vector{}, false
	}
	h := math.Sqrt(h2)

	axis := c2.Center.Sub(c1.Center).Mul(1 / d)
	mid := c1.Center.Add(axis.Mul(a))
	offset := axis.Perp().Mul(h)

	p1 := mid.Add(offset)
	p2 := mid.Sub(offset)

	d1 := Distance(p1, bias)
	d2 := Distance(p2, bias)
	switch {
	case d1 < d2:
		return p1, true
	case d2 < d1:
		return p2, true
	}
	// Equidistant: lexicographic tie-break on (X, Y).
	if p1.X < p2.X || (p1.X == p2.X && p1.Y <= p2.Y) {
		return p1, true
	}
	return p2, true
}

// CircleFrom3Points returns the circumcircle of three points. Collinear
// input is a precondition violation; callers must take the straight-line
// shortcut before reaching here.
func CircleFrom3Points(p1, p2, p3 Vector) Circle {
	// Perpendicular bisector intersection, solved in closed form.
	ax, ay := p1.X, p1.Y
	bx, by := p2.X, p2.Y
	cx, cy := p3.X, p3.Y

	d := 2 * (ax*(by-cy) + bx*(cy-ay) + cx*(ay-by))
	ux := ((ax*ax+ay*ay)*(by-cy) + (bx*bx+by*by)*(cy-ay) + (cx*cx+cy*cy)*(ay-by)) / d
	uy := ((ax*ax+ay*ay)*(cx-bx) + (bx*bx+by*by)*(ax-cx) + (cx*cx+cy*cy)*(bx-ax)) / d

	center := Vector{ux, uy}
	return Circle{Center: center, Radius: Distance(center, p1)}
}

// MoveOnCircumference rotates point about center by the signed angle,
// counterclockwise for positive angles. It is used to walk a margin
// distance (margin/radius radians) along a curved edge.
func MoveOnCircumference(point, center Vector, angle float64) Vector {
	sin, cos := math.Sincos(angle)
	r := point.Sub(center)
	return Vector{
		X: center.X + r.X*cos - r.Y*sin,
		Y: center.Y + r.X*sin + r.Y*cos,
	}
}
