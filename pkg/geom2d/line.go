package geom2d

import "math"

// Line is a directed segment from Source to Target.
type Line struct {
	Source Vector `json:"source"`
	Target Vector `json:"target"`
}

// Vector returns the displacement from Source to Target.
func (l Line) Vector() Vector { return l.Target.Sub(l.Source) }

// Center returns the midpoint of the segment.
func (l Line) Center() Vector {
	return Vector{(l.Source.X + l.Target.X) / 2, (l.Source.Y + l.Target.Y) / 2}
}

// Length returns the segment length.
func (l Line) Length() float64 { return l.Vector().Len() }

// Reverse returns the line with its endpoints swapped.
func (l Line) Reverse() Line { return Line{Source: l.Target, Target: l.Source} }

// Shift returns the line displaced laterally by offset, perpendicular to
// its own direction. Positive offsets displace toward the +90 degree side
// of the source-to-target direction.
func (l Line) Shift(offset float64) Line {
	d := l.Vector().Normalize().Perp().Mul(offset)
	return Line{Source: l.Source.Add(d), Target: l.Target.Add(d)}
}

// IntersectLines returns the intersection point of the infinite lines
// through l1 and l2. ok is false when the lines are parallel; slopes are
// compared with Epsilon scaled by their magnitudes, and vertical lines
// (infinite slope) are handled as a special case.
func IntersectLines(l1, l2 Line) (Vector, bool) {
	v1 := l1.Vector()
	v2 := l2.Vector()

	vertical1 := math.Abs(v1.X) <= Epsilon*math.Max(1, math.Abs(v1.Y))
	vertical2 := math.Abs(v2.X) <= Epsilon*math.Max(1, math.Abs(v2.Y))

	switch {
	case vertical1 && vertical2:
		return Vector{}, false
	case vertical1:
		m2 := v2.Y / v2.X
		x := l1.Source.X
		return Vector{x, l2.Source.Y + m2*(x-l2.Source.X)}, true
	case vertical2:
		m1 := v1.Y / v1.X
		x := l2.Source.X
		return Vector{x, l1.Source.Y + m1*(x-l1.Source.X)}, true
	}

	m1 := v1.Y / v1.X
	m2 := v2.Y / v2.X
	if math.Abs(m1-m2) <= Epsilon*math.Max(1, math.Max(math.Abs(m1), math.Abs(m2))) {
		return Vector{}, false
	}
	x := (m1*l1.Source.X - m2*l2.Source.X + l2.Source.Y - l1.Source.Y) / (m1 - m2)
	return Vector{x, l1.Source.Y + m1*(x-l1.Source.X)}, true
}

// RectBoundaryDistance returns the distance from the center of an
// axis-aligned rectangle with the given half extents to its boundary,
// measured along dir. A zero direction yields halfWidth.
func RectBoundaryDistance(halfWidth, halfHeight float64, dir Vector) float64 {
	d := dir.Normalize()
	if d.X == 0 && d.Y == 0 {
		return halfWidth
	}
	tx := math.Inf(1)
	if d.X != 0 {
		tx = halfWidth / math.Abs(d.X)
	}
	ty := math.Inf(1)
	if d.Y != 0 {
		ty = halfHeight / math.Abs(d.Y)
	}
	return math.Min(tx, ty)
}
