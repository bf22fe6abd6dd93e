// Package geom2d provides the stateless 2D geometry used by the edge and
// path state engines: vectors, lines, circles, their intersections, and
// cubic-Bezier approximations of circular arcs.
//
// All functions are pure. Degenerate inputs (parallel lines, disjoint
// circles) are reported through boolean ok results rather than errors;
// callers treat them as normal branches.
package geom2d

import "math"

// Epsilon is the tolerance used when comparing slopes and distances.
// It is scaled by the magnitude of the operands before use.
const Epsilon = 2.22e-14

// Vector is a point or displacement in the 2D plane.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vector) Add(o Vector) Vector { return Vector{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vector) Sub(o Vector) Vector { return Vector{v.X - o.X, v.Y - o.Y} }

// Mul returns v scaled by s.
func (v Vector) Mul(s float64) Vector { return Vector{v.X * s, v.Y * s} }

// Dot returns the dot product of v and o.
func (v Vector) Dot(o Vector) float64 { return v.X*o.X + v.Y*o.Y }

// Cross returns the z component of the cross product of v and o.
func (v Vector) Cross(o Vector) float64 { return v.X*o.Y - v.Y*o.X }

// Len returns the Euclidean length of v.
func (v Vector) Len() float64 { return math.Hypot(v.X, v.Y) }

// Normalize returns the unit vector in the direction of v.
// The zero vector is returned unchanged.
func (v Vector) Normalize() Vector {
	l := v.Len()
	if l == 0 {
		return v
	}
	return Vector{v.X / l, v.Y / l}
}

// Perp returns v rotated by +90 degrees (counterclockwise).
func (v Vector) Perp() Vector { return Vector{-v.Y, v.X} }

// NearlyEqual reports whether v and o coincide within Epsilon,
// scaled by the coordinate magnitudes.
func (v Vector) NearlyEqual(o Vector) bool {
	scale := math.Max(1, math.Max(math.Abs(v.X)+math.Abs(v.Y), math.Abs(o.X)+math.Abs(o.Y)))
	return math.Abs(v.X-o.X) <= Epsilon*scale && math.Abs(v.Y-o.Y) <= Epsilon*scale
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vector) float64 { return b.Sub(a).Len() }

// RelativeAngle returns the signed angle from a to b in (-pi, pi].
// Positive angles are counterclockwise.
func RelativeAngle(a, b Vector) float64 {
	return math.Atan2(a.Cross(b), a.Dot(b))
}
