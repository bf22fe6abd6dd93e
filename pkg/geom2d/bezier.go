package geom2d

import "math"

// BezierControlPoints derives the two cubic-Bezier control points that
// approximate the circular arc from start to end on the circle centered at
// circleCenter. theta is the signed arc sweep from start to end; its sign
// selects the rotational direction and its magnitude the control-point
// distance (the kappa ratio 4/3*tan(theta/4) of the radius).
func BezierControlPoints(start, circleCenter, end Vector, theta float64) [2]Vector {
	kappa := 4.0 / 3.0 * math.Tan(theta/4)

	// Tangents at the endpoints, oriented along the direction of travel.
	t1 := start.Sub(circleCenter).Perp()
	t2 := end.Sub(circleCenter).Perp()

	return [2]Vector{
		start.Add(t1.Mul(kappa)),
		end.Sub(t2.Mul(kappa)),
	}
}
