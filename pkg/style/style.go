// Package style defines the resolved visual attributes consumed by the
// geometry engine: node shapes, edge strokes, arrow markers, and the
// straight/curve edge type. Values here are already-resolved literals; the
// literal-or-derived indirection lives in [Value].
package style

import (
	"fmt"

	"github.com/RainBoltz/v-network-graph/pkg/geom2d"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// ShapeType selects the node outline used for boundary-margin calculation.
type ShapeType string

const (
	ShapeCircle ShapeType = "circle"
	ShapeRect   ShapeType = "rect"
)

// EdgeType selects straight or curved edge rendering.
type EdgeType string

const (
	EdgeStraight EdgeType = "straight"
	EdgeCurve    EdgeType = "curve"
)

// EndType selects where a path begins and ends relative to its end nodes.
type EndType string

const (
	EndCenterOfNode EndType = "centerOfNode"
	EndEdgeOfNode   EndType = "edgeOfNode"
)

// MarkerUnits selects how marker dimensions scale.
type MarkerUnits string

const (
	// UnitsStrokeWidth scales marker dimensions by the edge stroke width.
	UnitsStrokeWidth MarkerUnits = "strokeWidth"
	// UnitsUserSpace uses marker dimensions as-is.
	UnitsUserSpace MarkerUnits = "userSpaceOnUse"
)

// ValidEdgeTypes is the set of supported edge types.
var ValidEdgeTypes = map[EdgeType]bool{
	EdgeStraight: true,
	EdgeCurve:    true,
}

// ValidEndTypes is the set of supported path end types.
var ValidEndTypes = map[EndType]bool{
	EndCenterOfNode: true,
	EndEdgeOfNode:   true,
}

// =============================================================================
// Shape / Stroke / Marker
// =============================================================================

// Shape describes a node's visual outline.
type Shape struct {
	Type         ShapeType `json:"type" toml:"type"`
	Radius       float64   `json:"radius,omitempty" toml:"radius,omitzero"`
	Width        float64   `json:"width,omitempty" toml:"width,omitzero"`
	Height       float64   `json:"height,omitempty" toml:"height,omitzero"`
	BorderRadius float64   `json:"border_radius,omitempty" toml:"border_radius,omitzero"`
	Color        string    `json:"color,omitempty" toml:"color,omitzero"`
}

// BoundaryDistance returns the distance from the shape's center to its
// boundary along dir. Circles ignore the direction; rectangles intersect
// their border with the ray.
func (s Shape) BoundaryDistance(dir geom2d.Vector) float64 {
	if s.Type == ShapeRect {
		return geom2d.RectBoundaryDistance(s.Width/2, s.Height/2, dir)
	}
	return s.Radius
}

// EffectiveRadius returns the guide radius used by the path transit logic:
// the circle radius, or half the larger rectangle extent.
func (s Shape) EffectiveRadius() float64 {
	if s.Type == ShapeRect {
		if s.Width > s.Height {
			return s.Width / 2
		}
		return s.Height / 2
	}
	return s.Radius
}

// Stroke describes an edge or path stroke.
type Stroke struct {
	Width     float64 `json:"width" toml:"width"`
	Color     string  `json:"color,omitempty" toml:"color,omitzero"`
	Dasharray string  `json:"dasharray,omitempty" toml:"dasharray,omitzero"`
}

// Marker describes an endpoint marker (arrowhead).
type Marker struct {
	Shape  string      `json:"shape" toml:"shape"`
	Width  float64     `json:"width" toml:"width"`
	Height float64     `json:"height" toml:"height"`
	Margin float64     `json:"margin,omitempty" toml:"margin,omitzero"`
	Units  MarkerUnits `json:"units,omitempty" toml:"units,omitzero"`
	Color  string      `json:"color,omitempty" toml:"color,omitzero"`
}

// EndpointMargin returns the distance the edge endpoint retreats so the
// marker fits: width plus margin, scaled by the stroke width when the
// marker units are strokeWidth.
func (m *Marker) EndpointMargin(strokeWidth float64) float64 {
	if m == nil {
		return 0
	}
	unit := 1.0
	if m.Units == UnitsStrokeWidth {
		unit = strokeWidth
	}
	return (m.Width + m.Margin) * unit
}

// Key returns a stable identity for marker descriptor allocation: two
// markers with the same key share one rendering handle.
func (m *Marker) Key(strokeWidth float64) string {
	if m == nil {
		return ""
	}
	return fmt.Sprintf("%s|%g|%g|%g|%s|%s|%g", m.Shape, m.Width, m.Height, m.Margin, m.Units, m.Color, strokeWidth)
}

// =============================================================================
// Literal-or-Derived Values
// =============================================================================

// Value is a style attribute that is either a constant or a function of the
// entity it applies to. Construct with Literal or Derived; read with Resolve
// exactly once per recomputation.
type Value[E, V any] struct {
	fn  func(E) V
	lit V
}

// Literal wraps a constant style value.
func Literal[E, V any](v V) Value[E, V] { return Value[E, V]{lit: v} }

// Derived wraps a function of the entity.
func Derived[E, V any](fn func(E) V) Value[E, V] { return Value[E, V]{fn: fn} }

// Resolve returns the literal, or applies the derivation to e.
func (v Value[E, V]) Resolve(e E) V {
	if v.fn != nil {
		return v.fn(e)
	}
	return v.lit
}
