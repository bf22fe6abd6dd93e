// Package svg emits standalone SVG documents from a scene and its derived
// geometry: node shapes, edge lines and arcs, multi-edge path sequences, and
// marker definitions.
package svg

import (
	"bytes"
	"fmt"

	"github.com/RainBoltz/v-network-graph/pkg/scene"
	"github.com/RainBoltz/v-network-graph/pkg/state"
	"github.com/RainBoltz/v-network-graph/pkg/style"
)

// Default rendering attributes.
const (
	defaultPadding   = 24.0
	defaultNodeFill  = "#4466cc"
	defaultEdgeColor = "#4466cc"
	defaultPathColor = "#ff9800"
)

// Option customizes the SVG output.
type Option func(*renderer)

type renderer struct {
	padding    float64
	background string
	nodeFill   string
	edgeColor  string
	pathColor  string
	nodeLabels bool
}

// WithPadding sets the whitespace around the graph bounding box.
func WithPadding(p float64) Option { return func(r *renderer) { r.padding = p } }

// WithBackground fills the canvas with a solid color.
func WithBackground(color string) Option { return func(r *renderer) { r.background = color } }

// WithNodeFill sets the default node fill color.
func WithNodeFill(color string) Option { return func(r *renderer) { r.nodeFill = color } }

// WithEdgeColor sets the fallback edge stroke color.
func WithEdgeColor(color string) Option { return func(r *renderer) { r.edgeColor = color } }

// WithPathColor sets the fallback path stroke color.
func WithPathColor(color string) Option { return func(r *renderer) { r.pathColor = color } }

// WithNodeLabels renders each node's ID below its shape.
func WithNodeLabels() Option { return func(r *renderer) { r.nodeLabels = true } }

// Render draws the scene using the engine's derived geometry and returns the
// complete SVG document.
func Render(sc *scene.Scene, eng *state.Engine, opts ...Option) []byte {
	r := renderer{
		padding:   defaultPadding,
		nodeFill:  defaultNodeFill,
		edgeColor: defaultEdgeColor,
		pathColor: defaultPathColor,
	}
	for _, opt := range opts {
		opt(&r)
	}

	minX, minY, maxX, maxY := bounds(sc, eng.Scale())
	minX -= r.padding
	minY -= r.padding
	w := maxX - minX + r.padding
	h := maxY - minY + r.padding

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.2f %.2f %.2f %.2f" width="%.0f" height="%.0f">`+"\n",
		minX, minY, w, h, w, h)

	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
			minX, minY, w, h, r.background)
	}

	renderMarkerDefs(&buf, eng.Markers())
	r.renderEdges(&buf, eng)
	r.renderPaths(&buf, eng)
	r.renderNodes(&buf, sc, eng.Scale())

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// bounds returns the bounding box of all node shapes.
func bounds(sc *scene.Scene, scale float64) (minX, minY, maxX, maxY float64) {
	if len(sc.Nodes) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = sc.Nodes[0].X, sc.Nodes[0].Y
	maxX, maxY = minX, minY
	for _, n := range sc.Nodes {
		rad := sc.ShapeOf(n.ID).EffectiveRadius() * scale
		minX = min(minX, n.X-rad)
		minY = min(minY, n.Y-rad)
		maxX = max(maxX, n.X+rad)
		maxY = max(maxY, n.Y+rad)
	}
	return minX, minY, maxX, maxY
}

func renderMarkerDefs(buf *bytes.Buffer, descriptors []state.MarkerDescriptor) {
	if len(descriptors) == 0 {
		return
	}
	buf.WriteString("  <defs>\n")
	for _, d := range descriptors {
		units := "userSpaceOnUse"
		if d.Marker.Units == style.UnitsStrokeWidth {
			units = "strokeWidth"
		}
		color := d.Marker.Color
		if color == "" {
			color = "context-stroke"
		}
		fmt.Fprintf(buf, `    <marker id="%s" markerWidth="%g" markerHeight="%g" refX="%g" refY="%g" orient="auto" markerUnits="%s">`+"\n",
			d.ID, d.Marker.Width, d.Marker.Height, d.Marker.Width, d.Marker.Height/2, units)
		switch d.Marker.Shape {
		case "circle":
			fmt.Fprintf(buf, `      <circle cx="%g" cy="%g" r="%g" fill="%s"/>`+"\n",
				d.Marker.Width/2, d.Marker.Height/2, d.Marker.Width/2, color)
		default: // arrow
			fmt.Fprintf(buf, `      <path d="M0,0 L%g,%g L0,%g Z" fill="%s"/>`+"\n",
				d.Marker.Width, d.Marker.Height/2, d.Marker.Height, color)
		}
		buf.WriteString("    </marker>\n")
	}
	buf.WriteString("  </defs>\n")
}

func (r *renderer) renderEdges(buf *bytes.Buffer, eng *state.Engine) {
	summarized := make(map[string]bool)
	for _, g := range eng.Groups() {
		if !g.Summarized {
			continue
		}
		for _, id := range g.EdgeIDs {
			summarized[id] = true
		}
		// One aggregate line for the whole group, on the first member's
		// (unshifted) position.
		if es, ok := eng.EdgeState(g.EdgeIDs[0]); ok {
			r.renderEdgeLine(buf, es, g.Stroke, "", "")
		}
	}
	for _, es := range eng.EdgeStates() {
		if summarized[es.ID] {
			continue
		}
		r.renderEdgeLine(buf, es, es.Stroke, es.SourceMarker, es.TargetMarker)
	}
}

func (r *renderer) renderEdgeLine(buf *bytes.Buffer, es *state.EdgeState, stroke style.Stroke, srcMarker, tgtMarker state.MarkerHandle) {
	color := stroke.Color
	if color == "" {
		color = r.edgeColor
	}
	attrs := fmt.Sprintf(`stroke="%s" stroke-width="%g" fill="none"`, color, stroke.Width)
	if stroke.Dasharray != "" {
		attrs += fmt.Sprintf(` stroke-dasharray="%s"`, stroke.Dasharray)
	}
	if srcMarker != "" {
		attrs += fmt.Sprintf(` marker-start="url(#%s)"`, srcMarker)
	}
	if tgtMarker != "" {
		attrs += fmt.Sprintf(` marker-end="url(#%s)"`, tgtMarker)
	}

	if es.Curve != nil && len(es.Curve.Control) == 2 {
		fmt.Fprintf(buf, `  <path d="M %.2f %.2f C %.2f %.2f, %.2f %.2f, %.2f %.2f" %s/>`+"\n",
			es.Position.Source.X, es.Position.Source.Y,
			es.Curve.Control[0].X, es.Curve.Control[0].Y,
			es.Curve.Control[1].X, es.Curve.Control[1].Y,
			es.Position.Target.X, es.Position.Target.Y, attrs)
		return
	}
	fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" %s/>`+"\n",
		es.Position.Source.X, es.Position.Source.Y,
		es.Position.Target.X, es.Position.Target.Y, attrs)
}

func (r *renderer) renderPaths(buf *bytes.Buffer, eng *state.Engine) {
	for _, ps := range eng.PathStates() {
		d := pathData(ps.Segments)
		if d == "" {
			continue
		}
		color := ps.Stroke.Color
		if color == "" {
			color = r.pathColor
		}
		fmt.Fprintf(buf, `  <path d="%s" stroke="%s" stroke-width="%g" fill="none" stroke-linecap="round"/>`+"\n",
			d, color, ps.Stroke.Width)
	}
}

// pathData converts a point sequence into an SVG path data string.
func pathData(segments []state.Segment) string {
	var buf bytes.Buffer
	for i, s := range segments {
		switch {
		case i == 0 || s.Kind == state.SegmentMove:
			fmt.Fprintf(&buf, "M %.2f %.2f", s.Point.X, s.Point.Y)
		case s.Kind == state.SegmentCurve:
			fmt.Fprintf(&buf, " C %.2f %.2f, %.2f %.2f, %.2f %.2f",
				s.Control[0].X, s.Control[0].Y, s.Control[1].X, s.Control[1].Y, s.Point.X, s.Point.Y)
		default:
			fmt.Fprintf(&buf, " L %.2f %.2f", s.Point.X, s.Point.Y)
		}
	}
	return buf.String()
}

func (r *renderer) renderNodes(buf *bytes.Buffer, sc *scene.Scene, scale float64) {
	for _, n := range sc.Nodes {
		shape := sc.ShapeOf(n.ID)
		fill := shape.Color
		if fill == "" {
			fill = r.nodeFill
		}
		switch shape.Type {
		case style.ShapeRect:
			w := shape.Width * scale
			h := shape.Height * scale
			fmt.Fprintf(buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.2f" fill="%s"/>`+"\n",
				n.X-w/2, n.Y-h/2, w, h, shape.BorderRadius*scale, fill)
		default:
			fmt.Fprintf(buf, `  <circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n",
				n.X, n.Y, shape.Radius*scale, fill)
		}
		if r.nodeLabels {
			offset := shape.EffectiveRadius()*scale + 14
			fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" text-anchor="middle" font-size="12">%s</text>`+"\n",
				n.X, n.Y+offset, n.ID)
		}
	}
}
