// Package layout computes positions for scene nodes that lack them, by
// running the scene's topology through Graphviz and harvesting the placed
// coordinates.
package layout

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/RainBoltz/v-network-graph/pkg/geom2d"
	"github.com/RainBoltz/v-network-graph/pkg/scene"
)

// pointsPerInch converts Graphviz plain-format coordinates (inches) to the
// point units the scene uses.
const pointsPerInch = 72.0

// Options configures the Graphviz run.
type Options struct {
	// Engine is the Graphviz layout engine: dot, neato, fdp, circo.
	// Empty means dot.
	Engine string
	// RankSep and NodeSep tune spacing, in inches. Zero keeps the
	// Graphviz defaults.
	RankSep float64
	NodeSep float64
}

// ToDOT converts a scene's topology to Graphviz DOT. Positions and styles
// are not carried over; only the structure matters for layout.
func ToDOT(sc *scene.Scene, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if opts.RankSep > 0 {
		fmt.Fprintf(&buf, "  ranksep=%g;\n", opts.RankSep)
	}
	if opts.NodeSep > 0 {
		fmt.Fprintf(&buf, "  nodesep=%g;\n", opts.NodeSep)
	}
	buf.WriteString("  node [shape=circle];\n\n")

	for _, n := range sc.Nodes {
		fmt.Fprintf(&buf, "  %q;\n", n.ID)
	}
	buf.WriteString("\n")
	for _, e := range sc.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}
	buf.WriteString("}\n")
	return buf.String()
}

// Compute runs the Graphviz layout and returns positions keyed by node ID,
// in scene coordinates (y growing downward).
func Compute(ctx context.Context, sc *scene.Scene, opts Options) (map[string]geom2d.Vector, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	if opts.Engine != "" {
		gv.SetLayout(graphviz.Layout(opts.Engine))
	}

	g, err := graphviz.ParseBytes([]byte(ToDOT(sc, opts)))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.Format("plain"), &buf); err != nil {
		return nil, fmt.Errorf("render layout: %w", err)
	}
	return parsePlain(buf.Bytes())
}

// Apply computes positions and writes them into the scene's node records.
func Apply(ctx context.Context, sc *scene.Scene, opts Options) error {
	positions, err := Compute(ctx, sc, opts)
	if err != nil {
		return err
	}
	for i := range sc.Nodes {
		if p, ok := positions[sc.Nodes[i].ID]; ok {
			sc.Nodes[i].X = p.X
			sc.Nodes[i].Y = p.Y
		}
	}
	return nil
}

// parsePlain extracts node positions from Graphviz plain output:
//
//	graph <scale> <width> <height>
//	node <name> <x> <y> <width> <height> ...
//
// Coordinates are in inches with y growing upward; they are converted to
// points with y growing downward.
func parsePlain(data []byte) (map[string]geom2d.Vector, error) {
	positions := make(map[string]geom2d.Vector)
	var height float64

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := splitQuoted(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "graph":
			if len(fields) < 4 {
				return nil, fmt.Errorf("malformed graph line: %q", scanner.Text())
			}
			height, _ = strconv.ParseFloat(fields[3], 64)
		case "node":
			if len(fields) < 4 {
				return nil, fmt.Errorf("malformed node line: %q", scanner.Text())
			}
			name := fields[1]
			x, errX := strconv.ParseFloat(fields[2], 64)
			y, errY := strconv.ParseFloat(fields[3], 64)
			if errX != nil || errY != nil {
				return nil, fmt.Errorf("malformed node position: %q", scanner.Text())
			}
			positions[name] = geom2d.Vector{
				X: x * pointsPerInch,
				Y: (height - y) * pointsPerInch,
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan layout output: %w", err)
	}
	return positions, nil
}

// splitQuoted splits a plain-format line on spaces, keeping double-quoted
// tokens (node names with spaces) intact and unquoted.
func splitQuoted(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuote := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ' ' && !inQuote:
			if cur.Len() > 0 {
				fields = append(fields, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		fields = append(fields, cur.String())
	}
	return fields
}
