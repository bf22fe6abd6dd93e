package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RainBoltz/v-network-graph/pkg/layout"
	"github.com/RainBoltz/v-network-graph/pkg/render/svg"
	"github.com/RainBoltz/v-network-graph/pkg/scene"
	"github.com/RainBoltz/v-network-graph/pkg/state"
)

// renderOpts holds the command-line flags for the render command.
// These options control layout, styling, and output destination.
type renderOpts struct {
	output     string  // output file path, "-" for stdout
	layoutEng  string  // Graphviz engine for recomputing positions, empty keeps stored positions
	labels     bool    // draw node IDs as text labels
	padding    float64 // canvas padding around the graph bounds
	background string  // background fill color, empty for transparent
	nodeFill   string  // node fill color
	edgeColor  string  // edge stroke color
	pathColor  string  // traversal path stroke color
}

// newRenderCmd creates the render command for generating SVG documents.
//
// Default settings:
//   - padding: 24px around the computed graph bounds
//   - labels: true (node IDs rendered as text)
//   - positions: taken from the scene file unless --layout names an engine
func newRenderCmd() *cobra.Command {
	opts := renderOpts{
		labels:  true,
		padding: 24,
	}

	cmd := &cobra.Command{
		Use:   "render [scene]",
		Short: "Render a scene file to SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateEngine(opts.layoutEng); err != nil {
				return err
			}
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.svg, \"-\" for stdout)")
	cmd.Flags().StringVar(&opts.layoutEng, "layout", "", "recompute positions with a Graphviz engine: dot, neato, fdp, circo")
	cmd.Flags().BoolVar(&opts.labels, "labels", opts.labels, "draw node IDs as labels")
	cmd.Flags().Float64Var(&opts.padding, "padding", opts.padding, "canvas padding in pixels")
	cmd.Flags().StringVar(&opts.background, "background", "", "background color (default: transparent)")
	cmd.Flags().StringVar(&opts.nodeFill, "node-fill", "", "node fill color")
	cmd.Flags().StringVar(&opts.edgeColor, "edge-color", "", "edge stroke color")
	cmd.Flags().StringVar(&opts.pathColor, "path-color", "", "path stroke color")

	return cmd
}

// validEngines is the set of supported Graphviz layout engines.
var validEngines = map[string]bool{"dot": true, "neato": true, "fdp": true, "circo": true}

// validateEngine checks that the requested layout engine is supported.
// An empty engine is valid and keeps the positions stored in the scene.
func validateEngine(engine string) error {
	if engine != "" && !validEngines[engine] {
		return fmt.Errorf("invalid layout engine: %s (must be 'dot', 'neato', 'fdp', or 'circo')", engine)
	}
	return nil
}

// svgPath derives the output path from the output flag and the input file.
// If output is empty, it replaces the input extension with .svg.
func svgPath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input)) + ".svg"
	}
	return output
}

// runRender loads the scene, optionally recomputes positions, and writes the SVG.
func runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	sc, err := scene.ReadSceneFile(input)
	if err != nil {
		return err
	}
	logger.Infof("Loaded scene: %d nodes, %d edges, %d paths", len(sc.Nodes), len(sc.Edges), len(sc.Paths))

	if opts.layoutEng != "" {
		prog := newProgress(logger)
		if err := layout.Apply(ctx, sc, layout.Options{Engine: opts.layoutEng}); err != nil {
			return fmt.Errorf("compute %s layout: %w", opts.layoutEng, err)
		}
		prog.done(fmt.Sprintf("Positioned %d nodes with %s", len(sc.Nodes), opts.layoutEng))
	}

	eng, err := state.FromScene(sc, state.WithLogger(logger))
	if err != nil {
		return err
	}
	data := svg.Render(sc, eng, svgOptions(opts)...)
	logger.Debugf("Generated svg: %d bytes", len(data))

	outputPath := svgPath(opts.output, input)
	out, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return err
	}

	if outputPath != "-" {
		logger.Infof("Generated %s", outputPath)
	}
	return nil
}

// svgOptions translates renderOpts into renderer options, skipping empty colors.
func svgOptions(opts *renderOpts) []svg.Option {
	result := []svg.Option{svg.WithPadding(opts.padding)}
	if opts.labels {
		result = append(result, svg.WithNodeLabels())
	}
	if opts.background != "" {
		result = append(result, svg.WithBackground(opts.background))
	}
	if opts.nodeFill != "" {
		result = append(result, svg.WithNodeFill(opts.nodeFill))
	}
	if opts.edgeColor != "" {
		result = append(result, svg.WithEdgeColor(opts.edgeColor))
	}
	if opts.pathColor != "" {
		result = append(result, svg.WithPathColor(opts.pathColor))
	}
	return result
}

// openOutput opens the output destination: stdout for "-", a new file otherwise.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
