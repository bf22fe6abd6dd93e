package svg

import (
	"strings"
	"testing"

	"github.com/RainBoltz/v-network-graph/pkg/scene"
	"github.com/RainBoltz/v-network-graph/pkg/state"
	"github.com/RainBoltz/v-network-graph/pkg/style"
)

func buildScene(t *testing.T, mutate func(*scene.Scene)) (*scene.Scene, *state.Engine) {
	t.Helper()
	sc := &scene.Scene{
		Nodes: []scene.NodeRecord{
			{ID: "a", X: 0, Y: 0},
			{ID: "b", X: 120, Y: 0},
			{ID: "c", X: 60, Y: 90},
		},
		Edges: []scene.EdgeRecord{
			{ID: "ab", Source: "a", Target: "b"},
			{ID: "bc", Source: "b", Target: "c"},
		},
		Paths: []scene.Path{{ID: "p1", Edges: []string{"ab", "bc"}}},
	}
	if mutate != nil {
		mutate(sc)
	}
	if err := sc.Options.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	eng, err := state.FromScene(sc)
	if err != nil {
		t.Fatalf("FromScene: %v", err)
	}
	return sc, eng
}

func TestRenderBasicDocument(t *testing.T) {
	sc, eng := buildScene(t, nil)
	out := string(Render(sc, eng))

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg"`,
		`<line x1="0.00" y1="0.00" x2="120.00" y2="0.00"`,
		`<circle cx="0.00" cy="0.00" r="16.00"`,
		`<path d="M `,
		"</svg>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRenderMarkersAndCurves(t *testing.T) {
	sc, eng := buildScene(t, func(sc *scene.Scene) {
		sc.Edges = append(sc.Edges, scene.EdgeRecord{ID: "ab2", Source: "a", Target: "b"})
		sc.Options.Edge.Type = style.EdgeCurve
		sc.Options.Edge.TargetMarker = &style.Marker{Shape: "arrow", Width: 4, Height: 4, Units: style.UnitsStrokeWidth}
	})
	out := string(Render(sc, eng))

	if !strings.Contains(out, "<defs>") || !strings.Contains(out, "<marker id=") {
		t.Error("output missing marker defs")
	}
	if !strings.Contains(out, `marker-end="url(#`) {
		t.Error("output missing marker-end reference")
	}
	// Parallel curve edges render as cubic Beziers.
	if !strings.Contains(out, ` C `) {
		t.Error("output missing curve commands")
	}
}

func TestRenderRectAndLabels(t *testing.T) {
	sc, eng := buildScene(t, func(sc *scene.Scene) {
		sc.Nodes[0].Shape = &style.Shape{Type: style.ShapeRect, Width: 40, Height: 24, BorderRadius: 4}
	})
	out := string(Render(sc, eng, WithNodeLabels(), WithBackground("#ffffff")))

	if !strings.Contains(out, `<rect x="-20.00" y="-12.00" width="40.00" height="24.00" rx="4.00"`) {
		t.Error("output missing rect node")
	}
	if !strings.Contains(out, `>a</text>`) {
		t.Error("output missing node label")
	}
	if !strings.Contains(out, `fill="#ffffff"`) {
		t.Error("output missing background")
	}
}

func TestRenderSummarizedGroup(t *testing.T) {
	sc, eng := buildScene(t, func(sc *scene.Scene) {
		sc.Edges = append(sc.Edges,
			scene.EdgeRecord{ID: "ab2", Source: "a", Target: "b"},
			scene.EdgeRecord{ID: "ab3", Source: "a", Target: "b"},
		)
		sc.Options.Edge.SummarizeOver = 2
	})
	out := string(Render(sc, eng))

	// Three parallel edges collapse into one aggregate line plus the bc
	// edge: exactly two <line> elements.
	if got := strings.Count(out, "<line "); got != 2 {
		t.Errorf("line elements = %d, want 2 (summarized group)", got)
	}
}
