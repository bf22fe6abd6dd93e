package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/RainBoltz/v-network-graph/pkg/style"
)

func testScene() *Scene {
	margin := 4.0
	return &Scene{
		Nodes: []NodeRecord{
			{ID: "a", X: 0, Y: 0},
			{ID: "b", X: 100, Y: 0, Shape: &style.Shape{Type: style.ShapeRect, Width: 40, Height: 24}},
		},
		Edges: []EdgeRecord{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "a", Target: "b", Meta: map[string]any{"kind": "backup"}},
		},
		Paths: []Path{{ID: "p1", Edges: []string{"e1"}}},
		Options: Options{
			Edge: EdgeOptions{Type: style.EdgeCurve, Margin: &margin},
			Path: PathOptions{EndType: style.EndEdgeOfNode},
		},
	}
}

func TestSceneJSONRoundTrip(t *testing.T) {
	data, err := MarshalScene(testScene())
	if err != nil {
		t.Fatalf("MarshalScene: %v", err)
	}
	got, err := UnmarshalScene(data)
	if err != nil {
		t.Fatalf("UnmarshalScene: %v", err)
	}

	if len(got.Nodes) != 2 || len(got.Edges) != 2 || len(got.Paths) != 1 {
		t.Fatalf("counts = %d/%d/%d, want 2/2/1", len(got.Nodes), len(got.Edges), len(got.Paths))
	}
	if got.Nodes[1].Shape == nil || got.Nodes[1].Shape.Type != style.ShapeRect {
		t.Errorf("node shape override lost: %+v", got.Nodes[1].Shape)
	}
	if got.Options.Edge.Margin == nil || *got.Options.Edge.Margin != 4 {
		t.Errorf("edge margin = %v, want 4", got.Options.Edge.Margin)
	}
	// Defaults are applied on decode.
	if got.Options.Scale != 1 || got.Options.Edge.Gap != 10 {
		t.Errorf("defaults not applied: scale %v gap %v", got.Options.Scale, got.Options.Edge.Gap)
	}
	if got.Options.Edge.Type != style.EdgeCurve {
		t.Errorf("edge type = %v, want curve", got.Options.Edge.Type)
	}
}

func TestReadSceneFileTOML(t *testing.T) {
	src := `
[options]
scale = 2.0

[options.edge]
type = "curve"
gap = 20.0

[[nodes]]
id = "a"
x = 0.0
y = 0.0

[[nodes]]
id = "b"
x = 100.0
y = 0.0

[[edges]]
id = "e1"
source = "a"
target = "b"

[[paths]]
edges = ["e1"]
`
	path := filepath.Join(t.TempDir(), "scene.toml")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := ReadSceneFile(path)
	if err != nil {
		t.Fatalf("ReadSceneFile: %v", err)
	}
	if len(s.Nodes) != 2 || len(s.Edges) != 1 || len(s.Paths) != 1 {
		t.Fatalf("counts = %d/%d/%d, want 2/1/1", len(s.Nodes), len(s.Edges), len(s.Paths))
	}
	if s.Options.Scale != 2 || s.Options.Edge.Gap != 20 {
		t.Errorf("options = scale %v gap %v, want 2/20", s.Options.Scale, s.Options.Edge.Gap)
	}
	if s.Options.Edge.Type != style.EdgeCurve {
		t.Errorf("edge type = %v, want curve", s.Options.Edge.Type)
	}
	// Unset options still pick up defaults.
	if s.Options.Path.Stroke.Width != 6 {
		t.Errorf("path stroke width = %v, want default 6", s.Options.Path.Stroke.Width)
	}
}

func TestReadSceneFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	if err := WriteSceneFile(testScene(), path); err != nil {
		t.Fatalf("WriteSceneFile: %v", err)
	}
	s, err := ReadSceneFile(path)
	if err != nil {
		t.Fatalf("ReadSceneFile: %v", err)
	}
	if len(s.Nodes) != 2 {
		t.Errorf("nodes = %d, want 2", len(s.Nodes))
	}
}

func TestReadSceneFileInvalidOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	if err := os.WriteFile(path, []byte(`{"nodes":[],"edges":[],"options":{"edge":{"type":"zigzag"}}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadSceneFile(path); err == nil {
		t.Error("invalid edge type accepted")
	}
}
