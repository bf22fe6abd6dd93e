package state

import (
	"math"
	"testing"

	"github.com/RainBoltz/v-network-graph/pkg/geom2d"
	"github.com/RainBoltz/v-network-graph/pkg/scene"
	"github.com/RainBoltz/v-network-graph/pkg/style"
)

const tol = 1e-9

func testConfig() Config {
	return Config{
		NodeShape: style.Literal[*scene.Node](style.Shape{Type: style.ShapeCircle, Radius: 16}),
		Edge: EdgeConfig{
			Type:   style.EdgeStraight,
			Gap:    10,
			Stroke: style.Literal[*scene.Edge](style.Stroke{Width: 2}),
		},
		Path: PathConfig{
			EndType: style.EndCenterOfNode,
			Stroke:  style.Stroke{Width: 6},
		},
	}
}

// buildEngine assembles a topology, layout, and engine from literal nodes
// and edges, failing the test on any invalid input.
func buildEngine(t *testing.T, cfg Config, nodes map[string]geom2d.Vector, edges []scene.Edge) *Engine {
	t.Helper()
	topo := scene.NewTopology()
	layout := scene.NewLayout()
	for id, pos := range nodes {
		if err := topo.AddNode(scene.Node{ID: id}); err != nil {
			t.Fatalf("AddNode(%q): %v", id, err)
		}
		layout.SetPosition(id, pos)
	}
	for _, e := range edges {
		if err := topo.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%q): %v", e.ID, err)
		}
	}
	return NewEngine(topo, layout, cfg)
}

func approxVec(a, b geom2d.Vector) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

// ====== Grouping ======

func TestGroupOffsets(t *testing.T) {
	e := buildEngine(t, testConfig(),
		map[string]geom2d.Vector{"a": {X: 0, Y: 0}, "b": {X: 100, Y: 0}},
		[]scene.Edge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "b", Target: "a"},
			{ID: "e3", Source: "a", Target: "b"},
		})

	g, ok := e.Group("e1")
	if !ok {
		t.Fatal("Group(e1) not found")
	}
	if g.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", g.Size())
	}
	if g.Width != 20 {
		t.Errorf("Width = %v, want 20", g.Width)
	}

	wantOffsets := map[string]float64{"e1": -10, "e2": 0, "e3": 10}
	sum := 0.0
	for id, want := range wantOffsets {
		got := g.PointInGroup(id)
		if math.Abs(got-want) > tol {
			t.Errorf("PointInGroup(%s) = %v, want %v", id, got, want)
		}
		sum += got
	}
	if math.Abs(sum) > tol {
		t.Errorf("offsets sum = %v, want 0", sum)
	}

	// e2 runs against the canonical pair direction, so its own-line shift
	// is the negated offset.
	e2, _ := e.topo.Edge("e2")
	if got := g.ShiftFor(e2); math.Abs(got-0) > tol {
		t.Errorf("ShiftFor(e2) = %v, want 0", got)
	}
	e3, _ := e.topo.Edge("e3")
	if got := g.ShiftFor(e3); math.Abs(got-10) > tol {
		t.Errorf("ShiftFor(e3) = %v, want 10", got)
	}
}

func TestGroupSingleEdge(t *testing.T) {
	e := buildEngine(t, testConfig(),
		map[string]geom2d.Vector{"a": {X: 0, Y: 0}, "b": {X: 100, Y: 0}},
		[]scene.Edge{{ID: "e1", Source: "a", Target: "b"}})

	g, ok := e.Group("e1")
	if !ok {
		t.Fatal("Group(e1) not found")
	}
	if g.Size() != 1 || g.Width != 0 || g.PointInGroup("e1") != 0 {
		t.Errorf("single-edge group = size %d width %v offset %v, want 1/0/0",
			g.Size(), g.Width, g.PointInGroup("e1"))
	}
}

func TestGroupSummarize(t *testing.T) {
	cfg := testConfig()
	cfg.Edge.Stroke = style.Derived(func(e *scene.Edge) style.Stroke {
		switch e.ID {
		case "e2":
			return style.Stroke{Width: 5, Color: "red"}
		case "e3":
			return style.Stroke{Width: 3, Color: "blue"}
		}
		return style.Stroke{Width: 2}
	})
	cfg.Edge.Summarize = SummarizeOver(2)

	e := buildEngine(t, cfg,
		map[string]geom2d.Vector{"a": {X: 0, Y: 0}, "b": {X: 100, Y: 0}},
		[]scene.Edge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "a", Target: "b"},
			{ID: "e3", Source: "a", Target: "b"},
		})

	g, _ := e.Group("e1")
	if !g.Summarized {
		t.Fatal("group of 3 with SummarizeOver(2) not summarized")
	}
	if g.Stroke.Width != 5 || g.Stroke.Color != "red" {
		t.Errorf("aggregate stroke = %+v, want width 5 color red", g.Stroke)
	}

	// Summarized members render on the group line: zero shift, no markers.
	es, ok := e.EdgeState("e2")
	if !ok {
		t.Fatal("EdgeState(e2) not computed")
	}
	if !approxVec(es.Position.Source, geom2d.Vector{X: 0, Y: 0}) {
		t.Errorf("summarized member shifted: %+v", es.Position)
	}
}

// ====== Edge state ======

func TestStraightPositionEqualsOrigin(t *testing.T) {
	e := buildEngine(t, testConfig(),
		map[string]geom2d.Vector{"a": {X: 0, Y: 0}, "b": {X: 100, Y: 0}},
		[]scene.Edge{{ID: "e1", Source: "a", Target: "b"}})

	es, ok := e.EdgeState("e1")
	if !ok {
		t.Fatal("EdgeState(e1) not computed")
	}
	if es.Position != es.Origin {
		t.Errorf("Position = %+v, want Origin %+v", es.Position, es.Origin)
	}
	if es.Curve != nil {
		t.Error("straight edge has a curve descriptor")
	}
}

func TestCurveZeroShiftTakesStraightShortcut(t *testing.T) {
	cfg := testConfig()
	cfg.Edge.Type = style.EdgeCurve

	e := buildEngine(t, cfg,
		map[string]geom2d.Vector{"a": {X: 0, Y: 0}, "b": {X: 100, Y: 0}},
		[]scene.Edge{{ID: "e1", Source: "a", Target: "b"}})

	es, _ := e.EdgeState("e1")
	if es.Curve != nil {
		t.Error("zero-shift curve edge has a curve descriptor")
	}
	if es.Position != es.Origin {
		t.Errorf("Position = %+v, want Origin %+v", es.Position, es.Origin)
	}
}

func TestCurveParallelEdges(t *testing.T) {
	cfg := testConfig()
	cfg.Edge.Type = style.EdgeCurve

	e := buildEngine(t, cfg,
		map[string]geom2d.Vector{"a": {X: 0, Y: 0}, "b": {X: 100, Y: 0}},
		[]scene.Edge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "a", Target: "b"},
		})

	s1, ok1 := e.EdgeState("e1")
	s2, ok2 := e.EdgeState("e2")
	if !ok1 || !ok2 {
		t.Fatal("edge states not computed")
	}
	if s1.Curve == nil || s2.Curve == nil {
		t.Fatal("shifted curve edges missing curve descriptors")
	}

	// Without margins the arc endpoints stay at the node centers.
	if !approxVec(s1.Position.Source, s1.Origin.Source) || !approxVec(s1.Position.Target, s1.Origin.Target) {
		t.Errorf("Position = %+v, want Origin endpoints", s1.Position)
	}

	// The arc passes through the shifted midpoint (gap 10, shift -5).
	if !approxVec(s1.Curve.Center, geom2d.Vector{X: 50, Y: -5}) {
		t.Errorf("Curve.Center = %+v, want {50 -5}", s1.Curve.Center)
	}

	// The circumcircle holds all three defining points.
	c := s1.Curve.Circle
	for _, p := range []geom2d.Vector{s1.Origin.Source, s1.Origin.Target, s1.Curve.Center} {
		if d := geom2d.Distance(c.Center, p); math.Abs(d-c.Radius) > tol {
			t.Errorf("point %v off circumcircle: distance %v, radius %v", p, d, c.Radius)
		}
	}

	// Opposite lanes bow to opposite sides.
	if math.Signbit(s1.Curve.Theta) == math.Signbit(s2.Curve.Theta) {
		t.Errorf("Theta signs equal: %v, %v", s1.Curve.Theta, s2.Curve.Theta)
	}
	if len(s1.Curve.Control) != 2 {
		t.Errorf("Control length = %d, want 2", len(s1.Curve.Control))
	}
}

func TestMarginShortensMonotonically(t *testing.T) {
	margins := []float64{0, 5, 10, 20}
	var prev float64 = math.Inf(1)
	for _, m := range margins {
		cfg := testConfig()
		margin := m
		cfg.Edge.Margin = &margin

		e := buildEngine(t, cfg,
			map[string]geom2d.Vector{"a": {X: 0, Y: 0}, "b": {X: 100, Y: 0}},
			[]scene.Edge{{ID: "e1", Source: "a", Target: "b"}})
		es, _ := e.EdgeState("e1")

		length := es.Position.Length()
		want := 100 - 2*(16+m)
		if math.Abs(length-want) > tol {
			t.Errorf("margin %v: length = %v, want %v", m, length, want)
		}
		if length >= prev {
			t.Errorf("margin %v: length %v did not shrink from %v", m, length, prev)
		}
		prev = length
	}
}

func TestMarginOverrunCollapsesToStub(t *testing.T) {
	cfg := testConfig()
	margin := 40.0 // 2*(16+40) > 100
	cfg.Edge.Margin = &margin

	e := buildEngine(t, cfg,
		map[string]geom2d.Vector{"a": {X: 0, Y: 0}, "b": {X: 100, Y: 0}},
		[]scene.Edge{{ID: "e1", Source: "a", Target: "b"}})
	es, _ := e.EdgeState("e1")

	if got := es.Position.Length(); math.Abs(got-1) > tol {
		t.Errorf("stub length = %v, want 1", got)
	}
	if !approxVec(es.Position.Center(), geom2d.Vector{X: 50, Y: 0}) {
		t.Errorf("stub center = %v, want {50 0}", es.Position.Center())
	}
	// The stub never inverts.
	if es.Position.Vector().Dot(es.Origin.Vector()) <= 0 {
		t.Error("stub direction inverted")
	}
}

func TestMarkerActivatesBoundaryClipping(t *testing.T) {
	cfg := testConfig()
	cfg.Edge.TargetMarker = style.Literal[*scene.Edge](&style.Marker{
		Shape: "arrow", Width: 4, Margin: 1, Units: style.UnitsStrokeWidth,
	})

	e := buildEngine(t, cfg,
		map[string]geom2d.Vector{"a": {X: 0, Y: 0}, "b": {X: 100, Y: 0}},
		[]scene.Edge{{ID: "e1", Source: "a", Target: "b"}})
	es, _ := e.EdgeState("e1")

	// Source: no marker, no configured margin, stays at the center.
	if !approxVec(es.Position.Source, geom2d.Vector{X: 0, Y: 0}) {
		t.Errorf("Source = %v, want {0 0}", es.Position.Source)
	}
	// Target: boundary (16) + marker (4+1)*strokeWidth(2) = 26.
	if !approxVec(es.Position.Target, geom2d.Vector{X: 74, Y: 0}) {
		t.Errorf("Target = %v, want {74 0}", es.Position.Target)
	}
	if es.TargetMarker == "" || es.SourceMarker != "" {
		t.Errorf("marker handles = src %q tgt %q, want only target set", es.SourceMarker, es.TargetMarker)
	}
}

// ====== Markers ======

func TestMarkerDescriptorSharing(t *testing.T) {
	cfg := testConfig()
	cfg.Edge.TargetMarker = style.Literal[*scene.Edge](&style.Marker{Shape: "arrow", Width: 4})

	e := buildEngine(t, cfg,
		map[string]geom2d.Vector{"a": {X: 0, Y: 0}, "b": {X: 100, Y: 0}},
		[]scene.Edge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "a", Target: "b"},
		})

	if got := len(e.Markers()); got != 1 {
		t.Fatalf("descriptors = %d, want 1 (same style shared)", got)
	}

	e.RemoveEdge("e1")
	if got := len(e.Markers()); got != 1 {
		t.Errorf("descriptors after first removal = %d, want 1", got)
	}

	e.RemoveEdge("e2")
	if got := len(e.Markers()); got != 0 {
		t.Errorf("descriptors after last removal = %d, want 0", got)
	}

	// Removing again is a no-op, not a double release.
	e.RemoveEdge("e2")
	if got := len(e.Markers()); got != 0 {
		t.Errorf("descriptors after repeat removal = %d, want 0", got)
	}
}

func TestRemoveNodeDisposesIncidentEdges(t *testing.T) {
	cfg := testConfig()
	cfg.Edge.TargetMarker = style.Literal[*scene.Edge](&style.Marker{Shape: "arrow", Width: 4})

	e := buildEngine(t, cfg,
		map[string]geom2d.Vector{"a": {X: 0, Y: 0}, "b": {X: 100, Y: 0}, "c": {X: 50, Y: 80}},
		[]scene.Edge{
			{ID: "ab", Source: "a", Target: "b"},
			{ID: "bc", Source: "b", Target: "c"},
		})

	if got := len(e.Markers()); got != 1 {
		t.Fatalf("descriptors = %d, want 1", got)
	}

	e.RemoveNode("b")
	if got := len(e.Markers()); got != 0 {
		t.Errorf("descriptors after node removal = %d, want 0", got)
	}
	if _, ok := e.EdgeState("ab"); ok {
		t.Error("EdgeState(ab) survives node removal")
	}
}

// ====== Reactive behavior ======

func TestMoveNodeRecomputes(t *testing.T) {
	e := buildEngine(t, testConfig(),
		map[string]geom2d.Vector{"a": {X: 0, Y: 0}, "b": {X: 100, Y: 0}},
		[]scene.Edge{{ID: "e1", Source: "a", Target: "b"}})

	es, _ := e.EdgeState("e1")
	if !approxVec(es.Position.Target, geom2d.Vector{X: 100, Y: 0}) {
		t.Fatalf("initial Target = %v", es.Position.Target)
	}

	e.MoveNode("b", geom2d.Vector{X: 200, Y: 50})
	es, _ = e.EdgeState("e1")
	if !approxVec(es.Position.Target, geom2d.Vector{X: 200, Y: 50}) {
		t.Errorf("Target after move = %v, want {200 50}", es.Position.Target)
	}
}

func TestMissingPositionRetainsCachedState(t *testing.T) {
	topo := scene.NewTopology()
	layout := scene.NewLayout()
	topo.AddNode(scene.Node{ID: "a"})
	topo.AddNode(scene.Node{ID: "b"})
	layout.SetPosition("a", geom2d.Vector{X: 0, Y: 0})
	layout.SetPosition("b", geom2d.Vector{X: 100, Y: 0})
	topo.AddEdge(scene.Edge{ID: "e1", Source: "a", Target: "b"})
	e := NewEngine(topo, layout, testConfig())

	es, ok := e.EdgeState("e1")
	if !ok {
		t.Fatal("EdgeState(e1) not computed")
	}
	want := es.Position

	// The layout is externally owned; a collaborator may drop a position
	// while the edge still exists. The stale state must be retained.
	layout.RemovePosition("b")
	e.MoveNode("a", geom2d.Vector{X: 10, Y: 10})

	es, ok = e.EdgeState("e1")
	if !ok {
		t.Fatal("cached state dropped on missing position")
	}
	if es.Position != want {
		t.Errorf("Position = %+v, want retained %+v", es.Position, want)
	}
}

func TestSetScaleScalesMargins(t *testing.T) {
	cfg := testConfig()
	margin := 0.0
	cfg.Edge.Margin = &margin

	e := buildEngine(t, cfg,
		map[string]geom2d.Vector{"a": {X: 0, Y: 0}, "b": {X: 100, Y: 0}},
		[]scene.Edge{{ID: "e1", Source: "a", Target: "b"}})

	es, _ := e.EdgeState("e1")
	if got := es.Position.Length(); math.Abs(got-68) > tol {
		t.Fatalf("length at scale 1 = %v, want 68", got)
	}

	e.SetScale(2)
	es, _ = e.EdgeState("e1")
	if got := es.Position.Length(); math.Abs(got-36) > tol {
		t.Errorf("length at scale 2 = %v, want 36", got)
	}
}

func TestAddEdgeReslotsSiblings(t *testing.T) {
	e := buildEngine(t, testConfig(),
		map[string]geom2d.Vector{"a": {X: 0, Y: 0}, "b": {X: 100, Y: 0}},
		[]scene.Edge{{ID: "e1", Source: "a", Target: "b"}})

	es, _ := e.EdgeState("e1")
	if !approxVec(es.Position.Source, geom2d.Vector{X: 0, Y: 0}) {
		t.Fatalf("solo edge shifted: %+v", es.Position)
	}

	if err := e.AddEdge(scene.Edge{ID: "e2", Source: "a", Target: "b"}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	// Two members now straddle the center line: offsets -5 and +5.
	es, _ = e.EdgeState("e1")
	if !approxVec(es.Position.Source, geom2d.Vector{X: 0, Y: -5}) {
		t.Errorf("e1 Source after reslot = %v, want {0 -5}", es.Position.Source)
	}
	es2, _ := e.EdgeState("e2")
	if !approxVec(es2.Position.Source, geom2d.Vector{X: 0, Y: 5}) {
		t.Errorf("e2 Source = %v, want {0 5}", es2.Position.Source)
	}
}

func TestFromSceneResolvesNodeShapeOverride(t *testing.T) {
	margin := 0.0
	sc := &scene.Scene{
		Nodes: []scene.NodeRecord{
			{ID: "a", X: 0, Y: 0},
			{ID: "b", X: 100, Y: 0, Shape: &style.Shape{Type: style.ShapeRect, Width: 80, Height: 40}},
		},
		Edges: []scene.EdgeRecord{{ID: "e1", Source: "a", Target: "b"}},
	}
	sc.Options.Edge.Margin = &margin
	if err := sc.Options.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}

	e, err := FromScene(sc)
	if err != nil {
		t.Fatalf("FromScene: %v", err)
	}
	es, ok := e.EdgeState("e1")
	if !ok {
		t.Fatal("EdgeState(e1) not computed")
	}
	// Default circle clips the source at its radius, the rect override
	// clips the target at its half width.
	if !approxVec(es.Position.Source, geom2d.Vector{X: 16, Y: 0}) {
		t.Errorf("Source = %v, want {16 0} (default circle radius)", es.Position.Source)
	}
	if !approxVec(es.Position.Target, geom2d.Vector{X: 60, Y: 0}) {
		t.Errorf("Target = %v, want {60 0} (rect half width)", es.Position.Target)
	}
}

func TestPathStatesSnapshotSurvivesRecompute(t *testing.T) {
	e := buildEngine(t, testConfig(),
		map[string]geom2d.Vector{"a": {X: 0, Y: 0}, "b": {X: 100, Y: 0}},
		[]scene.Edge{{ID: "e1", Source: "a", Target: "b"}})
	e.SetPaths([]scene.Path{{ID: "p1", Edges: []string{"e1"}}})

	first := e.PathStates()
	if len(first) != 1 {
		t.Fatalf("PathStates() = %d, want 1", len(first))
	}
	old := first[0]
	oldEnd := old.Segments[len(old.Segments)-1].Point

	e.MoveNode("b", geom2d.Vector{X: 200, Y: 0})

	second := e.PathStates()
	if second[0] == old {
		t.Fatal("recomputation reused the path state of an earlier snapshot")
	}
	if first[0] != old {
		t.Error("earlier snapshot slice was overwritten by recomputation")
	}
	if !approxVec(oldEnd, geom2d.Vector{X: 100, Y: 0}) {
		t.Errorf("snapshot end = %v, want the pre-move {100 0}", oldEnd)
	}
	gotEnd := second[0].Segments[len(second[0].Segments)-1].Point
	if !approxVec(gotEnd, geom2d.Vector{X: 200, Y: 0}) {
		t.Errorf("recomputed end = %v, want {200 0}", gotEnd)
	}
}
