package state

import (
	"io"

	charmlog "github.com/charmbracelet/log"

	"github.com/RainBoltz/v-network-graph/pkg/geom2d"
	"github.com/RainBoltz/v-network-graph/pkg/scene"
	"github.com/RainBoltz/v-network-graph/pkg/style"
)

// Engine derives display geometry from a topology and layout. Mutations mark
// the affected stages dirty; readers flush pending work in dependency order
// (grouping, then edge states, then path states) before returning, so a
// burst of mutations costs one recomputation.
type Engine struct {
	topo   *scene.Topology
	layout *scene.Layout
	cfg    Config
	scale  float64
	paths  []scene.Path
	log    *charmlog.Logger

	markers    *MarkerAllocator
	groups     map[string]*EdgeGroup
	edgeStates map[string]*EdgeState
	pathStates []*PathState

	groupsDirty   bool
	allEdgesDirty bool
	dirtyEdges    map[string]struct{}
	pathsDirty    bool
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default discards all output.
func WithLogger(l *charmlog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithScale sets the view scale factor applied to shifts, margins, and node
// radii. Non-positive values are ignored.
func WithScale(s float64) Option {
	return func(e *Engine) {
		if s > 0 {
			e.scale = s
		}
	}
}

// WithPaths sets the multi-edge paths to derive point sequences for.
func WithPaths(paths []scene.Path) Option {
	return func(e *Engine) { e.paths = paths }
}

// NewEngine creates an engine over an externally owned topology and layout.
// All stages start dirty and are computed on first read.
func NewEngine(topo *scene.Topology, layout *scene.Layout, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		topo:          topo,
		layout:        layout,
		cfg:           cfg,
		scale:         1,
		log:           charmlog.New(io.Discard),
		markers:       NewMarkerAllocator(),
		edgeStates:    make(map[string]*EdgeState),
		dirtyEdges:    make(map[string]struct{}),
		groupsDirty:   true,
		allEdgesDirty: true,
		pathsDirty:    true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FromScene builds an engine from a self-contained scene document: topology
// and layout from its records, config from its options, and its declared
// paths. The node shape is derived per node so record-level overrides reach
// margin and transit computation, not just the renderer.
func FromScene(s *scene.Scene, opts ...Option) (*Engine, error) {
	topo, layout, err := s.Build()
	if err != nil {
		return nil, err
	}
	cfg := ConfigFromOptions(s.Options)
	cfg.NodeShape = style.Derived(func(n *scene.Node) style.Shape { return s.ShapeOf(n.ID) })
	all := make([]Option, 0, len(opts)+2)
	all = append(all, WithPaths(s.Paths), WithScale(s.Options.Scale))
	all = append(all, opts...)
	return NewEngine(topo, layout, cfg, all...), nil
}

// ====== Mutations ======

// AddNode inserts a node at the given position.
func (e *Engine) AddNode(n scene.Node, pos geom2d.Vector) error {
	if err := e.topo.AddNode(n); err != nil {
		return err
	}
	e.layout.SetPosition(n.ID, pos)
	return nil
}

// AddEdge inserts an edge. Its parallel-edge group is re-slotted, so every
// sibling of the pair is marked for recomputation.
func (e *Engine) AddEdge(edge scene.Edge) error {
	if err := e.topo.AddEdge(edge); err != nil {
		return err
	}
	e.markPairDirty(edge.PairKey())
	e.dirtyEdges[edge.ID] = struct{}{}
	e.groupsDirty = true
	e.pathsDirty = true
	return nil
}

// RemoveEdge removes an edge, releasing its marker handles synchronously
// before the state record is dropped. Removing an unknown edge is a no-op.
func (e *Engine) RemoveEdge(id string) {
	edge, ok := e.topo.Edge(id)
	if !ok {
		return
	}
	e.topo.RemoveEdge(id)
	e.disposeEdgeState(id)
	e.markPairDirty(edge.PairKey())
	e.groupsDirty = true
	e.pathsDirty = true
}

// RemoveNode removes a node, its layout position, and all incident edges,
// releasing each edge's marker handles.
func (e *Engine) RemoveNode(id string) {
	removed := e.topo.RemoveNode(id)
	for _, edgeID := range removed {
		e.disposeEdgeState(edgeID)
	}
	e.layout.RemovePosition(id)
	if len(removed) > 0 {
		e.groupsDirty = true
	}
	e.pathsDirty = true
}

// MoveNode updates a node's position, marking incident edges for
// recomputation.
func (e *Engine) MoveNode(id string, pos geom2d.Vector) {
	e.layout.SetPosition(id, pos)
	for _, edge := range e.topo.Edges() {
		if edge.Source == id || edge.Target == id {
			e.dirtyEdges[edge.ID] = struct{}{}
		}
	}
	e.pathsDirty = true
}

// SetScale changes the view scale. Non-positive values are ignored.
func (e *Engine) SetScale(s float64) {
	if s <= 0 || s == e.scale {
		return
	}
	e.scale = s
	e.allEdgesDirty = true
	e.pathsDirty = true
}

// SetPaths replaces the path set.
func (e *Engine) SetPaths(paths []scene.Path) {
	e.paths = paths
	e.pathsDirty = true
}

// SetConfig replaces the style configuration and invalidates everything.
func (e *Engine) SetConfig(cfg Config) {
	e.cfg = cfg
	e.groupsDirty = true
	e.allEdgesDirty = true
	e.pathsDirty = true
}

func (e *Engine) markPairDirty(pair [2]string) {
	for _, edge := range e.topo.Edges() {
		if edge.PairKey() == pair {
			e.dirtyEdges[edge.ID] = struct{}{}
		}
	}
}

func (e *Engine) disposeEdgeState(id string) {
	if es, ok := e.edgeStates[id]; ok {
		es.dispose(e.markers)
		delete(e.edgeStates, id)
	}
	delete(e.dirtyEdges, id)
}

// ====== Readers ======

// Scale returns the current view scale.
func (e *Engine) Scale() float64 { return e.scale }

// EdgeState returns the derived geometry of one edge.
func (e *Engine) EdgeState(id string) (*EdgeState, bool) {
	e.flushEdges()
	es, ok := e.edgeStates[id]
	if !ok || !es.computed {
		return nil, false
	}
	return es, true
}

// EdgeStates returns the derived geometry of all edges, in topology
// insertion order.
func (e *Engine) EdgeStates() []*EdgeState {
	e.flushEdges()
	out := make([]*EdgeState, 0, len(e.edgeStates))
	for _, id := range e.topo.EdgeIDs() {
		if es, ok := e.edgeStates[id]; ok && es.computed {
			out = append(out, es)
		}
	}
	return out
}

// Group returns the parallel-edge group containing the edge.
func (e *Engine) Group(edgeID string) (*EdgeGroup, bool) {
	e.flushGroups()
	g, ok := e.groups[edgeID]
	return g, ok
}

// Groups returns all distinct groups, in first-member insertion order.
func (e *Engine) Groups() []*EdgeGroup {
	e.flushGroups()
	seen := make(map[*EdgeGroup]bool, len(e.groups))
	var out []*EdgeGroup
	for _, id := range e.topo.EdgeIDs() {
		if g, ok := e.groups[id]; ok && !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	return out
}

// PathStates returns the point sequences of all renderable paths. Paths
// referencing unknown edges are excluded.
func (e *Engine) PathStates() []*PathState {
	e.flushPaths()
	return e.pathStates
}

// Markers returns the live marker descriptors for rendering.
func (e *Engine) Markers() []MarkerDescriptor {
	e.flushEdges()
	return e.markers.Descriptors()
}

// ====== Flushing ======

func (e *Engine) flushGroups() {
	if !e.groupsDirty {
		return
	}
	e.groups = computeGroups(e.topo, &e.cfg)
	e.groupsDirty = false
	e.log.Debug("recomputed edge groups", "edges", e.topo.EdgeCount())
}

func (e *Engine) flushEdges() {
	e.flushGroups()
	if e.allEdgesDirty {
		for _, edge := range e.topo.Edges() {
			e.dirtyEdges[edge.ID] = struct{}{}
		}
		e.allEdgesDirty = false
	}
	if len(e.dirtyEdges) == 0 {
		return
	}
	n := 0
	for id := range e.dirtyEdges {
		delete(e.dirtyEdges, id)
		edge, ok := e.topo.Edge(id)
		if !ok {
			continue
		}
		if e.recomputeEdge(edge) {
			n++
		}
	}
	e.log.Debug("recomputed edge states", "count", n)
}

// recomputeEdge re-derives one edge's state. When a dependency is missing
// (an endpoint position not yet laid out) the previously computed state is
// retained untouched.
func (e *Engine) recomputeEdge(edge *scene.Edge) bool {
	srcPos, okS := e.layout.Position(edge.Source)
	tgtPos, okT := e.layout.Position(edge.Target)
	src, okSN := e.topo.Node(edge.Source)
	tgt, okTN := e.topo.Node(edge.Target)
	if !okS || !okT || !okSN || !okTN {
		return false
	}

	g := e.groups[edge.ID]
	shift := 0.0
	summarize := false
	if g != nil {
		summarize = g.Summarized
		if !summarize {
			shift = g.ShiftFor(edge)
		}
	}

	es, ok := e.edgeStates[edge.ID]
	if !ok {
		es = &EdgeState{}
		e.edgeStates[edge.ID] = es
	}
	es.recompute(edgeInputs{
		edge:      edge,
		srcPos:    srcPos,
		tgtPos:    tgtPos,
		srcShape:  e.cfg.NodeShape.Resolve(src),
		tgtShape:  e.cfg.NodeShape.Resolve(tgt),
		shift:     shift,
		scale:     e.scale,
		summarize: summarize,
	}, &e.cfg, e.markers)
	return true
}

func (e *Engine) flushPaths() {
	e.flushEdges()
	if !e.pathsDirty {
		return
	}
	// Fresh slice: slices handed out by PathStates stay valid snapshots.
	e.pathStates = make([]*PathState, 0, len(e.paths))
	for _, p := range e.paths {
		st, ok := e.computePath(p)
		if !ok {
			e.log.Debug("skipping path with unresolved edges", "path", p.ID)
			continue
		}
		e.pathStates = append(e.pathStates, st)
	}
	e.pathsDirty = false
}
