// Package scene models the externally owned inputs of the geometry engine:
// node/edge topology with arbitrary property bags, ordered multi-edge paths,
// and layout positions. The engine derives all rendering geometry from a
// Topology and never mutates it.
package scene

import (
	"errors"
	"slices"

	"github.com/RainBoltz/v-network-graph/pkg/geom2d"
)

var (
	// ErrInvalidNodeID is returned by [Topology.AddNode] when the node ID
	// is empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Topology.AddNode] when a node with
	// the same ID already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrInvalidEdgeID is returned by [Topology.AddEdge] when the edge ID
	// is empty.
	ErrInvalidEdgeID = errors.New("edge ID must not be empty")

	// ErrDuplicateEdgeID is returned by [Topology.AddEdge] when an edge
	// with the same ID already exists.
	ErrDuplicateEdgeID = errors.New("duplicate edge ID")

	// ErrUnknownSourceNode is returned by [Topology.AddEdge] when the
	// source node does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Topology.AddEdge] when the
	// target node does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Metadata stores arbitrary key-value pairs attached to nodes or edges.
type Metadata map[string]any

// Node is a graph vertex. Its position is owned by the layout, not the node.
type Node struct {
	ID   string
	Meta Metadata
}

// Edge connects two nodes. Edges are undirected in storage; each geometry
// computation resolves an effective forward/reverse direction.
type Edge struct {
	ID     string
	Source string
	Target string
	Meta   Metadata
}

// PairKey returns the canonical unordered endpoint pair, low ID first.
// Edges with equal PairKey form one parallel-edge group.
func (e *Edge) PairKey() [2]string {
	if e.Source <= e.Target {
		return [2]string{e.Source, e.Target}
	}
	return [2]string{e.Target, e.Source}
}

// Path is an ordered chain of edge identifiers. A path referencing an
// unknown edge is rejected as a whole, never partially rendered.
type Path struct {
	ID    string   `json:"id,omitempty" bson:"id,omitempty" toml:"id,omitzero"`
	Edges []string `json:"edges" bson:"edges" toml:"edges"`
}

// Topology is the identifier-keyed node/edge store. Edge iteration order is
// insertion order, which keeps group offsets stable. The zero value is not
// usable; use NewTopology. Topology is not safe for concurrent use.
type Topology struct {
	nodes     map[string]*Node
	edges     map[string]*Edge
	edgeOrder []string
}

// NewTopology creates an empty topology.
func NewTopology() *Topology {
	return &Topology{
		nodes: make(map[string]*Node),
		edges: make(map[string]*Edge),
	}
}

// AddNode adds a node. The node's Meta is initialized to an empty map if nil.
func (t *Topology) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := t.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	t.nodes[n.ID] = &n
	return nil
}

// AddEdge adds an edge between two existing nodes.
func (t *Topology) AddEdge(e Edge) error {
	if e.ID == "" {
		return ErrInvalidEdgeID
	}
	if _, exists := t.edges[e.ID]; exists {
		return ErrDuplicateEdgeID
	}
	if _, ok := t.nodes[e.Source]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := t.nodes[e.Target]; !ok {
		return ErrUnknownTargetNode
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	t.edges[e.ID] = &e
	t.edgeOrder = append(t.edgeOrder, e.ID)
	return nil
}

// RemoveEdge removes the edge if it exists and reports whether it did.
func (t *Topology) RemoveEdge(id string) bool {
	if _, ok := t.edges[id]; !ok {
		return false
	}
	delete(t.edges, id)
	t.edgeOrder = slices.DeleteFunc(t.edgeOrder, func(s string) bool { return s == id })
	return true
}

// RemoveNode removes the node and all incident edges, returning the IDs of
// the removed edges in insertion order.
func (t *Topology) RemoveNode(id string) []string {
	if _, ok := t.nodes[id]; !ok {
		return nil
	}
	delete(t.nodes, id)

	var removed []string
	for _, eid := range t.edgeOrder {
		e := t.edges[eid]
		if e.Source == id || e.Target == id {
			removed = append(removed, eid)
			delete(t.edges, eid)
		}
	}
	t.edgeOrder = slices.DeleteFunc(t.edgeOrder, func(s string) bool {
		_, ok := t.edges[s]
		return !ok
	})
	return removed
}

// Node returns the node with the given ID, or nil and false if not found.
func (t *Topology) Node(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Edge returns the edge with the given ID, or nil and false if not found.
func (t *Topology) Edge(id string) (*Edge, bool) {
	e, ok := t.edges[id]
	return e, ok
}

// EdgeIDs returns all edge IDs in insertion order.
func (t *Topology) EdgeIDs() []string { return slices.Clone(t.edgeOrder) }

// Nodes returns all nodes. The order is not guaranteed.
func (t *Topology) Nodes() []*Node {
	nodes := make([]*Node, 0, len(t.nodes))
	for _, n := range t.nodes {
		nodes = append(nodes, n)
	}
	return nodes
}

// Edges returns all edges in insertion order.
func (t *Topology) Edges() []*Edge {
	edges := make([]*Edge, 0, len(t.edgeOrder))
	for _, id := range t.edgeOrder {
		edges = append(edges, t.edges[id])
	}
	return edges
}

// NodeCount returns the number of nodes.
func (t *Topology) NodeCount() int { return len(t.nodes) }

// EdgeCount returns the number of edges.
func (t *Topology) EdgeCount() int { return len(t.edges) }

// Layout holds the externally supplied node positions, mutable by drag and
// force-layout collaborators.
type Layout struct {
	positions map[string]geom2d.Vector
}

// NewLayout creates an empty layout.
func NewLayout() *Layout {
	return &Layout{positions: make(map[string]geom2d.Vector)}
}

// Position returns the position of a node, or false when none is assigned.
func (l *Layout) Position(nodeID string) (geom2d.Vector, bool) {
	p, ok := l.positions[nodeID]
	return p, ok
}

// SetPosition assigns a node position.
func (l *Layout) SetPosition(nodeID string, p geom2d.Vector) {
	l.positions[nodeID] = p
}

// RemovePosition deletes a node's position.
func (l *Layout) RemovePosition(nodeID string) {
	delete(l.positions, nodeID)
}
