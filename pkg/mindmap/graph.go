package mindmap

import (
	"cmp"
	"slices"

	"github.com/matzehuels/mindmap/pkg/errors"
	"github.com/matzehuels/mindmap/pkg/mindmap/layout"
)

// RootID is the id given to the root node of a freshly created graph.
const RootID = "root"

// DefaultRootLabel is the label of the root node of a new mind map.
const DefaultRootLabel = "Central idea"

// Position is a node's location on the canvas. It only affects rendering.
type Position = layout.Point

// Node is a labeled vertex of the mind map.
type Node struct {
	ID       string
	Label    string
	Position Position
	IsRoot   bool
}

// Edge is a directed connection from SourceID to TargetID. Edges created by
// adding a child and edges created by connecting two nodes are the same kind.
type Edge struct {
	ID       string
	SourceID string
	TargetID string
}

// Directed reports whether the edge has a direction. Mind-map edges always do.
func (e Edge) Directed() bool { return true }

// Touches reports whether the edge starts or ends at nodeID.
func (e Edge) Touches(nodeID string) bool {
	return e.SourceID == nodeID || e.TargetID == nodeID
}

// Graph is an immutable mind-map graph. The zero value has no root and does
// not satisfy the invariants; use [New], [Engine.CreateRoot] or [Build].
type Graph struct {
	nodes map[string]Node
	edges map[string]Edge
}

// New returns a graph holding a single root node at the origin.
func New() Graph {
	return newRoot(DefaultRootLabel)
}

func newRoot(label string) Graph {
	return Graph{
		nodes: map[string]Node{
			RootID: {ID: RootID, Label: label, IsRoot: true},
		},
		edges: map[string]Edge{},
	}
}

// Build assembles a graph from nodes and edges and checks every invariant.
// It returns INVALID_OPERATION for duplicate ids or any invariant violation;
// it never repairs. Use the codec package to repair untrusted input.
func Build(nodes []Node, edges []Edge) (Graph, error) {
	g := Graph{
		nodes: make(map[string]Node, len(nodes)),
		edges: make(map[string]Edge, len(edges)),
	}
	for _, n := range nodes {
		if _, dup := g.nodes[n.ID]; dup {
			return Graph{}, errors.InvalidOperation("duplicate node id %q", n.ID)
		}
		g.nodes[n.ID] = n
	}
	for _, e := range edges {
		if _, dup := g.edges[e.ID]; dup {
			return Graph{}, errors.InvalidOperation("duplicate edge id %q", e.ID)
		}
		g.edges[e.ID] = e
	}
	if err := g.Validate(); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// Node returns the node with the given id and true, or the zero Node and
// false if it does not exist.
func (g Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edge returns the edge with the given id and true, or the zero Edge and
// false if it does not exist.
func (g Graph) Edge(id string) (Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// Root returns the root node. For a graph without exactly one root the
// result is the zero Node.
func (g Graph) Root() Node {
	for _, n := range g.nodes {
		if n.IsRoot {
			return n
		}
	}
	return Node{}
}

// ChildrenOf returns the targets of every edge whose source is nodeID,
// sorted by id. The bool is false when nodeID does not exist.
func (g Graph) ChildrenOf(nodeID string) ([]Node, bool) {
	if _, ok := g.nodes[nodeID]; !ok {
		return nil, false
	}
	var children []Node
	for _, e := range g.edges {
		if e.SourceID == nodeID {
			if child, ok := g.nodes[e.TargetID]; ok {
				children = append(children, child)
			}
		}
	}
	slices.SortFunc(children, func(a, b Node) int { return cmp.Compare(a.ID, b.ID) })
	return children, true
}

// Nodes returns all nodes sorted by id.
func (g Graph) Nodes() []Node {
	nodes := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, func(a, b Node) int { return cmp.Compare(a.ID, b.ID) })
	return nodes
}

// Edges returns all edges sorted by id.
func (g Graph) Edges() []Edge {
	edges := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		edges = append(edges, e)
	}
	slices.SortFunc(edges, func(a, b Edge) int { return cmp.Compare(a.ID, b.ID) })
	return edges
}

// NodeCount returns the number of nodes.
func (g Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g Graph) EdgeCount() int { return len(g.edges) }

// HasEdge reports whether an edge sourceID -> targetID exists.
func (g Graph) HasEdge(sourceID, targetID string) bool {
	for _, e := range g.edges {
		if e.SourceID == sourceID && e.TargetID == targetID {
			return true
		}
	}
	return false
}

// OutDegree returns the number of edges leaving nodeID.
// Returns 0 if the node doesn't exist.
func (g Graph) OutDegree(nodeID string) int {
	n := 0
	for _, e := range g.edges {
		if e.SourceID == nodeID {
			n++
		}
	}
	return n
}

// InDegree returns the number of edges entering nodeID.
// Returns 0 if the node doesn't exist.
func (g Graph) InDegree(nodeID string) int {
	n := 0
	for _, e := range g.edges {
		if e.TargetID == nodeID {
			n++
		}
	}
	return n
}

// Equal reports whether g and other hold exactly the same nodes and edges.
func (g Graph) Equal(other Graph) bool {
	if len(g.nodes) != len(other.nodes) || len(g.edges) != len(other.edges) {
		return false
	}
	for id, n := range g.nodes {
		if m, ok := other.nodes[id]; !ok || m != n {
			return false
		}
	}
	for id, e := range g.edges {
		if f, ok := other.edges[id]; !ok || f != e {
			return false
		}
	}
	return true
}

// Validate checks every graph invariant and returns nil if the graph is
// valid, or an INVALID_OPERATION error describing the first violation.
func (g Graph) Validate() error {
	roots := 0
	for id, n := range g.nodes {
		if id == "" || n.ID != id {
			return errors.InvalidOperation("node stored under %q has id %q", id, n.ID)
		}
		if !n.Position.IsFinite() {
			return errors.InvalidOperation("node %q has a non-finite position", id)
		}
		if n.IsRoot {
			roots++
		}
	}
	if roots != 1 {
		return errors.InvalidOperation("graph must have exactly one root, found %d", roots)
	}

	type pair struct{ src, dst string }
	seen := make(map[pair]string, len(g.edges))
	for id, e := range g.edges {
		if id == "" || e.ID != id {
			return errors.InvalidOperation("edge stored under %q has id %q", id, e.ID)
		}
		if _, ok := g.nodes[e.SourceID]; !ok {
			return errors.InvalidOperation("edge %q references unknown source %q", id, e.SourceID)
		}
		if _, ok := g.nodes[e.TargetID]; !ok {
			return errors.InvalidOperation("edge %q references unknown target %q", id, e.TargetID)
		}
		if e.SourceID == e.TargetID {
			return errors.InvalidOperation("edge %q is a self-loop on %q", id, e.SourceID)
		}
		p := pair{e.SourceID, e.TargetID}
		if other, dup := seen[p]; dup {
			return errors.InvalidOperation("edges %q and %q both connect %q to %q", other, id, e.SourceID, e.TargetID)
		}
		seen[p] = id
	}
	return nil
}

// clone returns a deep copy whose maps can be written without affecting g.
func (g Graph) clone() Graph {
	out := Graph{
		nodes: make(map[string]Node, len(g.nodes)+1),
		edges: make(map[string]Edge, len(g.edges)+1),
	}
	for id, n := range g.nodes {
		out.nodes[id] = n
	}
	for id, e := range g.edges {
		out.edges[id] = e
	}
	return out
}
