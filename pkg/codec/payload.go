package codec

import (
	"slices"

	"github.com/matzehuels/mindmap/pkg/mindmap"
	"github.com/matzehuels/mindmap/pkg/mindmap/layout"
)

// =============================================================================
// Payload - Persisted Graph Shape
// =============================================================================

// Payload is the persisted form of a mind-map graph. It is the "graph"
// field of a stored document and the body of the JSON and YAML formats.
//
// Fields use plain values only so that every document store can hold them
// without custom encoders.
type Payload struct {
	Nodes []Node `json:"nodes" bson:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" bson:"edges" yaml:"edges"`

	// decodeIssues lists entries patched or dropped while decoding.
	decodeIssues []Issue
}

// Node is the persisted form of [mindmap.Node].
type Node struct {
	ID       string       `json:"id" bson:"id" yaml:"id"`
	Label    string       `json:"label" bson:"label" yaml:"label"`
	Position layout.Point `json:"position" bson:"position" yaml:"position"`
	IsRoot   bool         `json:"isRoot" bson:"isRoot" yaml:"isRoot"`
}

// Edge is the persisted form of [mindmap.Edge].
type Edge struct {
	ID       string `json:"id" bson:"id" yaml:"id"`
	SourceID string `json:"sourceId" bson:"sourceId" yaml:"sourceId"`
	TargetID string `json:"targetId" bson:"targetId" yaml:"targetId"`
}

// =============================================================================
// Graph → Payload
// =============================================================================

// Serialize converts g to its persisted form. Nodes and edges are sorted by
// id, so equal graphs always serialize identically. The payload shares no
// memory with g.
func Serialize(g mindmap.Graph) Payload {
	nodes := g.Nodes()
	edges := g.Edges()
	out := Payload{
		Nodes: make([]Node, len(nodes)),
		Edges: make([]Edge, len(edges)),
	}
	for i, n := range nodes {
		out.Nodes[i] = NodeOf(n)
	}
	for i, e := range edges {
		out.Edges[i] = EdgeOf(e)
	}
	return out
}

// NodeOf converts a single graph node to its persisted form.
func NodeOf(n mindmap.Node) Node {
	return Node{ID: n.ID, Label: n.Label, Position: n.Position, IsRoot: n.IsRoot}
}

// EdgeOf converts a single graph edge to its persisted form.
func EdgeOf(e mindmap.Edge) Edge {
	return Edge{ID: e.ID, SourceID: e.SourceID, TargetID: e.TargetID}
}

// Deserialize converts a payload to a graph, repairing anything that
// violates the graph invariants. It never fails; use [Repair] to find out
// what was changed.
func Deserialize(p Payload) mindmap.Graph {
	g, _ := Repair(p)
	return g
}

// Clone returns a deep copy of p.
func (p Payload) Clone() Payload {
	out := Payload{
		Nodes: make([]Node, len(p.Nodes)),
		Edges: make([]Edge, len(p.Edges)),
	}
	copy(out.Nodes, p.Nodes)
	copy(out.Edges, p.Edges)
	out.decodeIssues = slices.Clone(p.decodeIssues)
	return out
}

// RootLabel returns the label of the first node flagged as root, or "" if
// there is none.
func (p Payload) RootLabel() string {
	for _, n := range p.Nodes {
		if n.IsRoot {
			return n.Label
		}
	}
	return ""
}
