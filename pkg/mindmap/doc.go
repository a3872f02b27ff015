// Package mindmap provides the graph model and mutation engine behind the
// mind-map editor.
//
// # Overview
//
// A mind map is a set of labeled nodes joined by directed edges and rooted
// at one central node. The package stores nodes and edges in id-indexed
// maps (no pointers between nodes), so arbitrary graphs, cycles included,
// are representable. Tree-shaped behavior such as child counts and
// placement is derived by querying edges rather than from a parent field.
//
// # Invariants
//
// Every [Graph] produced by this package satisfies:
//
//  1. Exactly one node has IsRoot set; the root cannot be deleted.
//  2. Every edge's SourceID and TargetID reference existing nodes.
//  3. Node ids and edge ids are unique within their maps.
//  4. No edge connects a node to itself.
//  5. No two edges share the same (SourceID, TargetID) pair.
//
// [Graph.Validate] checks all of them.
//
// # Mutation
//
// Graph values are immutable from the outside: the read-only queries
// ([Graph.Node], [Graph.ChildrenOf], [Graph.NodeCount], ...) never modify
// them and there are no exported setters. All writes go through an
// [Engine], whose operations take a Graph and return a new one:
//
//	eng := mindmap.NewEngine()
//	g := eng.CreateRoot()
//	g, topic, err := eng.AddChild(g, mindmap.RootID, "Topic A")
//	g, err = eng.Connect(g, topic, other)
//
// An operation either succeeds and returns a graph that satisfies every
// invariant, or fails and returns the zero Graph together with a coded
// error from [github.com/matzehuels/mindmap/pkg/errors]. The caller's
// previous Graph is untouched in both cases, which makes an editing
// session a replayable sequence of values.
//
// # Layout
//
// [Engine.AddChild] places the new node with the
// [github.com/matzehuels/mindmap/pkg/mindmap/layout] engine, using the
// parent's position and its current child count. [Engine.MoveNode] sets a
// position directly for free-form dragging.
//
// # Concurrency
//
// Graph values may be read concurrently. An Engine is safe for concurrent
// use as long as its [IDGenerator] is; both bundled generators are.
package mindmap
