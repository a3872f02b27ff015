package mindmap

import (
	"strings"

	"github.com/matzehuels/mindmap/pkg/errors"
	"github.com/matzehuels/mindmap/pkg/mindmap/layout"
)

// DefaultChildLabel is used when a child is added with a blank label.
const DefaultChildLabel = "New idea"

// idAttempts is the number of extra candidates the engine asks for beyond
// the ids already in the graph before giving up on allocation.
const idAttempts = 16

// Engine is the only writer of [Graph] values. Every operation is pure: it
// reads the given graph, never modifies it, and returns a new graph that
// satisfies all invariants, or the zero Graph and an error.
type Engine struct {
	layout     layout.Config
	ids        IDGenerator
	rootLabel  string
	childLabel string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLayout sets the spacing used to place new children.
func WithLayout(cfg layout.Config) Option {
	return func(e *Engine) { e.layout = cfg }
}

// WithIDGenerator sets the id source. A nil generator is ignored.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		if g != nil {
			e.ids = g
		}
	}
}

// WithRootLabel sets the label of the root created by CreateRoot.
func WithRootLabel(label string) Option {
	return func(e *Engine) {
		if l := strings.TrimSpace(label); l != "" {
			e.rootLabel = l
		}
	}
}

// WithDefaultLabel sets the label given to children added with a blank label.
func WithDefaultLabel(label string) Option {
	return func(e *Engine) {
		if l := strings.TrimSpace(label); l != "" {
			e.childLabel = l
		}
	}
}

// NewEngine creates an engine with the default 200x80 layout and UUID ids.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		layout:     layout.DefaultConfig(),
		ids:        UUIDGenerator{},
		rootLabel:  DefaultRootLabel,
		childLabel: DefaultChildLabel,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Layout returns the engine's placement configuration.
func (e *Engine) Layout() layout.Config { return e.layout }

// CreateRoot returns a new graph with a single root node at (0,0).
func (e *Engine) CreateRoot() Graph {
	return newRoot(e.rootLabel)
}

// AddChild creates a node labeled label under parentID and an edge
// parentID -> child. The child is placed by the layout engine from the
// parent's position and current child count. A blank label is replaced by
// the engine's default child label.
//
// Returns NOT_FOUND if parentID does not exist.
func (e *Engine) AddChild(g Graph, parentID, label string) (Graph, string, error) {
	parent, ok := g.nodes[parentID]
	if !ok {
		return Graph{}, "", errors.NotFound("parent node %q not found", parentID)
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = e.childLabel
	}

	nodeID, err := e.allocate(g, KindNode, "")
	if err != nil {
		return Graph{}, "", err
	}
	edgeID, err := e.allocate(g, KindEdge, nodeID)
	if err != nil {
		return Graph{}, "", err
	}

	pos := e.layout.ChildPosition(parent.Position, g.OutDegree(parentID))

	out := g.clone()
	out.nodes[nodeID] = Node{ID: nodeID, Label: label, Position: pos}
	out.edges[edgeID] = Edge{ID: edgeID, SourceID: parentID, TargetID: nodeID}
	return out, nodeID, nil
}

// Connect adds an edge sourceID -> targetID.
//
// Returns NOT_FOUND if either node is absent, and INVALID_OPERATION for a
// self-loop or when an edge with the same source and target already exists.
func (e *Engine) Connect(g Graph, sourceID, targetID string) (Graph, error) {
	if _, ok := g.nodes[sourceID]; !ok {
		return Graph{}, errors.NotFound("source node %q not found", sourceID)
	}
	if _, ok := g.nodes[targetID]; !ok {
		return Graph{}, errors.NotFound("target node %q not found", targetID)
	}
	if sourceID == targetID {
		return Graph{}, errors.InvalidOperation("cannot connect node %q to itself", sourceID)
	}
	if g.HasEdge(sourceID, targetID) {
		return Graph{}, errors.InvalidOperation("edge %q -> %q already exists", sourceID, targetID)
	}

	edgeID, err := e.allocate(g, KindEdge, "")
	if err != nil {
		return Graph{}, err
	}

	out := g.clone()
	out.edges[edgeID] = Edge{ID: edgeID, SourceID: sourceID, TargetID: targetID}
	return out, nil
}

// Disconnect removes the edge with the given id.
//
// Returns NOT_FOUND if the edge does not exist.
func (e *Engine) Disconnect(g Graph, edgeID string) (Graph, error) {
	if _, ok := g.edges[edgeID]; !ok {
		return Graph{}, errors.NotFound("edge %q not found", edgeID)
	}
	out := g.clone()
	delete(out.edges, edgeID)
	return out, nil
}

// RenameNode replaces a node's label with the trimmed newLabel.
//
// Returns NOT_FOUND if the node is absent and INVALID_OPERATION if the label
// is empty after trimming whitespace.
func (e *Engine) RenameNode(g Graph, nodeID, newLabel string) (Graph, error) {
	n, ok := g.nodes[nodeID]
	if !ok {
		return Graph{}, errors.NotFound("node %q not found", nodeID)
	}
	label := strings.TrimSpace(newLabel)
	if label == "" {
		return Graph{}, errors.InvalidOperation("label must not be empty")
	}

	out := g.clone()
	n.Label = label
	out.nodes[nodeID] = n
	return out, nil
}

// DeleteNode removes a node and every edge that starts or ends at it.
// Nodes reachable only through the deleted node are kept.
//
// Returns NOT_FOUND if the node is absent and INVALID_OPERATION for the root.
func (e *Engine) DeleteNode(g Graph, nodeID string) (Graph, error) {
	n, ok := g.nodes[nodeID]
	if !ok {
		return Graph{}, errors.NotFound("node %q not found", nodeID)
	}
	if n.IsRoot {
		return Graph{}, errors.InvalidOperation("cannot delete the root node")
	}

	out := g.clone()
	delete(out.nodes, nodeID)
	for id, edge := range out.edges {
		if edge.Touches(nodeID) {
			delete(out.edges, id)
		}
	}
	return out, nil
}

// MoveNode sets a node's position directly, bypassing the layout engine.
//
// Returns NOT_FOUND if the node is absent and INVALID_OPERATION if the
// position is not finite.
func (e *Engine) MoveNode(g Graph, nodeID string, pos Position) (Graph, error) {
	n, ok := g.nodes[nodeID]
	if !ok {
		return Graph{}, errors.NotFound("node %q not found", nodeID)
	}
	if !pos.IsFinite() {
		return Graph{}, errors.InvalidOperation("position (%v, %v) is not finite", pos.X, pos.Y)
	}

	out := g.clone()
	n.Position = pos
	out.nodes[nodeID] = n
	return out, nil
}

// allocate asks the generator for ids until one is unused by any node or
// edge of g and differs from reserved.
func (e *Engine) allocate(g Graph, kind IDKind, reserved string) (string, error) {
	limit := len(g.nodes) + len(g.edges) + idAttempts
	for range limit {
		id := e.ids.NewID(kind)
		if id == "" || id == reserved {
			continue
		}
		if _, used := g.nodes[id]; used {
			continue
		}
		if _, used := g.edges[id]; used {
			continue
		}
		return id, nil
	}
	return "", errors.InvalidOperation("could not allocate a unique id after %d attempts", limit)
}
