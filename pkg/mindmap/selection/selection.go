// Package selection tracks the single active node of an editing session.
//
// A [Controller] is either Idle or Active on one node id. While Active it
// also holds a pending label, the text the user is typing for that node.
// The controller never writes to a graph itself: CommitLabel,
// AddChildToActive and DeleteActive delegate to a [mindmap.Engine] and
// return the engine's new graph.
//
// Selecting an id that is not in the graph is a no-op. A node that was
// deleted between a click and its handler is a benign race, so it must not
// fail the editor.
//
// A Controller is not safe for concurrent use; the owner (typically an
// editor session) serializes access.
package selection

import (
	"github.com/matzehuels/mindmap/pkg/errors"
	"github.com/matzehuels/mindmap/pkg/mindmap"
)

// State is the controller's state.
type State int

const (
	// Idle means no node is selected.
	Idle State = iota
	// Active means exactly one node is selected.
	Active
)

// String returns "idle" or "active".
func (s State) String() string {
	switch s {
	case Active:
		return "active"
	default:
		return "idle"
	}
}

// Controller is the selection state machine.
type Controller struct {
	engine  *mindmap.Engine
	active  string
	pending string
	state   State
}

// New returns an Idle controller that mutates through engine.
func New(engine *mindmap.Engine) *Controller {
	if engine == nil {
		engine = mindmap.NewEngine()
	}
	return &Controller{engine: engine}
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Active returns the active node id and true, or "" and false when Idle.
func (c *Controller) Active() (string, bool) {
	if c.state != Active {
		return "", false
	}
	return c.active, true
}

// Pending returns the pending label. It is empty when Idle.
func (c *Controller) Pending() string { return c.pending }

// Select makes nodeID the active node and loads its label into the pending
// buffer. It does nothing if nodeID is not in g.
func (c *Controller) Select(g mindmap.Graph, nodeID string) {
	n, ok := g.Node(nodeID)
	if !ok {
		return
	}
	c.state = Active
	c.active = n.ID
	c.pending = n.Label
}

// Deselect returns to Idle and clears the pending label.
func (c *Controller) Deselect() {
	c.state = Idle
	c.active = ""
	c.pending = ""
}

// SetPending replaces the pending label. It is ignored while Idle.
func (c *Controller) SetPending(text string) {
	if c.state != Active {
		return
	}
	c.pending = text
}

// CommitLabel renames the active node to the pending label. The controller
// stays Active on the same node, with the pending buffer set to the stored
// (trimmed) label.
//
// Returns INVALID_OPERATION when Idle, and any error from RenameNode.
func (c *Controller) CommitLabel(g mindmap.Graph) (mindmap.Graph, error) {
	if c.state != Active {
		return mindmap.Graph{}, errors.InvalidOperation("no active node to rename")
	}
	out, err := c.engine.RenameNode(g, c.active, c.pending)
	if err != nil {
		return mindmap.Graph{}, err
	}
	if n, ok := out.Node(c.active); ok {
		c.pending = n.Label
	}
	return out, nil
}

// AddChildToActive adds a child under the active node and makes the new
// node active.
//
// Returns INVALID_OPERATION when Idle, and any error from AddChild.
func (c *Controller) AddChildToActive(g mindmap.Graph, label string) (mindmap.Graph, string, error) {
	if c.state != Active {
		return mindmap.Graph{}, "", errors.InvalidOperation("no active node to add a child to")
	}
	out, id, err := c.engine.AddChild(g, c.active, label)
	if err != nil {
		return mindmap.Graph{}, "", err
	}
	c.Select(out, id)
	return out, id, nil
}

// DeleteActive deletes the active node and returns to Idle.
//
// Returns INVALID_OPERATION when Idle or when the active node is the root.
func (c *Controller) DeleteActive(g mindmap.Graph) (mindmap.Graph, error) {
	if c.state != Active {
		return mindmap.Graph{}, errors.InvalidOperation("no active node to delete")
	}
	out, err := c.engine.DeleteNode(g, c.active)
	if err != nil {
		return mindmap.Graph{}, err
	}
	c.Deselect()
	return out, nil
}

// Reconcile returns to Idle if the active node is no longer in g. Call it
// after every graph change made outside the controller.
func (c *Controller) Reconcile(g mindmap.Graph) {
	if c.state != Active {
		return
	}
	if _, ok := g.Node(c.active); !ok {
		c.Deselect()
	}
}
