package editor

import (
	"context"

	"github.com/matzehuels/mindmap/pkg/mindmap"
	"github.com/matzehuels/mindmap/pkg/mindmap/selection"
	"github.com/matzehuels/mindmap/pkg/observability"
)

// Mutation names reported to hooks and logs.
const (
	OpAddChild   = "add_child"
	OpConnect    = "connect"
	OpDisconnect = "disconnect"
	OpRename     = "rename_node"
	OpDelete     = "delete_node"
	OpMove       = "move_node"
)

// apply runs op against the current graph under the session lock. On
// success the result replaces the graph and the selection is reconciled;
// on failure nothing changes.
func (s *Session) apply(name string, op func(g mindmap.Graph) (mindmap.Graph, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := op(s.graph)
	observability.Editor().OnMutation(context.Background(), s.meta.ID, name, err)
	if err != nil {
		s.logger.Debug("mutation rejected", "op", name, "error", err)
		return err
	}
	s.graph = next
	s.sel.Reconcile(next)
	s.revision++
	s.logger.Debug("mutation", "op", name, "nodes", next.NodeCount(), "edges", next.EdgeCount())
	return nil
}

// AddChild adds a node labeled label under parentID and returns its id.
func (s *Session) AddChild(parentID, label string) (string, error) {
	var id string
	err := s.apply(OpAddChild, func(g mindmap.Graph) (mindmap.Graph, error) {
		out, newID, err := s.engine.AddChild(g, parentID, label)
		id = newID
		return out, err
	})
	return id, err
}

// Connect adds an edge sourceID -> targetID.
func (s *Session) Connect(sourceID, targetID string) error {
	return s.apply(OpConnect, func(g mindmap.Graph) (mindmap.Graph, error) {
		return s.engine.Connect(g, sourceID, targetID)
	})
}

// Disconnect removes an edge.
func (s *Session) Disconnect(edgeID string) error {
	return s.apply(OpDisconnect, func(g mindmap.Graph) (mindmap.Graph, error) {
		return s.engine.Disconnect(g, edgeID)
	})
}

// Rename sets a node's label.
func (s *Session) Rename(nodeID, label string) error {
	return s.apply(OpRename, func(g mindmap.Graph) (mindmap.Graph, error) {
		return s.engine.RenameNode(g, nodeID, label)
	})
}

// Delete removes a node and its edges. Deleting the active node returns
// the selection to idle.
func (s *Session) Delete(nodeID string) error {
	return s.apply(OpDelete, func(g mindmap.Graph) (mindmap.Graph, error) {
		return s.engine.DeleteNode(g, nodeID)
	})
}

// Move sets a node's position.
func (s *Session) Move(nodeID string, pos mindmap.Position) error {
	return s.apply(OpMove, func(g mindmap.Graph) (mindmap.Graph, error) {
		return s.engine.MoveNode(g, nodeID, pos)
	})
}

// =============================================================================
// Selection
// =============================================================================

// Select makes nodeID active. Unknown ids are ignored.
func (s *Session) Select(nodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Select(s.graph, nodeID)
}

// Deselect clears the selection.
func (s *Session) Deselect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Deselect()
}

// SetPending replaces the label being typed for the active node.
func (s *Session) SetPending(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.SetPending(text)
}

// Pending returns the label being typed for the active node.
func (s *Session) Pending() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Pending()
}

// Active returns the active node id, if any.
func (s *Session) Active() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Active()
}

// SelectionState returns the selection state.
func (s *Session) SelectionState() selection.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.State()
}

// CommitLabel renames the active node to the pending label.
func (s *Session) CommitLabel() error {
	return s.apply(OpRename, s.sel.CommitLabel)
}

// AddChildToActive adds a child under the active node and selects it.
func (s *Session) AddChildToActive(label string) (string, error) {
	var id string
	err := s.apply(OpAddChild, func(g mindmap.Graph) (mindmap.Graph, error) {
		out, newID, err := s.sel.AddChildToActive(g, label)
		id = newID
		return out, err
	})
	return id, err
}

// DeleteActive deletes the active node and clears the selection.
func (s *Session) DeleteActive() error {
	return s.apply(OpDelete, s.sel.DeleteActive)
}
