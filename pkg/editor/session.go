// Package editor runs one mind-map editing session.
//
// A [Session] owns the current graph, the selection state and the
// document metadata. Every edit goes through the mutation engine: a
// successful edit replaces the session's graph, a failed one leaves it
// exactly as it was. After each change the selection is reconciled, so a
// deleted active node never lingers.
//
// Saving takes a snapshot of the graph under the session lock and hands it
// to the store after releasing the lock. Edits made while the save is in
// flight are not part of it and keep the session dirty. A failed save is
// returned as PERSISTENCE_ERROR and changes nothing locally; retrying is
// the caller's decision.
//
// All methods are safe for concurrent use.
package editor

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindmap/pkg/document"
	"github.com/matzehuels/mindmap/pkg/errors"
	"github.com/matzehuels/mindmap/pkg/mindmap"
	"github.com/matzehuels/mindmap/pkg/mindmap/selection"
	"github.com/matzehuels/mindmap/pkg/observability"
	"github.com/matzehuels/mindmap/pkg/store"
)

// Session is an open document being edited.
type Session struct {
	mu       sync.Mutex
	engine   *mindmap.Engine
	graph    mindmap.Graph
	sel      *selection.Controller
	meta     *document.Document
	logger   *log.Logger
	revision uint64
	saved    uint64
}

// Option configures a Session.
type Option func(*Session)

// WithEngine sets the mutation engine. A nil engine is ignored.
func WithEngine(e *mindmap.Engine) Option {
	return func(s *Session) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithLogger sets the session logger. A nil logger is ignored.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// New starts a session on doc. The stored graph is repaired if needed and
// the repairs are logged as warnings. The session keeps its own copy of
// doc.
func New(doc *document.Document, opts ...Option) *Session {
	s := newSession(opts)
	s.meta = doc.Clone()
	s.logger = s.logger.With("doc", doc.ID)
	s.sel = selection.New(s.engine)

	g, report := doc.MindMap()
	if report.Changed() {
		s.logger.Warn("repaired stored graph", "issues", len(report.Issues), "kinds", report.Kinds())
		for _, issue := range report.Issues {
			s.logger.Debug("repair", "issue", issue.String())
		}
		observability.Editor().OnRepair(context.Background(), doc.ID, len(report.Issues))
		// The repaired graph differs from what is stored.
		s.revision = 1
	}
	s.graph = g
	return s
}

func newSession(opts []Option) *Session {
	s := &Session{
		engine: mindmap.NewEngine(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads a document and starts a session on it. Load failures are
// returned as PERSISTENCE_ERROR wrapping the store's error, so callers
// can still test the cause with errors.As.
func Open(ctx context.Context, st store.Store, id string, opts ...Option) (*Session, error) {
	doc, err := st.Load(ctx, id)
	if err != nil {
		return nil, errors.Persistence(err, "load %s", id)
	}
	return New(doc, opts...), nil
}

// OpenOrCreate opens the document with the given id, or starts a fresh
// unsaved document titled title when no such document exists. The returned
// bool reports whether a new document was created. When id is a valid
// document id the new document reuses it, so the first save creates it.
//
// Any other load failure is returned as PERSISTENCE_ERROR. A document that
// exists but cannot be read is never replaced by a blank one.
func OpenOrCreate(ctx context.Context, st store.Store, id, title string, opts ...Option) (*Session, bool, error) {
	if id != "" {
		doc, err := st.Load(ctx, id)
		switch {
		case err == nil:
			return New(doc, opts...), false, nil
		case ctx.Err() != nil:
			return nil, false, ctx.Err()
		case !errors.Is(err, errors.ErrCodeNotFound) && !errors.Is(err, errors.ErrCodeInvalidID):
			return nil, false, errors.Persistence(err, "load %s", id)
		}
		newSession(opts).logger.Info("document not found, starting a new one", "doc", id)
	}

	doc := document.New(title)
	if id != "" && errors.ValidateID("document", id) == nil {
		doc.ID = id
	}
	s := New(doc, opts...)
	s.revision = 1
	return s, true, nil
}

// =============================================================================
// Queries
// =============================================================================

// ID returns the document id.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta.ID
}

// Title returns the document title.
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta.Title
}

// Graph returns the current graph. Graph values are immutable, so the
// result stays valid while the session continues to change.
func (s *Session) Graph() mindmap.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph
}

// Engine returns the session's mutation engine.
func (s *Session) Engine() *mindmap.Engine { return s.engine }

// Dirty reports whether the session has changes that no successful save
// has covered.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision != s.saved
}

// Revision returns a counter that increases with every successful change.
func (s *Session) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Snapshot returns the document as it would be saved now: metadata plus
// the serialized current graph.
func (s *Session) Snapshot() *document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, _ := s.snapshotLocked()
	return snap
}

func (s *Session) snapshotLocked() (*document.Document, uint64) {
	snap := s.meta.Clone()
	snap.SetMindMap(s.graph)
	return snap, s.revision
}

// =============================================================================
// Metadata
// =============================================================================

// UpdateMetadata applies fn to a copy of the document metadata and keeps
// the result if it validates. The graph cannot be changed this way.
func (s *Session) UpdateMetadata(fn func(*document.Document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.meta.Clone()
	fn(next)
	next.ID = s.meta.ID
	next.Graph = s.meta.Graph
	next.CreatedAt = s.meta.CreatedAt
	next.Normalize()
	if err := next.Validate(); err != nil {
		return err
	}
	s.meta = next
	s.revision++
	return nil
}

// =============================================================================
// Persistence
// =============================================================================

// Save writes a snapshot of the session to st. The session lock is held
// only while the snapshot is taken, so edits may continue during the
// store call; they are not part of this save.
//
// Store failures are returned as PERSISTENCE_ERROR and leave the session
// untouched.
func (s *Session) Save(ctx context.Context, st store.Store) error {
	s.mu.Lock()
	snap, rev := s.snapshotLocked()
	s.mu.Unlock()

	start := time.Now()
	if err := st.Save(ctx, snap); err != nil {
		s.logger.Error("save failed", "error", err)
		return errors.Persistence(err, "save %s", snap.ID)
	}

	s.mu.Lock()
	if rev > s.saved {
		s.saved = rev
	}
	s.meta.UpdatedAt = snap.UpdatedAt
	s.mu.Unlock()

	s.logger.Info("saved", "nodes", len(snap.Graph.Nodes), "edges", len(snap.Graph.Edges), "took", time.Since(start).Round(time.Millisecond))
	return nil
}
