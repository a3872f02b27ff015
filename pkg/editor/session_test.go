package editor

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindmap/pkg/codec"
	"github.com/matzehuels/mindmap/pkg/document"
	"github.com/matzehuels/mindmap/pkg/errors"
	"github.com/matzehuels/mindmap/pkg/mindmap"
	"github.com/matzehuels/mindmap/pkg/mindmap/selection"
	"github.com/matzehuels/mindmap/pkg/store"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	eng := mindmap.NewEngine(mindmap.WithIDGenerator(mindmap.NewSequenceGenerator()))
	return New(document.New("Biology"), WithEngine(eng))
}

func TestMutations(t *testing.T) {
	s := newTestSession(t)
	if s.Dirty() {
		t.Error("fresh session from a valid document should be clean")
	}

	a, err := s.AddChild(mindmap.RootID, "Cells")
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.AddChild(mindmap.RootID, "Genetics")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Connect(a, b); err != nil {
		t.Fatal(err)
	}
	if err := s.Rename(a, "Cell biology"); err != nil {
		t.Fatal(err)
	}
	if err := s.Move(b, mindmap.Position{X: 10, Y: 20}); err != nil {
		t.Fatal(err)
	}

	g := s.Graph()
	if g.NodeCount() != 3 || g.EdgeCount() != 3 {
		t.Errorf("graph = %d nodes, %d edges; want 3, 3", g.NodeCount(), g.EdgeCount())
	}
	if n, _ := g.Node(a); n.Label != "Cell biology" {
		t.Errorf("label = %q", n.Label)
	}
	if !s.Dirty() || s.Revision() != 5 {
		t.Errorf("Dirty() = %v, Revision() = %d; want true, 5", s.Dirty(), s.Revision())
	}

	edge := g.Edges()[0]
	if err := s.Disconnect(edge.ID); err != nil {
		t.Fatal(err)
	}
	if s.Graph().EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d after Disconnect", s.Graph().EdgeCount())
	}
}

func TestFailedMutationKeepsGraph(t *testing.T) {
	s := newTestSession(t)
	a, _ := s.AddChild(mindmap.RootID, "A")
	before := s.Graph()
	rev := s.Revision()

	cases := []struct {
		name string
		run  func() error
		code errors.Code
	}{
		{"delete root", func() error { return s.Delete(mindmap.RootID) }, errors.ErrCodeInvalidOperation},
		{"self loop", func() error { return s.Connect(a, a) }, errors.ErrCodeInvalidOperation},
		{"duplicate edge", func() error { return s.Connect(mindmap.RootID, a) }, errors.ErrCodeInvalidOperation},
		{"blank rename", func() error { return s.Rename(a, "  ") }, errors.ErrCodeInvalidOperation},
		{"missing parent", func() error { _, err := s.AddChild("ghost", "x"); return err }, errors.ErrCodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.run(); !errors.Is(err, tc.code) {
				t.Errorf("error = %v, want %s", err, tc.code)
			}
			if !s.Graph().Equal(before) {
				t.Error("graph changed after failed mutation")
			}
			if s.Revision() != rev {
				t.Error("revision changed after failed mutation")
			}
		})
	}
}

func TestSelectionFlow(t *testing.T) {
	s := newTestSession(t)

	s.Select(mindmap.RootID)
	a, err := s.AddChildToActive("Topic")
	if err != nil {
		t.Fatal(err)
	}
	if id, _ := s.Active(); id != a {
		t.Errorf("Active() = %q, want new child", id)
	}
	s.SetPending("Photosynthesis")
	if err := s.CommitLabel(); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.Graph().Node(a); n.Label != "Photosynthesis" {
		t.Errorf("label = %q", n.Label)
	}
	if s.Pending() != "Photosynthesis" {
		t.Errorf("Pending() = %q", s.Pending())
	}

	// Deleting the active node by id reconciles the selection.
	if err := s.Delete(a); err != nil {
		t.Fatal(err)
	}
	if s.SelectionState() != selection.Idle {
		t.Error("selection should be idle after its node was deleted")
	}

	if err := s.CommitLabel(); !errors.Is(err, errors.ErrCodeInvalidOperation) {
		t.Errorf("CommitLabel while idle = %v", err)
	}

	b, _ := s.AddChild(mindmap.RootID, "B")
	s.Select(b)
	if err := s.DeleteActive(); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Graph().Node(b); ok || s.SelectionState() != selection.Idle {
		t.Error("DeleteActive should remove the node and go idle")
	}
	s.Select(mindmap.RootID)
	s.Deselect()
	if _, ok := s.Active(); ok {
		t.Error("Deselect should clear the selection")
	}
}

func TestSaveAndOpen(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	s := newTestSession(t)
	a, _ := s.AddChild(mindmap.RootID, "Cells")

	if err := s.Save(ctx, st); err != nil {
		t.Fatal(err)
	}
	if s.Dirty() {
		t.Error("session should be clean after save")
	}

	opened, err := Open(ctx, st, s.ID())
	if err != nil {
		t.Fatal(err)
	}
	if !opened.Graph().Equal(s.Graph()) {
		t.Error("reopened graph differs")
	}
	if _, ok := opened.Graph().Node(a); !ok {
		t.Error("child missing after reopen")
	}
	if opened.Title() != "Biology" {
		t.Errorf("Title() = %q", opened.Title())
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(context.Background(), store.NewMemoryStore(), "nope")
	if !errors.Is(err, errors.ErrCodePersistence) {
		t.Fatalf("error = %v, want PERSISTENCE_ERROR", err)
	}
	var cause *errors.Error
	if !stderrors.As(stderrors.Unwrap(err), &cause) || cause.Code != errors.ErrCodeNotFound {
		t.Errorf("cause = %v, want NOT_FOUND", stderrors.Unwrap(err))
	}
}

func TestOpenRepairsAndLogs(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	doc := document.New("Damaged")
	doc.Graph.Edges = append(doc.Graph.Edges, codec.Edge{ID: "bad", SourceID: mindmap.RootID, TargetID: "ghost"})
	if err := st.Save(ctx, doc); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	s, err := Open(ctx, st, doc.ID, WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}
	if s.Graph().EdgeCount() != 0 {
		t.Error("dangling edge should be dropped")
	}
	if !s.Dirty() {
		t.Error("repaired session should be dirty")
	}
	if !strings.Contains(buf.String(), "repaired stored graph") {
		t.Errorf("repair not logged:\n%s", buf.String())
	}
}

func TestOpenOrCreate(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	s, created, err := OpenOrCreate(ctx, st, "fresh-id", "New map")
	if err != nil {
		t.Fatal(err)
	}
	if !created || s.ID() != "fresh-id" || s.Title() != "New map" {
		t.Errorf("created=%v id=%q title=%q", created, s.ID(), s.Title())
	}
	if !s.Dirty() {
		t.Error("new document should be dirty until saved")
	}
	if err := s.Save(ctx, st); err != nil {
		t.Fatal(err)
	}

	again, created, err := OpenOrCreate(ctx, st, "fresh-id", "ignored")
	if err != nil || created {
		t.Fatalf("reopen: created=%v err=%v", created, err)
	}
	if again.Title() != "New map" {
		t.Errorf("Title() = %q", again.Title())
	}

	// An unusable id gets a fresh one.
	s, created, _ = OpenOrCreate(ctx, st, "../bad", "T")
	if !created || s.ID() == "../bad" {
		t.Errorf("bad id reused: %q", s.ID())
	}
}

// damagedFileStore saves a two-node map and then rewrites its file with
// edit applied to the raw JSON.
func damagedFileStore(t *testing.T, edit func(string) string) (*store.FileStore, string) {
	t.Helper()
	ctx := context.Background()
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := newTestSession(t)
	if _, err := s.AddChild(mindmap.RootID, "Cells"); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, st); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(st.Path(), s.ID()+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	damaged := edit(string(data))
	if damaged == string(data) {
		t.Fatal("edit did not change the stored file")
	}
	if err := os.WriteFile(path, []byte(damaged), 0o600); err != nil {
		t.Fatal(err)
	}
	return st, s.ID()
}

func TestOpenRepairsWronglyTypedField(t *testing.T) {
	st, id := damagedFileStore(t, func(raw string) string {
		return strings.Replace(raw, `"x": 200`, `"x": "200"`, 1)
	})

	s, created, err := OpenOrCreate(context.Background(), st, id, "ignored")
	if err != nil {
		t.Fatalf("OpenOrCreate() error = %v", err)
	}
	if created {
		t.Fatal("damaged document was replaced by a new one")
	}
	g := s.Graph()
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Fatalf("graph has %d nodes, %d edges; want 2, 1", g.NodeCount(), g.EdgeCount())
	}
	var cells mindmap.Node
	for _, n := range g.Nodes() {
		if n.Label == "Cells" {
			cells = n
		}
	}
	if cells.ID == "" || cells.Position.X != 0 {
		t.Errorf("Cells = %+v, want kept with x reset to 0", cells)
	}
	if !s.Dirty() {
		t.Error("repaired document should be dirty")
	}
}

func TestOpenOrCreateKeepsUnreadableDocument(t *testing.T) {
	st, id := damagedFileStore(t, func(raw string) string {
		return raw[:len(raw)/2]
	})
	path := filepath.Join(st.Path(), id+".json")
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	s, created, err := OpenOrCreate(context.Background(), st, id, "New map")
	if !errors.Is(err, errors.ErrCodePersistence) {
		t.Fatalf("error = %v, want PERSISTENCE_ERROR", err)
	}
	if s != nil || created {
		t.Errorf("session = %v, created = %v; want none", s, created)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(after) != string(before) {
		t.Error("unreadable document was modified")
	}
}

// failingStore rejects every save.
type failingStore struct{ store.Store }

func (failingStore) Save(context.Context, *document.Document) error {
	return stderrors.New("disk full")
}

func TestSaveFailure(t *testing.T) {
	s := newTestSession(t)
	_, _ = s.AddChild(mindmap.RootID, "A")
	before := s.Graph()

	err := s.Save(context.Background(), failingStore{store.NewMemoryStore()})
	if !errors.Is(err, errors.ErrCodePersistence) {
		t.Fatalf("error = %v, want PERSISTENCE_ERROR", err)
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("cause lost: %v", err)
	}
	if !s.Dirty() || !s.Graph().Equal(before) {
		t.Error("failed save must not change local state")
	}
}

// blockingStore holds each save until released, so tests can edit while
// a save is in flight.
type blockingStore struct {
	*store.MemoryStore
	started chan struct{}
	release chan struct{}
}

func (b *blockingStore) Save(ctx context.Context, doc *document.Document) error {
	close(b.started)
	<-b.release
	return b.MemoryStore.Save(ctx, doc)
}

func TestSaveUsesSnapshot(t *testing.T) {
	ctx := context.Background()
	st := &blockingStore{
		MemoryStore: store.NewMemoryStore(),
		started:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	s := newTestSession(t)
	a, _ := s.AddChild(mindmap.RootID, "Saved")

	done := make(chan error, 1)
	go func() { done <- s.Save(ctx, st) }()
	<-st.started

	// Edit while the save is in flight; the session lock must be free.
	edited := make(chan error, 1)
	go func() {
		_, err := s.AddChild(mindmap.RootID, "Unsaved")
		edited <- err
	}()
	select {
	case err := <-edited:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("mutation blocked by in-flight save")
	}

	close(st.release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	stored, err := st.Load(ctx, s.ID())
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Graph.Nodes) != 2 {
		t.Errorf("stored %d nodes, want the 2 present at save time", len(stored.Graph.Nodes))
	}
	g, _ := stored.MindMap()
	if _, ok := g.Node(a); !ok {
		t.Error("saved snapshot lacks the node present at save time")
	}
	if !s.Dirty() {
		t.Error("edit made during save should keep the session dirty")
	}
	if s.Graph().NodeCount() != 3 {
		t.Errorf("session has %d nodes, want 3", s.Graph().NodeCount())
	}
}

func TestUpdateMetadata(t *testing.T) {
	s := newTestSession(t)
	err := s.UpdateMetadata(func(d *document.Document) {
		d.Title = "  Renamed  "
		d.Tags = []string{"B", "a"}
		d.ID = "hijack"
	})
	if err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if snap.Title != "Renamed" || snap.ID == "hijack" || len(snap.Tags) != 2 {
		t.Errorf("snapshot = %+v", snap)
	}

	if err := s.UpdateMetadata(func(d *document.Document) { d.Visibility = "secret" }); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("invalid metadata error = %v", err)
	}
	if s.Snapshot().Visibility != document.VisibilityPrivate {
		t.Error("invalid metadata was applied")
	}
}
