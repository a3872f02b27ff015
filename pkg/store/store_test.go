package store_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/mindmap/pkg/cache"
	"github.com/matzehuels/mindmap/pkg/document"
	"github.com/matzehuels/mindmap/pkg/errors"
	"github.com/matzehuels/mindmap/pkg/store"
	"github.com/matzehuels/mindmap/pkg/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return store.NewMemoryStore()
	})
}

func TestFileStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := store.NewFileStore(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		return s
	})
}

func TestCachedStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return store.Cached(store.NewMemoryStore(), cache.NewMemoryCache(), nil, time.Minute)
	})
}

func TestObservedStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return store.Observed(store.NewMemoryStore(), "memory")
	})
}

func TestFileStoreRejectsBadIDs(t *testing.T) {
	s, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, id := range []string{"../escape", "a/b", "", "with space"} {
		if _, err := s.Load(ctx, id); !errors.Is(err, errors.ErrCodeInvalidID) {
			t.Errorf("Load(%q) error = %v, want INVALID_ID", id, err)
		}
		if err := s.Delete(ctx, id); !errors.Is(err, errors.ErrCodeInvalidID) {
			t.Errorf("Delete(%q) error = %v, want INVALID_ID", id, err)
		}
	}
}

func TestFileStorePermissionsAndCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	doc := document.New("Perms")
	if err := s.Save(ctx, doc); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(dir, doc.ID+".json"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}

	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	list, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("List() = %d entries, want corrupt file skipped", len(list))
	}
	if _, err := s.Load(ctx, "broken"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Load(broken) error = %v, want INVALID_FORMAT", err)
	}
	if s.Path() != dir {
		t.Errorf("Path() = %q", s.Path())
	}
}

// countingStore counts calls that reach the backend.
type countingStore struct {
	store.Store
	loads, lists int
}

func (c *countingStore) Load(ctx context.Context, id string) (*document.Document, error) {
	c.loads++
	return c.Store.Load(ctx, id)
}

func (c *countingStore) List(ctx context.Context) ([]document.Summary, error) {
	c.lists++
	return c.Store.List(ctx)
}

func TestCachedStoreReadsThrough(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: store.NewMemoryStore()}
	s := store.Cached(inner, cache.NewMemoryCache(), cache.NewScopedKeyer(nil, "test:"), time.Minute)

	doc := document.New("Cached")
	if err := s.Save(ctx, doc); err != nil {
		t.Fatal(err)
	}
	for range 3 {
		if _, err := s.Load(ctx, doc.ID); err != nil {
			t.Fatal(err)
		}
		if _, err := s.List(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if inner.loads != 1 || inner.lists != 1 {
		t.Errorf("backend calls: loads=%d lists=%d, want 1 each", inner.loads, inner.lists)
	}

	// Save invalidates both the document and the listing.
	doc.Title = "Renamed"
	if err := s.Save(ctx, doc); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Load(ctx, doc.ID)
	list, _ := s.List(ctx)
	if got.Title != "Renamed" || list[0].Title != "Renamed" {
		t.Error("stale cache after Save")
	}
	if inner.loads != 2 || inner.lists != 2 {
		t.Errorf("backend calls after save: loads=%d lists=%d, want 2 each", inner.loads, inner.lists)
	}
}

// pausingStore holds its first Load after the backend read until resume
// is closed.
type pausingStore struct {
	store.Store
	once   sync.Once
	loaded chan struct{}
	resume chan struct{}
}

func (p *pausingStore) Load(ctx context.Context, id string) (*document.Document, error) {
	doc, err := p.Store.Load(ctx, id)
	p.once.Do(func() {
		close(p.loaded)
		<-p.resume
	})
	return doc, err
}

func TestCachedStoreIgnoresReadsOverlappingWrites(t *testing.T) {
	tests := []struct {
		name  string
		write func(context.Context, store.Store, *document.Document) error
		check func(*testing.T, *document.Document, error)
	}{
		{
			name: "save",
			write: func(ctx context.Context, s store.Store, doc *document.Document) error {
				updated := doc.Clone()
				updated.Title = "New"
				return s.Save(ctx, updated)
			},
			check: func(t *testing.T, got *document.Document, err error) {
				if err != nil {
					t.Fatal(err)
				}
				if got.Title != "New" {
					t.Errorf("Load() after Save title = %q, want %q", got.Title, "New")
				}
			},
		},
		{
			name: "delete",
			write: func(ctx context.Context, s store.Store, doc *document.Document) error {
				return s.Delete(ctx, doc.ID)
			},
			check: func(t *testing.T, _ *document.Document, err error) {
				if !errors.Is(err, errors.ErrCodeNotFound) {
					t.Errorf("Load() after Delete error = %v, want NOT_FOUND", err)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			inner := &pausingStore{
				Store:  store.NewMemoryStore(),
				loaded: make(chan struct{}),
				resume: make(chan struct{}),
			}
			s := store.Cached(inner, cache.NewMemoryCache(), nil, time.Minute)

			doc := document.New("Old")
			if err := s.Save(ctx, doc); err != nil {
				t.Fatal(err)
			}

			done := make(chan error, 1)
			go func() {
				_, err := s.Load(ctx, doc.ID)
				done <- err
			}()
			<-inner.loaded
			if err := tt.write(ctx, s, doc); err != nil {
				t.Fatal(err)
			}
			close(inner.resume)
			if err := <-done; err != nil {
				t.Fatal(err)
			}

			got, err := s.Load(ctx, doc.ID)
			tt.check(t, got, err)
		})
	}
}

func TestSortSummaries(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := []document.Summary{
		{ID: "b", UpdatedAt: t0},
		{ID: "c", UpdatedAt: t0.Add(time.Hour)},
		{ID: "a", UpdatedAt: t0},
	}
	store.SortSummaries(s)
	if s[0].ID != "c" || s[1].ID != "a" || s[2].ID != "b" {
		t.Errorf("order = %s %s %s", s[0].ID, s[1].ID, s[2].ID)
	}
}
