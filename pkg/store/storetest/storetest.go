// Package storetest provides a conformance suite for store.Store
// implementations.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/mindmap/pkg/document"
	"github.com/matzehuels/mindmap/pkg/errors"
	"github.com/matzehuels/mindmap/pkg/mindmap"
	"github.com/matzehuels/mindmap/pkg/store"
)

// Run exercises the Store contract against stores returned by newStore.
// Each subtest gets a fresh, empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("LoadMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Load(context.Background(), "does-not-exist")
		if !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("Load(missing) error = %v, want NOT_FOUND", err)
		}
	})

	t.Run("SaveLoad", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		doc := sampleDocument(t, "Biology")

		if err := s.Save(ctx, doc); err != nil {
			t.Fatalf("Save() error: %v", err)
		}
		got, err := s.Load(ctx, doc.ID)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if got.Title != doc.Title || got.Visibility != doc.Visibility || got.Status != doc.Status {
			t.Errorf("metadata mismatch: got %+v", got)
		}
		want, _ := doc.MindMap()
		g, report := got.MindMap()
		if report.Changed() {
			t.Errorf("stored graph needed repair: %s", report)
		}
		if !g.Equal(want) {
			t.Error("graph changed across Save/Load")
		}
		if !got.UpdatedAt.Equal(doc.UpdatedAt) {
			t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, doc.UpdatedAt)
		}
	})

	t.Run("SaveReplaces", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		doc := sampleDocument(t, "First")
		if err := s.Save(ctx, doc); err != nil {
			t.Fatal(err)
		}
		doc.Title = "Second"
		if err := s.Save(ctx, doc); err != nil {
			t.Fatal(err)
		}
		got, err := s.Load(ctx, doc.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Title != "Second" {
			t.Errorf("Title = %q, want Second", got.Title)
		}
	})

	t.Run("LoadReturnsCopy", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		doc := sampleDocument(t, "Copy")
		if err := s.Save(ctx, doc); err != nil {
			t.Fatal(err)
		}
		doc.Title = "mutated after save"
		got, _ := s.Load(ctx, doc.ID)
		got.Graph.Nodes[0].Label = "mutated after load"
		again, _ := s.Load(ctx, doc.ID)
		if again.Title != "Copy" || again.Graph.Nodes[0].Label == "mutated after load" {
			t.Error("store shares memory with callers")
		}
	})

	t.Run("SaveInvalid", func(t *testing.T) {
		s := newStore(t)
		doc := sampleDocument(t, "x")
		doc.Title = ""
		if err := s.Save(context.Background(), doc); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Save(invalid) error = %v, want INVALID_INPUT", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		doc := sampleDocument(t, "Doomed")
		if err := s.Save(ctx, doc); err != nil {
			t.Fatal(err)
		}
		if err := s.Delete(ctx, doc.ID); err != nil {
			t.Fatalf("Delete() error: %v", err)
		}
		if _, err := s.Load(ctx, doc.ID); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("Load after Delete = %v, want NOT_FOUND", err)
		}
		if err := s.Delete(ctx, doc.ID); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("second Delete = %v, want NOT_FOUND", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		older := sampleDocument(t, "Older")
		older.UpdatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		newer := sampleDocument(t, "Newer")
		newer.UpdatedAt = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		for _, d := range []*document.Document{older, newer} {
			if err := s.Save(ctx, d); err != nil {
				t.Fatal(err)
			}
		}

		list, err := s.List(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 2 {
			t.Fatalf("List() returned %d, want 2", len(list))
		}
		if list[0].ID != newer.ID || list[1].ID != older.ID {
			t.Errorf("List() order = %s, %s; want newest first", list[0].Title, list[1].Title)
		}
		if list[0].Nodes != 3 {
			t.Errorf("summary node count = %d, want 3", list[0].Nodes)
		}
	})
}

// sampleDocument returns a valid document with a root and two children.
func sampleDocument(t *testing.T, title string) *document.Document {
	t.Helper()
	doc := document.New(title)
	doc.Tags = []string{"science"}
	doc.UpdatedAt = doc.UpdatedAt.Truncate(time.Millisecond)
	doc.CreatedAt = doc.CreatedAt.Truncate(time.Millisecond)

	eng := mindmap.NewEngine()
	g, _ := doc.MindMap()
	g, a, err := eng.AddChild(g, mindmap.RootID, "Cells")
	if err != nil {
		t.Fatal(err)
	}
	if g, _, err = eng.AddChild(g, a, "Mitochondria"); err != nil {
		t.Fatal(err)
	}
	doc.SetMindMap(g)
	doc.UpdatedAt = doc.UpdatedAt.Truncate(time.Millisecond)
	return doc
}
