package store

import (
	"context"
	"sync"

	"github.com/matzehuels/mindmap/pkg/document"
	"github.com/matzehuels/mindmap/pkg/errors"
)

// MemoryStore keeps documents in a map.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*document.Document
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*document.Document)}
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, errors.NotFound("document %q not found", id)
	}
	return doc.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, doc *document.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc.Clone()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return errors.NotFound("document %q not found", id)
	}
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]document.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]document.Summary, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, doc.Summary())
	}
	s.mu.RUnlock()
	SortSummaries(out)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
