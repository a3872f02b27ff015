package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/matzehuels/mindmap/pkg/cache"
	"github.com/matzehuels/mindmap/pkg/document"
	"github.com/matzehuels/mindmap/pkg/observability"
)

// Cached decorates a store with a read-through cache. Loads and listings
// are served from c when possible; Save and Delete write through to the
// inner store and then invalidate the affected keys. Cache failures are
// treated as misses and never fail the call.
//
// A read that overlaps a write does not populate the cache, so a value
// read before the write cannot outlive its invalidation.
func Cached(inner Store, c cache.Cache, keyer cache.Keyer, ttl time.Duration) Store {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &cachedStore{inner: inner, cache: c, keyer: keyer, ttl: ttl}
}

type cachedStore struct {
	inner Store
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration

	// mu orders cache fills against invalidations. gen counts writes.
	mu  sync.Mutex
	gen uint64
}

func (s *cachedStore) Load(ctx context.Context, id string) (*document.Document, error) {
	key := s.keyer.DocumentKey(id)
	if data, hit, err := s.cache.Get(ctx, key); err == nil && hit {
		var doc document.Document
		if json.Unmarshal(data, &doc) == nil {
			observability.Cache().OnCacheHit(ctx, "document")
			return &doc, nil
		}
		_ = s.cache.Delete(ctx, key)
	}
	observability.Cache().OnCacheMiss(ctx, "document")

	gen := s.generation()
	doc, err := s.inner.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.put(ctx, gen, "document", key, doc)
	return doc, nil
}

func (s *cachedStore) Save(ctx context.Context, doc *document.Document) error {
	if err := s.inner.Save(ctx, doc); err != nil {
		return err
	}
	s.invalidate(ctx, doc.ID)
	return nil
}

func (s *cachedStore) Delete(ctx context.Context, id string) error {
	err := s.inner.Delete(ctx, id)
	// Invalidate even on failure: the entry may be stale either way.
	s.invalidate(ctx, id)
	return err
}

func (s *cachedStore) List(ctx context.Context) ([]document.Summary, error) {
	key := s.keyer.ListKey()
	if data, hit, err := s.cache.Get(ctx, key); err == nil && hit {
		var out []document.Summary
		if json.Unmarshal(data, &out) == nil {
			observability.Cache().OnCacheHit(ctx, "list")
			return out, nil
		}
		_ = s.cache.Delete(ctx, key)
	}
	observability.Cache().OnCacheMiss(ctx, "list")

	gen := s.generation()
	out, err := s.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	s.put(ctx, gen, "list", key, out)
	return out, nil
}

func (s *cachedStore) Close() error {
	err := s.inner.Close()
	if cerr := s.cache.Close(); err == nil {
		err = cerr
	}
	return err
}

func (s *cachedStore) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// put caches v unless a write has happened since gen was taken.
func (s *cachedStore) put(ctx context.Context, gen uint64, keyType, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	if s.cache.Set(ctx, key, data, s.ttl) == nil {
		observability.Cache().OnCacheSet(ctx, keyType, len(data))
	}
}

func (s *cachedStore) invalidate(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	_ = s.cache.Delete(ctx, s.keyer.DocumentKey(id))
	_ = s.cache.Delete(ctx, s.keyer.ListKey())
}
