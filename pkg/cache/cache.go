// Package cache provides byte-level caching backends for stored mind maps.
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [MemoryCache]: in-process map, for tests and single-instance servers
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: shared cache for multi-instance API servers
//
// All backends implement [Cache]. Keys are produced by a [Keyer] so that
// documents, listings and rendered artifacts never collide, and a
// [ScopedKeyer] can isolate tenants that share one Redis instance.
//
// A cache is an optimisation only. Callers treat any Get error as a miss
// and must not fail a request because Set or Delete failed.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is the lifetime used when a caller passes no TTL preference.
const DefaultTTL = 10 * time.Minute

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get returns the value and true on a hit, or nil and false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero or less means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
