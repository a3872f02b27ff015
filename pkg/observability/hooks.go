// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries in this module emit events through hook interfaces without
// depending on any observability backend. Applications register real
// implementations at startup; until then every hook is a no-op.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEditorHooks(myEditorHooks{})
//	    observability.SetPersistenceHooks(myStoreMetrics{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	doc, err := store.Load(ctx, id)
//	observability.Persistence().OnLoad(ctx, "file", id, time.Since(start), err)
//
// [LogHooks] is a ready-made implementation that writes every event to a
// charmbracelet/log logger at debug level.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Editor Hooks
// =============================================================================

// EditorHooks receives events from editing sessions.
type EditorHooks interface {
	// OnMutation records a mutation attempt. err is nil on success.
	OnMutation(ctx context.Context, docID, op string, err error)

	// OnRepair records that a loaded graph needed repair.
	OnRepair(ctx context.Context, docID string, issues int)
}

// =============================================================================
// Persistence Hooks
// =============================================================================

// PersistenceHooks receives events from document stores.
type PersistenceHooks interface {
	// OnLoad records a document load.
	OnLoad(ctx context.Context, backend, docID string, duration time.Duration, err error)

	// OnSave records a document save.
	OnSave(ctx context.Context, backend, docID string, nodes int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEditorHooks is a no-op implementation of EditorHooks.
type NoopEditorHooks struct{}

func (NoopEditorHooks) OnMutation(context.Context, string, string, error) {}
func (NoopEditorHooks) OnRepair(context.Context, string, int)             {}

// NoopPersistenceHooks is a no-op implementation of PersistenceHooks.
type NoopPersistenceHooks struct{}

func (NoopPersistenceHooks) OnLoad(context.Context, string, string, time.Duration, error)      {}
func (NoopPersistenceHooks) OnSave(context.Context, string, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	editorHooks      EditorHooks      = NoopEditorHooks{}
	persistenceHooks PersistenceHooks = NoopPersistenceHooks{}
	cacheHooks       CacheHooks       = NoopCacheHooks{}
	httpHooks        HTTPHooks        = NoopHTTPHooks{}
	hooksMu          sync.RWMutex
)

// SetEditorHooks registers custom editor hooks. A nil value is ignored.
func SetEditorHooks(h EditorHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		editorHooks = h
	}
}

// SetPersistenceHooks registers custom persistence hooks. A nil value is ignored.
func SetPersistenceHooks(h PersistenceHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		persistenceHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. A nil value is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks. A nil value is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Editor returns the registered editor hooks.
func Editor() EditorHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return editorHooks
}

// Persistence returns the registered persistence hooks.
func Persistence() PersistenceHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return persistenceHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	editorHooks = NoopEditorHooks{}
	persistenceHooks = NoopPersistenceHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
