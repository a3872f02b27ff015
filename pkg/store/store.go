// Package store defines the persistence collaborator for mind-map
// documents and its in-process backends.
//
// # Backends
//
//   - [MemoryStore]: in-process, for tests and ephemeral servers
//   - [FileStore]: one JSON file per document, for the CLI
//   - mongostore: MongoDB collection, for the API server
//   - httpstore: client of a remote API server
//
// [Cached] adds a read-through cache in front of any backend, and
// [Observed] reports every load and save to the observability hooks.
//
// # Errors
//
// Load, Delete and Save on a missing document return NOT_FOUND (Save only
// when the backend requires the document to exist, which none of the
// bundled ones do). Save rejects documents that fail
// [document.Document.Validate]. Any other failure is returned as-is; the
// editor surfaces it to the user as PERSISTENCE_ERROR. Stores never retry
// on their own except where the transport calls for it (httpstore).
package store

import (
	"context"
	"time"

	"github.com/matzehuels/mindmap/pkg/document"
	"github.com/matzehuels/mindmap/pkg/observability"
)

// Store loads and saves mind-map documents. Implementations are safe for
// concurrent use and return copies: callers may modify what they get.
type Store interface {
	// Load returns the document with the given id, or NOT_FOUND.
	Load(ctx context.Context, id string) (*document.Document, error)

	// Save creates or replaces a document.
	Save(ctx context.Context, doc *document.Document) error

	// Delete removes a document, or returns NOT_FOUND.
	Delete(ctx context.Context, id string) error

	// List returns summaries of all documents, most recently updated first.
	List(ctx context.Context) ([]document.Summary, error)

	// Close releases resources held by the store.
	Close() error
}

// Observed wraps s so that every Load and Save is reported to
// [observability.Persistence] under the given backend name.
func Observed(s Store, backend string) Store {
	return &observed{Store: s, backend: backend}
}

type observed struct {
	Store
	backend string
}

func (o *observed) Load(ctx context.Context, id string) (*document.Document, error) {
	start := time.Now()
	doc, err := o.Store.Load(ctx, id)
	observability.Persistence().OnLoad(ctx, o.backend, id, time.Since(start), err)
	return doc, err
}

func (o *observed) Save(ctx context.Context, doc *document.Document) error {
	start := time.Now()
	err := o.Store.Save(ctx, doc)
	observability.Persistence().OnSave(ctx, o.backend, doc.ID, len(doc.Graph.Nodes), time.Since(start), err)
	return err
}
