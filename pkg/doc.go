// Package pkg provides the core libraries of the mindmap editor.
//
// # Overview
//
// A mind map is a directed graph of ideas grown from a single central root.
// The pkg directory is organized into four areas:
//
//  1. Domain: the graph, its mutation engine and selection ([mindmap])
//  2. Documents: persisted form, metadata and editing sessions ([codec],
//     [document], [editor])
//  3. Infrastructure: stores, caches, retries and hooks ([store], [cache],
//     [httputil], [observability])
//  4. Surfaces: the HTTP API and rendering ([api], [render/nodelink])
//
// # Architecture
//
// Every change to a graph flows through one path:
//
//	CLI / TUI / HTTP handler
//	         ↓
//	    [editor] session (selection, dirty tracking, save)
//	         ↓
//	    [mindmap] engine (validate, clone, apply)
//	         ↓
//	    [codec] payload → [document] → [store]
//
// Graphs are immutable values. The engine returns a new graph for every
// successful mutation and leaves its input untouched on failure, so a
// rejected edit never needs to be rolled back.
//
// # Quick Start
//
//	eng := mindmap.NewEngine()
//	g := eng.CreateRoot()
//	g, cells, _ := eng.AddChild(g, mindmap.RootID, "Cells")
//	g, _, _ = eng.AddChild(g, cells, "Membrane")
//
//	doc := document.New("Biology")
//	doc.SetMindMap(g)
//	st, _ := store.NewFileStore("")
//	_ = st.Save(ctx, doc)
//
// Load, repair and edit a stored document:
//
//	sess, _ := editor.Open(ctx, st, doc.ID)
//	sess.Select(cells)
//	_, _ = sess.AddChildToActive("Organelles")
//	_ = sess.Save(ctx, st)
//
// # Errors
//
// Every package returns [errors.Error] values carrying a machine-readable
// code (NOT_FOUND, INVALID_OPERATION, PERSISTENCE_ERROR, ...). The API maps
// codes to HTTP statuses; the CLI prints them.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test -run Example ./pkg/...       # Examples only
//	go test -tags integration ./pkg/...  # Include MongoDB and Redis tests
//
// [mindmap]: https://pkg.go.dev/github.com/matzehuels/mindmap/pkg/mindmap
// [codec]: https://pkg.go.dev/github.com/matzehuels/mindmap/pkg/codec
// [document]: https://pkg.go.dev/github.com/matzehuels/mindmap/pkg/document
// [editor]: https://pkg.go.dev/github.com/matzehuels/mindmap/pkg/editor
// [store]: https://pkg.go.dev/github.com/matzehuels/mindmap/pkg/store
// [cache]: https://pkg.go.dev/github.com/matzehuels/mindmap/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/mindmap/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/mindmap/pkg/observability
// [api]: https://pkg.go.dev/github.com/matzehuels/mindmap/pkg/api
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/mindmap/pkg/render/nodelink
// [errors.Error]: https://pkg.go.dev/github.com/matzehuels/mindmap/pkg/errors#Error
package pkg
