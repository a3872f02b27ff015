// Package api serves mind-map documents over HTTP.
//
// The router is built with chi. Every mutation route opens an
// [editor.Session] on the stored document, applies the operation through
// the mutation engine and saves the result, so the HTTP surface enforces
// exactly the same invariants as the CLI and the interactive editor.
// Mutations of one document are serialized inside a server; concurrent
// requests on different documents run in parallel.
//
// # Routes
//
//	GET    /health
//	GET    /api/v1/mindmaps
//	POST   /api/v1/mindmaps
//	GET    /api/v1/mindmaps/{id}
//	PUT    /api/v1/mindmaps/{id}
//	DELETE /api/v1/mindmaps/{id}
//	POST   /api/v1/mindmaps/{id}/nodes
//	PATCH  /api/v1/mindmaps/{id}/nodes/{nodeID}
//	DELETE /api/v1/mindmaps/{id}/nodes/{nodeID}
//	POST   /api/v1/mindmaps/{id}/edges
//	DELETE /api/v1/mindmaps/{id}/edges/{edgeID}
//	GET    /api/v1/mindmaps/{id}/dot
//	GET    /api/v1/mindmaps/{id}/svg
//
// Errors are returned as {"error": {"code": ..., "message": ...}} with the
// status derived from the error code (see [StatusFor]).
package api

import (
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/mindmap/pkg/cache"
	"github.com/matzehuels/mindmap/pkg/mindmap"
	"github.com/matzehuels/mindmap/pkg/store"
)

// BasePath is the prefix of all document routes.
const BasePath = "/api/v1/mindmaps"

// Server handles API requests against a store.
type Server struct {
	store     store.Store
	engine    *mindmap.Engine
	logger    *log.Logger
	renders   cache.Cache
	keyer     cache.Keyer
	renderTTL time.Duration
	origins   []string
	locks     docLocks
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and server logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEngine sets the mutation engine used for all edits.
func WithEngine(e *mindmap.Engine) Option {
	return func(s *Server) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithRenderCache caches rendered SVGs in c. Keys come from keyer, or the
// default keyer when keyer is nil.
func WithRenderCache(c cache.Cache, keyer cache.Keyer, ttl time.Duration) Option {
	return func(s *Server) {
		if c == nil {
			return
		}
		if keyer == nil {
			keyer = cache.NewDefaultKeyer()
		}
		s.renders, s.keyer, s.renderTTL = c, keyer, ttl
	}
}

// WithCORSOrigins sets the origins allowed by CORS. Without it, any origin
// may read responses but not send credentials.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// New returns a server backed by st.
func New(st store.Store, opts ...Option) *Server {
	s := &Server{
		store:     st,
		engine:    mindmap.NewEngine(),
		logger:    log.New(io.Discard),
		renders:   cache.NewNullCache(),
		keyer:     cache.NewDefaultKeyer(),
		renderTTL: cache.DefaultTTL,
		locks:     docLocks{held: map[string]*docLock{}},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the HTTP handler for all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(cors.Handler(s.corsOptions()))

	r.Get("/health", s.health)

	r.Route(BasePath, func(r chi.Router) {
		r.Get("/", s.listDocuments)
		r.Post("/", s.createDocument)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getDocument)
			r.Put("/", s.putDocument)
			r.Delete("/", s.deleteDocument)

			r.Post("/nodes", s.addNode)
			r.Patch("/nodes/{nodeID}", s.updateNode)
			r.Delete("/nodes/{nodeID}", s.deleteNode)

			r.Post("/edges", s.connect)
			r.Delete("/edges/{edgeID}", s.disconnect)

			r.Get("/dot", s.renderDOT)
			r.Get("/svg", s.renderSVG)
		})
	})

	return r
}

func (s *Server) corsOptions() cors.Options {
	opts := cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Location"},
		MaxAge:         300,
	}
	if len(s.origins) > 0 {
		opts.AllowedOrigins = s.origins
		opts.AllowCredentials = true
	}
	return opts
}

// docLocks serializes read-modify-write cycles per document id.
type docLocks struct {
	mu   sync.Mutex
	held map[string]*docLock
}

type docLock struct {
	sync.Mutex
	refs int
}

// lock blocks until id is free and returns the matching unlock func.
func (l *docLocks) lock(id string) func() {
	l.mu.Lock()
	dl, ok := l.held[id]
	if !ok {
		dl = &docLock{}
		l.held[id] = dl
	}
	dl.refs++
	l.mu.Unlock()

	dl.Lock()
	return func() {
		dl.Unlock()
		l.mu.Lock()
		if dl.refs--; dl.refs == 0 {
			delete(l.held, id)
		}
		l.mu.Unlock()
	}
}
