package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/mindmap/pkg/cache"
	"github.com/matzehuels/mindmap/pkg/codec"
	"github.com/matzehuels/mindmap/pkg/editor"
	"github.com/matzehuels/mindmap/pkg/errors"
	"github.com/matzehuels/mindmap/pkg/mindmap/layout"
	"github.com/matzehuels/mindmap/pkg/observability"
	"github.com/matzehuels/mindmap/pkg/render/nodelink"
)

type addNodeRequest struct {
	ParentID string `json:"parentId" validate:"required"`
	Label    string `json:"label" validate:"max=500"`
}

type updateNodeRequest struct {
	Label    *string       `json:"label"`
	Position *layout.Point `json:"position"`
}

type connectRequest struct {
	SourceID string `json:"sourceId" validate:"required"`
	TargetID string `json:"targetId" validate:"required"`
}

// mutate runs fn on an editing session for the document in the URL and
// saves the result. Nothing is saved when fn fails. A nil result is
// answered with 204.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, status int, fn func(*editor.Session) (any, error)) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := editor.Open(ctx, s.store, id, editor.WithEngine(s.engine), editor.WithLogger(s.logger))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := fn(sess)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := sess.Save(ctx, s.store); err != nil {
		s.writeError(w, r, err)
		return
	}
	if out == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, status, out)
}

func (s *Server) addNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mutate(w, r, http.StatusCreated, func(sess *editor.Session) (any, error) {
		id, err := sess.AddChild(req.ParentID, req.Label)
		if err != nil {
			return nil, err
		}
		n, _ := sess.Graph().Node(id)
		return codec.NodeOf(n), nil
	})
}

func (s *Server) updateNode(w http.ResponseWriter, r *http.Request) {
	var req updateNodeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Label == nil && req.Position == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "label or position is required"))
		return
	}
	nodeID := chi.URLParam(r, "nodeID")
	s.mutate(w, r, http.StatusOK, func(sess *editor.Session) (any, error) {
		if req.Label != nil {
			if err := sess.Rename(nodeID, *req.Label); err != nil {
				return nil, err
			}
		}
		if req.Position != nil {
			if err := sess.Move(nodeID, *req.Position); err != nil {
				return nil, err
			}
		}
		n, _ := sess.Graph().Node(nodeID)
		return codec.NodeOf(n), nil
	})
}

func (s *Server) deleteNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	s.mutate(w, r, http.StatusNoContent, func(sess *editor.Session) (any, error) {
		return nil, sess.Delete(nodeID)
	})
}

func (s *Server) connect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mutate(w, r, http.StatusCreated, func(sess *editor.Session) (any, error) {
		if err := sess.Connect(req.SourceID, req.TargetID); err != nil {
			return nil, err
		}
		for _, e := range sess.Graph().Edges() {
			if e.SourceID == req.SourceID && e.TargetID == req.TargetID {
				return codec.EdgeOf(e), nil
			}
		}
		return nil, errors.New(errors.ErrCodeInternal, "edge %s -> %s missing after connect", req.SourceID, req.TargetID)
	})
}

func (s *Server) disconnect(w http.ResponseWriter, r *http.Request) {
	edgeID := chi.URLParam(r, "edgeID")
	s.mutate(w, r, http.StatusNoContent, func(sess *editor.Session) (any, error) {
		return nil, sess.Disconnect(edgeID)
	})
}

// =============================================================================
// Rendering
// =============================================================================

func (s *Server) dot(r *http.Request) (string, error) {
	doc, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return "", storeError(err, "load")
	}
	g, _ := doc.MindMap()
	return nodelink.ToDOT(g, nodelink.Options{
		Title:    doc.Title,
		Detailed: r.URL.Query().Get("detailed") == "true",
	}), nil
}

func (s *Server) renderDOT(w http.ResponseWriter, r *http.Request) {
	dot, err := s.dot(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = w.Write([]byte(dot))
}

// renderSVG serves the rendered diagram. Renders are cached by the hash of
// their DOT source, so any edit yields a new key.
func (s *Server) renderSVG(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dot, err := s.dot(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	key := s.keyer.RenderKey(cache.Hash([]byte(dot)), "svg")
	svg, hit, err := s.renders.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "render")
		if svg, err = nodelink.RenderSVG(ctx, dot); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "render svg"))
			return
		}
		if err := s.renders.Set(ctx, key, svg, s.renderTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "render", len(svg))
		}
	} else {
		observability.Cache().OnCacheHit(ctx, "render")
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}
