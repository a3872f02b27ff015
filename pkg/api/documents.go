package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/mindmap/pkg/buildinfo"
	"github.com/matzehuels/mindmap/pkg/codec"
	"github.com/matzehuels/mindmap/pkg/document"
	"github.com/matzehuels/mindmap/pkg/errors"
)

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

type createRequest struct {
	Title       string         `json:"title" validate:"required,max=200"`
	Description string         `json:"description" validate:"max=2000"`
	Category    string         `json:"category" validate:"max=100"`
	Visibility  string         `json:"visibility"`
	Status      string         `json:"status"`
	Tags        []string       `json:"tags"`
	Graph       *codec.Payload `json:"graph"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, storeError(err, "list documents"))
		return
	}
	if list == nil {
		list = []document.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	doc := document.New(req.Title)
	doc.Description = req.Description
	doc.Category = req.Category
	doc.Tags = req.Tags
	var err error
	if doc.Visibility, err = document.ParseVisibility(req.Visibility); err != nil {
		s.writeError(w, r, err)
		return
	}
	if doc.Status, err = document.ParseStatus(req.Status); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Graph != nil {
		s.repairInto(doc, *req.Graph)
	}
	doc.Normalize()
	if err := doc.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Save(r.Context(), doc); err != nil {
		s.writeError(w, r, storeError(err, "save %s", doc.ID))
		return
	}

	w.Header().Set("Location", BasePath+"/"+doc.ID)
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, storeError(err, "load"))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// putDocument creates or replaces a document. The graph is repaired before
// it is stored, so a stored document always holds a valid graph.
func (s *Server) putDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateID("document", id); err != nil {
		s.writeError(w, r, err)
		return
	}

	var doc document.Document
	if err := decodeJSON(r, &doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	doc.ID = id

	unlock := s.locks.lock(id)
	defer unlock()

	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = s.createdAt(r.Context(), id)
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now().UTC()
	}
	s.repairInto(&doc, doc.Graph)
	doc.Normalize()
	if err := doc.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Save(r.Context(), &doc); err != nil {
		s.writeError(w, r, storeError(err, "save %s", id))
		return
	}
	writeJSON(w, http.StatusOK, &doc)
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	unlock := s.locks.lock(id)
	defer unlock()

	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, storeError(err, "delete %s", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// createdAt returns the creation time of the stored document with the
// given id, or now if there is none.
func (s *Server) createdAt(ctx context.Context, id string) time.Time {
	if prev, err := s.store.Load(ctx, id); err == nil && !prev.CreatedAt.IsZero() {
		return prev.CreatedAt
	}
	return time.Now().UTC()
}

// repairInto replaces doc's graph with the repaired form of p.
func (s *Server) repairInto(doc *document.Document, p codec.Payload) {
	g, report := codec.Repair(p)
	if report.Changed() {
		s.logger.Warn("repaired submitted graph", "doc", doc.ID, "issues", len(report.Issues), "kinds", report.Kinds())
	}
	doc.Graph = codec.Serialize(g)
}

// storeError passes coded store errors through and reports anything else
// as PERSISTENCE_ERROR.
func storeError(err error, format string, args ...any) error {
	if errors.GetCode(err) != "" {
		return err
	}
	return errors.Persistence(err, format, args...)
}

// decodeJSON reads a JSON body into v without struct validation.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid request body")
	}
	return nil
}
