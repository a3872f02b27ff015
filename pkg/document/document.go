// Package document defines the persisted unit of the mind-map editor: a
// graph plus the metadata a learning platform keeps about it.
//
// A [Document] is what stores load and save. Its Graph field holds the
// [codec.Payload] form, so any store that can persist plain values can hold
// a document; call [Document.MindMap] to get a repaired, editable graph.
package document

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/matzehuels/mindmap/pkg/codec"
	"github.com/matzehuels/mindmap/pkg/errors"
	"github.com/matzehuels/mindmap/pkg/mindmap"
)

// Field limits enforced by [Document.Validate].
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxCategoryLength    = 100
	MaxTags              = 32
	MaxTagLength         = 50
)

// Visibility controls who may see a document.
type Visibility string

// Visibility values.
const (
	VisibilityPublic        Visibility = "public"
	VisibilityPrivate       Visibility = "private"
	VisibilityCollaborative Visibility = "collaborative"
)

// Status is the publication state of a document.
type Status string

// Status values.
const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// ParseVisibility parses a visibility name. Empty means private.
func ParseVisibility(s string) (Visibility, error) {
	switch v := Visibility(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return VisibilityPrivate, nil
	case VisibilityPublic, VisibilityPrivate, VisibilityCollaborative:
		return v, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "visibility must be one of public, private, collaborative; got %q", s)
}

// ParseStatus parses a status name. Empty means draft.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return StatusDraft, nil
	case StatusDraft, StatusPublished, StatusArchived:
		return st, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "status must be one of draft, published, archived; got %q", s)
}

// Document is a stored mind map.
type Document struct {
	ID          string        `json:"id" bson:"_id" yaml:"id" validate:"required"`
	Title       string        `json:"title" bson:"title" yaml:"title" validate:"required,max=200"`
	Description string        `json:"description,omitempty" bson:"description,omitempty" yaml:"description,omitempty" validate:"max=2000"`
	Category    string        `json:"category,omitempty" bson:"category,omitempty" yaml:"category,omitempty" validate:"max=100"`
	Visibility  Visibility    `json:"visibility" bson:"visibility" yaml:"visibility" validate:"oneof=public private collaborative"`
	Status      Status        `json:"status" bson:"status" yaml:"status" validate:"oneof=draft published archived"`
	Tags        []string      `json:"tags,omitempty" bson:"tags,omitempty" yaml:"tags,omitempty" validate:"max=32,dive,max=50"`
	Graph       codec.Payload `json:"graph" bson:"graph" yaml:"graph"`
	CreatedAt   time.Time     `json:"createdAt" bson:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt" bson:"updatedAt" yaml:"updatedAt"`
}

// Summary is the list view of a document, without its graph.
type Summary struct {
	ID         string     `json:"id" bson:"_id"`
	Title      string     `json:"title" bson:"title"`
	Category   string     `json:"category,omitempty" bson:"category,omitempty"`
	Visibility Visibility `json:"visibility" bson:"visibility"`
	Status     Status     `json:"status" bson:"status"`
	Tags       []string   `json:"tags,omitempty" bson:"tags,omitempty"`
	Nodes      int        `json:"nodes" bson:"nodes"`
	UpdatedAt  time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// New creates a private draft with a fresh id and a graph holding only a
// root node. The root is labeled with the title when it is not blank.
func New(title string) *Document {
	title = strings.TrimSpace(title)
	now := time.Now().UTC()
	g := mindmap.NewEngine(mindmap.WithRootLabel(title)).CreateRoot()
	return &Document{
		ID:         uuid.NewString(),
		Title:      title,
		Visibility: VisibilityPrivate,
		Status:     StatusDraft,
		Graph:      codec.Serialize(g),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// MindMap returns the document's graph, repaired if the stored payload
// breaks any invariant.
func (d *Document) MindMap() (mindmap.Graph, codec.Report) {
	return codec.Repair(d.Graph)
}

// SetMindMap stores g as the document's graph and bumps UpdatedAt.
func (d *Document) SetMindMap(g mindmap.Graph) {
	d.Graph = codec.Serialize(g)
	d.Touch()
}

// Touch sets UpdatedAt to now.
func (d *Document) Touch() {
	d.UpdatedAt = time.Now().UTC()
}

// Normalize trims text fields, fills in default visibility and status, and
// normalizes tags. It does not validate.
func (d *Document) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Category = strings.TrimSpace(d.Category)
	if d.Visibility == "" {
		d.Visibility = VisibilityPrivate
	}
	if d.Status == "" {
		d.Status = StatusDraft
	}
	d.Tags = NormalizeTags(d.Tags)
}

// Summary returns the list view of d.
func (d *Document) Summary() Summary {
	return Summary{
		ID:         d.ID,
		Title:      d.Title,
		Category:   d.Category,
		Visibility: d.Visibility,
		Status:     d.Status,
		Tags:       slices.Clone(d.Tags),
		Nodes:      len(d.Graph.Nodes),
		UpdatedAt:  d.UpdatedAt,
	}
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	out := *d
	out.Tags = slices.Clone(d.Tags)
	out.Graph = d.Graph.Clone()
	return &out
}

// NormalizeTags treats tags as a set: it trims and lowercases every tag,
// drops blanks and duplicates, and sorts the result. Returns nil for no
// tags.
func NormalizeTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// =============================================================================
// Validation
// =============================================================================

var validate = validator.New()

// Validate checks the document's metadata and id. It returns INVALID_INPUT
// (or INVALID_ID for a bad id) describing every failing field. The graph is
// not checked: it is repaired on load instead.
func (d *Document) Validate() error {
	if err := errors.ValidateID("document", d.ID); err != nil {
		return err
	}
	if err := validate.Struct(d); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid document")
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return errors.New(errors.ErrCodeInvalidInput, "%s", strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		if e.Kind().String() == "slice" {
			return fmt.Sprintf("%s must have at most %s entries", field, e.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
