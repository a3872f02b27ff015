package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/matzehuels/mindmap/pkg/document"
	"github.com/matzehuels/mindmap/pkg/errors"
)

// FileStore keeps one indented JSON file per document in a directory.
// Ids are validated before they become file names.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a store rooted at baseDir.
// If baseDir is empty, defaults to ~/.config/mindmap/maps/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "mindmap", "maps")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) docPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Load(ctx context.Context, id string) (*document.Document, error) {
	if err := errors.ValidateID("document", id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.docPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("document %q not found", id)
		}
		return nil, fmt.Errorf("read document file: %w", err)
	}

	var doc document.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse document %s", id)
	}
	return &doc, nil
}

func (s *FileStore) Save(ctx context.Context, doc *document.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Write to a temp file and rename so readers never see a partial file.
	tmp, err := os.CreateTemp(s.baseDir, "."+doc.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write document file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write document file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("chmod document file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.docPath(doc.ID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename document file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateID("document", id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.docPath(id)); err != nil {
		if os.IsNotExist(err) {
			return errors.NotFound("document %q not found", id)
		}
		return fmt.Errorf("remove document file: %w", err)
	}
	return nil
}

// List reads every document file. Files that cannot be parsed are skipped.
func (s *FileStore) List(ctx context.Context) ([]document.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}

	var out []document.Summary
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, ".") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, name))
		if err != nil {
			continue
		}
		var doc document.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			continue
		}
		out = append(out, doc.Summary())
	}
	SortSummaries(out)
	return out, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the directory holding document files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
