package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/mindmap/pkg/errors"
	"github.com/matzehuels/mindmap/pkg/mindmap"
)

// Format is an on-disk encoding of a [Payload].
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name. "yml" is accepted as YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unsupported format %q (use json or yaml)", s)
}

// FormatFromPath infers the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// =============================================================================
// Decoding
// =============================================================================

// Decode reads a payload in the given format from r without repairing it.
// Syntax errors are returned as INVALID_FORMAT; damaged entries are kept
// for [Repair] to report. Decode does not close r.
func Decode(r io.Reader, format Format) (Payload, error) {
	var p Payload
	var err error
	switch format {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&p)
		if err == io.EOF {
			err = nil
		}
	default:
		err = json.NewDecoder(r).Decode(&p)
	}
	if err != nil {
		return Payload{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", format)
	}
	return p, nil
}

// Read decodes a payload from r and repairs it into a graph. Only syntax
// errors fail; structural problems are fixed and listed in the report.
func Read(r io.Reader, format Format) (mindmap.Graph, Report, error) {
	p, err := Decode(r, format)
	if err != nil {
		return mindmap.Graph{}, Report{}, err
	}
	g, report := Repair(p)
	return g, report, nil
}

// Import reads a graph file at path, choosing the format by extension.
func Import(path string) (mindmap.Graph, Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return mindmap.Graph{}, Report{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, FormatFromPath(path))
}

// =============================================================================
// Encoding
// =============================================================================

// Encode writes p to w in the given format.
func Encode(w io.Writer, p Payload, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}

// Write serializes g and writes it to w.
func Write(g mindmap.Graph, w io.Writer, format Format) error {
	return Encode(w, Serialize(g), format)
}

// Export writes g to a file at path. An empty format is inferred from the
// file extension.
func Export(g mindmap.Graph, path string, format Format) error {
	if format == "" {
		format = FormatFromPath(path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(g, f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
