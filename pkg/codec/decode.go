package codec

import (
	"encoding/json"
	stderrors "errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Lenient Decoding
// =============================================================================

// UnmarshalJSON decodes the node and edge lists entry by entry. An entry
// with a wrongly typed field keeps its other fields and the bad one is left
// zero; an entry that cannot be decoded at all is dropped. Either way the
// damage is reported by [Repair] instead of failing the whole payload.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var raw struct {
		Nodes json.RawMessage `json:"nodes"`
		Edges json.RawMessage `json:"edges"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var issues []Issue
	nodes := decodeJSONList(raw.Nodes, "nodes", Node.key, &issues)
	edges := decodeJSONList(raw.Edges, "edges", Edge.key, &issues)
	*p = Payload{Nodes: nodes, Edges: edges, decodeIssues: issues}
	return nil
}

// UnmarshalYAML decodes the node and edge lists entry by entry, with the
// same recovery as [Payload.UnmarshalJSON].
func (p *Payload) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Nodes yaml.Node `yaml:"nodes"`
		Edges yaml.Node `yaml:"edges"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	var issues []Issue
	nodes := decodeYAMLList(&raw.Nodes, "nodes", Node.key, &issues)
	edges := decodeYAMLList(&raw.Edges, "edges", Edge.key, &issues)
	*p = Payload{Nodes: nodes, Edges: edges, decodeIssues: issues}
	return nil
}

func (n Node) key() string { return n.ID }
func (e Edge) key() string { return e.ID }

func decodeJSONList[T any](raw json.RawMessage, field string, key func(T) string, issues *[]Issue) []T {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		*issues = append(*issues, Issue{Kind: IssueBadEntry, Detail: fmt.Sprintf("dropped %s: %v", field, err)})
		return nil
	}

	out := make([]T, 0, len(items))
	for i, item := range items {
		var v T
		err := json.Unmarshal(item, &v)
		var typeErr *json.UnmarshalTypeError
		switch {
		case err == nil:
		case stderrors.As(err, &typeErr):
			*issues = append(*issues, Issue{Kind: IssueBadField, ID: key(v), Detail: fmt.Sprintf("%s[%d]: reset %s", field, i, typeErr.Field)})
		default:
			*issues = append(*issues, Issue{Kind: IssueBadEntry, Detail: fmt.Sprintf("dropped %s[%d]: %v", field, i, err)})
			continue
		}
		out = append(out, v)
	}
	return out
}

func decodeYAMLList[T any](list *yaml.Node, field string, key func(T) string, issues *[]Issue) []T {
	if list.Kind == yaml.AliasNode {
		list = list.Alias
	}
	if list.Kind == 0 || list.Tag == "!!null" {
		return nil
	}
	if list.Kind != yaml.SequenceNode {
		*issues = append(*issues, Issue{Kind: IssueBadEntry, Detail: fmt.Sprintf("dropped %s: line %d is not a list", field, list.Line)})
		return nil
	}

	out := make([]T, 0, len(list.Content))
	for i, item := range list.Content {
		var v T
		err := item.Decode(&v)
		var typeErr *yaml.TypeError
		switch {
		case err == nil:
		case stderrors.As(err, &typeErr):
			*issues = append(*issues, Issue{Kind: IssueBadField, ID: key(v), Detail: fmt.Sprintf("%s[%d]: %v", field, i, err)})
		default:
			*issues = append(*issues, Issue{Kind: IssueBadEntry, Detail: fmt.Sprintf("dropped %s[%d]: %v", field, i, err)})
			continue
		}
		out = append(out, v)
	}
	return out
}
