package cache

// Keyer generates cache keys for the values the store layer caches.
type Keyer interface {
	// DocumentKey is the key of a full stored document.
	DocumentKey(id string) string

	// ListKey is the key of the document listing.
	ListKey() string

	// RenderKey is the key of a rendered artifact of a graph. graphHash is
	// the [Hash] of the serialized graph, so edits produce new keys.
	RenderKey(graphHash, format string) string
}

// DefaultKeyer produces keys of the form "mindmap:doc:<id>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// DocumentKey returns "mindmap:doc:<id>".
func (DefaultKeyer) DocumentKey(id string) string {
	return "mindmap:doc:" + id
}

// ListKey returns "mindmap:list".
func (DefaultKeyer) ListKey() string {
	return "mindmap:list"
}

// RenderKey hashes the graph hash together with the format.
func (DefaultKeyer) RenderKey(graphHash, format string) string {
	return hashKey("mindmap:render", graphHash, format)
}
