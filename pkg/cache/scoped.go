package cache

// ScopedKeyer wraps a Keyer with a prefix, giving several servers or
// tenants separate namespaces in one shared cache:
//
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
//	staging.DocumentKey("abc") // "staging:mindmap:doc:abc"
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// DocumentKey returns the prefixed document key.
func (k *ScopedKeyer) DocumentKey(id string) string {
	return k.prefix + k.inner.DocumentKey(id)
}

// ListKey returns the prefixed listing key.
func (k *ScopedKeyer) ListKey() string {
	return k.prefix + k.inner.ListKey()
}

// RenderKey returns the prefixed render key.
func (k *ScopedKeyer) RenderKey(graphHash, format string) string {
	return k.prefix + k.inner.RenderKey(graphHash, format)
}
