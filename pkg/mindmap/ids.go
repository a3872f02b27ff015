package mindmap

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// IDKind tells an [IDGenerator] whether the id is for a node or an edge.
type IDKind int

const (
	// KindNode requests a node id.
	KindNode IDKind = iota
	// KindEdge requests an edge id.
	KindEdge
)

// IDGenerator allocates candidate ids. The engine rejects candidates that
// are already in use and asks again, so generators need not know the graph.
type IDGenerator interface {
	NewID(kind IDKind) string
}

// UUIDGenerator produces random version 4 UUIDs. It is the default.
type UUIDGenerator struct{}

// NewID returns a new random UUID string.
func (UUIDGenerator) NewID(IDKind) string { return uuid.NewString() }

// SequenceGenerator produces short readable ids ("n1", "n2", "e1", ...),
// counting nodes and edges separately. It is safe for concurrent use.
type SequenceGenerator struct {
	mu    sync.Mutex
	nodes int
	edges int
}

// NewSequenceGenerator returns a generator whose first ids are "n1" and "e1".
func NewSequenceGenerator() *SequenceGenerator {
	return &SequenceGenerator{}
}

// NewID returns the next id for kind.
func (s *SequenceGenerator) NewID(kind IDKind) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind == KindEdge {
		s.edges++
		return "e" + strconv.Itoa(s.edges)
	}
	s.nodes++
	return "n" + strconv.Itoa(s.nodes)
}
