package mindmap

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestSequenceGenerator(t *testing.T) {
	g := NewSequenceGenerator()
	got := []string{
		g.NewID(KindNode),
		g.NewID(KindEdge),
		g.NewID(KindNode),
		g.NewID(KindEdge),
	}
	want := []string{"n1", "e1", "n2", "e2"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("id %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSequenceGeneratorConcurrent(t *testing.T) {
	g := NewSequenceGenerator()
	const workers, per = 8, 100

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range per {
				id := g.NewID(KindNode)
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*per {
		t.Errorf("got %d unique ids, want %d", len(seen), workers*per)
	}
}

func TestUUIDGenerator(t *testing.T) {
	id := UUIDGenerator{}.NewID(KindNode)
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("NewID() = %q is not a UUID: %v", id, err)
	}
}
