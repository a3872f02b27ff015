//go:build integration

package mongostore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/matzehuels/mindmap/pkg/store"
	"github.com/matzehuels/mindmap/pkg/store/storetest"
)

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("MINDMAP_MONGO_URI")
	if uri == "" {
		t.Skip("MINDMAP_MONGO_URI not set")
	}

	storetest.Run(t, func(t *testing.T) store.Store {
		ctx := context.Background()
		s, err := New(ctx, Config{
			URI:        uri,
			Database:   "mindmap_test",
			Collection: fmt.Sprintf("maps_%d", time.Now().UnixNano()),
		})
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() {
			_ = s.coll.Drop(context.Background())
			_ = s.Close()
		})
		return s
	})
}

func TestNewRequiresURI(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Error("expected error for empty URI")
	}
}
