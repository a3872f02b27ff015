// Package mongostore stores mind-map documents in a MongoDB collection.
//
// Each document is one BSON document keyed by its id (_id). The graph is
// stored inline in its codec.Payload form, so the collection can be queried
// with ordinary MongoDB tooling.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/mindmap/pkg/document"
	mmerrors "github.com/matzehuels/mindmap/pkg/errors"
	"github.com/matzehuels/mindmap/pkg/store"
)

// Defaults used when Config leaves a field empty.
const (
	DefaultDatabase   = "mindmap"
	DefaultCollection = "mindmaps"
	connectTimeout    = 10 * time.Second
)

// Config configures a MongoDB connection.
type Config struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Store is a store.Store backed by MongoDB.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

// New connects to MongoDB, verifies the connection and ensures indexes.
// The returned store owns the client and disconnects it on Close.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, mmerrors.New(mmerrors.ErrCodeInvalidInput, "mongo uri is required")
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := NewFromClient(client, cfg.Database, cfg.Collection)
	s.owned = true
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// NewFromClient uses an existing client. Close does not disconnect it.
func NewFromClient(client *mongo.Client, database, collection string) *Store {
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}
	return &Store{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}
}

// EnsureIndexes creates the index List sorts on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, id string) (*document.Document, error) {
	var doc document.Document
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, mmerrors.NotFound("document %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find document %s: %w", id, err)
	}
	return &doc, nil
}

func (s *Store) Save(ctx context.Context, doc *document.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", doc.ID, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return mmerrors.NotFound("document %q not found", id)
	}
	return nil
}

// List projects each document to its summary on the server, so graphs are
// never transferred.
func (s *Store) List(ctx context.Context) ([]document.Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.M{
			"title":      1,
			"category":   1,
			"visibility": 1,
			"status":     1,
			"tags":       1,
			"updatedAt":  1,
			"nodes":      bson.M{"$size": bson.M{"$ifNull": bson.A{"$graph.nodes", bson.A{}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer cur.Close(ctx)

	out := []document.Summary{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode summaries: %w", err)
	}
	return out, nil
}

// Close disconnects the client if the store created it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ store.Store = (*Store)(nil)
