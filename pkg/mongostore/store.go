// Package mongostore wraps the MongoDB Atlas connection used by every stage of
// the pipeline: the CSV loader writes through it and the translate/evaluate
// commands execute normalized query payloads through it.
package mongostore

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dtnitsch/procurement-nlq/pkg/schema"
)

// Config holds the Atlas credentials. All three values come from the
// environment; none have defaults.
type Config struct {
	Username   string
	Password   string
	ClusterURL string
}

// ConfigFromEnv reads MONGODB_USERNAME, MONGODB_PASSWORD and
// MONGODB_CLUSTER_URL. Missing values are an error up front rather than a
// connection failure later.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Username:   os.Getenv("MONGODB_USERNAME"),
		Password:   os.Getenv("MONGODB_PASSWORD"),
		ClusterURL: os.Getenv("MONGODB_CLUSTER_URL"),
	}
	if cfg.Username == "" || cfg.Password == "" || cfg.ClusterURL == "" {
		return Config{}, fmt.Errorf("MONGODB_USERNAME, MONGODB_PASSWORD and MONGODB_CLUSTER_URL must be set")
	}
	return cfg, nil
}

// URI builds the mongodb+srv connection string. Credentials are URL-escaped so
// passwords with reserved characters survive.
func (c Config) URI() string {
	return fmt.Sprintf(
		"mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority&appName=Procurement",
		url.QueryEscape(c.Username),
		url.QueryEscape(c.Password),
		c.ClusterURL,
	)
}

// Store is a connected handle on the procurement collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect opens a client against Atlas and binds the procurement collection.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	return &Store{
		client: client,
		coll:   client.Database(schema.DatabaseName).Collection(schema.CollectionName),
	}, nil
}

// WarmUp issues a cheap findOne so the first real query doesn't pay the
// connection-pool spin-up cost.
func (s *Store) WarmUp(ctx context.Context) error {
	err := s.coll.FindOne(ctx, bson.M{}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err != nil && err != mongo.ErrNoDocuments {
		return fmt.Errorf("failed to warm up MongoDB connection: %w", err)
	}
	return nil
}

// Run executes a normalized query payload and returns the decoded documents.
// Payloads carrying aggregate:true run as aggregation pipelines; everything
// else runs as a find with the map as filter, matching the runner contract the
// prompts describe.
func (s *Store) Run(ctx context.Context, query map[string]any) ([]map[string]any, error) {
	var cursor *mongo.Cursor
	var err error

	if agg, present := query["aggregate"]; present {
		if isAgg, _ := agg.(bool); isAgg {
			pipeline, _ := query["pipeline"].([]any)
			cursor, err = s.coll.Aggregate(ctx, pipeline)
		} else {
			cursor, err = s.coll.Find(ctx, query)
		}
	} else {
		cursor, err = s.coll.Find(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	defer cursor.Close(ctx)

	var results []map[string]any
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}
	return results, nil
}

// Drop removes the collection entirely. The loader calls this so every load
// starts from a clean slate.
func (s *Store) Drop(ctx context.Context) error {
	if err := s.coll.Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	return nil
}

// InsertBatch writes one batch of transformed documents.
func (s *Store) InsertBatch(ctx context.Context, docs []any) error {
	if len(docs) == 0 {
		return nil
	}
	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}
	return nil
}

// EnsureIndexes creates the single-field indexes the common query patterns rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	models := make([]mongo.IndexModel, 0, len(schema.IndexFields))
	for _, field := range schema.IndexFields {
		models = append(models, mongo.IndexModel{
			Keys: bson.D{{Key: field, Value: 1}},
		})
	}

	if _, err := s.coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// SizeMB returns the collection's data size from collStats. The free Atlas
// tier caps storage at 512MB, so the loader checks this before indexing.
func (s *Store) SizeMB(ctx context.Context) (float64, error) {
	var stats struct {
		Size float64 `bson:"size"`
	}
	err := s.coll.Database().RunCommand(ctx, bson.D{{Key: "collStats", Value: schema.CollectionName}}).Decode(&stats)
	if err != nil {
		return 0, fmt.Errorf("failed to read collection stats: %w", err)
	}
	return stats.Size / (1024 * 1024), nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
