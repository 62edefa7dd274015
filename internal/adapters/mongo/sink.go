// Package mongo persists thumbnails to a MongoDB collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bft-labs/thumbship/internal/domain"
)

// ErrNotOpen is returned by BulkInsert before Open or after Close.
var ErrNotOpen = errors.New("mongo sink is not open")

// IsURI reports whether uri names a MongoDB deployment.
func IsURI(uri string) bool {
	return strings.HasPrefix(uri, "mongodb://") || strings.HasPrefix(uri, "mongodb+srv://")
}

// Sink implements ports.PersistenceSink on one collection. Documents carry
// id, index and thumbnail fields; Open creates a unique index on id so a
// re-submitted image is rejected as a duplicate.
type Sink struct {
	uri        string
	database   string
	collection string

	mu     sync.RWMutex
	client *mongo.Client
	coll   *mongo.Collection
}

// NewSink creates a sink. No connection is made until Open.
func NewSink(uri, database, collection string) *Sink {
	return &Sink{uri: uri, database: database, collection: collection}
}

// Open connects, verifies the deployment is reachable and ensures the id index.
func (s *Sink) Open(ctx context.Context) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.uri))
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return fmt.Errorf("ping: %w", err)
	}

	coll := client.Database(s.database).Collection(s.collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return fmt.Errorf("create id index: %w", err)
	}

	s.mu.Lock()
	s.client = client
	s.coll = coll
	s.mu.Unlock()
	return nil
}

// BulkInsert inserts records unordered.
func (s *Sink) BulkInsert(ctx context.Context, records []domain.PersistableImage) (domain.InsertResult, error) {
	s.mu.RLock()
	coll := s.coll
	s.mu.RUnlock()
	if coll == nil {
		return domain.InsertResult{}, ErrNotOpen
	}
	if len(records) == 0 {
		return domain.InsertResult{}, nil
	}

	docs := make([]interface{}, len(records))
	for i, r := range records {
		docs[i] = r
	}
	_, err := coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return insertResult(records, err)
}

// Close disconnects the client. Closing an unopened sink is a no-op.
func (s *Sink) Close(ctx context.Context) error {
	s.mu.Lock()
	client := s.client
	s.client = nil
	s.coll = nil
	s.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

// insertResult maps an unordered InsertMany error onto per-record failures.
// Write errors carry the position of the rejected document. A write concern
// error still fails the call, but the documents the primary accepted are
// reported alongside it. Any other error fails the whole call.
func insertResult(records []domain.PersistableImage, err error) (domain.InsertResult, error) {
	if err == nil {
		return domain.InsertResult{Inserted: len(records)}, nil
	}

	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) || (bwe.WriteConcernError == nil && len(bwe.WriteErrors) == 0) {
		return domain.InsertResult{}, err
	}

	result := domain.InsertResult{Inserted: len(records)}
	for _, we := range bwe.WriteErrors {
		if we.Index < 0 || we.Index >= len(records) {
			return domain.InsertResult{}, err
		}
		rec := records[we.Index]
		cause := domain.ErrPersistRecord
		if isDuplicateKey(we.Code) {
			cause = domain.ErrDuplicateRecord
		}
		result.Failures = append(result.Failures, domain.RecordFailure{
			ID:    rec.ID,
			Index: rec.Index,
			Err:   fmt.Errorf("%w: %s", cause, we.Message),
		})
		result.Inserted--
	}
	if bwe.WriteConcernError != nil {
		return result, err
	}
	return result, nil
}

// Duplicate key codes as reported in write errors, including the legacy
// 11001 and the mongos variant 12582.
func isDuplicateKey(code int) bool {
	return code == 11000 || code == 11001 || code == 12582
}
