package saves

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DefaultMongoCollection is the collection name used when none is provided.
const DefaultMongoCollection = "save_records"

// MongoStorage implements Storage on a MongoDB collection with the record id
// as _id. ReplaceOne with upsert is a single atomic document operation, which
// satisfies the per-id upsert contract.
type MongoStorage struct {
	collection *mongo.Collection
}

// NewMongoStorage creates a Mongo-backed record storage.
func NewMongoStorage(db *mongo.Database, collection string) *MongoStorage {
	if collection == "" {
		collection = DefaultMongoCollection
	}
	return &MongoStorage{collection: db.Collection(collection)}
}

// Upsert inserts or replaces the record with the same id.
func (m *MongoStorage) Upsert(ctx context.Context, record Record) error {
	if record.ID == "" {
		return ErrEmptyRecordID
	}

	_, err := m.collection.ReplaceOne(ctx,
		bson.M{"_id": record.ID},
		record,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("saves: upsert %s: %w", record.ID, err)
	}
	return nil
}

// Get retrieves a record by id.
func (m *MongoStorage) Get(ctx context.Context, id string) (*Record, error) {
	var record Record
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("saves: get %s: %w", id, err)
	}
	return &record, nil
}

// ListPending returns every record still awaiting delivery.
func (m *MongoStorage) ListPending(ctx context.Context) ([]Record, error) {
	cursor, err := m.collection.Find(ctx, bson.M{"sync_status": StatusPending})
	if err != nil {
		return nil, fmt.Errorf("saves: list pending: %w", err)
	}
	defer cursor.Close(ctx)

	var pending []Record
	if err := cursor.All(ctx, &pending); err != nil {
		return nil, fmt.Errorf("saves: decode pending records: %w", err)
	}
	return pending, nil
}
