package saves

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the hash under which records are stored when no custom
// key is provided.
const DefaultRedisKey = "coordinator:saves"

// RedisStorage implements Storage on a Redis hash: one field per record id.
// HSET on a single field is atomic, giving the per-id upsert guarantee
// without any client-side locking.
type RedisStorage struct {
	client redis.UniversalClient
	key    string
}

// NewRedisStorage creates a Redis-backed record storage.
func NewRedisStorage(client redis.UniversalClient, key string) *RedisStorage {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStorage{client: client, key: key}
}

// Upsert inserts or replaces the record with the same id.
func (r *RedisStorage) Upsert(ctx context.Context, record Record) error {
	if record.ID == "" {
		return ErrEmptyRecordID
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("saves: encode record: %w", err)
	}

	if err := r.client.HSet(ctx, r.key, record.ID, data).Err(); err != nil {
		return fmt.Errorf("saves: upsert %s: %w", record.ID, err)
	}
	return nil
}

// Get retrieves a record by id.
func (r *RedisStorage) Get(ctx context.Context, id string) (*Record, error) {
	data, err := r.client.HGet(ctx, r.key, id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("saves: get %s: %w", id, err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("saves: decode record %s: %w", id, err)
	}
	return &record, nil
}

// ListPending returns every record still awaiting delivery.
func (r *RedisStorage) ListPending(ctx context.Context) ([]Record, error) {
	all, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("saves: list: %w", err)
	}

	var pending []Record
	for id, data := range all {
		var record Record
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			return nil, fmt.Errorf("saves: decode record %s: %w", id, err)
		}
		if record.Pending() {
			pending = append(pending, record)
		}
	}
	return pending, nil
}
