package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the key under which the session is stored when no
// custom key is provided.
const DefaultRedisKey = "coordinator:session"

// RedisStore implements Store on top of Redis. The whole session is stored
// as a single JSON value under one key, so GET, SET and DEL give the
// wholesale-replacement atomicity the Store contract requires.
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client redis.UniversalClient, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// Load retrieves the current session.
func (r *RedisStore) Load(ctx context.Context) (*Session, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("session: load: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		// A corrupt record is indistinguishable from no session for callers,
		// but the error is surfaced so the caller can decide to clear it.
		return nil, fmt.Errorf("session: decode stored session: %w", err)
	}

	return &session, nil
}

// Save persists the session, replacing any previous one.
func (r *RedisStore) Save(ctx context.Context, session *Session) error {
	if !session.Present() {
		return ErrInvalidCandidate
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session: encode session: %w", err)
	}

	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

// Clear removes the session.
func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}
