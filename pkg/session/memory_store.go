package session

import (
	"context"
	"sync"
)

// MemoryStore implements Store using in-memory storage. Safe for concurrent
// use. Sessions are copied on the way in and out so callers can never observe
// a partial write.
type MemoryStore struct {
	mu      sync.RWMutex
	session *Session
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load retrieves the current session.
func (m *MemoryStore) Load(ctx context.Context) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.session == nil {
		return nil, ErrNoSession
	}

	sessionCopy := *m.session
	return &sessionCopy, nil
}

// Save persists the session, replacing any previous one.
func (m *MemoryStore) Save(ctx context.Context, session *Session) error {
	if !session.Present() {
		return ErrInvalidCandidate
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sessionCopy := *session
	m.session = &sessionCopy
	return nil
}

// Clear removes the session.
func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = nil
	return nil
}
