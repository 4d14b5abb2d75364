package saves

import (
	"context"
	"sync"
)

// MemoryStorage implements Storage in memory. One mutex over the map makes
// every upsert atomic per id. Intended for tests and stateless deployments.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStorage creates an empty in-memory record storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string]Record)}
}

// Upsert inserts or replaces the record with the same id.
func (m *MemoryStorage) Upsert(ctx context.Context, record Record) error {
	if record.ID == "" {
		return ErrEmptyRecordID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[record.ID] = record
	return nil
}

// Get retrieves a record by id.
func (m *MemoryStorage) Get(ctx context.Context, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &record, nil
}

// ListPending returns every record still awaiting delivery.
func (m *MemoryStorage) ListPending(ctx context.Context) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var pending []Record
	for _, record := range m.records {
		if record.Pending() {
			pending = append(pending, record)
		}
	}
	return pending, nil
}

// Len returns the total number of stored records.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
