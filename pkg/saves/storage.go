package saves

import "context"

// Storage persists the id-keyed record collection. Upsert must be atomic per
// id: two concurrent writers of different records never clobber each other,
// and two writers of the same id resolve last-write-wins. This is the
// serialization point that closes the read-modify-write race a load-all,
// store-all layout would have.
type Storage interface {
	// Upsert inserts the record or replaces the record with the same id.
	Upsert(ctx context.Context, record Record) error

	// Get retrieves a record by id, or ErrRecordNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// ListPending returns every record still awaiting delivery.
	ListPending(ctx context.Context) ([]Record, error)
}
