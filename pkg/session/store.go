package session

import "context"

// Store defines the interface for session persistence. The store holds at
// most one session; Save replaces any previous session wholesale and Load
// returns ErrNoSession when the store is empty. Reads and writes must be
// atomic with respect to each other: a partially written session must never
// be observable.
//
// Storage I/O failures are surfaced to the caller rather than swallowed;
// callers treat a failed Load as "no session" and may retry writes.
type Store interface {
	// Load retrieves the current session, or ErrNoSession.
	Load(ctx context.Context) (*Session, error)

	// Save persists the session, replacing any previous one.
	Save(ctx context.Context, session *Session) error

	// Clear removes the session. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error
}
