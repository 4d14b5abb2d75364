package broadcast

import (
	"context"
	"encoding/json"
)

// Event is a state-change notification fanned out to page contexts.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEvent builds an Event with a JSON-encoded payload.
func NewEvent(eventType string, payload any) (Event, error) {
	if payload == nil {
		return Event{Type: eventType}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, Payload: data}, nil
}

// DeliverFunc pushes one event into a single page context. A nil or failing
// listener is the target's problem alone; the dispatcher logs and counts the
// failure without letting it touch other targets.
type DeliverFunc func(ctx context.Context, event Event) error

// Tally is the outcome of one best-effort fan-out. Callers needing stronger
// guarantees than at-most-once delivery should poll state directly instead
// of relying on the broadcast.
type Tally struct {
	Matched   int
	Delivered int
	Failed    int
}
