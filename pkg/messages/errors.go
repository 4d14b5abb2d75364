package messages

import "errors"

var (
	// ErrUnknownType is returned when a frame carries a type outside the
	// protocol's closed set.
	ErrUnknownType = errors.New("messages.unknown_type")

	// ErrMalformedFrame is returned when a frame is not valid JSON or is
	// missing the type tag.
	ErrMalformedFrame = errors.New("messages.malformed_frame")

	// ErrMalformedPayload is returned when a payload does not decode into
	// the shape its message type requires.
	ErrMalformedPayload = errors.New("messages.malformed_payload")
)
