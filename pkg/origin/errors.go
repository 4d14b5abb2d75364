package origin

import "errors"

var (
	// ErrUnauthorizedOrigin indicates a cross-boundary event arrived from an
	// origin that is not on the allow-list.
	ErrUnauthorizedOrigin = errors.New("origin.unauthorized")

	// ErrInvalidOrigin indicates a malformed entry in the configured
	// allow-list.
	ErrInvalidOrigin = errors.New("origin.invalid")
)
