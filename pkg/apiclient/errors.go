package apiclient

import "errors"

var (
	// ErrInvalidBaseURL is returned when the configured base URL is empty,
	// unparseable, or not http(s).
	ErrInvalidBaseURL = errors.New("apiclient.invalid_base_url")

	// ErrRequestFailed wraps transport-level failures and non-2xx responses
	// that carry no more specific meaning.
	ErrRequestFailed = errors.New("apiclient.request_failed")
)
