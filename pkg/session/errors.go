package session

import "errors"

var (
	// ErrNoSession indicates the store holds no session.
	ErrNoSession = errors.New("session.not_found")

	// ErrInvalidCandidate indicates an external login payload is missing
	// the access token or the user identity.
	ErrInvalidCandidate = errors.New("session.invalid_candidate")

	// ErrNoRefreshToken indicates a refresh was requested but the current
	// session has no refresh token.
	ErrNoRefreshToken = errors.New("session.no_refresh_token")

	// ErrRefreshRejected indicates the refresh endpoint explicitly rejected
	// the refresh token. Refreshers must wrap this sentinel for 401/403
	// responses so the manager can distinguish terminal credential failures
	// from transient ones.
	ErrRefreshRejected = errors.New("session.refresh_rejected")

	// ErrNoStore indicates no store is configured.
	ErrNoStore = errors.New("session.no_store")
)
