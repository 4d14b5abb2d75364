// Package httpserver wraps net/http with graceful shutdown, configurable
// timeouts and a health-check handler.
//
// Run starts the server and blocks until the context is cancelled, an
// interrupt or TERM signal arrives, or the listener fails; it then shuts
// down gracefully within the configured deadline. Construction is done
// through New or NewFromConfig with functional options. Listen errors are
// wrapped with ErrStart and shutdown errors with ErrShutdown.
package httpserver
