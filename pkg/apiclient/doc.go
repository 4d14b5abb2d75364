// Package apiclient is the HTTP client for the knugget backend API.
//
// It covers the endpoints the coordinator depends on: token refresh,
// content submission, and YouTube summary generation and lookup. All
// requests carry JSON bodies and, where required, a bearer access token.
// Responses are unwrapped from the backend's standard envelope.
//
// The client maps authentication rejections onto the sentinel errors the
// consuming packages dispatch on: a 401/403 from the refresh endpoint
// yields session.ErrRefreshRejected, and from any authenticated endpoint
// yields saves.ErrUnauthorized. Every other failure is reported as a
// plain error and treated as transient by callers.
package apiclient
