// Package origin implements the allow-list check applied to the sender of
// cross-boundary authentication events. Login and logout events from the
// authenticated website must pass the gate before they are allowed to touch
// session state; events failing the gate are rejected with
// ErrUnauthorizedOrigin and produce no state change.
package origin
