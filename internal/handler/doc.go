// Package handler routes decoded protocol frames to the coordinator's
// components and translates their outcomes back into wire results.
//
// External auth frames pass the origin gate before any state changes;
// everything else is open to connected page contexts. The package also
// provides the adapter that turns session auth-state changes into
// AUTH_CHANGED broadcasts.
package handler
