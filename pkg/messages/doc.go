// Package messages defines the wire protocol between the coordinator and
// its page-side clients.
//
// Every frame is an Envelope: a type tag plus a raw JSON payload. The set
// of types is closed; Decode rejects anything outside it so unknown or
// malformed frames fail at the boundary instead of deep inside a handler.
// Payloads are decoded strictly into per-type structs.
package messages
