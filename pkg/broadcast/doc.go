// Package broadcast implements best-effort fan-out of state-change events to
// every attached page context matching the supported site patterns.
//
// A Registry tracks transient targets (one per open tab); a Dispatcher
// enumerates the targets whose host matches a configured glob and delivers
// the event to each one independently and concurrently. There is no ordering
// across targets and no acknowledgment beyond a Tally of delivered and
// failed attempts: this is at-most-once, unreliable notification by design.
// A context that missed a broadcast reconciles by asking for auth state
// directly on its next interaction.
package broadcast
