// Package session owns the coordinator's authentication-session lifecycle:
// acquire via external login, validate, refresh with single-flight guarding,
// expire and revoke. It is the single source of truth every page context
// reconciles against.
//
// The package is storage-agnostic: any datastore satisfying the Store
// interface can be plugged in. A concurrent in-memory implementation and a
// Redis-backed one ship out of the box. The store holds at most one session;
// every lifecycle transition overwrites it wholesale.
//
// # Architecture
//
// A Manager orchestrates the lifecycle. It writes every transition through
// the Store before making it observable in memory, announces changes through
// a Broadcaster, and exchanges refresh tokens through a Refresher. Refresh is
// single-flighted: concurrent calls collapse into at most one network call.
//
// The refresh failure taxonomy is the core correctness property here. A
// missing refresh token or an explicit 401/403 from the refresh endpoint is
// terminal and forces a logout. Everything else (timeout, 5xx, malformed
// body) is transient: the existing session stays untouched and the caller
// may retry later.
//
// # Usage
//
//	manager := session.New(
//	    session.WithStore(session.NewRedisStore(client, "")),
//	    session.WithRefresher(apiClient),
//	    session.WithBroadcaster(dispatcher),
//	)
//
//	if err := manager.Init(ctx); err != nil { ... }
//
//	if manager.RefreshDue() {
//	    manager.Refresh(ctx)
//	}
package session
