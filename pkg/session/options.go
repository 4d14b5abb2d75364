package session

import (
	"context"
	"log/slog"
	"time"
)

// Option is a functional option for configuring the Manager.
type Option func(*Manager)

// WithStore sets a custom session store.
func WithStore(store Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithRefresher sets the external token-refresh endpoint client.
func WithRefresher(refresher Refresher) Option {
	return func(m *Manager) {
		m.refresher = refresher
	}
}

// WithBroadcaster sets the auth-change fan-out target.
func WithBroadcaster(broadcaster Broadcaster) Option {
	return func(m *Manager) {
		m.broadcaster = broadcaster
	}
}

// WithConfig sets custom configuration.
func WithConfig(config Config) Option {
	return func(m *Manager) {
		m.config = config
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithRefreshThreshold sets the remaining lifetime below which a session is
// considered refresh-due.
func WithRefreshThreshold(threshold time.Duration) Option {
	return func(m *Manager) {
		m.config.RefreshThreshold = threshold
	}
}

// WithLoginHook registers a function invoked after every successfully
// applied external login. Used to kick off a save-queue resync, since
// pending records commonly pile up while the user is logged out.
func WithLoginHook(hook func(context.Context)) Option {
	return func(m *Manager) {
		if hook != nil {
			m.onLogin = append(m.onLogin, hook)
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}
