package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Refresher exchanges a refresh token for a renewed session at the external
// token-refresh endpoint. Implementations must wrap ErrRefreshRejected when
// the endpoint explicitly rejects the token (401/403); any other error is
// treated as transient.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*Candidate, error)
}

// Broadcaster fans an auth state change out to interested page contexts.
// Delivery is best-effort; the manager does not inspect the outcome.
type Broadcaster interface {
	AuthChanged(ctx context.Context, authenticated bool, user *User)
}

// Manager owns the authentication-session lifecycle: acquire, validate,
// refresh, expire and revoke. It keeps an in-memory copy of the single
// process-wide session and writes every transition through the Store before
// making it observable.
type Manager struct {
	store       Store
	refresher   Refresher
	broadcaster Broadcaster
	config      Config
	logger      *slog.Logger
	now         func() time.Time
	onLogin     []func(context.Context)

	mu         sync.RWMutex
	current    *Session
	refreshing bool
}

// New creates a new session manager with the given options.
func New(opts ...Option) *Manager {
	m := &Manager{
		config: DefaultConfig(),
		logger: slog.Default(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = NewMemoryStore()
	}

	return m
}

// Init loads the persisted session into memory. A stored session that fails
// validation is cleared rather than trusted. Called once at process start.
func (m *Manager) Init(ctx context.Context) error {
	session, err := m.store.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil
		}
		return err
	}

	if !session.Valid(m.now()) {
		m.logger.WarnContext(ctx, "stored session invalid or expired, clearing")
		return m.store.Clear(ctx)
	}

	m.mu.Lock()
	m.current = session
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "session restored from store",
		slog.String("user_id", session.User.ID),
		slog.Time("expires_at", session.ExpiresAt))
	return nil
}

// IsAuthenticated reports whether a valid session is held right now.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Valid(m.now())
}

// CurrentUser returns the user of the valid session, or nil.
func (m *Manager) CurrentUser() *User {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.current.Valid(m.now()) {
		return nil
	}
	user := m.current.User
	return &user
}

// AccessToken returns the access token of the valid session, or empty.
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.current.Valid(m.now()) {
		return ""
	}
	return m.current.AccessToken
}

// RefreshDue reports whether the session is close enough to expiry that a
// refresh should be attempted before the token is used again.
func (m *Manager) RefreshDue() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.current.Present() {
		return false
	}
	return m.current.TimeToExpiry(m.now()) <= m.config.RefreshThreshold
}

// ApplyExternalLogin accepts a login event relayed from the authenticated
// website. The candidate is validated, persisted and announced to all page
// contexts. Validation failure leaves all state untouched.
func (m *Manager) ApplyExternalLogin(ctx context.Context, candidate Candidate) error {
	if err := candidate.Validate(); err != nil {
		return err
	}

	if err := m.applyCandidate(ctx, candidate); err != nil {
		return err
	}

	m.logger.InfoContext(ctx, "external login applied",
		slog.String("user_id", candidate.User.ID))

	for _, hook := range m.onLogin {
		hook(ctx)
	}
	return nil
}

// Logout clears the session and announces the change. Logging out with no
// session held is a no-op success.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	had := m.current != nil
	m.current = nil
	m.mu.Unlock()

	if m.broadcaster != nil {
		m.broadcaster.AuthChanged(ctx, false, nil)
	}

	if had {
		m.logger.InfoContext(ctx, "logged out")
	}
	return nil
}

// Refresh exchanges the refresh token for a renewed session. The call is
// single-flighted: a re-entrant call while a refresh is in progress returns
// false immediately without touching the network.
//
// A missing refresh token and an explicit rejection by the endpoint are
// terminal: both force a logout and return false. Every other failure
// (timeout, 5xx, malformed body) is transient: the existing session is left
// untouched and the caller may retry later.
func (m *Manager) Refresh(ctx context.Context) bool {
	m.mu.Lock()
	if m.refreshing {
		m.mu.Unlock()
		return false
	}
	m.refreshing = true
	refreshToken := ""
	if m.current != nil {
		refreshToken = m.current.RefreshToken
	}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.refreshing = false
		m.mu.Unlock()
	}()

	if refreshToken == "" {
		m.logger.WarnContext(ctx, "no refresh token available, forcing logout")
		if err := m.Logout(ctx); err != nil {
			m.logger.ErrorContext(ctx, "forced logout failed", slog.Any("error", err))
		}
		return false
	}

	if m.refresher == nil {
		return false
	}

	candidate, err := m.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrRefreshRejected) {
			m.logger.WarnContext(ctx, "refresh token rejected, forcing logout")
			if err := m.Logout(ctx); err != nil {
				m.logger.ErrorContext(ctx, "forced logout failed", slog.Any("error", err))
			}
			return false
		}

		m.logger.WarnContext(ctx, "token refresh failed, keeping session",
			slog.Any("error", err))
		return false
	}

	if err := candidate.Validate(); err != nil {
		m.logger.WarnContext(ctx, "refresh response malformed, keeping session",
			slog.Any("error", err))
		return false
	}

	if err := m.applyCandidate(ctx, *candidate); err != nil {
		m.logger.ErrorContext(ctx, "failed to persist refreshed session",
			slog.Any("error", err))
		return false
	}

	m.logger.InfoContext(ctx, "token refresh successful")
	return true
}

// applyCandidate persists a validated candidate as the new session and
// broadcasts the change. The store write happens first so a persistence
// failure never leaves memory ahead of disk.
func (m *Manager) applyCandidate(ctx context.Context, candidate Candidate) error {
	now := m.now()
	expiresAt := candidate.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = now.Add(m.config.DefaultTTL)
	}

	session := &Session{
		AccessToken:  candidate.AccessToken,
		RefreshToken: candidate.RefreshToken,
		User:         candidate.User,
		ExpiresAt:    expiresAt,
		IssuedAt:     now,
	}

	if err := m.store.Save(ctx, session); err != nil {
		return err
	}

	m.mu.Lock()
	m.current = session
	m.mu.Unlock()

	if m.broadcaster != nil {
		user := session.User
		m.broadcaster.AuthChanged(ctx, true, &user)
	}
	return nil
}
