package session

import "time"

// Plan represents the subscription tier of the authenticated user.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// User is the profile attached to a session, as reported by the backend.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Credits     int    `json:"credits"`
	Plan        Plan   `json:"plan"`
}

// Session is the locally held authentication credential and user profile.
// At most one session exists process-wide; replacing a session overwrites
// the previous one wholesale, never merges.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	User         User      `json:"user"`
	ExpiresAt    time.Time `json:"expires_at"`
	IssuedAt     time.Time `json:"issued_at"`
}

// Present reports whether the session carries a credential at all.
func (s *Session) Present() bool {
	return s != nil && s.AccessToken != ""
}

// Valid reports whether the session is present and not expired at the
// given instant.
func (s *Session) Valid(now time.Time) bool {
	return s.Present() && s.ExpiresAt.After(now)
}

// TimeToExpiry returns the remaining lifetime of the session at the given
// instant. Negative once expired.
func (s *Session) TimeToExpiry(now time.Time) time.Duration {
	if s == nil {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}

// Candidate is an unverified session received from an external login event
// or a token-refresh response. It becomes a Session only after validation.
type Candidate struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	User         User      `json:"user"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Validate checks the minimum shape required to trust the candidate:
// a non-empty access token and a user identity.
func (c Candidate) Validate() error {
	if c.AccessToken == "" {
		return ErrInvalidCandidate
	}
	if c.User.ID == "" {
		return ErrInvalidCandidate
	}
	return nil
}
