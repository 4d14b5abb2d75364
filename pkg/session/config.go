package session

import "time"

// Config holds session lifecycle configuration.
type Config struct {
	// DefaultTTL is applied when an external login carries no expiry.
	DefaultTTL time.Duration `env:"SESSION_DEFAULT_TTL" envDefault:"24h"`

	// RefreshThreshold is the remaining lifetime below which a session is
	// considered refresh-due. The check is advisory: callers invoke Refresh
	// opportunistically, no background timer is run.
	RefreshThreshold time.Duration `env:"SESSION_REFRESH_THRESHOLD" envDefault:"5m"`
}

// DefaultConfig returns default session configuration.
func DefaultConfig() Config {
	return Config{
		DefaultTTL:       24 * time.Hour,
		RefreshThreshold: 5 * time.Minute,
	}
}

// NewFromConfig creates a new Manager from the provided Config.
func NewFromConfig(cfg Config, opts ...Option) *Manager {
	configOpts := []Option{WithConfig(cfg)}
	configOpts = append(configOpts, opts...)
	return New(configOpts...)
}
