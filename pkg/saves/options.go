package saves

import (
	"log/slog"
	"time"
)

// Option is a functional option for configuring the Queue.
type Option func(*Queue)

// WithConfig sets custom timing configuration.
func WithConfig(config Config) Option {
	return func(q *Queue) {
		q.config = config
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// WithRetryDelay sets the delay before the targeted retry of a record whose
// immediate delivery failed.
func WithRetryDelay(delay time.Duration) Option {
	return func(q *Queue) {
		q.config.RetryDelay = delay
	}
}

// WithSweepInterval sets the period of the full-queue resync sweep.
func WithSweepInterval(interval time.Duration) Option {
	return func(q *Queue) {
		q.config.SweepInterval = interval
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		if now != nil {
			q.now = now
		}
	}
}
