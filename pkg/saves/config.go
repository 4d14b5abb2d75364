package saves

import "time"

// Config holds queue timing configuration.
type Config struct {
	// RetryDelay is how long after a failed immediate delivery a single
	// targeted retry of that record is scheduled.
	RetryDelay time.Duration `env:"SAVES_RETRY_DELAY" envDefault:"30s"`

	// SweepInterval is the period of the full-queue resync sweep.
	SweepInterval time.Duration `env:"SAVES_SWEEP_INTERVAL" envDefault:"5m"`

	// StartupSweepDelay is how long after Start the first sweep runs,
	// picking up records that survived a restart.
	StartupSweepDelay time.Duration `env:"SAVES_STARTUP_SWEEP_DELAY" envDefault:"15s"`

	// InterRecordDelay spaces out deliveries within one sweep to avoid
	// bursting the backend.
	InterRecordDelay time.Duration `env:"SAVES_INTER_RECORD_DELAY" envDefault:"500ms"`
}

// DefaultConfig returns default queue timing configuration.
func DefaultConfig() Config {
	return Config{
		RetryDelay:        30 * time.Second,
		SweepInterval:     5 * time.Minute,
		StartupSweepDelay: 15 * time.Second,
		InterRecordDelay:  500 * time.Millisecond,
	}
}
