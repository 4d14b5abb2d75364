package apiclient

import "time"

// Config holds the API client settings, populated from environment
// variables.
type Config struct {
	BaseURL string        `env:"API_BASE_URL" envDefault:"https://knugget-new-backend.onrender.com/api"`
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"15s"`
}

// DefaultConfig returns the configuration used when no environment
// overrides are present.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://knugget-new-backend.onrender.com/api",
		Timeout: 15 * time.Second,
	}
}
