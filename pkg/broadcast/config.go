package broadcast

// Config holds fan-out configuration.
type Config struct {
	// SitePatterns are host globs of the supported sites. Only targets whose
	// page host matches one of these receive broadcasts.
	SitePatterns []string `env:"BROADCAST_SITE_PATTERNS" envSeparator:"," envDefault:"youtube.com,*.youtube.com,linkedin.com,*.linkedin.com"`
}

// DefaultConfig returns the default fan-out configuration.
func DefaultConfig() Config {
	return Config{
		SitePatterns: []string{
			"youtube.com", "*.youtube.com",
			"linkedin.com", "*.linkedin.com",
		},
	}
}
