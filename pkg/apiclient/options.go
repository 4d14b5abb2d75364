package apiclient

import (
	"log/slog"
	"net/http"
)

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the pooled default HTTP client. Useful for
// tests and custom transports.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.client = httpClient
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}
