package origin

import (
	"fmt"
	"net/url"
	"strings"
)

// Gate validates that cross-boundary authentication events originate from an
// allow-listed origin before they are trusted. The allow-list is fixed at
// construction: absolute origins (scheme://host[:port]), not user-editable at
// runtime.
type Gate struct {
	allowed map[string]struct{}
}

// NewGate builds a gate from a list of absolute origins. Entries are
// normalized (lowercased scheme and host, trailing slash stripped); malformed
// entries are rejected so a misconfigured allow-list fails at startup rather
// than silently never matching.
func NewGate(origins []string) (*Gate, error) {
	allowed := make(map[string]struct{}, len(origins))
	for _, raw := range origins {
		normalized, err := normalize(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOrigin, raw)
		}
		allowed[normalized] = struct{}{}
	}
	return &Gate{allowed: allowed}, nil
}

// Allowed reports whether the sender URL's origin is on the allow-list.
// Malformed URLs are rejected.
func (g *Gate) Allowed(rawURL string) bool {
	normalized, err := normalize(rawURL)
	if err != nil {
		return false
	}
	_, ok := g.allowed[normalized]
	return ok
}

// Require returns ErrUnauthorizedOrigin unless the sender URL passes the
// gate. Intended for handler boundaries where an error value is needed.
func (g *Gate) Require(rawURL string) error {
	if !g.Allowed(rawURL) {
		return ErrUnauthorizedOrigin
	}
	return nil
}

// Origins returns the allow-list in no particular order. Useful for logging
// at startup.
func (g *Gate) Origins() []string {
	out := make([]string, 0, len(g.allowed))
	for o := range g.allowed {
		out = append(out, o)
	}
	return out
}

// normalize reduces a URL to its origin: scheme://host[:port].
func normalize(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host")
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), nil
}
