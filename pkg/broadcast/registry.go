package broadcast

import (
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Target is one addressable page context: an open tab on a supported site.
// Targets are transient; they live exactly as long as their registration.
type Target struct {
	ID      uuid.UUID
	Host    string
	PageURL string
	deliver DeliverFunc
}

// Registry tracks the page contexts currently attached to the coordinator.
// Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	targets map[uuid.UUID]*Target
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{targets: make(map[uuid.UUID]*Target)}
}

// Register adds a page context. The returned function removes it again and
// is safe to call more than once.
func (r *Registry) Register(pageURL string, deliver DeliverFunc) (*Target, func(), error) {
	if deliver == nil {
		return nil, nil, ErrNilDeliverFunc
	}

	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return nil, nil, ErrInvalidPageURL
	}

	target := &Target{
		ID:      uuid.New(),
		Host:    strings.ToLower(u.Hostname()),
		PageURL: pageURL,
		deliver: deliver,
	}

	r.mu.Lock()
	r.targets[target.ID] = target
	r.mu.Unlock()

	var once sync.Once
	unregister := func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.targets, target.ID)
			r.mu.Unlock()
		})
	}
	return target, unregister, nil
}

// Snapshot returns the currently registered targets.
func (r *Registry) Snapshot() []*Target {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Target, 0, len(r.targets))
	for _, t := range r.targets {
		out = append(out, t)
	}
	return out
}

// Len returns the number of registered targets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.targets)
}
