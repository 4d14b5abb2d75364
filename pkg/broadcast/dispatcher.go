package broadcast

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/gobwas/glob"
)

// Dispatcher fans events out to every registered page context whose host
// matches one of the supported site patterns. Delivery is concurrent,
// unordered and at-most-once: a context that misses a broadcast is expected
// to reconcile on its next interaction rather than rely on push alone.
type Dispatcher struct {
	registry *Registry
	patterns []glob.Glob
	logger   *slog.Logger
}

// NewDispatcher compiles the site host patterns (e.g. "*.youtube.com") and
// returns a dispatcher over the registry. Patterns that do not compile are
// rejected so a typo in configuration surfaces at startup.
func NewDispatcher(registry *Registry, sitePatterns []string, logger *slog.Logger) (*Dispatcher, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	if logger == nil {
		logger = slog.Default()
	}

	patterns := make([]glob.Glob, 0, len(sitePatterns))
	for _, p := range sitePatterns {
		g, err := glob.Compile(strings.ToLower(strings.TrimSpace(p)), '.')
		if err != nil {
			return nil, ErrInvalidSitePattern
		}
		patterns = append(patterns, g)
	}

	return &Dispatcher{
		registry: registry,
		patterns: patterns,
		logger:   logger,
	}, nil
}

// Broadcast delivers the event to every matching target and reports a tally.
// Each delivery attempt is isolated: one dead listener never aborts the
// others, and failures are logged, not propagated.
func (d *Dispatcher) Broadcast(ctx context.Context, event Event) Tally {
	var (
		tally Tally
		mu    sync.Mutex
		wg    sync.WaitGroup
	)

	for _, target := range d.registry.Snapshot() {
		if !d.matches(target.Host) {
			continue
		}
		tally.Matched++

		wg.Add(1)
		go func(t *Target) {
			defer wg.Done()

			err := t.deliver(ctx, event)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				tally.Failed++
				d.logger.DebugContext(ctx, "broadcast delivery failed",
					slog.String("event", event.Type),
					slog.String("target_id", t.ID.String()),
					slog.String("host", t.Host),
					slog.Any("error", err))
				return
			}
			tally.Delivered++
		}(target)
	}

	wg.Wait()

	d.logger.DebugContext(ctx, "broadcast complete",
		slog.String("event", event.Type),
		slog.Int("matched", tally.Matched),
		slog.Int("delivered", tally.Delivered),
		slog.Int("failed", tally.Failed))
	return tally
}

func (d *Dispatcher) matches(host string) bool {
	for _, g := range d.patterns {
		if g.Match(host) {
			return true
		}
	}
	return false
}
