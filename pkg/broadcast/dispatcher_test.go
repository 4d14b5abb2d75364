package broadcast_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knugget/coordinator/pkg/broadcast"
)

type sink struct {
	mu     sync.Mutex
	events []broadcast.Event
	err    error
}

func (s *sink) deliver(ctx context.Context, event broadcast.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *sink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func newDispatcher(t *testing.T, registry *broadcast.Registry) *broadcast.Dispatcher {
	t.Helper()
	d, err := broadcast.NewDispatcher(registry, []string{
		"youtube.com", "*.youtube.com",
		"linkedin.com", "*.linkedin.com",
	}, nil)
	require.NoError(t, err)
	return d
}

func TestDispatcher_Broadcast(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("delivers to matching targets only", func(t *testing.T) {
		t.Parallel()
		registry := broadcast.NewRegistry()
		dispatcher := newDispatcher(t, registry)

		yt, li, other := &sink{}, &sink{}, &sink{}
		_, _, err := registry.Register("https://www.youtube.com/watch?v=abc", yt.deliver)
		require.NoError(t, err)
		_, _, err = registry.Register("https://www.linkedin.com/feed/", li.deliver)
		require.NoError(t, err)
		_, _, err = registry.Register("https://news.example.com/story", other.deliver)
		require.NoError(t, err)

		event, err := broadcast.NewEvent("AUTH_CHANGED", map[string]bool{"authenticated": true})
		require.NoError(t, err)

		tally := dispatcher.Broadcast(ctx, event)
		assert.Equal(t, 2, tally.Matched)
		assert.Equal(t, 2, tally.Delivered)
		assert.Zero(t, tally.Failed)
		assert.Equal(t, 1, yt.count())
		assert.Equal(t, 1, li.count())
		assert.Zero(t, other.count())
	})

	t.Run("one failing target does not abort the rest", func(t *testing.T) {
		t.Parallel()
		registry := broadcast.NewRegistry()
		dispatcher := newDispatcher(t, registry)

		dead := &sink{err: errors.New("no listener in this tab")}
		alive := &sink{}
		_, _, err := registry.Register("https://youtube.com/watch?v=1", dead.deliver)
		require.NoError(t, err)
		_, _, err = registry.Register("https://youtube.com/watch?v=2", alive.deliver)
		require.NoError(t, err)

		tally := dispatcher.Broadcast(ctx, broadcast.Event{Type: "AUTH_CHANGED"})
		assert.Equal(t, 2, tally.Matched)
		assert.Equal(t, 1, tally.Delivered)
		assert.Equal(t, 1, tally.Failed)
		assert.Equal(t, 1, alive.count())
	})

	t.Run("unregistered target receives nothing", func(t *testing.T) {
		t.Parallel()
		registry := broadcast.NewRegistry()
		dispatcher := newDispatcher(t, registry)

		s := &sink{}
		_, unregister, err := registry.Register("https://youtube.com/", s.deliver)
		require.NoError(t, err)
		unregister()
		unregister() // safe to call twice

		tally := dispatcher.Broadcast(ctx, broadcast.Event{Type: "AUTH_CHANGED"})
		assert.Zero(t, tally.Matched)
		assert.Zero(t, s.count())
	})

	t.Run("empty registry", func(t *testing.T) {
		t.Parallel()
		registry := broadcast.NewRegistry()
		dispatcher := newDispatcher(t, registry)

		tally := dispatcher.Broadcast(ctx, broadcast.Event{Type: "AUTH_CHANGED"})
		assert.Zero(t, tally.Matched)
	})
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	registry := broadcast.NewRegistry()

	t.Run("rejects nil deliver func", func(t *testing.T) {
		t.Parallel()
		_, _, err := registry.Register("https://youtube.com/", nil)
		assert.ErrorIs(t, err, broadcast.ErrNilDeliverFunc)
	})

	t.Run("rejects url without host", func(t *testing.T) {
		t.Parallel()
		_, _, err := registry.Register("not-a-url", (&sink{}).deliver)
		assert.ErrorIs(t, err, broadcast.ErrInvalidPageURL)
	})

	t.Run("normalizes host", func(t *testing.T) {
		t.Parallel()
		target, unregister, err := registry.Register("https://WWW.YouTube.com/watch", (&sink{}).deliver)
		require.NoError(t, err)
		defer unregister()
		assert.Equal(t, "www.youtube.com", target.Host)
	})
}

func TestNewDispatcher_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := broadcast.NewDispatcher(broadcast.NewRegistry(), []string{"[bad"}, nil)
	assert.ErrorIs(t, err, broadcast.ErrInvalidSitePattern)
}
