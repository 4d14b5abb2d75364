package saves_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knugget/coordinator/pkg/saves"
)

type stubAuth struct {
	authenticated atomic.Bool
	token         string
}

func (s *stubAuth) IsAuthenticated() bool { return s.authenticated.Load() }
func (s *stubAuth) AccessToken() string   { return s.token }

func loggedIn() *stubAuth {
	a := &stubAuth{token: "t1"}
	a.authenticated.Store(true)
	return a
}

type stubSubmitter struct {
	mu      sync.Mutex
	calls   int
	failing error
	remote  saves.Remote
}

func (s *stubSubmitter) SubmitRecord(ctx context.Context, token string, record saves.Record) (*saves.Remote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failing != nil {
		return nil, s.failing
	}
	remote := s.remote
	if remote.ID == "" {
		remote.ID = "srv-" + record.ID
	}
	return &remote, nil
}

func (s *stubSubmitter) setFailing(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = err
}

func (s *stubSubmitter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func fastConfig() saves.Config {
	return saves.Config{
		RetryDelay:        20 * time.Millisecond,
		SweepInterval:     50 * time.Millisecond,
		StartupSweepDelay: 10 * time.Millisecond,
		InterRecordDelay:  time.Millisecond,
	}
}

func TestQueue_Submit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("requires authentication", func(t *testing.T) {
		t.Parallel()
		storage := saves.NewMemoryStorage()
		queue, err := saves.NewQueue(storage, &stubSubmitter{}, &stubAuth{})
		require.NoError(t, err)

		_, err = queue.Submit(ctx, saves.Payload{Author: "A", Content: "hello"}, saves.SourceLinkedIn)
		assert.ErrorIs(t, err, saves.ErrAuthRequired)
		assert.Zero(t, storage.Len(), "no record created for unauthenticated save")
	})

	t.Run("rejects empty payload", func(t *testing.T) {
		t.Parallel()
		queue, err := saves.NewQueue(saves.NewMemoryStorage(), &stubSubmitter{}, loggedIn())
		require.NoError(t, err)

		_, err = queue.Submit(ctx, saves.Payload{}, saves.SourceLinkedIn)
		assert.ErrorIs(t, err, saves.ErrEmptyPayload)
	})

	t.Run("immediate delivery success stores synced record", func(t *testing.T) {
		t.Parallel()
		storage := saves.NewMemoryStorage()
		queue, err := saves.NewQueue(storage, &stubSubmitter{}, loggedIn())
		require.NoError(t, err)

		result, err := queue.Submit(ctx, saves.Payload{Author: "A", Content: "hello"}, saves.SourceLinkedIn)
		require.NoError(t, err)
		assert.True(t, result.Synced)
		assert.Equal(t, saves.StatusSynced, result.Record.SyncStatus)
		assert.NotEmpty(t, result.Record.RemoteID, "server-assigned fields merged in")
		require.NotNil(t, result.Record.SyncedAt)

		stored, err := storage.Get(ctx, result.Record.ID)
		require.NoError(t, err)
		assert.Equal(t, saves.StatusSynced, stored.SyncStatus)
	})

	t.Run("backend 401 surfaces as auth required without a record", func(t *testing.T) {
		t.Parallel()
		storage := saves.NewMemoryStorage()
		submitter := &stubSubmitter{failing: fmt.Errorf("%w: http 401", saves.ErrUnauthorized)}
		queue, err := saves.NewQueue(storage, submitter, loggedIn())
		require.NoError(t, err)

		_, err = queue.Submit(ctx, saves.Payload{Author: "A", Content: "hello"}, saves.SourceLinkedIn)
		assert.ErrorIs(t, err, saves.ErrAuthRequired)
		assert.Zero(t, storage.Len())
	})

	t.Run("transient failure stores pending and reports success", func(t *testing.T) {
		t.Parallel()
		storage := saves.NewMemoryStorage()
		submitter := &stubSubmitter{failing: errors.New("http 500")}
		queue, err := saves.NewQueue(storage, submitter, loggedIn())
		require.NoError(t, err)

		result, err := queue.Submit(ctx, saves.Payload{Author: "A", Content: "hello"}, saves.SourceLinkedIn)
		require.NoError(t, err, "transient delivery failure is not a user-visible failure")
		assert.False(t, result.Synced)
		assert.Equal(t, saves.StatusPending, result.Record.SyncStatus)
		assert.Contains(t, result.Record.LastError, "http 500")

		stored, err := storage.Get(ctx, result.Record.ID)
		require.NoError(t, err)
		assert.Equal(t, saves.StatusPending, stored.SyncStatus)
	})

	t.Run("resubmission replaces by fingerprint", func(t *testing.T) {
		t.Parallel()
		storage := saves.NewMemoryStorage()
		submitter := &stubSubmitter{failing: errors.New("http 503")}
		queue, err := saves.NewQueue(storage, submitter, loggedIn())
		require.NoError(t, err)

		payload := saves.Payload{Author: "A", Content: "hello", Tags: []string{"v1"}}
		first, err := queue.Submit(ctx, payload, saves.SourceLinkedIn)
		require.NoError(t, err)

		payload.Tags = []string{"v2"}
		second, err := queue.Submit(ctx, payload, saves.SourceLinkedIn)
		require.NoError(t, err)

		assert.Equal(t, first.Record.ID, second.Record.ID)
		assert.Equal(t, 1, storage.Len(), "same logical item stored once")

		stored, err := storage.Get(ctx, first.Record.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"v2"}, stored.Payload.Tags, "latest payload wins")
	})
}

func TestQueue_TargetedRetry(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storage := saves.NewMemoryStorage()
	submitter := &stubSubmitter{failing: errors.New("connection refused")}
	cfg := fastConfig()
	cfg.SweepInterval = time.Hour // isolate the targeted retry from sweeps
	cfg.StartupSweepDelay = time.Hour
	queue, err := saves.NewQueue(storage, submitter, loggedIn(), saves.WithConfig(cfg))
	require.NoError(t, err)
	require.NoError(t, queue.Start(ctx))
	defer queue.Stop()

	result, err := queue.Submit(ctx, saves.Payload{Author: "A", Content: "hello"}, saves.SourceLinkedIn)
	require.NoError(t, err)
	require.False(t, result.Synced)

	submitter.setFailing(nil)

	require.Eventually(t, func() bool {
		stored, err := storage.Get(ctx, result.Record.ID)
		return err == nil && stored.SyncStatus == saves.StatusSynced
	}, 2*time.Second, 5*time.Millisecond, "targeted retry syncs the record once the endpoint recovers")
}

func TestQueue_ResyncSweep(t *testing.T) {
	t.Parallel()

	t.Run("pending records sync once endpoint recovers", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		storage := saves.NewMemoryStorage()
		submitter := &stubSubmitter{failing: errors.New("http 500")}
		queue, err := saves.NewQueue(storage, submitter, loggedIn(), saves.WithConfig(fastConfig()))
		require.NoError(t, err)

		result, err := queue.Submit(ctx, saves.Payload{Author: "A", Content: "hello"}, saves.SourceLinkedIn)
		require.NoError(t, err)
		require.Equal(t, saves.StatusPending, result.Record.SyncStatus)

		submitter.setFailing(nil)
		require.NoError(t, queue.Start(ctx))
		defer queue.Stop()

		require.Eventually(t, func() bool {
			stored, err := storage.Get(ctx, result.Record.ID)
			return err == nil && stored.SyncStatus == saves.StatusSynced
		}, 2*time.Second, 5*time.Millisecond, "restart-style sweep delivers without re-submission")
	})

	t.Run("resync soon triggers an immediate sweep", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		storage := saves.NewMemoryStorage()
		submitter := &stubSubmitter{}
		cfg := fastConfig()
		cfg.SweepInterval = time.Hour
		cfg.StartupSweepDelay = time.Hour
		queue, err := saves.NewQueue(storage, submitter, loggedIn(), saves.WithConfig(cfg))
		require.NoError(t, err)

		record := saves.NewRecord(saves.Payload{Author: "A", Content: "offline save"}, saves.SourceLinkedIn, time.Now())
		require.NoError(t, storage.Upsert(ctx, record))

		require.NoError(t, queue.Start(ctx))
		defer queue.Stop()
		queue.ResyncSoon()

		require.Eventually(t, func() bool {
			stored, err := storage.Get(ctx, record.ID)
			return err == nil && stored.SyncStatus == saves.StatusSynced
		}, 2*time.Second, 5*time.Millisecond)
	})

	t.Run("sweep skips while unauthenticated", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		storage := saves.NewMemoryStorage()
		submitter := &stubSubmitter{}
		auth := &stubAuth{} // logged out
		queue, err := saves.NewQueue(storage, submitter, auth, saves.WithConfig(fastConfig()))
		require.NoError(t, err)

		record := saves.NewRecord(saves.Payload{Author: "A", Content: "offline save"}, saves.SourceLinkedIn, time.Now())
		require.NoError(t, storage.Upsert(ctx, record))

		require.NoError(t, queue.Start(ctx))
		defer queue.Stop()

		time.Sleep(150 * time.Millisecond)
		assert.Zero(t, submitter.callCount(), "no delivery attempts without credentials")

		stored, err := storage.Get(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, saves.StatusPending, stored.SyncStatus)
	})
}

func TestQueue_SyncedRecordIsNeverRetried(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := saves.NewMemoryStorage()
	submitter := &stubSubmitter{}
	queue, err := saves.NewQueue(storage, submitter, loggedIn(), saves.WithConfig(fastConfig()))
	require.NoError(t, err)

	result, err := queue.Submit(ctx, saves.Payload{Author: "A", Content: "hello"}, saves.SourceLinkedIn)
	require.NoError(t, err)
	require.True(t, result.Synced)
	callsAfterSubmit := submitter.callCount()

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, queue.Start(runCtx))
	defer queue.Stop()

	queue.ResyncSoon()
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, callsAfterSubmit, submitter.callCount(), "synced records stay synced")
}
