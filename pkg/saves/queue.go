package saves

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Authorizer supplies the credentials a delivery attempt runs under.
// Satisfied by the session manager.
type Authorizer interface {
	IsAuthenticated() bool
	AccessToken() string
}

// Submitter delivers one record to the external submit endpoint.
// Implementations must wrap ErrUnauthorized when the endpoint answers
// 401/403; any other error is treated as transient.
type Submitter interface {
	SubmitRecord(ctx context.Context, accessToken string, record Record) (*Remote, error)
}

// Result is the outcome of a Submit call. Synced is false when the record
// was accepted but delivery is deferred to the retry machinery: from the
// user's point of view that save still succeeded.
type Result struct {
	Record Record
	Synced bool
}

// Queue accepts save requests, attempts immediate delivery, falls back to
// persisted pending records, and drives scheduled and periodic retries until
// every record is synced. Records are retried forever at fixed intervals;
// there is no max-attempt cutoff.
type Queue struct {
	storage   Storage
	submitter Submitter
	auth      Authorizer
	config    Config
	logger    *slog.Logger
	now       func() time.Time

	resyncCh chan struct{}

	mu       sync.Mutex
	runCtx   context.Context
	cancel   context.CancelFunc
	inflight map[string]struct{}
	wg       sync.WaitGroup
}

// NewQueue creates a save queue.
func NewQueue(storage Storage, submitter Submitter, auth Authorizer, opts ...Option) (*Queue, error) {
	if storage == nil {
		return nil, ErrNilStorage
	}
	if submitter == nil {
		return nil, ErrNilSubmitter
	}

	q := &Queue{
		storage:   storage,
		submitter: submitter,
		auth:      auth,
		config:    DefaultConfig(),
		logger:    slog.Default(),
		now:       time.Now,
		resyncCh:  make(chan struct{}, 1),
		inflight:  make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(q)
	}

	return q, nil
}

// Submit accepts one save request.
//
// The record id is a deterministic fingerprint of the payload, so submitting
// the same logical item twice replaces the stored record instead of
// duplicating it. Without a valid session the request is rejected outright
// and nothing is persisted. A 401/403 from the backend is surfaced the same
// way (the caller may refresh and resubmit), while every other delivery
// failure is absorbed: the record is persisted as pending, a targeted retry
// is scheduled, and the caller sees a successful save.
func (q *Queue) Submit(ctx context.Context, payload Payload, kind SourceKind) (*Result, error) {
	if payload.SourceID == "" && payload.Content == "" {
		return nil, ErrEmptyPayload
	}

	if q.auth == nil || !q.auth.IsAuthenticated() {
		return nil, ErrAuthRequired
	}

	record := NewRecord(payload, kind, q.now())

	remote, err := q.submitter.SubmitRecord(ctx, q.auth.AccessToken(), record)
	switch {
	case err == nil:
		record = record.markSynced(remote, q.now())
		if upsertErr := q.storage.Upsert(ctx, record); upsertErr != nil {
			// Delivery already succeeded; a failed local write costs us the
			// audit copy, not the save itself.
			q.logger.ErrorContext(ctx, "failed to persist synced record",
				slog.String("record_id", record.ID),
				slog.Any("error", upsertErr))
		}
		return &Result{Record: record, Synced: true}, nil

	case errors.Is(err, ErrUnauthorized):
		return nil, fmt.Errorf("%w: %w", ErrAuthRequired, err)

	default:
		record = record.markFailed(err)
		if upsertErr := q.storage.Upsert(ctx, record); upsertErr != nil {
			return nil, fmt.Errorf("saves: persist pending record: %w", upsertErr)
		}

		q.logger.InfoContext(ctx, "delivery failed, record queued for retry",
			slog.String("record_id", record.ID),
			slog.String("source_kind", string(kind)),
			slog.Any("error", err))

		q.scheduleRetry(record.ID)
		return &Result{Record: record, Synced: false}, nil
	}
}

// Start launches the resync loop: one sweep shortly after start to pick up
// records that survived a restart, then one sweep per configured interval,
// plus any sweeps requested through ResyncSoon.
func (q *Queue) Start(ctx context.Context) error {
	q.mu.Lock()
	if q.cancel != nil {
		q.mu.Unlock()
		return fmt.Errorf("saves: queue already started")
	}
	q.runCtx, q.cancel = context.WithCancel(ctx)
	runCtx := q.runCtx
	q.mu.Unlock()

	q.wg.Add(1)
	go q.run(runCtx)

	q.logger.Info("save queue started",
		slog.Duration("sweep_interval", q.config.SweepInterval),
		slog.Duration("retry_delay", q.config.RetryDelay))
	return nil
}

// Stop halts the resync loop and waits for in-flight work to finish.
func (q *Queue) Stop() {
	q.mu.Lock()
	cancel := q.cancel
	q.cancel = nil
	q.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	q.wg.Wait()
}

// Run starts the queue and returns a function suitable for errgroup.
func (q *Queue) Run(ctx context.Context) func() error {
	return func() error {
		if err := q.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		q.Stop()
		return nil
	}
}

// ResyncSoon requests a sweep on the next loop iteration. Non-blocking;
// coalesces with an already-requested sweep. Wired to successful logins,
// since pending records commonly pile up while the user is logged out.
func (q *Queue) ResyncSoon() {
	select {
	case q.resyncCh <- struct{}{}:
	default:
	}
}

func (q *Queue) run(ctx context.Context) {
	defer q.wg.Done()

	startup := time.NewTimer(q.config.StartupSweepDelay)
	defer startup.Stop()
	ticker := time.NewTicker(q.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-startup.C:
			q.resync(ctx)
		case <-ticker.C:
			q.resync(ctx)
		case <-q.resyncCh:
			q.resync(ctx)
		}
	}
}

// resync iterates every pending record and attempts delivery, spacing
// attempts out to avoid bursting the backend. Records that fail again stay
// pending for the next sweep.
func (q *Queue) resync(ctx context.Context) {
	pending, err := q.storage.ListPending(ctx)
	if err != nil {
		q.logger.ErrorContext(ctx, "resync sweep failed to list pending records",
			slog.Any("error", err))
		return
	}
	if len(pending) == 0 {
		return
	}

	q.logger.InfoContext(ctx, "resync sweep started", slog.Int("pending", len(pending)))

	var synced int
	for i, record := range pending {
		if i > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(q.config.InterRecordDelay):
			}
		}

		ok, err := q.deliver(ctx, record.ID)
		if err != nil && errors.Is(err, ErrUnauthorized) {
			// Nothing else in this sweep can succeed with rejected
			// credentials; the records stay pending for the next one.
			q.logger.WarnContext(ctx, "resync sweep aborted, credentials rejected")
			break
		}
		if ok {
			synced++
		}
	}

	q.logger.InfoContext(ctx, "resync sweep complete",
		slog.Int("pending", len(pending)),
		slog.Int("synced", synced))
}

// scheduleRetry arms a one-shot targeted retry for the record.
func (q *Queue) scheduleRetry(id string) {
	time.AfterFunc(q.config.RetryDelay, func() {
		q.mu.Lock()
		ctx := q.runCtx
		q.mu.Unlock()
		if ctx == nil {
			ctx = context.Background()
		}
		if ctx.Err() != nil {
			return
		}

		if _, err := q.deliver(ctx, id); err != nil && !errors.Is(err, ErrUnauthorized) {
			q.logger.Error("scheduled retry failed",
				slog.String("record_id", id),
				slog.Any("error", err))
		}
	})
}

// deliver attempts delivery of one stored record. It reloads the record
// first so a retry racing a sweep (or a concurrent re-submission) never
// resurrects an already-synced record, and per-id in-flight tracking keeps
// the two retry paths from double-submitting.
func (q *Queue) deliver(ctx context.Context, id string) (bool, error) {
	q.mu.Lock()
	if _, busy := q.inflight[id]; busy {
		q.mu.Unlock()
		return false, nil
	}
	q.inflight[id] = struct{}{}
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		delete(q.inflight, id)
		q.mu.Unlock()
	}()

	record, err := q.storage.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if !record.Pending() {
		return false, nil
	}

	if q.auth == nil || !q.auth.IsAuthenticated() {
		return false, nil
	}

	remote, err := q.submitter.SubmitRecord(ctx, q.auth.AccessToken(), *record)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return false, err
		}
		updated := record.markFailed(err)
		if upsertErr := q.storage.Upsert(ctx, updated); upsertErr != nil {
			return false, upsertErr
		}
		return false, nil
	}

	updated := record.markSynced(remote, q.now())
	if err := q.storage.Upsert(ctx, updated); err != nil {
		return false, err
	}

	q.logger.InfoContext(ctx, "pending record synced",
		slog.String("record_id", id),
		slog.String("source_kind", string(record.SourceKind)))
	return true, nil
}
