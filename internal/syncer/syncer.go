package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/core-coin/go-core/v2/core/types"

	"github.com/core-coin/fortunity-sync/internal/blockchain"
	"github.com/core-coin/fortunity-sync/internal/models"
	"github.com/core-coin/fortunity-sync/internal/projector"
	"github.com/core-coin/fortunity-sync/pkg/logger"
)

var errSubscriptionClosed = errors.New("live subscription closed")

// Projector applies raw logs to the ledger.
type Projector interface {
	Dispatch(ctx context.Context, log types.Log) projector.Outcome
	Stats() models.ProjectionStats
}

// Alerter delivers operator alerts without blocking.
type Alerter interface {
	Alert(message string)
}

type Config struct {
	InstanceID                 string
	CursorName                 string
	StartBlock                 uint64
	HandoverOverlapBlocks      uint64
	LiveReconnectDelay         time.Duration
	HistoricalRetryInterval    time.Duration
	HistoricalRetryMaxInterval time.Duration
	LockEnabled                bool
	LockTTL                    time.Duration
}

// Syncer supervises the scanner: it replays history from the persisted
// cursor, then follows the live subscription, restarting whichever stage
// fails.
type Syncer struct {
	logger    *logger.Logger
	config    Config
	scanner   *blockchain.Scanner
	projector Projector
	cursors   models.CursorStore
	locks     models.LockStore
	alerter   Alerter

	mu     sync.RWMutex
	status models.SyncStatus
}

var _ models.StatusProvider = (*Syncer)(nil)

// NewSyncer wires the supervisor. cursors, locks and alerter may be nil.
func NewSyncer(
	scanner *blockchain.Scanner,
	projector Projector,
	cursors models.CursorStore,
	locks models.LockStore,
	alerter Alerter,
	config Config,
	logger *logger.Logger,
) *Syncer {
	if config.LiveReconnectDelay <= 0 {
		config.LiveReconnectDelay = time.Minute
	}
	if config.HistoricalRetryInterval <= 0 {
		config.HistoricalRetryInterval = backoff.DefaultInitialInterval
	}
	if config.HistoricalRetryMaxInterval <= 0 {
		config.HistoricalRetryMaxInterval = 5 * time.Minute
	}
	if config.LockTTL <= 0 {
		config.LockTTL = 30 * time.Second
	}
	now := time.Now().Unix()
	return &Syncer{
		logger:    logger.Named("syncer"),
		config:    config,
		scanner:   scanner,
		projector: projector,
		cursors:   cursors,
		locks:     locks,
		alerter:   alerter,
		status: models.SyncStatus{
			State:          models.StateStarting,
			Cursor:         config.StartBlock,
			StartedAt:      now,
			StateChangedAt: now,
		},
	}
}

// Run ingests until ctx is cancelled. With a lock store it first waits for
// the ingestion lease and falls back to waiting if the lease is lost.
func (s *Syncer) Run(ctx context.Context) error {
	defer s.setState(models.StateStopped)

	if s.locks == nil || !s.config.LockEnabled {
		s.ingest(ctx)
		return nil
	}

	for {
		if err := s.acquireLease(ctx); err != nil {
			return nil
		}
		leaseCtx, cancel := context.WithCancelCause(ctx)
		renewDone := make(chan struct{})
		go func() {
			defer close(renewDone)
			s.keepLease(leaseCtx, cancel)
		}()

		s.ingest(leaseCtx)
		lost := errors.Is(context.Cause(leaseCtx), models.ErrLockHeld)
		cancel(nil)
		<-renewDone
		s.releaseLease()

		if ctx.Err() != nil {
			return nil
		}
		if lost {
			s.logger.Warnw("Ingestion lease lost, standing by", "instance", s.config.InstanceID)
			s.alert("ingestion lease lost by %s", s.config.InstanceID)
		}
	}
}

func (s *Syncer) ingest(ctx context.Context) {
	s.setState(models.StateStarting)
	cursor := s.loadCursor(ctx)

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = s.config.HistoricalRetryInterval
	retry.Reset()
	retry.MaxInterval = s.config.HistoricalRetryMaxInterval

	for {
		s.setState(models.StateHistoricalReplay)
		err := s.historical(ctx, cursor)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return
		}
		s.stageFailed("historical", err)
		if !s.wait(ctx, retry.NextBackOff()) {
			return
		}
		cursor = s.loadCursor(ctx)
	}

	for {
		s.setState(models.StateLiveSubscribed)
		err := s.live(ctx)
		if ctx.Err() != nil {
			return
		}
		s.stageFailed("live", err)
		if !s.wait(ctx, s.config.LiveReconnectDelay) {
			return
		}
	}
}

// historical replays from cursor to the current head.
func (s *Syncer) historical(ctx context.Context, cursor uint64) error {
	latest, err := s.scanner.LatestBlock(ctx)
	if err != nil {
		return err
	}
	s.logger.Infow("Starting historical replay", "from", cursor, "to", latest)
	next, err := s.scanner.Backfill(ctx, cursor, latest, s.handle, s.commit)
	if err != nil {
		return err
	}
	s.logger.Infow("Historical replay complete", "next", next)
	return nil
}

// live subscribes first, re-reads the tail since the cursor so that nothing
// emitted during the switch is missed, then follows the stream.
func (s *Syncer) live(ctx context.Context) error {
	stream, err := s.scanner.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer stream.Close()

	latest, err := s.scanner.LatestBlock(ctx)
	if err != nil {
		return err
	}
	from := s.Status().Cursor
	if from > s.config.HandoverOverlapBlocks {
		from -= s.config.HandoverOverlapBlocks
	} else {
		from = 0
	}
	if from < s.config.StartBlock {
		from = s.config.StartBlock
	}
	if _, err := s.scanner.Backfill(ctx, from, latest, s.handle, s.commit); err != nil {
		return fmt.Errorf("handover catch-up: %w", err)
	}
	s.logger.Infow("Following live logs", "caught_up_to", latest)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-stream.Err():
			if err == nil {
				err = errSubscriptionClosed
			}
			return err
		case log, ok := <-stream.Logs():
			if !ok {
				return errSubscriptionClosed
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if log.BlockNumber <= latest {
				continue
			}
			s.handle(ctx, log)
			// Logs of earlier blocks are all in; this block may still be partial.
			if err := s.commit(ctx, log.BlockNumber); err != nil {
				s.logger.Errorw("Failed to persist cursor", "block", log.BlockNumber, "error", err)
			}
		}
	}
}

func (s *Syncer) handle(ctx context.Context, log types.Log) {
	s.projector.Dispatch(ctx, log)

	s.mu.Lock()
	if log.BlockNumber > s.status.LastBlock {
		s.status.LastBlock = log.BlockNumber
	}
	s.mu.Unlock()
}

// commit records next as the replay position. It never moves backwards.
func (s *Syncer) commit(ctx context.Context, next uint64) error {
	s.mu.Lock()
	if next <= s.status.Cursor {
		s.mu.Unlock()
		return nil
	}
	s.status.Cursor = next
	s.mu.Unlock()

	if s.cursors == nil {
		return nil
	}
	return s.cursors.SaveCursor(context.WithoutCancel(ctx), s.config.CursorName, next)
}

// loadCursor returns the persisted position, or the start block when none is stored.
func (s *Syncer) loadCursor(ctx context.Context) uint64 {
	cursor := s.config.StartBlock
	if s.cursors != nil {
		stored, found, err := s.cursors.LoadCursor(ctx, s.config.CursorName)
		switch {
		case err != nil:
			s.logger.Errorw("Failed to load cursor, using start block", "error", err, "start_block", cursor)
		case found && stored > cursor:
			cursor = stored
		}
	}

	s.mu.Lock()
	s.status.Cursor = cursor
	s.mu.Unlock()
	s.logger.Infow("Resuming from cursor", "cursor", cursor, "name", s.config.CursorName)
	return cursor
}

func (s *Syncer) stageFailed(stage string, err error) {
	s.logger.Errorw("Ingestion stage failed", "stage", stage, "error", err)
	s.mu.Lock()
	s.status.Restarts++
	s.status.LastError = fmt.Sprintf("%s: %v", stage, err)
	s.mu.Unlock()
	s.alert("%s stage failed: %v", stage, err)
}

func (s *Syncer) alert(format string, args ...interface{}) {
	if s.alerter == nil {
		return
	}
	s.alerter.Alert("fortunity-sync: " + fmt.Sprintf(format, args...))
}

// wait sleeps in the backoff state; false means ctx ended first.
func (s *Syncer) wait(ctx context.Context, d time.Duration) bool {
	s.setState(models.StateBackoff)
	s.logger.Infow("Backing off", "delay", d)
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (s *Syncer) setState(state models.SyncState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.State == state {
		return
	}
	s.status.State = state
	s.status.StateChangedAt = time.Now().Unix()
}

// Status returns the current supervisor state and projector counters.
func (s *Syncer) Status() models.SyncStatus {
	s.mu.RLock()
	status := s.status
	s.mu.RUnlock()
	if s.projector != nil {
		status.Stats = s.projector.Stats()
	}
	return status
}
