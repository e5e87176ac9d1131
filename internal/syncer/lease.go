package syncer

import (
	"context"
	"time"

	"github.com/core-coin/fortunity-sync/internal/models"
)

// acquireLease blocks until this instance holds the ingestion lease.
func (s *Syncer) acquireLease(ctx context.Context) error {
	interval := s.config.LockTTL / 3
	logged := false
	for {
		ok, err := s.locks.AcquireLock(ctx, models.IngestionLockName, s.config.InstanceID, s.config.LockTTL)
		switch {
		case err != nil:
			s.logger.Errorw("Failed to acquire ingestion lease", "error", err)
		case ok:
			s.logger.Infow("Ingestion lease acquired", "instance", s.config.InstanceID, "ttl", s.config.LockTTL)
			return nil
		case !logged:
			s.logger.Infow("Ingestion lease held by another instance, standing by", "instance", s.config.InstanceID)
			logged = true
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// keepLease renews the lease every TTL/3 and cancels ingestion when it cannot.
func (s *Syncer) keepLease(ctx context.Context, cancel context.CancelCauseFunc) {
	ticker := time.NewTicker(s.config.LockTTL / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ok, err := s.locks.AcquireLock(ctx, models.IngestionLockName, s.config.InstanceID, s.config.LockTTL)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				// A single failed renewal is tolerated; the lease outlives two of them.
				s.logger.Warnw("Failed to renew ingestion lease", "error", err)
				continue
			}
			if !ok {
				cancel(models.ErrLockHeld)
				return
			}
		}
	}
}

func (s *Syncer) releaseLease() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.locks.ReleaseLock(ctx, models.IngestionLockName, s.config.InstanceID); err != nil {
		s.logger.Warnw("Failed to release ingestion lease", "error", err)
	}
}
