package blockchain

import (
	"context"
	"fmt"

	"github.com/core-coin/go-core/v2/core/types"
	"golang.org/x/time/rate"

	"github.com/core-coin/fortunity-sync/internal/models"
	"github.com/core-coin/fortunity-sync/pkg/logger"
)

// DefaultWindowSize matches the usual node limit on a single log query.
const DefaultWindowSize = 10000

// LogHandler consumes one log. It must not fail the scan; only the context
// error is returned to stop a replay.
type LogHandler func(ctx context.Context, log types.Log)

// CommitFunc persists the next block to replay from.
type CommitFunc func(ctx context.Context, next uint64) error

// Scanner reads contract logs from the node, first in bounded windows and
// then through a live subscription.
type Scanner struct {
	logger  *logger.Logger
	chain   models.BlockchainService
	window  uint64
	limiter *rate.Limiter
}

// NewScanner builds a scanner. fetchRate caps window fetches per second; zero
// or less disables the limit.
func NewScanner(chain models.BlockchainService, window uint64, fetchRate float64, logger *logger.Logger) *Scanner {
	if window == 0 {
		window = DefaultWindowSize
	}
	limit := rate.Inf
	if fetchRate > 0 {
		limit = rate.Limit(fetchRate)
	}
	return &Scanner{
		logger:  logger,
		chain:   chain,
		window:  window,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (s *Scanner) LatestBlock(ctx context.Context) (uint64, error) {
	return s.chain.LatestBlock(ctx)
}

// Backfill replays [from, to] in increasing windows. Every log of a window is
// handed to handle before commit records the block after the window. The first
// error aborts the run and is returned with the block the run stopped at.
func (s *Scanner) Backfill(ctx context.Context, from, to uint64, handle LogHandler, commit CommitFunc) (uint64, error) {
	next := from
	for next <= to {
		end := next + s.window - 1
		if end > to || end < next {
			end = to
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return next, err
		}
		logs, err := s.chain.FilterLogs(ctx, next, end)
		if err != nil {
			return next, fmt.Errorf("backfill window [%d, %d]: %w", next, end, err)
		}
		s.logger.Debugw("Fetched log window", "from", next, "to", end, "logs", len(logs))

		for _, log := range logs {
			if err := ctx.Err(); err != nil {
				return next, err
			}
			handle(ctx, log)
		}

		if commit != nil {
			if err := commit(ctx, end+1); err != nil {
				return next, fmt.Errorf("failed to commit cursor %d: %w", end+1, err)
			}
		}
		if end == to {
			return end + 1, nil
		}
		next = end + 1
	}
	return next, nil
}

// Stream is an open live subscription.
type Stream struct {
	logs <-chan types.Log
	sub  models.Subscription
}

// Subscribe opens a live feed of contract logs.
func (s *Scanner) Subscribe(ctx context.Context) (*Stream, error) {
	ch := make(chan types.Log, LogChannelBuffer)
	sub, err := s.chain.SubscribeLogs(ctx, ch)
	if err != nil {
		return nil, err
	}
	return &Stream{logs: ch, sub: sub}, nil
}

func (st *Stream) Logs() <-chan types.Log { return st.logs }

func (st *Stream) Err() <-chan error { return st.sub.Err() }

func (st *Stream) Close() { st.sub.Unsubscribe() }
