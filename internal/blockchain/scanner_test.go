package blockchain

import (
	"context"
	"errors"
	"testing"

	"github.com/core-coin/go-core/v2/common"
	"github.com/core-coin/go-core/v2/core/types"

	"github.com/core-coin/fortunity-sync/internal/models"
	"github.com/core-coin/fortunity-sync/pkg/logger"
)

type window struct{ from, to uint64 }

type fakeChain struct {
	latest  uint64
	calls   []window
	failAt  uint64
	logs    map[uint64][]types.Log
	subErr  error
	subLogs chan<- types.Log
}

func (f *fakeChain) LatestBlock(context.Context) (uint64, error) { return f.latest, nil }

func (f *fakeChain) FilterLogs(_ context.Context, from, to uint64) ([]types.Log, error) {
	f.calls = append(f.calls, window{from, to})
	if f.failAt != 0 && from <= f.failAt && f.failAt <= to {
		return nil, errors.New("node unavailable")
	}
	var out []types.Log
	for b := from; b <= to; b++ {
		out = append(out, f.logs[b]...)
	}
	return out, nil
}

func (f *fakeChain) SubscribeLogs(_ context.Context, ch chan<- types.Log) (models.Subscription, error) {
	if f.subErr != nil {
		return nil, f.subErr
	}
	f.subLogs = ch
	return &fakeSub{err: make(chan error)}, nil
}

func (f *fakeChain) GasUsed(context.Context, common.Hash) (uint64, error) { return 0, nil }

type fakeSub struct {
	err    chan error
	closed bool
}

func (s *fakeSub) Err() <-chan error { return s.err }
func (s *fakeSub) Unsubscribe()      { s.closed = true }

func TestBackfillWindows(t *testing.T) {
	chain := &fakeChain{}
	scanner := NewScanner(chain, 10000, 0, logger.NewNop())

	var commits []uint64
	next, err := scanner.Backfill(context.Background(), 0, 24999,
		func(context.Context, types.Log) {},
		func(_ context.Context, n uint64) error {
			commits = append(commits, n)
			return nil
		})
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}

	want := []window{{0, 9999}, {10000, 19999}, {20000, 24999}}
	if len(chain.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", chain.calls, want)
	}
	for i := range want {
		if chain.calls[i] != want[i] {
			t.Fatalf("call %d = %v, want %v", i, chain.calls[i], want[i])
		}
	}
	if next != 25000 {
		t.Fatalf("next = %d, want 25000", next)
	}
	wantCommits := []uint64{10000, 20000, 25000}
	for i := range wantCommits {
		if commits[i] != wantCommits[i] {
			t.Fatalf("commits = %v, want %v", commits, wantCommits)
		}
	}
}

func TestBackfillAbortsOnFailure(t *testing.T) {
	chain := &fakeChain{failAt: 15000}
	scanner := NewScanner(chain, 10000, 0, logger.NewNop())

	var committed uint64
	next, err := scanner.Backfill(context.Background(), 0, 40000,
		func(context.Context, types.Log) {},
		func(_ context.Context, n uint64) error {
			committed = n
			return nil
		})
	if err == nil {
		t.Fatal("expected failure")
	}
	if next != 10000 || committed != 10000 {
		t.Fatalf("stopped at %d, committed %d; want 10000", next, committed)
	}
	if len(chain.calls) != 2 {
		t.Fatalf("calls = %v, want 2 (no skipping past the failed window)", chain.calls)
	}
}

func TestBackfillHandsLogsInOrderBeforeCommit(t *testing.T) {
	chain := &fakeChain{logs: map[uint64][]types.Log{
		3: {{BlockNumber: 3, Index: 0}, {BlockNumber: 3, Index: 1}},
		7: {{BlockNumber: 7, Index: 0}},
	}}
	scanner := NewScanner(chain, 5, 0, logger.NewNop())

	var seen []uint64
	var handledAtCommit []int
	_, err := scanner.Backfill(context.Background(), 1, 9,
		func(_ context.Context, l types.Log) { seen = append(seen, l.BlockNumber) },
		func(context.Context, uint64) error {
			handledAtCommit = append(handledAtCommit, len(seen))
			return nil
		})
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if len(seen) != 3 || seen[0] != 3 || seen[2] != 7 {
		t.Fatalf("seen = %v", seen)
	}
	if len(handledAtCommit) != 2 || handledAtCommit[0] != 2 || handledAtCommit[1] != 3 {
		t.Fatalf("handled at commit = %v, want [2 3]", handledAtCommit)
	}
}

func TestBackfillEmptyRange(t *testing.T) {
	chain := &fakeChain{}
	scanner := NewScanner(chain, 10, 0, logger.NewNop())

	next, err := scanner.Backfill(context.Background(), 50, 49, func(context.Context, types.Log) {}, nil)
	if err != nil || next != 50 {
		t.Fatalf("empty backfill = %d, %v", next, err)
	}
	if len(chain.calls) != 0 {
		t.Fatalf("calls = %v, want none", chain.calls)
	}
}

func TestBackfillStopsOnCancel(t *testing.T) {
	chain := &fakeChain{logs: map[uint64][]types.Log{1: {{BlockNumber: 1}}, 2: {{BlockNumber: 2}}}}
	scanner := NewScanner(chain, 10, 0, logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	handled := 0
	committed := false
	_, err := scanner.Backfill(ctx, 0, 9,
		func(context.Context, types.Log) {
			handled++
			cancel()
		},
		func(context.Context, uint64) error {
			committed = true
			return nil
		})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if handled != 1 || committed {
		t.Fatalf("handled %d committed %v; want 1 and false", handled, committed)
	}
}

func TestSubscribe(t *testing.T) {
	chain := &fakeChain{}
	scanner := NewScanner(chain, 10, 0, logger.NewNop())

	stream, err := scanner.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	chain.subLogs <- types.Log{BlockNumber: 9}
	if got := <-stream.Logs(); got.BlockNumber != 9 {
		t.Fatalf("log block = %d, want 9", got.BlockNumber)
	}
	stream.Close()

	chain.subErr = errors.New("dial failed")
	if _, err := scanner.Subscribe(context.Background()); err == nil {
		t.Fatal("expected subscribe error")
	}
}
