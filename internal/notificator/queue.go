package notificator

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/core-coin/fortunity-sync/pkg/logger"
)

const (
	DefaultConcurrency = 2
	taskTimeout        = 30 * time.Second
)

// TaskFunc is one unit of notification work.
type TaskFunc func(ctx context.Context) error

type task struct {
	id   string
	name string
	fn   TaskFunc
}

// lane runs its tasks one at a time in submission order.
type lane struct {
	mu    sync.Mutex
	tasks []task
	wake  chan struct{}
}

func (l *lane) push(t task) {
	l.mu.Lock()
	l.tasks = append(l.tasks, t)
	l.mu.Unlock()
	l.signal()
}

func (l *lane) pop() (task, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.tasks) == 0 {
		return task{}, false
	}
	t := l.tasks[0]
	l.tasks[0] = task{}
	l.tasks = l.tasks[1:]
	return t, true
}

func (l *lane) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Queue is an unbounded asynchronous task sink with a fixed number of worker
// lanes. Enqueue never blocks; tasks are spread round-robin over the lanes.
type Queue struct {
	logger *logger.Logger
	lanes  []*lane
	group  *errgroup.Group

	mu     sync.Mutex
	closed bool
	next   int

	pending atomic.Int64
	done    atomic.Uint64
	failed  atomic.Uint64
}

func NewQueue(concurrency int, logger *logger.Logger) *Queue {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	q := &Queue{
		logger: logger.Named("notification-queue"),
		group:  &errgroup.Group{},
	}
	for i := 0; i < concurrency; i++ {
		l := &lane{wake: make(chan struct{}, 1)}
		q.lanes = append(q.lanes, l)
		q.group.Go(func() error {
			q.work(l)
			return nil
		})
	}
	return q
}

// Enqueue schedules fn and returns its task id. After Close it drops the task
// and returns an empty id.
func (q *Queue) Enqueue(name string, fn TaskFunc) string {
	t := task{id: uuid.NewString(), name: name, fn: fn}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warnw("Queue closed, dropping task", "task", name)
		return ""
	}
	l := q.lanes[q.next%len(q.lanes)]
	q.next++
	q.pending.Add(1)
	l.push(t)
	q.mu.Unlock()

	return t.id
}

func (q *Queue) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

func (q *Queue) work(l *lane) {
	for {
		closed := q.isClosed()
		if t, ok := l.pop(); ok {
			q.run(t)
			continue
		}
		if closed {
			return
		}
		<-l.wake
	}
}

func (q *Queue) run(t task) {
	defer q.pending.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			q.failed.Add(1)
			q.logger.Errorw("Notification task panicked",
				"task", t.name,
				"id", t.id,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()

	if err := t.fn(ctx); err != nil {
		q.failed.Add(1)
		q.logger.Warnw("Notification task failed", "task", t.name, "id", t.id, "error", err)
		return
	}
	q.done.Add(1)
	q.logger.Debugw("Notification task done", "task", t.name, "id", t.id)
}

// Pending returns the number of queued or running tasks.
func (q *Queue) Pending() int64 { return q.pending.Load() }

// Stats returns completed and failed task counts.
func (q *Queue) Stats() (done, failed uint64) { return q.done.Load(), q.failed.Load() }

// Close stops accepting tasks and waits for the queued ones to finish or for
// ctx to expire.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		for _, l := range q.lanes {
			l.signal()
		}
	}
	q.mu.Unlock()

	finished := make(chan error, 1)
	go func() { finished <- q.group.Wait() }()
	select {
	case err := <-finished:
		return err
	case <-ctx.Done():
		return fmt.Errorf("notification queue drain: %w (%d pending)", ctx.Err(), q.Pending())
	}
}
