package signal

import (
	"context"
	"fmt"
	"sync"

	"StockMon/pkg/logger"
)

// Task is a unit of work executed on a Loop.
type Task func(ctx context.Context)

type loopKey struct{}

// Loop is a single-goroutine execution context. Any goroutine may Post work to
// it; only the goroutine driving the loop (via Run, RunPending or Await) runs
// that work, in the order it was posted. A Loop must be driven by one
// goroutine at a time.
type Loop struct {
	name  string
	mu    sync.Mutex
	queue []Task
	wake  chan struct{}
}

// NewLoop creates an idle loop. Nothing runs until a goroutine drives it.
func NewLoop(name string) *Loop {
	return &Loop{
		name: name,
		wake: make(chan struct{}, 1),
	}
}

// Name returns the loop name used in logs and metrics.
func (l *Loop) Name() string { return l.name }

// Post enqueues t and wakes the loop. It never blocks.
func (l *Loop) Post(t Task) {
	if t == nil {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, t)
	depth := len(l.queue)
	l.mu.Unlock()

	current().queueDepth(l.name, depth)

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pending reports how many tasks are queued.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// RunPending runs every task queued before the call and returns how many ran.
// Tasks posted while the batch runs are left for the next call.
func (l *Loop) RunPending(ctx context.Context) int {
	l.mu.Lock()
	batch := l.queue
	l.queue = nil
	l.mu.Unlock()

	if len(batch) == 0 {
		return 0
	}
	current().queueDepth(l.name, 0)

	ctx = context.WithValue(ctx, loopKey{}, l)
	for _, t := range batch {
		l.runTask(ctx, t)
	}
	return len(batch)
}

// Run drives the loop on the calling goroutine until ctx is done. Tasks still
// queued at that point are dropped.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.RunPending(ctx)
		if ctx.Err() != nil {
			return l.stop(ctx)
		}
		select {
		case <-ctx.Done():
			return l.stop(ctx)
		case <-l.wake:
		}
	}
}

func (l *Loop) stop(ctx context.Context) error {
	l.mu.Lock()
	n := len(l.queue)
	l.queue = nil
	l.mu.Unlock()
	if n > 0 {
		current().queueDepth(l.name, 0)
		current().log.Debug("loop stopped with queued tasks",
			logger.String("loop", l.name),
			logger.Int("dropped", n),
		)
	}
	return ctx.Err()
}

func (l *Loop) runTask(ctx context.Context, t Task) {
	defer func() {
		if r := recover(); r != nil {
			current().log.Error("loop task panicked",
				logger.String("loop", l.name),
				logger.Error(fmt.Errorf("%v", r)),
			)
		}
	}()
	t(ctx)
}

// LoopFrom returns the loop running the current task, or nil outside a task.
func LoopFrom(ctx context.Context) *Loop {
	l, _ := ctx.Value(loopKey{}).(*Loop)
	return l
}

// Await suspends the caller until a value arrives on ch while still running
// the tasks posted to l. It returns ErrChannelClosed if ch is closed first.
func Await[T any](ctx context.Context, l *Loop, ch <-chan T) (T, error) {
	var zero T
	for {
		var wake <-chan struct{}
		if l != nil {
			l.RunPending(ctx)
			wake = l.wake
		}
		select {
		case v, ok := <-ch:
			if !ok {
				return zero, ErrChannelClosed
			}
			return v, nil
		case <-wake:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// awaitDone is Await for close-only channels.
func awaitDone(ctx context.Context, l *Loop, done <-chan struct{}) error {
	for {
		var wake <-chan struct{}
		if l != nil {
			l.RunPending(ctx)
			wake = l.wake
		}
		select {
		case <-done:
			return nil
		case <-wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
