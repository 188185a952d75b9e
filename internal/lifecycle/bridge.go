// Package lifecycle coordinates the startup handshake between the background
// worker and the foreground loop, and the matching shutdown.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"StockMon/pkg/logger"
	"StockMon/pkg/signal"
)

// Worker is a background subsystem that announces readiness on a signal.
type Worker interface {
	Start() error
	Stop() error
}

// Dependent is started once the worker is up and stopped before it.
type Dependent interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
}

// StartupTimeoutError is returned by AwaitStart when the worker did not
// report readiness in time.
type StartupTimeoutError struct {
	Timeout time.Duration
}

func (e *StartupTimeoutError) Error() string {
	return fmt.Sprintf("worker did not start within %s", e.Timeout)
}

// Bridge runs the startup handshake. The worker's started signal starts the
// dependents and then fulfills a gate observed on the foreground loop.
type Bridge struct {
	fg      *signal.Loop
	started *signal.Signal[signal.Void]
	worker  Worker
	deps    []Dependent
	log     *logger.Logger

	gate *signal.Gate[error]
	conn *signal.Connection

	depMu      sync.Mutex
	depStarted []Dependent
	closed     bool

	startOnce    sync.Once
	shutdownOnce sync.Once
	shutdownErr  error
}

func NewBridge(fg *signal.Loop, started *signal.Signal[signal.Void], worker Worker, log *logger.Logger, deps ...Dependent) *Bridge {
	if log == nil {
		log = logger.Nop()
	}
	return &Bridge{
		fg:      fg,
		started: started,
		worker:  worker,
		deps:    deps,
		log:     log.Component("lifecycle"),
		gate:    signal.NewGate[error](),
	}
}

// Start subscribes to the worker's started signal and starts the worker.
// ctx bounds dependent startup.
func (b *Bridge) Start(ctx context.Context) error {
	err := errors.New("bridge already started")
	b.startOnce.Do(func() {
		b.conn, err = b.started.ConnectFunc(func(signal.Void) { b.onWorkerStarted(ctx) })
		if err != nil {
			err = fmt.Errorf("subscribe worker started: %w", err)
			return
		}
		b.log.Info("starting worker")
		if err = b.worker.Start(); err != nil {
			b.started.Disconnect(b.conn)
			err = fmt.Errorf("start worker: %w", err)
		}
	})
	return err
}

// onWorkerStarted runs on the worker's goroutine.
func (b *Bridge) onWorkerStarted(ctx context.Context) {
	b.started.Disconnect(b.conn)

	var startErr error
	for _, d := range b.deps {
		if b.isClosed() {
			startErr = errors.New("shut down during startup")
			break
		}
		if err := d.Start(ctx); err != nil {
			startErr = fmt.Errorf("start %s: %w", d.Name(), err)
			b.log.Error("dependent failed to start", logger.String("dependent", d.Name()), logger.Error(err))
			break
		}
		b.depMu.Lock()
		if b.closed {
			b.depMu.Unlock()
			_ = d.Stop()
			startErr = errors.New("shut down during startup")
			break
		}
		b.depStarted = append(b.depStarted, d)
		b.depMu.Unlock()
		b.log.Info("dependent started", logger.String("dependent", d.Name()))
	}

	b.fg.Post(func(context.Context) {
		if err := b.gate.Fulfill(startErr); err != nil {
			b.log.Warn("startup gate", logger.Error(err))
		}
	})
}

// AwaitStart suspends the foreground loop, still running its queued tasks,
// until the handshake completes. timeout > 0 bounds the wait with a
// *StartupTimeoutError. A dependent start failure is returned as is.
func (b *Bridge) AwaitStart(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	startErr, err := b.gate.Await(ctx, b.fg)
	if err != nil {
		if timeout > 0 && errors.Is(err, context.DeadlineExceeded) {
			return &StartupTimeoutError{Timeout: timeout}
		}
		return err
	}
	if startErr == nil {
		b.log.Info("startup complete")
	}
	return startErr
}

func (b *Bridge) isClosed() bool {
	b.depMu.Lock()
	defer b.depMu.Unlock()
	return b.closed
}

// Started reports whether the handshake has completed on the foreground loop.
func (b *Bridge) Started() bool { return b.gate.Fulfilled() }

// Shutdown stops started dependents in reverse order, then the worker. Only
// the first call does anything; later calls return the first result.
func (b *Bridge) Shutdown() error {
	b.shutdownOnce.Do(func() {
		b.depMu.Lock()
		deps := b.depStarted
		b.depStarted = nil
		b.closed = true
		b.depMu.Unlock()

		var errs []error
		for i := len(deps) - 1; i >= 0; i-- {
			if err := deps[i].Stop(); err != nil {
				errs = append(errs, fmt.Errorf("stop %s: %w", deps[i].Name(), err))
			}
		}
		if err := b.worker.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop worker: %w", err))
		}
		b.shutdownErr = errors.Join(errs...)
		b.log.Info("shutdown complete", logger.Int("dependents", len(deps)))
	})
	return b.shutdownErr
}
