package signal

import (
	"context"
	"sync"
)

// Gate is a one-shot value container. One producer fulfills it exactly once;
// any number of consumers wait for it.
type Gate[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	value     T
	fulfilled bool
}

func NewGate[T any]() *Gate[T] {
	return &Gate[T]{done: make(chan struct{})}
}

// Fulfill stores v and releases all waiters. A second call returns
// ErrAlreadyFulfilled and leaves the stored value untouched.
func (g *Gate[T]) Fulfill(v T) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fulfilled {
		return ErrAlreadyFulfilled
	}
	g.value = v
	g.fulfilled = true
	close(g.done)
	return nil
}

// Done is closed once the gate is fulfilled.
func (g *Gate[T]) Done() <-chan struct{} { return g.done }

func (g *Gate[T]) Fulfilled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fulfilled
}

// Value returns the stored value and whether the gate is fulfilled.
func (g *Gate[T]) Value() (T, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value, g.fulfilled
}

// Wait blocks until the gate is fulfilled or ctx is done.
func (g *Gate[T]) Wait(ctx context.Context) (T, error) {
	return g.Await(ctx, nil)
}

// Await waits like Wait but keeps running l's queued tasks meanwhile, so the
// waiting loop stays responsive.
func (g *Gate[T]) Await(ctx context.Context, l *Loop) (T, error) {
	if err := awaitDone(ctx, l, g.done); err != nil {
		var zero T
		return zero, err
	}
	v, _ := g.Value()
	return v, nil
}
