package signal

import "context"

// SlotKind tags how a slot wants to run.
type SlotKind int

const (
	SyncSlot SlotKind = iota
	AsyncSlot
)

func (k SlotKind) String() string {
	if k == AsyncSlot {
		return "async"
	}
	return "sync"
}

// Mode is the delivery mode chosen for a connection.
type Mode int

const (
	// Direct runs the slot on the emitting goroutine before Emit returns.
	Direct Mode = iota
	// Queued posts the slot to the receiver's loop.
	Queued
)

func (m Mode) String() string {
	if m == Queued {
		return "queued"
	}
	return "direct"
}

// Slot is a handler for a Signal[T] on a receiver of type R.
// Build one with Sync or Async.
type Slot[R any, T any] struct {
	kind SlotKind
	fn   func(ctx context.Context, r *R, v T) error
}

// Sync wraps fn as a synchronous slot. Method expressions fit directly:
// Sync((*ViewModel).OnPriceProcessed).
func Sync[R any, T any](fn func(r *R, v T) error) Slot[R, T] {
	s := Slot[R, T]{kind: SyncSlot}
	if fn != nil {
		s.fn = func(_ context.Context, r *R, v T) error { return fn(r, v) }
	}
	return s
}

// Async wraps fn as a slot that is always scheduled on the receiver's loop.
// ctx is the loop's task context. Method expressions of the form
// func (r *R) M(ctx context.Context, v T) error fit directly.
func Async[R any, T any](fn func(r *R, ctx context.Context, v T) error) Slot[R, T] {
	s := Slot[R, T]{kind: AsyncSlot}
	if fn != nil {
		s.fn = func(ctx context.Context, r *R, v T) error { return fn(r, ctx, v) }
	}
	return s
}

// Kind returns the slot tag.
func (s Slot[R, T]) Kind() SlotKind { return s.kind }
