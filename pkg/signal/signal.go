// Package signal is a typed publish/subscribe bus. Owners expose Signal[T]
// fields; receivers subscribe Sync or Async slots. Delivery is direct when the
// receiver shares the emitter's Loop and queued onto the receiver's Loop
// otherwise.
package signal

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"weak"

	"github.com/google/uuid"
)

// Void is the payload of signals that carry no data.
type Void = struct{}

// Connection is the handle returned by Connect.
type Connection struct {
	id     uuid.UUID
	signal string
	mode   Mode
	kind   SlotKind
}

func (c *Connection) ID() uuid.UUID  { return c.id }
func (c *Connection) Signal() string { return c.signal }
func (c *Connection) Mode() Mode     { return c.mode }
func (c *Connection) Kind() SlotKind { return c.kind }

type binding[T any] struct {
	handle *Connection
	loop   *Loop
	alive  func() bool
	call   func(ctx context.Context, v T) error
}

// Signal is a named event source carrying values of type T.
type Signal[T any] struct {
	name  string
	owner *Object

	mu    sync.Mutex
	conns []*binding[T]
}

// New creates a signal owned by owner. The owner's loop is the emitting
// context used to pick delivery modes; owner may be nil.
func New[T any](owner *Object, name string) *Signal[T] {
	return &Signal[T]{name: name, owner: owner}
}

func (s *Signal[T]) Name() string   { return s.name }
func (s *Signal[T]) Owner() *Object { return s.owner }

// Connect subscribes slot on recv to s. The receiver is held weakly: once it
// is destroyed or collected its connection is dropped.
func Connect[T any, R any, PR interface {
	*R
	Receiver
}](s *Signal[T], recv PR, slot Slot[R, T]) (*Connection, error) {
	if s == nil {
		return nil, ErrNilSignal
	}
	if recv == nil || recv.SignalObject() == nil {
		return nil, ErrNilReceiver
	}
	if slot.fn == nil {
		return nil, ErrNilSlot
	}

	obj := recv.SignalObject()
	target := obj.Loop()
	mode := Direct
	switch {
	case slot.kind == AsyncSlot:
		if target == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoLoop, s.name)
		}
		mode = Queued
	case target != nil && target != s.owner.Loop():
		mode = Queued
	}

	ref := weak.Make((*R)(recv))
	fn := slot.fn
	b := &binding[T]{
		handle: &Connection{id: uuid.New(), signal: s.name, mode: mode, kind: slot.kind},
		loop:   target,
		alive: func() bool {
			return !obj.Destroyed() && ref.Value() != nil
		},
		call: func(ctx context.Context, v T) error {
			r := ref.Value()
			if r == nil || obj.Destroyed() {
				return nil
			}
			return fn(ctx, r, v)
		},
	}

	s.mu.Lock()
	s.conns = append(s.conns, b)
	s.mu.Unlock()
	return b.handle, nil
}

// ConnectFunc subscribes a plain function. It always runs directly on the
// emitting goroutine.
func (s *Signal[T]) ConnectFunc(fn func(v T)) (*Connection, error) {
	if fn == nil {
		return nil, ErrNilSlot
	}
	b := &binding[T]{
		handle: &Connection{id: uuid.New(), signal: s.name, mode: Direct, kind: SyncSlot},
		alive:  func() bool { return true },
		call: func(_ context.Context, v T) error {
			fn(v)
			return nil
		},
	}
	s.mu.Lock()
	s.conns = append(s.conns, b)
	s.mu.Unlock()
	return b.handle, nil
}

// Disconnect removes c. It reports whether c was connected.
func (s *Signal[T]) Disconnect(c *Connection) bool {
	if c == nil {
		return false
	}
	return s.remove(c)
}

// Connections returns the number of live connections.
func (s *Signal[T]) Connections() int {
	return len(s.snapshot())
}

// Emit delivers v to every live connection in connection order. Direct slots
// run before Emit returns; queued slots are posted and Emit does not wait.
// Slot errors and panics are logged and never reach the caller.
func (s *Signal[T]) Emit(v T) {
	current().emitted(s.name)

	for _, b := range s.snapshot() {
		if b.handle.mode == Direct {
			s.dispatch(context.Background(), b, v)
			continue
		}
		b.loop.Post(func(ctx context.Context) {
			if !b.alive() {
				s.remove(b.handle)
				return
			}
			s.dispatch(ctx, b, v)
		})
	}
}

// snapshot copies the live connections, pruning dead receivers.
func (s *Signal[T]) snapshot() []*binding[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns = slices.DeleteFunc(s.conns, func(b *binding[T]) bool { return !b.alive() })
	return slices.Clone(s.conns)
}

func (s *Signal[T]) remove(c *Connection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.conns)
	s.conns = slices.DeleteFunc(s.conns, func(b *binding[T]) bool { return b.handle == c })
	return len(s.conns) != n
}

func (s *Signal[T]) dispatch(ctx context.Context, b *binding[T], v T) {
	defer func() {
		if r := recover(); r != nil {
			current().slotFailed(&SlotError{Signal: s.name, Connection: b.handle.id, Err: fmt.Errorf("panic: %v", r)})
		}
	}()
	if err := b.call(ctx, v); err != nil {
		current().slotFailed(&SlotError{Signal: s.name, Connection: b.handle.id, Err: err})
	}
}
