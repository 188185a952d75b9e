package signal

import "sync/atomic"

// Object marks a type as a signal receiver bound to a Loop. Receivers embed a
// *Object created with NewObject.
type Object struct {
	loop      *Loop
	destroyed atomic.Bool
}

// NewObject creates an object owned by loop. A nil loop means the object has
// no execution context of its own; its slots run wherever they are emitted.
func NewObject(loop *Loop) *Object {
	return &Object{loop: loop}
}

// SignalObject implements Receiver.
func (o *Object) SignalObject() *Object { return o }

// Loop returns the owning execution context.
func (o *Object) Loop() *Loop {
	if o == nil {
		return nil
	}
	return o.loop
}

// Destroy marks the object dead. Connections to it are pruned on the next emit.
func (o *Object) Destroy() { o.destroyed.Store(true) }

// Destroyed reports whether Destroy was called.
func (o *Object) Destroyed() bool { return o.destroyed.Load() }

// Receiver is implemented by any type embedding *Object.
type Receiver interface {
	SignalObject() *Object
}
