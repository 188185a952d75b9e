package signal

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNilSignal        = errors.New("signal: nil signal")
	ErrNilReceiver      = errors.New("signal: nil receiver")
	ErrNilSlot          = errors.New("signal: nil slot function")
	ErrNoLoop           = errors.New("signal: async slot needs a receiver loop")
	ErrChannelClosed    = errors.New("signal: channel closed")
	ErrAlreadyFulfilled = errors.New("signal: gate already fulfilled")
)

// SlotError wraps an error returned, or a panic raised, by a slot.
type SlotError struct {
	Signal     string
	Connection uuid.UUID
	Err        error
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("slot on %s (%s): %v", e.Signal, e.Connection, e.Err)
}

func (e *SlotError) Unwrap() error { return e.Err }
