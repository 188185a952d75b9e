package signal

import (
	"sync/atomic"

	"StockMon/pkg/logger"
)

// Metrics receives bus-level counters. pkg/metrics.Recorder implements it.
type Metrics interface {
	RecordEmit(signal string)
	RecordSlotError(signal string)
	RecordQueueDepth(loop string, depth int)
}

type observer struct {
	log     *logger.Logger
	metrics Metrics
}

var hooks atomic.Pointer[observer]

func init() {
	hooks.Store(&observer{log: logger.Nop()})
}

func current() *observer { return hooks.Load() }

// SetLogger sets the logger used for slot failures and task panics.
func SetLogger(l *logger.Logger) {
	if l == nil {
		l = logger.Nop()
	}
	o := *current()
	o.log = l.Component("signal")
	hooks.Store(&o)
}

// SetMetrics sets the bus metrics sink. nil disables metrics.
func SetMetrics(m Metrics) {
	o := *current()
	o.metrics = m
	hooks.Store(&o)
}

func (o *observer) emitted(name string) {
	if o.metrics != nil {
		o.metrics.RecordEmit(name)
	}
}

func (o *observer) slotFailed(err *SlotError) {
	o.log.Error("slot failed",
		logger.String("signal", err.Signal),
		logger.String("connection", err.Connection.String()),
		logger.Error(err.Err),
	)
	if o.metrics != nil {
		o.metrics.RecordSlotError(err.Signal)
	}
}

func (o *observer) queueDepth(loop string, depth int) {
	if o.metrics != nil {
		o.metrics.RecordQueueDepth(loop, depth)
	}
}
