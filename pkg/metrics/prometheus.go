package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements the domain Metrics interface and the signal bus
// observer using Prometheus.
type Recorder struct {
	emits       *prometheus.CounterVec
	slotErrors  *prometheus.CounterVec
	queueDepth  *prometheus.GaugeVec
	lastPrice   *prometheus.GaugeVec
	alerts      *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a Recorder registered on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		emits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockmon_signal_emits_total",
				Help: "Total number of signal emissions",
			},
			[]string{"signal"},
		),
		slotErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockmon_slot_errors_total",
				Help: "Slot invocations that returned an error or panicked",
			},
			[]string{"signal"},
		),
		queueDepth: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockmon_loop_queue_depth",
				Help: "Tasks waiting in an execution loop queue",
			},
			[]string{"loop"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockmon_last_price",
				Help: "Last processed price for a stock code",
			},
			[]string{"code"},
		),
		alerts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockmon_alerts_triggered_total",
				Help: "Price alerts triggered by the processor",
			},
			[]string{"code", "kind"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockmon_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockmon_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordEmit counts one emission of signal.
func (r *Recorder) RecordEmit(signal string) {
	r.emits.WithLabelValues(signal).Inc()
}

// RecordSlotError counts a failed slot invocation.
func (r *Recorder) RecordSlotError(signal string) {
	r.slotErrors.WithLabelValues(signal).Inc()
}

// RecordQueueDepth sets the current queue length of a loop.
func (r *Recorder) RecordQueueDepth(loop string, depth int) {
	r.queueDepth.WithLabelValues(loop).Set(float64(depth))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a code.
func (r *Recorder) RecordLastPrice(code string, price float64) {
	r.lastPrice.WithLabelValues(code).Set(price)
}

// RecordAlert counts a triggered alert.
func (r *Recorder) RecordAlert(code, kind string) {
	r.alerts.WithLabelValues(code, kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
