package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordEmit("processor.price_processed")
	r.RecordEmit("processor.price_processed")
	r.RecordSlotError("processor.price_processed")
	r.RecordAlert("ABC", "above")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.emits.WithLabelValues("processor.price_processed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.slotErrors.WithLabelValues("processor.price_processed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.alerts.WithLabelValues("ABC", "above")))
}

func TestRecorder_Gauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordLastPrice("ABC", 210.5)
	r.RecordQueueDepth("foreground", 3)
	r.RecordQueueDepth("foreground", 1)

	assert.Equal(t, 210.5, testutil.ToFloat64(r.lastPrice.WithLabelValues("ABC")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.queueDepth.WithLabelValues("foreground")))
}

func TestRecorder_SeparateRegistries(t *testing.T) {
	require.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
