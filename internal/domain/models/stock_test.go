package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAlertSetting_KeepsZeroBounds(t *testing.T) {
	s := NewAlertSetting("XYZ", 0, 10)
	require.NotNil(t, s.Lower)
	require.NotNil(t, s.Upper)
	assert.Equal(t, 0.0, *s.Lower)
	assert.Equal(t, 10.0, *s.Upper)
	assert.False(t, s.Empty())

	_, ok := s.LowerBound()
	assert.False(t, ok)
	upper, ok := s.UpperBound()
	assert.True(t, ok)
	assert.Equal(t, 10.0, upper)

	zero := NewAlertSetting("XYZ", 0, 0)
	assert.False(t, zero.Empty())
	assert.Empty(t, zero.Evaluate(StockPrice{Code: "XYZ", Price: 5}))
	assert.True(t, AlertSetting{Code: "XYZ"}.Empty())
}

func TestAlertSetting_Evaluate(t *testing.T) {
	now := time.Now()
	s := NewAlertSetting("ABC", 100, 200)

	tests := []struct {
		name  string
		price float64
		want  []AlertKind
	}{
		{name: "inside band", price: 150},
		{name: "above", price: 210, want: []AlertKind{AlertAbove}},
		{name: "on upper", price: 200, want: []AlertKind{AlertAbove}},
		{name: "below", price: 90, want: []AlertKind{AlertBelow}},
		{name: "on lower", price: 100, want: []AlertKind{AlertBelow}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Evaluate(StockPrice{Code: "ABC", Price: tt.price, Timestamp: now})
			var kinds []AlertKind
			for _, e := range got {
				kinds = append(kinds, e.Kind)
				assert.Equal(t, "ABC", e.Code)
				assert.Equal(t, tt.price, e.Price)
			}
			assert.Equal(t, tt.want, kinds)
		})
	}
}

func TestAlertSetting_ZeroBoundNeverFires(t *testing.T) {
	s := NewAlertSetting("XYZ", 0, 10)
	assert.Empty(t, s.Evaluate(StockPrice{Code: "XYZ", Price: 5}))
	assert.Empty(t, s.Evaluate(StockPrice{Code: "XYZ", Price: 0}))

	got := s.Evaluate(StockPrice{Code: "XYZ", Price: 12})
	require.Len(t, got, 1)
	assert.Equal(t, AlertAbove, got[0].Kind)
}

func TestAlertEvent_String(t *testing.T) {
	e := AlertEvent{Code: "ABC", Kind: AlertAbove, Price: 210, Bound: 200}
	assert.Equal(t, "ABC price ($210.00) above $200.00", e.String())
}

func TestPriceMap_CloneAndCodes(t *testing.T) {
	m := PriceMap{"MSFT": {Code: "MSFT", Price: 1}, "AAPL": {Code: "AAPL", Price: 2}}
	c := m.Clone()
	c["GOOG"] = StockPrice{Code: "GOOG"}

	assert.Len(t, m, 2)
	assert.Equal(t, []string{"AAPL", "MSFT"}, m.Codes())
	assert.Equal(t, []string{"AAPL", "GOOG", "MSFT"}, c.Codes())
}
