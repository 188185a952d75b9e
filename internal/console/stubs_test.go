package console

import (
	"bytes"
	"sync"

	"StockMon/internal/domain/models"
)

type vmStub struct {
	mu       sync.Mutex
	prices   models.PriceMap
	settings map[string]models.AlertSetting
	sets     []models.AlertRequest
	removes  []string
}

func newVMStub() *vmStub {
	return &vmStub{prices: models.PriceMap{}, settings: map[string]models.AlertSetting{}}
}

func (v *vmStub) CurrentPrices() models.PriceMap {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.prices.Clone()
}

func (v *vmStub) AlertSettings() map[string]models.AlertSetting {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[string]models.AlertSetting, len(v.settings))
	for k, s := range v.settings {
		out[k] = s
	}
	return out
}

func (v *vmStub) EmitSetAlert(code string, lower, upper float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sets = append(v.sets, models.AlertRequest{Code: code, Lower: lower, Upper: upper})
}

func (v *vmStub) EmitRemoveAlert(code string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.removes = append(v.removes, code)
}

// syncBuffer is a bytes.Buffer safe for one writer and concurrent readers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func ptr(f float64) *float64 { return &f }
