// Package simulator provides a random-walk quote feed for offline runs.
package simulator

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"StockMon/internal/domain/models"
)

var ErrNotConnected = errors.New("simulator: not connected")

// Feed emits one quote per stock every interval. Each price moves by a
// normally distributed step scaled by volatility and never drops below a cent.
type Feed struct {
	interval   time.Duration
	volatility float64

	mu      sync.Mutex
	rng     *rand.Rand
	prices  map[string]float64
	codes   []string
	stop    chan struct{}
	running bool
}

// New creates a Feed seeded with the stocks' base prices. A zero seed uses
// the current time.
func New(stocks []models.Stock, interval time.Duration, volatility float64, seed int64) *Feed {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	f := &Feed{
		interval:   interval,
		volatility: volatility,
		rng:        rand.New(rand.NewSource(seed)),
		prices:     make(map[string]float64, len(stocks)),
	}
	for _, s := range stocks {
		p := s.Price
		if p <= 0 {
			p = 100
		}
		f.prices[s.Code] = p
		f.codes = append(f.codes, s.Code)
	}
	return f
}

func (f *Feed) Name() string { return "simulator" }

func (f *Feed) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		f.stop = make(chan struct{})
		f.running = true
	}
	return nil
}

// Read starts the tick loop. The channels close on ctx cancellation or Close.
func (f *Feed) Read(ctx context.Context) (<-chan *models.Quote, <-chan error) {
	quotes := make(chan *models.Quote, len(f.codes)*4)
	errs := make(chan error, 1)

	f.mu.Lock()
	stop := f.stop
	running := f.running
	f.mu.Unlock()

	if !running {
		errs <- ErrNotConnected
		close(quotes)
		close(errs)
		return quotes, errs
	}

	go func() {
		defer close(quotes)
		defer close(errs)
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case now := <-ticker.C:
				for _, q := range f.Tick(now) {
					select {
					case quotes <- q:
					case <-ctx.Done():
						return
					case <-stop:
						return
					}
				}
			}
		}
	}()
	return quotes, errs
}

// Tick advances every price one step and returns the new quotes.
func (f *Feed) Tick(now time.Time) []*models.Quote {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Quote, 0, len(f.codes))
	for _, code := range f.codes {
		p := f.prices[code] * (1 + f.rng.NormFloat64()*f.volatility)
		p = math.Max(0.01, math.Round(p*100)/100)
		f.prices[code] = p
		out = append(out, &models.Quote{Code: code, Price: p, Timestamp: now, Source: "simulator"})
	}
	return out
}

func (f *Feed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		close(f.stop)
		f.running = false
	}
	return nil
}
