package usecase

import (
	"context"
	"sync"

	"StockMon/internal/domain/models"
)

type feedStub struct {
	connectErr error
	quotes     chan *models.Quote

	mu       sync.Mutex
	connects int
	closes   int
}

func newFeedStub() *feedStub {
	return &feedStub{quotes: make(chan *models.Quote, 16)}
}

func (f *feedStub) Name() string { return "stub" }

func (f *feedStub) Connect(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	return f.connectErr
}

func (f *feedStub) Read(ctx context.Context) (<-chan *models.Quote, <-chan error) {
	out := make(chan *models.Quote)
	errs := make(chan error)
	go func() {
		defer close(out)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			case q := <-f.quotes:
				select {
				case out <- q:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, errs
}

func (f *feedStub) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

func (f *feedStub) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects, f.closes
}

type metricsStub struct {
	mu     sync.Mutex
	alerts map[string]int
	errors map[string]int
	last   map[string]float64
}

func newMetricsStub() *metricsStub {
	return &metricsStub{alerts: map[string]int{}, errors: map[string]int{}, last: map[string]float64{}}
}

func (m *metricsStub) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}

func (m *metricsStub) RecordLastPrice(code string, price float64) {
	m.mu.Lock()
	m.last[code] = price
	m.mu.Unlock()
}

func (m *metricsStub) RecordAlert(code, kind string) {
	m.mu.Lock()
	m.alerts[code+":"+kind]++
	m.mu.Unlock()
}

func (m *metricsStub) RecordLatency(string, float64) {}

type publisherStub struct {
	mu     sync.Mutex
	events []models.AlertEvent
	err    error
	closed int
}

func (p *publisherStub) Publish(_ context.Context, e *models.AlertEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, *e)
	return nil
}

func (p *publisherStub) Close() error {
	p.mu.Lock()
	p.closed++
	p.mu.Unlock()
	return nil
}

func (p *publisherStub) published() []models.AlertEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.AlertEvent(nil), p.events...)
}
