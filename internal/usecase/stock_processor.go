package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"StockMon/internal/domain/models"
	drepo "StockMon/internal/domain/repository"
	"StockMon/pkg/logger"
	"StockMon/pkg/signal"
)

var (
	ErrProcessorRunning = errors.New("processor already running")
	ErrEmptyCode        = errors.New("empty stock code")
)

// StockProcessor is the background worker. It owns the alert settings and
// evaluates every price snapshot against them on its own loop.
type StockProcessor struct {
	*signal.Object

	Started              *signal.Signal[signal.Void]
	Stopped              *signal.Signal[signal.Void]
	PriceProcessed       *signal.Signal[models.PriceMap]
	AlertTriggered       *signal.Signal[models.AlertEvent]
	AlertSettingsChanged *signal.Signal[models.AlertSetting]

	pub     drepo.AlertPublisher
	metrics drepo.Metrics
	log     *logger.Logger

	mu     sync.Mutex
	alerts map[string]models.AlertSetting
	prices models.PriceMap

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewStockProcessor creates a processor with its own "worker" loop. pub may
// be nil.
func NewStockProcessor(pub drepo.AlertPublisher, metrics drepo.Metrics, log *logger.Logger) *StockProcessor {
	if log == nil {
		log = logger.Nop()
	}
	p := &StockProcessor{
		Object:  signal.NewObject(signal.NewLoop("worker")),
		pub:     pub,
		metrics: metrics,
		log:     log.Component("stock_processor"),
		alerts:  make(map[string]models.AlertSetting),
		prices:  make(models.PriceMap),
	}
	p.Started = signal.New[signal.Void](p.Object, "processor.started")
	p.Stopped = signal.New[signal.Void](p.Object, "processor.stopped")
	p.PriceProcessed = signal.New[models.PriceMap](p.Object, "processor.price_processed")
	p.AlertTriggered = signal.New[models.AlertEvent](p.Object, "processor.alert_triggered")
	p.AlertSettingsChanged = signal.New[models.AlertSetting](p.Object, "processor.alert_settings_changed")
	return p
}

// Start launches the worker goroutine. Started is emitted from the worker
// loop once it is running.
func (p *StockProcessor) Start() error {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.done != nil {
		return ErrProcessorRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	loop := p.Loop()
	loop.Post(func(context.Context) {
		p.log.Info("processor started", logger.String("loop", loop.Name()))
		p.Started.Emit(signal.Void{})
	})

	go func(done chan struct{}) {
		defer close(done)
		_ = loop.Run(ctx)
	}(p.done)
	return nil
}

// Stop stops the worker loop, waits for it and emits Stopped. Queued
// deliveries not yet run are dropped. Stop is a no-op if not running.
func (p *StockProcessor) Stop() error {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.done == nil {
		return nil
	}
	p.cancel()
	<-p.done
	p.done = nil

	var err error
	if p.pub != nil {
		if cerr := p.pub.Close(); cerr != nil {
			err = fmt.Errorf("close alert publisher: %w", cerr)
		}
	}
	p.log.Info("processor stopped")
	p.Stopped.Emit(signal.Void{})
	return err
}

// OnPriceUpdated evaluates alerts against prices and forwards the snapshot.
func (p *StockProcessor) OnPriceUpdated(ctx context.Context, prices models.PriceMap) error {
	start := time.Now()

	p.mu.Lock()
	p.prices = prices.Clone()
	var fired []models.AlertEvent
	for _, code := range prices.Codes() {
		if s, ok := p.alerts[code]; ok {
			fired = append(fired, s.Evaluate(prices[code])...)
		}
	}
	p.mu.Unlock()

	p.PriceProcessed.Emit(prices.Clone())

	var errs []error
	for i := range fired {
		e := fired[i]
		p.metrics.RecordAlert(e.Code, string(e.Kind))
		p.log.Info("alert triggered",
			logger.String("code", e.Code),
			logger.String("kind", string(e.Kind)),
			logger.Float64("price", e.Price),
			logger.Float64("bound", e.Bound),
		)
		p.AlertTriggered.Emit(e)
		if p.pub != nil {
			if err := p.pub.Publish(ctx, &e); err != nil {
				p.metrics.RecordError("alert_publish")
				errs = append(errs, fmt.Errorf("publish alert %s: %w", e.Code, err))
			}
		}
	}
	p.metrics.RecordLatency("process_prices", time.Since(start).Seconds())
	return errors.Join(errs...)
}

// OnSetAlert stores bounds for a code. A zero bound is kept but never fires,
// so a request with both bounds zero leaves an inert alert in place.
func (p *StockProcessor) OnSetAlert(req models.AlertRequest) error {
	code := canonicalCode(req.Code)
	if code == "" {
		return ErrEmptyCode
	}
	s := models.NewAlertSetting(code, req.Lower, req.Upper)

	p.mu.Lock()
	p.alerts[code] = s
	p.mu.Unlock()

	p.log.Info("alert set",
		logger.String("code", code),
		logger.Float64("lower", req.Lower),
		logger.Float64("upper", req.Upper),
	)
	p.AlertSettingsChanged.Emit(s)
	return nil
}

// OnRemoveAlert drops the alert for code. Unknown codes are ignored.
func (p *StockProcessor) OnRemoveAlert(code string) error {
	code = canonicalCode(code)
	p.mu.Lock()
	_, ok := p.alerts[code]
	delete(p.alerts, code)
	p.mu.Unlock()
	if !ok {
		return nil
	}

	p.log.Info("alert removed", logger.String("code", code))
	p.AlertSettingsChanged.Emit(models.AlertSetting{Code: code})
	return nil
}

// AlertSettings returns a copy of the current settings.
func (p *StockProcessor) AlertSettings() map[string]models.AlertSetting {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]models.AlertSetting, len(p.alerts))
	for k, v := range p.alerts {
		out[k] = v
	}
	return out
}

func canonicalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
