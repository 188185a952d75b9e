package middleware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"StockMon/internal/domain/models"
	domrepo "StockMon/internal/domain/repository"
	"StockMon/internal/service/ratelimit"
)

var ErrInvalidQuote = errors.New("invalid quote")

// Sink receives quotes that passed the pipeline.
type Sink interface {
	Apply(q *models.Quote) error
}

// QuotePipeline sits between a feed and the quote book. It validates,
// normalizes, optionally transforms and throttles quotes per code.
type QuotePipeline struct {
	sink      Sink
	metrics   domrepo.Metrics
	maxRPS    float64
	burst     int
	limiter   *ratelimit.Limiter
	transform func(*models.Quote) *models.Quote
	now       func() time.Time
}

type PipelineOption func(*QuotePipeline)

// WithMaxRPS sets the max quotes per second per code. 0 disables throttling.
func WithMaxRPS(n float64) PipelineOption {
	return func(p *QuotePipeline) {
		if n >= 0 {
			p.maxRPS = n
		}
	}
}

// WithBurst sets how many quotes per code may pass back to back.
func WithBurst(n int) PipelineOption {
	return func(p *QuotePipeline) {
		if n > 0 {
			p.burst = n
		}
	}
}

// WithTransform sets a hook applied after normalization.
func WithTransform(fn func(*models.Quote) *models.Quote) PipelineOption {
	return func(p *QuotePipeline) { p.transform = fn }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *QuotePipeline) { p.now = now }
}

func NewQuotePipeline(sink Sink, metrics domrepo.Metrics, opts ...PipelineOption) *QuotePipeline {
	p := &QuotePipeline{
		sink:    sink,
		metrics: metrics,
		maxRPS:  20,
		burst:   1,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.limiter = ratelimit.New(p.maxRPS, p.burst)
	return p
}

// Process runs q through the pipeline. Throttled quotes are dropped without
// error.
func (p *QuotePipeline) Process(ctx context.Context, q *models.Quote) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := p.now()
	if err := validateQuote(q); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}

	n := *q
	n.Code = strings.ToUpper(strings.TrimSpace(n.Code))
	if n.Timestamp.IsZero() {
		n.Timestamp = start
	}
	out := &n
	if p.transform != nil {
		out = p.transform(out)
		if err := validateQuote(out); err != nil {
			p.metrics.RecordError("pipeline_transform_invalid")
			return err
		}
	}

	if !p.limiter.AllowAt(out.Code, start) {
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}

	if err := p.sink.Apply(out); err != nil {
		p.metrics.RecordError("pipeline_apply")
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", p.now().Sub(start).Seconds())
	return nil
}

func validateQuote(q *models.Quote) error {
	if q == nil {
		return fmt.Errorf("%w: nil", ErrInvalidQuote)
	}
	if strings.TrimSpace(q.Code) == "" {
		return fmt.Errorf("%w: code empty", ErrInvalidQuote)
	}
	if math.IsNaN(q.Price) || math.IsInf(q.Price, 0) || q.Price <= 0 {
		return fmt.Errorf("%w: price %v", ErrInvalidQuote, q.Price)
	}
	return nil
}
