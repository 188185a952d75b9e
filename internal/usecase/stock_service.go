package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"StockMon/internal/domain/models"
	drepo "StockMon/internal/domain/repository"
	mid "StockMon/internal/middleware"
	"StockMon/pkg/logger"
	"StockMon/pkg/signal"
)

// ServiceConfig tunes a StockService.
type ServiceConfig struct {
	Interval       time.Duration
	Stocks         []models.Stock
	MaxRPS         float64
	ReconnectDelay time.Duration
}

// StockService collects quotes from a feed, keeps the quote book and
// publishes price snapshots on PriceUpdated.
type StockService struct {
	*signal.Object
	PriceUpdated *signal.Signal[models.PriceMap]

	feed    drepo.QuoteFeed
	pipe    *mid.QuotePipeline
	metrics drepo.Metrics
	log     *logger.Logger
	cfg     ServiceConfig
	desc    map[string]string

	mu    sync.Mutex
	book  map[string]*bookEntry
	dirty bool

	runMu   sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

type bookEntry struct {
	open float64
	last models.Quote
}

// NewStockService creates a StockService. The book is seeded with the
// configured base prices so the first snapshot lists every known stock.
func NewStockService(feed drepo.QuoteFeed, metrics drepo.Metrics, log *logger.Logger, cfg ServiceConfig) *StockService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 2 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &StockService{
		Object:  signal.NewObject(nil),
		feed:    feed,
		metrics: metrics,
		log:     log.Component("stock_service"),
		cfg:     cfg,
		desc:    make(map[string]string, len(cfg.Stocks)),
		book:    make(map[string]*bookEntry),
	}
	s.PriceUpdated = signal.New[models.PriceMap](s.Object, "service.price_updated")
	s.pipe = mid.NewQuotePipeline(s, metrics, mid.WithMaxRPS(cfg.MaxRPS))

	now := time.Now()
	for _, st := range cfg.Stocks {
		s.desc[st.Code] = st.Name
		if st.Price > 0 {
			s.book[st.Code] = &bookEntry{open: st.Price, last: models.Quote{Code: st.Code, Price: st.Price, Timestamp: now}}
			s.dirty = true
		}
	}
	return s
}

// Name identifies the service in lifecycle logs.
func (s *StockService) Name() string { return "stock_service:" + s.feed.Name() }

// Descriptions returns code to company name for the configured stocks.
func (s *StockService) Descriptions() map[string]string {
	out := make(map[string]string, len(s.desc))
	for k, v := range s.desc {
		out[k] = v
	}
	return out
}

// Start connects the feed and launches the consume and publish goroutines.
// The goroutines outlive ctx's cancellation and stop only on Stop.
func (s *StockService) Start(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.running {
		return nil
	}
	if err := s.feed.Connect(ctx); err != nil {
		s.metrics.RecordError("feed_connect")
		return fmt.Errorf("connect feed %s: %w", s.feed.Name(), err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.running = true

	quotes, errs := s.feed.Read(runCtx)
	s.wg.Add(2)
	go s.consume(runCtx, quotes, errs)
	go s.publish(runCtx)

	s.log.Info("service started",
		logger.String("feed", s.feed.Name()),
		logger.Duration("interval", s.cfg.Interval),
	)
	return nil
}

// Stop stops the goroutines and closes the feed. It is safe to call twice.
func (s *StockService) Stop() error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false
	s.cancel()
	s.wg.Wait()
	s.log.Info("service stopped")
	return s.feed.Close()
}

// Apply records q in the book. It is the pipeline's sink.
func (s *StockService) Apply(q *models.Quote) error {
	s.mu.Lock()
	e, ok := s.book[q.Code]
	if !ok {
		e = &bookEntry{open: q.Price}
		s.book[q.Code] = e
	}
	e.last = *q
	s.dirty = true
	s.mu.Unlock()

	s.metrics.RecordLastPrice(q.Code, q.Price)
	return nil
}

// Snapshot returns the current prices with change against the open price.
func (s *StockService) Snapshot() models.PriceMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *StockService) snapshotLocked() models.PriceMap {
	out := make(models.PriceMap, len(s.book))
	for code, e := range s.book {
		change := 0.0
		if e.open > 0 {
			change = (e.last.Price - e.open) / e.open * 100
		}
		out[code] = models.StockPrice{
			Code:      code,
			Price:     e.last.Price,
			Change:    change,
			Timestamp: e.last.Timestamp,
		}
	}
	return out
}

// Flush emits PriceUpdated if the book changed since the last flush.
func (s *StockService) Flush() bool {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return false
	}
	s.dirty = false
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.PriceUpdated.Emit(snap)
	return true
}

func (s *StockService) publish(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Flush()
		}
	}
}

func (s *StockService) consume(ctx context.Context, quotes <-chan *models.Quote, errs <-chan error) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err == nil {
				continue
			}
			s.metrics.RecordError("feed")
			s.log.Warn("feed error", logger.String("feed", s.feed.Name()), logger.Error(err))
		case q, ok := <-quotes:
			if !ok {
				var reconnected bool
				quotes, errs, reconnected = s.reconnect(ctx)
				if !reconnected {
					return
				}
				continue
			}
			if q == nil {
				continue
			}
			if err := s.pipe.Process(ctx, q); err != nil {
				s.log.Debug("quote rejected", logger.String("code", q.Code), logger.Error(err))
			}
		}
	}
}

// reconnect reopens the feed until it succeeds or ctx is done.
func (s *StockService) reconnect(ctx context.Context) (<-chan *models.Quote, <-chan error, bool) {
	backoff := s.cfg.ReconnectDelay
	for {
		_ = s.feed.Close()
		select {
		case <-ctx.Done():
			return nil, nil, false
		case <-time.After(backoff):
		}
		if err := s.feed.Connect(ctx); err != nil {
			s.metrics.RecordError("feed_reconnect")
			s.log.Warn("feed reconnect failed", logger.Error(err), logger.Duration("backoff", backoff))
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		s.log.Info("feed reconnected", logger.String("feed", s.feed.Name()))
		q, e := s.feed.Read(ctx)
		return q, e, true
	}
}
