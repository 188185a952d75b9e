// Package kafkafeed reads JSON quotes from a Kafka topic.
package kafkafeed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"StockMon/internal/domain/models"
	"StockMon/pkg/kafka"
	"StockMon/pkg/logger"
)

var ErrNotConnected = errors.New("kafka feed not connected")

// Feed is a QuoteFeed over a kafka consumer group. A fresh consumer is
// built on every Connect so the feed survives reconnects.
type Feed struct {
	topic string
	opts  []kafka.ConsumerOption
	log   *logger.Logger

	mu       sync.Mutex
	consumer *kafka.Consumer
	quotes   chan *models.Quote
}

// New creates a feed for topic.
func New(topic string, log *logger.Logger, opts ...kafka.ConsumerOption) *Feed {
	if log == nil {
		log = logger.Nop()
	}
	return &Feed{topic: topic, opts: opts, log: log.Component("kafka_feed")}
}

func (f *Feed) Name() string { return "kafka:" + f.topic }

func (f *Feed) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.consumer != nil {
		return nil
	}
	c, err := kafka.NewConsumer(f.log, f.opts...)
	if err != nil {
		return fmt.Errorf("kafka feed: %w", err)
	}
	quotes := make(chan *models.Quote, 256)
	c.RegisterHandler(&handler{topic: f.topic, out: quotes, log: f.log})
	if err := c.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("kafka feed: %w", err)
	}
	f.consumer = c
	f.quotes = quotes
	return nil
}

// Read returns the quotes of the current connection. They close on Close.
func (f *Feed) Read(_ context.Context) (<-chan *models.Quote, <-chan error) {
	errs := make(chan error, 1)
	f.mu.Lock()
	quotes := f.quotes
	f.mu.Unlock()
	if quotes == nil {
		errs <- ErrNotConnected
		closed := make(chan *models.Quote)
		close(closed)
		close(errs)
		return closed, errs
	}
	return quotes, errs
}

func (f *Feed) Close() error {
	f.mu.Lock()
	c, quotes := f.consumer, f.quotes
	f.consumer, f.quotes = nil, nil
	f.mu.Unlock()
	if c == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := c.Stop(ctx)
	close(quotes)
	return err
}

type handler struct {
	topic string
	out   chan<- *models.Quote
	log   *logger.Logger
}

func (h *handler) Topic() string { return h.topic }

// Handle decodes one message. Bad payloads are logged and committed.
func (h *handler) Handle(ctx context.Context, b []byte) error {
	q, err := models.DecodeQuote(b)
	if err != nil {
		h.log.Warn("dropping message", logger.String("topic", h.topic), logger.Error(err))
		return nil
	}
	if q.Source == "" {
		q.Source = "kafka"
	}
	select {
	case h.out <- q:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
