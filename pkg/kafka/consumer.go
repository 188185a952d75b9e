package kafka

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"StockMon/pkg/logger"
)

// MessageHandler handles messages from a specific topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

// Reader is the subset of *kafka.Reader the consumer uses.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads registered topics and hands messages to a worker pool.
// Offsets are committed after the handler succeeds or retries are exhausted.
type Consumer struct {
	cfg      *ConsumerConfig
	log      *logger.Logger
	handlers map[string]MessageHandler
	readers  map[string]Reader
	msgChan  chan *message
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	started  bool
	stopOnce sync.Once
}

type message struct {
	topic string
	km    kafka.Message
}

// NewConsumer creates a consumer. Register handlers before Start.
func NewConsumer(log *logger.Logger, opts ...ConsumerOption) (*Consumer, error) {
	cfg := &ConsumerConfig{
		GroupID:     "stockmon",
		WorkerCount: 1,
		BufferSize:  64,
		RetryMax:    3,
		BackoffMin:  50 * time.Millisecond,
		BackoffMax:  2 * time.Second,
		MinBytes:    1,
		MaxBytes:    10e6,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.Brokers) == 0 && cfg.NewReader == nil {
		return nil, fmt.Errorf("brokers are required")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Consumer{
		cfg:      cfg,
		log:      log.Component("kafka_consumer"),
		handlers: make(map[string]MessageHandler),
		readers:  make(map[string]Reader),
		msgChan:  make(chan *message, cfg.BufferSize),
	}, nil
}

// RegisterHandler registers a handler for its topic. The first handler for a
// topic wins.
func (c *Consumer) RegisterHandler(h MessageHandler) {
	topic := h.Topic()
	if _, ok := c.handlers[topic]; ok {
		c.log.Warn("handler already registered", logger.String("topic", topic))
		return
	}
	c.handlers[topic] = h
}

// Start opens a reader per topic and starts the workers. It does not block.
func (c *Consumer) Start(ctx context.Context) error {
	if c.started {
		return errors.New("consumer already started")
	}
	if len(c.handlers) == 0 {
		return errors.New("no handlers registered")
	}
	c.started = true

	ctx, c.cancel = context.WithCancel(ctx)
	for topic := range c.handlers {
		c.readers[topic] = c.newReader(topic)
	}

	for i := 0; i < c.cfg.WorkerCount; i++ {
		c.wg.Add(1)
		go c.messageWorker(ctx)
	}
	var readers sync.WaitGroup
	for topic, r := range c.readers {
		c.wg.Add(1)
		readers.Add(1)
		go func() {
			defer readers.Done()
			c.consumeMessages(ctx, topic, r)
		}()
	}
	go func() {
		readers.Wait()
		close(c.msgChan)
	}()

	c.log.Info("consumer started",
		logger.Int("workers", c.cfg.WorkerCount),
		logger.Int("topics", len(c.readers)),
	)
	return nil
}

func (c *Consumer) newReader(topic string) Reader {
	if c.cfg.NewReader != nil {
		return c.cfg.NewReader(topic)
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  c.cfg.Brokers,
		Topic:    topic,
		GroupID:  c.cfg.GroupID,
		MinBytes: c.cfg.MinBytes,
		MaxBytes: c.cfg.MaxBytes,
	})
}

// Stop cancels the readers, waits for in-flight messages and closes readers.
func (c *Consumer) Stop(ctx context.Context) error {
	var stopErr error
	c.stopOnce.Do(func() {
		if !c.started {
			return
		}
		c.cancel()

		done := make(chan struct{})
		go func() {
			c.wg.Wait()
			close(done)
		}()
		select {
		case <-ctx.Done():
			stopErr = fmt.Errorf("timeout waiting for consumer to stop: %w", ctx.Err())
		case <-done:
		}

		for topic, r := range c.readers {
			if err := r.Close(); err != nil {
				c.log.Warn("close reader", logger.String("topic", topic), logger.Error(err))
			}
		}
		c.log.Info("consumer stopped")
	})
	return stopErr
}

func (c *Consumer) consumeMessages(ctx context.Context, topic string, r Reader) {
	defer c.wg.Done()
	backoff := c.cfg.BackoffMin
	for {
		km, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Warn("fetch failed", logger.String("topic", topic), logger.Error(err))
			if !sleepCtx(ctx, backoff) {
				return
			}
			if backoff < c.cfg.BackoffMax {
				backoff *= 2
			}
			continue
		}
		backoff = c.cfg.BackoffMin

		select {
		case c.msgChan <- &message{topic: topic, km: km}:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Consumer) messageWorker(ctx context.Context) {
	defer c.wg.Done()
	for msg := range c.msgChan {
		c.handle(ctx, msg)
	}
}

func (c *Consumer) handle(ctx context.Context, msg *message) {
	h, ok := c.handlers[msg.topic]
	if !ok {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("panic in message handler",
				logger.String("topic", msg.topic),
				logger.Error(fmt.Errorf("%v", r)),
			)
		}
	}()

	var err error
	attempts := 0
	for {
		attempts++
		err = h.Handle(ctx, msg.km.Value)
		if err == nil || attempts > c.cfg.RetryMax {
			break
		}
		if !sleepCtx(ctx, backoffWithJitter(c.cfg.BackoffMin, c.cfg.BackoffMax, attempts)) {
			return
		}
	}
	if err != nil {
		c.log.Error("message dropped after retries",
			logger.String("topic", msg.topic),
			logger.Int("attempts", attempts),
			logger.Error(err),
		)
	}

	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if cerr := c.readers[msg.topic].CommitMessages(commitCtx, msg.km); cerr != nil {
		c.log.Warn("commit failed", logger.String("topic", msg.topic), logger.Error(cerr))
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func backoffWithJitter(min, max time.Duration, attempt int) time.Duration {
	if min <= 0 {
		min = 50 * time.Millisecond
	}
	if max < min {
		max = min
	}
	exp := min * time.Duration(1<<uint(attempt-1))
	if exp > max || exp <= 0 {
		exp = max
	}
	jitter := time.Duration(rand.Int63n(int64(exp)/2 + 1))
	return exp - jitter
}
