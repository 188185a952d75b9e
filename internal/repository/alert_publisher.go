package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"StockMon/internal/domain/models"
	drepo "StockMon/internal/domain/repository"
	"StockMon/pkg/logger"
)

// Producer is the subset of pkg/kafka.Producer the publisher needs.
type Producer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// BreakerSettings tunes the circuit breaker in front of a producer.
type BreakerSettings struct {
	MaxFailures uint32
	OpenFor     time.Duration
}

// KafkaAlertPublisher publishes alerts keyed by code. After MaxFailures
// consecutive failures the breaker opens and Publish fails fast with
// gobreaker.ErrOpenState until OpenFor elapses.
type KafkaAlertPublisher struct {
	producer Producer
	topic    string
	timeout  time.Duration
	cb       *gobreaker.CircuitBreaker
	log      *logger.Logger
}

func NewKafkaAlertPublisher(p Producer, topic string, timeout time.Duration, bs BreakerSettings, log *logger.Logger) *KafkaAlertPublisher {
	if bs.MaxFailures == 0 {
		bs.MaxFailures = 5
	}
	if bs.OpenFor <= 0 {
		bs.OpenFor = 30 * time.Second
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("alert_publisher")

	st := gobreaker.Settings{
		Name:    "kafka:" + topic,
		Timeout: bs.OpenFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= bs.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	}
	return &KafkaAlertPublisher{
		producer: p,
		topic:    topic,
		timeout:  timeout,
		cb:       gobreaker.NewCircuitBreaker(st),
		log:      log,
	}
}

func (p *KafkaAlertPublisher) Publish(ctx context.Context, e *models.AlertEvent) error {
	_, err := p.cb.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		return nil, p.producer.Publish(ctx, p.topic, []byte(e.Code), e)
	})
	if err != nil {
		return fmt.Errorf("publish alert %s: %w", e.Code, err)
	}
	return nil
}

// State reports the breaker state.
func (p *KafkaAlertPublisher) State() gobreaker.State { return p.cb.State() }

func (p *KafkaAlertPublisher) Close() error { return p.producer.Close() }

// ChannelPublisher is the subset of pkg/redis.Client used for alerts.
type ChannelPublisher interface {
	Publish(ctx context.Context, channel string, value interface{}) error
}

// RedisAlertPublisher publishes alerts as JSON on a pub/sub channel. It does
// not own the client.
type RedisAlertPublisher struct {
	client  ChannelPublisher
	channel string
}

func NewRedisAlertPublisher(c ChannelPublisher, channel string) *RedisAlertPublisher {
	return &RedisAlertPublisher{client: c, channel: channel}
}

func (p *RedisAlertPublisher) Publish(ctx context.Context, e *models.AlertEvent) error {
	if err := p.client.Publish(ctx, p.channel, e); err != nil {
		return fmt.Errorf("publish alert %s to %s: %w", e.Code, p.channel, err)
	}
	return nil
}

func (p *RedisAlertPublisher) Close() error { return nil }

// FanoutPublisher publishes to every sink and joins their errors.
type FanoutPublisher []drepo.AlertPublisher

func (f FanoutPublisher) Publish(ctx context.Context, e *models.AlertEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f FanoutPublisher) Close() error {
	var errs []error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NoopPublisher discards alerts.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *models.AlertEvent) error { return nil }
func (NoopPublisher) Close() error                                      { return nil }
