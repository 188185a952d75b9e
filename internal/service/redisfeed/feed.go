// Package redisfeed reads JSON quotes from a Redis pub/sub channel.
package redisfeed

import (
	"context"
	"errors"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"StockMon/internal/domain/models"
	"StockMon/pkg/logger"
	"StockMon/pkg/redis"
)

var ErrNotConnected = errors.New("redis feed not connected")

// Feed is a QuoteFeed over one pub/sub channel. The client is owned by the
// caller; Close only drops the subscription.
type Feed struct {
	client  *redis.Client
	channel string
	log     *logger.Logger

	mu sync.Mutex
	ps *goredis.PubSub
}

func New(client *redis.Client, channel string, log *logger.Logger) *Feed {
	if log == nil {
		log = logger.Nop()
	}
	return &Feed{client: client, channel: channel, log: log.Component("redis_feed")}
}

func (f *Feed) Name() string { return "redis:" + f.channel }

func (f *Feed) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ps != nil {
		return nil
	}
	ps, err := f.client.Subscribe(ctx, f.channel)
	if err != nil {
		return err
	}
	f.ps = ps
	f.log.Info("subscribed", logger.String("channel", f.channel), logger.String("addr", f.client.Addr()))
	return nil
}

func (f *Feed) Read(ctx context.Context) (<-chan *models.Quote, <-chan error) {
	quotes := make(chan *models.Quote, 256)
	errs := make(chan error, 1)

	f.mu.Lock()
	ps := f.ps
	f.mu.Unlock()
	if ps == nil {
		errs <- ErrNotConnected
		close(quotes)
		close(errs)
		return quotes, errs
	}

	go func() {
		defer close(quotes)
		defer close(errs)
		pump(ctx, ps.Channel(), quotes, f.log)
	}()
	return quotes, errs
}

// pump decodes messages from in until it closes or ctx is done.
func pump(ctx context.Context, in <-chan *goredis.Message, out chan<- *models.Quote, log *logger.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-in:
			if !ok {
				return
			}
			q, err := models.DecodeQuote([]byte(msg.Payload))
			if err != nil {
				log.Warn("dropping message", logger.String("channel", msg.Channel), logger.Error(err))
				continue
			}
			if q.Source == "" {
				q.Source = "redis"
			}
			select {
			case out <- q:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (f *Feed) Close() error {
	f.mu.Lock()
	ps := f.ps
	f.ps = nil
	f.mu.Unlock()
	if ps == nil {
		return nil
	}
	return ps.Close()
}
