package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Client wraps a go-redis client with pub/sub helpers.
type Client struct {
	rdb *goredis.Client
	cfg Config
}

// New creates a client. It does not dial; call Ping to check reachability.
func New(opts ...Option) *Client {
	cfg := Config{
		Addr:         "localhost:6379",
		PoolSize:     10,
		PoolTimeout:  30 * time.Second,
		MinIdleConns: 1,
		PingTimeout:  5 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Client{
		cfg: cfg,
		rdb: goredis.NewClient(&goredis.Options{
			Addr:         cfg.Addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			PoolSize:     cfg.PoolSize,
			PoolTimeout:  cfg.PoolTimeout,
			MinIdleConns: cfg.MinIdleConns,
		}),
	}
}

// Addr returns the configured address.
func (c *Client) Addr() string { return c.cfg.Addr }

// Ping checks the connection with a bounded timeout.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.PingTimeout)
	defer cancel()
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", c.cfg.Addr, err)
	}
	return nil
}

// Subscribe subscribes to channels and waits for the confirmation.
func (c *Client) Subscribe(ctx context.Context, channels ...string) (*goredis.PubSub, error) {
	ps := c.rdb.Subscribe(ctx, channels...)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe %v: %w", channels, err)
	}
	return ps, nil
}

// Publish sends value to channel. Values other than string and []byte are
// JSON encoded.
func (c *Client) Publish(ctx context.Context, channel string, value interface{}) error {
	var payload interface{} = value
	switch value.(type) {
	case string, []byte:
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal value: %w", err)
		}
		payload = b
	}
	return c.rdb.Publish(ctx, channel, payload).Err()
}

// Close closes the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}
