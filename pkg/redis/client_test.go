package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_AppliesOptions(t *testing.T) {
	c := New(WithAddr("redis:6380"), WithPassword("pw"), WithDB(2), WithPoolSize(3), WithAddr(""))
	defer c.Close()

	assert.Equal(t, "redis:6380", c.Addr())
	assert.Equal(t, 2, c.cfg.DB)
	assert.Equal(t, 3, c.cfg.PoolSize)
	assert.Equal(t, "pw", c.cfg.Password)
}

func TestPing_Unreachable(t *testing.T) {
	c := New(WithAddr("127.0.0.1:1"))
	defer c.Close()
	c.cfg.PingTimeout = 200 * time.Millisecond

	err := c.Ping(context.Background())
	assert.ErrorContains(t, err, "redis ping 127.0.0.1:1")
}
