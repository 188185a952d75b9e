package redis

import "time"

// Option configures a Client.
type Option func(*Config)

// Config holds Redis connection settings.
type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	PoolTimeout  time.Duration
	MinIdleConns int
	PingTimeout  time.Duration
}

// WithAddr sets host:port.
func WithAddr(addr string) Option {
	return func(c *Config) {
		if addr != "" {
			c.Addr = addr
		}
	}
}

// WithPassword sets the password.
func WithPassword(password string) Option {
	return func(c *Config) {
		c.Password = password
	}
}

// WithDB selects the database.
func WithDB(db int) Option {
	return func(c *Config) {
		c.DB = db
	}
}

// WithPoolSize sets the connection pool size.
func WithPoolSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.PoolSize = n
		}
	}
}
