package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"StockMon/internal/domain/models"
)

type Config struct {
	Environment string    `yaml:"environment" default:"development" validate:"required"`
	Log         Log       `yaml:"log"`
	Console     Console   `yaml:"console"`
	Feed        Feed      `yaml:"feed"`
	Simulator   Simulator `yaml:"simulator"`
	Finnhub     Finnhub   `yaml:"finnhub"`
	Kafka       Kafka     `yaml:"kafka"`
	Redis       Redis     `yaml:"redis"`
	Metrics     Metrics   `yaml:"metrics"`
}

type Log struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"json" validate:"oneof=json console"`
	Output string `yaml:"output" default:"stockmon.log"`
}

type Console struct {
	StartupTimeout time.Duration `yaml:"startup_timeout" default:"10s" validate:"gte=0"`
	Prompt         string        `yaml:"prompt" default:"Command> "`
	Color          bool          `yaml:"color" default:"true"`
}

type Feed struct {
	Type     string         `yaml:"type" default:"sim" validate:"oneof=sim finnhub kafka redis"`
	Interval time.Duration  `yaml:"interval" default:"1s" validate:"gt=0"`
	MaxRPS   float64        `yaml:"max_rps" default:"20" validate:"gte=0"`
	Symbols  []models.Stock `yaml:"symbols" validate:"dive"`
}

type Simulator struct {
	Interval   time.Duration `yaml:"interval" default:"500ms" validate:"gt=0"`
	Volatility float64       `yaml:"volatility" default:"0.01" validate:"gte=0,lt=1"`
	Seed       int64         `yaml:"seed"`
}

type Finnhub struct {
	APIKey         string        `yaml:"api_key"`
	WebSocketURL   string        `yaml:"websocket_url" default:"wss://ws.finnhub.io"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"2s"`
	PingInterval   time.Duration `yaml:"ping_interval" default:"30s"`
}

type Kafka struct {
	Brokers       []string      `yaml:"brokers"`
	QuotesTopic   string        `yaml:"quotes_topic" default:"stock.quotes"`
	GroupID       string        `yaml:"group_id" default:"stockmon"`
	Workers       int           `yaml:"workers" default:"2" validate:"gte=1"`
	AlertsTopic   string        `yaml:"alerts_topic" default:"stock.alerts"`
	AlertsEnabled bool          `yaml:"alerts_enabled"`
	WriteTimeout  time.Duration `yaml:"write_timeout" default:"5s"`
}

type Redis struct {
	Addr     string `yaml:"addr" default:"localhost:6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel" default:"stock.quotes"`
	// AlertsChannel, when set, receives every triggered alert.
	AlertsChannel string `yaml:"alerts_channel"`
}

type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host" default:"127.0.0.1"`
	Port    int    `yaml:"port" default:"9090" validate:"gte=0,lte=65535"`
}

// DefaultStocks is the watch list used when feed.symbols is empty.
var DefaultStocks = []models.Stock{
	{Code: "AAPL", Name: "Apple Inc.", Price: 180},
	{Code: "GOOGL", Name: "Alphabet Inc.", Price: 140},
	{Code: "MSFT", Name: "Microsoft Corporation", Price: 380},
	{Code: "AMZN", Name: "Amazon.com Inc.", Price: 150},
	{Code: "TSLA", Name: "Tesla Inc.", Price: 240},
}

var validate = validator.New()

// Load builds the configuration from struct defaults and the YAML file at
// path. An empty path uses defaults only.
func Load(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	c.normalize()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads .env (if present) and the YAML file, then applies
// environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("FEED_TYPE"); v != "" {
		c.Feed.Type = v
	}
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Finnhub.APIKey = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("STARTUP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("STARTUP_TIMEOUT: %w", err)
		}
		c.Console.StartupTimeout = d
	}
	return nil
}

// normalize uppercases codes and fills the default watch list.
func (c *Config) normalize() {
	if len(c.Feed.Symbols) == 0 {
		c.Feed.Symbols = append([]models.Stock(nil), DefaultStocks...)
	}
	for i := range c.Feed.Symbols {
		c.Feed.Symbols[i].Code = strings.ToUpper(strings.TrimSpace(c.Feed.Symbols[i].Code))
	}
	for i, b := range c.Kafka.Brokers {
		c.Kafka.Brokers[i] = strings.TrimSpace(b)
	}
}

// Validate checks struct tags and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Feed.Symbols))
	for _, s := range c.Feed.Symbols {
		if seen[s.Code] {
			return fmt.Errorf("feed.symbols: duplicate code %s", s.Code)
		}
		seen[s.Code] = true
	}
	switch c.Feed.Type {
	case "finnhub":
		if c.Finnhub.APIKey == "" {
			return fmt.Errorf("finnhub.api_key is required for feed.type finnhub")
		}
	case "kafka":
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers is required for feed.type kafka")
		}
	}
	if c.Kafka.AlertsEnabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka.alerts_enabled")
	}
	return nil
}

// Codes returns the configured stock codes.
func (c *Config) Codes() []string {
	out := make([]string, len(c.Feed.Symbols))
	for i, s := range c.Feed.Symbols {
		out[i] = s.Code
	}
	return out
}
