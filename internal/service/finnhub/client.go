package finnhub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"StockMon/internal/domain/models"
	"StockMon/pkg/logger"

	"github.com/gorilla/websocket"
)

var ErrNotConnected = errors.New("finnhub not connected")

// Client is a QuoteFeed backed by the Finnhub trade WebSocket.
type Client struct {
	apiKey       string
	websocketURL string
	symbols      []string
	pingInterval time.Duration
	log          *logger.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

// New creates a Finnhub feed for symbols.
func New(apiKey, websocketURL string, symbols []string, pingInterval time.Duration, log *logger.Logger) *Client {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		apiKey:       apiKey,
		websocketURL: websocketURL,
		symbols:      symbols,
		pingInterval: pingInterval,
		log:          log.Component("finnhub"),
	}
}

func (c *Client) Name() string { return "finnhub" }

// Connect dials the WebSocket and subscribes to every symbol.
func (c *Client) Connect(ctx context.Context) error {
	u, err := url.Parse(c.websocketURL)
	if err != nil {
		return fmt.Errorf("finnhub url: %w", err)
	}
	q := u.Query()
	q.Set("token", c.apiKey)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("finnhub connect: %w", err)
	}
	for _, s := range c.symbols {
		msg := map[string]string{"type": "subscribe", "symbol": s}
		if err := conn.WriteJSON(msg); err != nil {
			_ = conn.Close()
			return fmt.Errorf("subscribe %s: %w", s, err)
		}
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.log.Info("connected", logger.Strings("symbols", c.symbols))
	return nil
}

type fhTrade struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	V float64 `json:"v"`
	T int64   `json:"t"` // ms
}

type fhMessage struct {
	Type string    `json:"type"`
	Data []fhTrade `json:"data"`
}

// parseMessage turns a trade frame into quotes. Pings and other frames
// yield nothing.
func parseMessage(b []byte) ([]*models.Quote, error) {
	var m fhMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	if m.Type != "trade" {
		return nil, nil
	}
	out := make([]*models.Quote, 0, len(m.Data))
	for _, d := range m.Data {
		out = append(out, &models.Quote{
			Code:      d.S,
			Price:     d.P,
			Timestamp: time.UnixMilli(d.T),
			Source:    "finnhub",
		})
	}
	return out, nil
}

// Read streams quotes until the connection fails or ctx is done.
func (c *Client) Read(ctx context.Context) (<-chan *models.Quote, <-chan error) {
	quotes := make(chan *models.Quote, 1024)
	errs := make(chan error, 1)

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		errs <- ErrNotConnected
		close(quotes)
		close(errs)
		return quotes, errs
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				// unblocks ReadMessage
				_ = conn.Close()
				return
			case <-done:
				return
			case <-ticker.C:
				c.mu.Lock()
				_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
				c.mu.Unlock()
			}
		}
	}()

	go func() {
		defer close(quotes)
		defer close(errs)
		defer close(done)
		for {
			_, b, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					errs <- fmt.Errorf("finnhub read: %w", err)
				}
				return
			}
			qs, err := parseMessage(b)
			if err != nil {
				c.log.Debug("skipping frame", logger.Error(err))
				continue
			}
			for _, q := range qs {
				select {
				case quotes <- q:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return quotes, errs
}

// Close closes the connection. It is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}
