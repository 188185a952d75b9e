package repository

import (
	"context"

	"StockMon/internal/domain/models"
)

// QuoteFeed is a source of raw quotes.
type QuoteFeed interface {
	Name() string
	Connect(ctx context.Context) error
	// Read streams quotes until ctx is done or the feed fails. Both channels
	// are closed when the feed stops.
	Read(ctx context.Context) (<-chan *models.Quote, <-chan error)
	Close() error
}

// AlertPublisher fans triggered alerts out to downstream consumers.
type AlertPublisher interface {
	Publish(ctx context.Context, e *models.AlertEvent) error
	Close() error
}

type Metrics interface {
	RecordError(kind string)
	RecordLastPrice(code string, price float64)
	RecordAlert(code, kind string)
	RecordLatency(op string, seconds float64)
}
