package repository

import (
	"context"
	"time"

	"SignalPulse/internal/domain/models"
)

type QuoteStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Quote, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// PriceHistory is the upstream price store the engine reads from. The
// engine reads one consistent series snapshot per evaluation and never
// mutates the store.
type PriceHistory interface {
	Append(ctx context.Context, asset string, p models.PricePoint) error
	Series(ctx context.Context, asset string, n int) (models.PriceSeries, error)
	Close() error
}

// SignalPublisher hands finished records to the notification side.
// Callers must not invoke it for HOLD verdicts.
type SignalPublisher interface {
	Publish(ctx context.Context, rec *models.SignalRecord) error
	Close() error
}

// SignalArchive persists emitted records for later inspection.
type SignalArchive interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, rec *models.SignalRecord) error
	Query(ctx context.Context, asset string, from, to time.Time, limit int) ([]*models.SignalRecord, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordEvaluation(asset, verdict string)
	RecordArchived(asset string)
	RecordError(kind string)
	RecordLastPrice(asset string, price float64)
	RecordLatency(op string, seconds float64)
}
