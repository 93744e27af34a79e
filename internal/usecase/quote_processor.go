package usecase

import (
	"context"
	"fmt"
	"time"

	"SignalPulse/internal/domain/models"
	drepo "SignalPulse/internal/domain/repository"
)

// QuoteProcessor appends incoming quotes to the price history store.
type QuoteProcessor struct {
	history drepo.PriceHistory
	metrics drepo.Metrics
}

// NewQuoteProcessor creates a new QuoteProcessor instance.
func NewQuoteProcessor(history drepo.PriceHistory, metrics drepo.Metrics) *QuoteProcessor {
	return &QuoteProcessor{history: history, metrics: metrics}
}

// Process stores a single quote as the newest history point for its asset.
func (p *QuoteProcessor) Process(ctx context.Context, q *models.Quote) error {
	if q == nil {
		return fmt.Errorf("quote is nil")
	}

	start := time.Now()
	point := models.PricePoint{Timestamp: time.Unix(q.Timestamp, 0), Price: q.Price}
	if err := p.history.Append(ctx, q.Asset, point); err != nil {
		p.metrics.RecordError("history_append")
		return fmt.Errorf("append quote: %w", err)
	}

	p.metrics.RecordLastPrice(q.Asset, q.Price)
	p.metrics.RecordLatency("history_append", time.Since(start).Seconds())
	return nil
}

// Close closes the underlying store.
func (p *QuoteProcessor) Close() {
	if p.history != nil {
		_ = p.history.Close()
	}
}
