package usecase

import (
	"context"

	"SignalPulse/internal/domain/models"
	drepo "SignalPulse/internal/domain/repository"
	mid "SignalPulse/internal/middleware"
)

// QuoteCollector reads the quote stream and feeds the history store.
type QuoteCollector struct {
	stream  drepo.QuoteStream
	proc    *QuoteProcessor
	metrics drepo.Metrics
	pipe    *mid.QuotePipeline
}

// NewQuoteCollector creates a new QuoteCollector instance.
func NewQuoteCollector(stream drepo.QuoteStream, proc *QuoteProcessor, metrics drepo.Metrics, pipe *mid.QuotePipeline) *QuoteCollector {
	return &QuoteCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the quote stream is connected.
func (c *QuoteCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *QuoteCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	qCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, qCh, errCh)
	return nil
}

func (c *QuoteCollector) consume(ctx context.Context, qCh <-chan *models.Quote, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok {
				// stream channels are closed after a read failure;
				// fresh ones must come from a new Read call
				qCh, errCh = c.reopen(ctx)
				continue
			}
			if err != nil {
				c.metrics.RecordError("stream")
				qCh, errCh = c.reopen(ctx)
			}
		case q, ok := <-qCh:
			if !ok {
				qCh, errCh = c.reopen(ctx)
				continue
			}
			if q == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, q)
			} else {
				_ = c.proc.Process(ctx, q)
			}
		}
	}
}

// reopen reconnects the stream and returns a fresh channel pair. Retries
// until the stream comes back or the context ends; Reconnect itself
// throttles attempts with the configured delay. Nil channels on a dead
// context leave consume blocked on ctx.Done only.
func (c *QuoteCollector) reopen(ctx context.Context) (<-chan *models.Quote, <-chan error) {
	for ctx.Err() == nil {
		if err := c.stream.Reconnect(ctx); err != nil {
			c.metrics.RecordError("reconnect")
			continue
		}
		return c.stream.Read(ctx)
	}
	return nil, nil
}

// Processor returns the underlying QuoteProcessor for lifecycle management.
func (c *QuoteCollector) Processor() *QuoteProcessor { return c.proc }

// Shutdown stops the pipeline and closes the stream.
func (c *QuoteCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
