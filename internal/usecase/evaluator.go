package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"SignalPulse/internal/domain/models"
	drepo "SignalPulse/internal/domain/repository"
	domsvc "SignalPulse/internal/domain/service"
	"SignalPulse/internal/services/indicators"
)

// SignalEvaluator runs the engine over the tracked assets. One evaluation
// pass per asset is pure computation over an immutable series snapshot, so
// assets are evaluated in parallel with no shared state.
type SignalEvaluator struct {
	history   drepo.PriceHistory
	engine    domsvc.SignalEngine
	publisher drepo.SignalPublisher
	metrics   drepo.Metrics

	assets    []string
	seriesLen int
	interval  time.Duration
}

// EvaluatorOption configures SignalEvaluator.
type EvaluatorOption func(*SignalEvaluator)

// WithSeriesLen sets how many history points one evaluation reads.
func WithSeriesLen(n int) EvaluatorOption {
	return func(e *SignalEvaluator) {
		if n > 0 {
			e.seriesLen = n
		}
	}
}

// WithInterval sets the periodic evaluation interval.
func WithInterval(d time.Duration) EvaluatorOption {
	return func(e *SignalEvaluator) {
		if d > 0 {
			e.interval = d
		}
	}
}

func NewSignalEvaluator(
	history drepo.PriceHistory,
	engine domsvc.SignalEngine,
	publisher drepo.SignalPublisher,
	metrics drepo.Metrics,
	assets []string,
	opts ...EvaluatorOption,
) *SignalEvaluator {
	e := &SignalEvaluator{
		history:   history,
		engine:    engine,
		publisher: publisher,
		metrics:   metrics,
		assets:    assets,
		seriesLen: 100,
		interval:  5 * time.Minute,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EvaluateAsset runs one pass for one asset. The record is returned for
// every valid series, HOLD included; the publisher is only invoked for
// BUY/SELL verdicts, so inconclusive evaluations stay silent downstream.
func (e *SignalEvaluator) EvaluateAsset(ctx context.Context, asset string) (*models.SignalRecord, error) {
	start := time.Now()

	series, err := e.history.Series(ctx, asset, e.seriesLen)
	if err != nil {
		e.metrics.RecordError("history_read")
		return nil, fmt.Errorf("read history %s: %w", asset, err)
	}

	rec, err := e.engine.Evaluate(asset, series, time.Now())
	if err != nil {
		if errors.Is(err, indicators.ErrInvalidSeries) {
			e.metrics.RecordError("invalid_series")
		} else {
			e.metrics.RecordError("evaluate")
		}
		return nil, err
	}

	e.metrics.RecordEvaluation(asset, string(rec.Verdict))
	e.metrics.RecordLastPrice(asset, rec.Price)

	if rec.Verdict != models.VerdictHold {
		if err := e.publisher.Publish(ctx, rec); err != nil {
			e.metrics.RecordError("publish")
			return rec, fmt.Errorf("publish %s: %w", asset, err)
		}
	}

	e.metrics.RecordLatency("evaluate", time.Since(start).Seconds())
	return rec, nil
}

// Inspect evaluates one asset without dispatching, for read-only callers
// like the HTTP API. A non-positive n falls back to the configured series
// length. The periodic pass owns the notification side effects.
func (e *SignalEvaluator) Inspect(ctx context.Context, asset string, n int) (*models.SignalRecord, error) {
	if n <= 0 {
		n = e.seriesLen
	}
	series, err := e.history.Series(ctx, asset, n)
	if err != nil {
		e.metrics.RecordError("history_read")
		return nil, fmt.Errorf("read history %s: %w", asset, err)
	}
	rec, err := e.engine.Evaluate(asset, series, time.Now())
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// EvaluationResult pairs one asset's record with its error, if any.
type EvaluationResult struct {
	Asset  string
	Record *models.SignalRecord
	Err    error
}

// EvaluateAll fans out one goroutine per asset and collects the results.
func (e *SignalEvaluator) EvaluateAll(ctx context.Context) []EvaluationResult {
	ch := make(chan EvaluationResult, len(e.assets))
	var wg sync.WaitGroup

	for _, asset := range e.assets {
		wg.Add(1)
		go func(asset string) {
			defer wg.Done()
			rec, err := e.EvaluateAsset(ctx, asset)
			ch <- EvaluationResult{Asset: asset, Record: rec, Err: err}
		}(asset)
	}

	go func() { wg.Wait(); close(ch) }()

	out := make([]EvaluationResult, 0, len(e.assets))
	for r := range ch {
		out = append(out, r)
	}
	return out
}

// Run evaluates all assets on the configured interval until ctx is done.
// Timeout policy belongs here, in the scheduling loop, not in the engine.
func (e *SignalEvaluator) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			passCtx, cancel := context.WithTimeout(ctx, e.interval/2)
			e.EvaluateAll(passCtx)
			cancel()
		}
	}
}

// Assets returns the tracked asset identifiers.
func (e *SignalEvaluator) Assets() []string { return e.assets }
