package strategy

import (
	"fmt"
	"time"

	"SignalPulse/internal/domain/models"
	domsvc "SignalPulse/internal/domain/service"
	"SignalPulse/internal/services/indicators"
)

// Engine is the signal engine: indicators, classification, rationale, and
// record assembly in one evaluation pass. It holds only configuration and
// is safe for concurrent use across assets.
type Engine struct {
	ind              indicators.Config
	minConfirmations int
}

type Option func(*Engine)

// WithIndicatorConfig overrides the indicator windows.
func WithIndicatorConfig(cfg indicators.Config) Option {
	return func(e *Engine) { e.ind = cfg }
}

// WithMinConfirmations overrides the confirmation threshold.
func WithMinConfirmations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.minConfirmations = n
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{minConfirmations: DefaultMinConfirmations}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs one pass over the series and assembles the record. An
// invalid series is refused outright; a short series degrades to whatever
// confirmations remain computable.
func (e *Engine) Evaluate(asset string, series models.PriceSeries, at time.Time) (*models.SignalRecord, error) {
	if asset == "" {
		return nil, fmt.Errorf("strategy: asset required")
	}
	snap, err := indicators.Snapshot(series, e.ind)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", asset, err)
	}

	confs := BuildConfirmations(snap)
	verdict, count := Classify(confs, e.minConfirmations)

	return &models.SignalRecord{
		Asset:         asset,
		Price:         series.Last().Price,
		Snapshot:      snap,
		Verdict:       verdict,
		Confidence:    models.TierForCount(count),
		Confirmations: count,
		Rationale:     Rationale(confs, verdict),
		GeneratedAt:   at,
	}, nil
}

var _ domsvc.SignalEngine = (*Engine)(nil)
