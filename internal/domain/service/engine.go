package service

import (
	"time"

	"SignalPulse/internal/domain/models"
)

// SignalEngine turns a price series into a classified signal record.
// Implementations are pure: same series in, same record out (modulo the
// generation timestamp), so one engine can serve all assets concurrently.
type SignalEngine interface {
	Evaluate(asset string, series models.PriceSeries, at time.Time) (*models.SignalRecord, error)
}
