package models

import "time"

// PricePoint is one observed quote for an asset.
type PricePoint struct {
	Timestamp time.Time
	Price     float64
}

// PriceSeries is a chronologically ordered price history for one asset,
// oldest first.
type PriceSeries []PricePoint

// Prices returns the raw price values in series order.
func (s PriceSeries) Prices() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Price
	}
	return out
}

// Last returns the most recent point. Callers must check Len first.
func (s PriceSeries) Last() PricePoint {
	return s[len(s)-1]
}

// Quote is a single asset price update flowing through the ingestion path.
type Quote struct {
	Asset     string
	Timestamp int64 // unix seconds
	Price     float64
}
