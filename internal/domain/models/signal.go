package models

import (
	"encoding/json"
	"math"
	"time"
)

// Trend is the overall direction read from the moving averages.
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

// Verdict is the classified signal direction.
type Verdict string

const (
	VerdictBuy  Verdict = "BUY"
	VerdictSell Verdict = "SELL"
	VerdictHold Verdict = "HOLD"
)

// ConfidenceTier grades a signal by its confirmation count.
type ConfidenceTier string

const (
	ConfidenceVeryStrong ConfidenceTier = "VERY_STRONG"
	ConfidenceStrong     ConfidenceTier = "STRONG"
	ConfidenceModerate   ConfidenceTier = "MODERATE"
	ConfidenceNone       ConfidenceTier = "NONE"
)

// TierForCount maps a confirmation count to its confidence tier.
// The tier is never set independently of the count.
func TierForCount(n int) ConfidenceTier {
	switch {
	case n >= 4:
		return ConfidenceVeryStrong
	case n == 3:
		return ConfidenceStrong
	case n == 2:
		return ConfidenceModerate
	default:
		return ConfidenceNone
	}
}

// IndicatorSnapshot holds the indicator values computed for one evaluation.
// A NaN field means the series was too short for that indicator.
type IndicatorSnapshot struct {
	ShortMA     float64
	LongMA      float64
	RSI         float64
	Support     float64
	Resistance  float64
	PositionPct float64
	Trend       Trend
}

// NullableFloat renders a float, NaN marshaling to null so the snapshot
// stays encodable when an indicator is missing.
func NullableFloat(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// FloatOrNaN is the inverse of NullableFloat.
func FloatOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// MarshalJSON encodes missing indicators (NaN) as null.
func (s IndicatorSnapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ShortMA     *float64 `json:"short_ma"`
		LongMA      *float64 `json:"long_ma"`
		RSI         *float64 `json:"rsi"`
		Support     *float64 `json:"support"`
		Resistance  *float64 `json:"resistance"`
		PositionPct *float64 `json:"position_pct"`
		Trend       Trend    `json:"trend"`
	}{
		ShortMA:     NullableFloat(s.ShortMA),
		LongMA:      NullableFloat(s.LongMA),
		RSI:         NullableFloat(s.RSI),
		Support:     NullableFloat(s.Support),
		Resistance:  NullableFloat(s.Resistance),
		PositionPct: NullableFloat(s.PositionPct),
		Trend:       s.Trend,
	})
}

// ConfirmationSource identifies which indicator produced a confirmation.
type ConfirmationSource string

const (
	SourceMA       ConfirmationSource = "MA"
	SourceRSI      ConfirmationSource = "RSI"
	SourcePosition ConfirmationSource = "position"
	SourceTrend    ConfirmationSource = "trend"
)

// ConfirmationDirection is the side a confirmation points to.
type ConfirmationDirection string

const (
	DirectionBullish ConfirmationDirection = "bullish"
	DirectionBearish ConfirmationDirection = "bearish"
	DirectionNone    ConfirmationDirection = "none"
)

// ConfirmationStrength distinguishes weak from strong readings (RSI bands).
type ConfirmationStrength string

const (
	StrengthWeak   ConfirmationStrength = "weak"
	StrengthStrong ConfirmationStrength = "strong"
)

// Confirmation is one independently evaluated piece of evidence.
// Both the classifier and the rationale builder consume these, so the
// threshold logic lives in exactly one place.
type Confirmation struct {
	Source    ConfirmationSource
	Direction ConfirmationDirection
	Strength  ConfirmationStrength
	Reason    string
}

// SignalRecord is the immutable result of one evaluation pass for one asset.
type SignalRecord struct {
	Asset         string            `json:"asset"`
	Price         float64           `json:"price"`
	Snapshot      IndicatorSnapshot `json:"snapshot"`
	Verdict       Verdict           `json:"verdict"`
	Confidence    ConfidenceTier    `json:"confidence"`
	Confirmations int               `json:"confirmations"`
	Rationale     []string          `json:"rationale,omitempty"`
	GeneratedAt   time.Time         `json:"generated_at"`
}
