package strategy

import (
	"fmt"
	"math"

	"SignalPulse/internal/domain/models"
)

// Fixed design constants for the confirmation bands. The RSI and position
// thresholds are deliberately not configuration; only the windows and the
// minimum confirmation count are.
const (
	rsiOversold       = 30
	rsiNearOversold   = 40
	rsiNearOverbought = 60
	rsiOverbought     = 70

	positionNearSupport    = 30
	positionNearResistance = 70
)

// BuildConfirmations evaluates the four evidence slots in fixed order:
// MA crossover, RSI, position in range, trend. A slot whose indicator is
// missing (NaN from a short series) contributes a none-direction entry.
func BuildConfirmations(snap models.IndicatorSnapshot) []models.Confirmation {
	return []models.Confirmation{
		maConfirmation(snap),
		rsiConfirmation(snap),
		positionConfirmation(snap),
		trendConfirmation(snap),
	}
}

func maConfirmation(snap models.IndicatorSnapshot) models.Confirmation {
	c := models.Confirmation{Source: models.SourceMA, Direction: models.DirectionNone, Strength: models.StrengthWeak}
	if math.IsNaN(snap.ShortMA) || math.IsNaN(snap.LongMA) {
		return c
	}
	switch {
	case snap.ShortMA > snap.LongMA:
		c.Direction = models.DirectionBullish
		c.Reason = "MA: short-term above long-term (bullish)"
	case snap.ShortMA < snap.LongMA:
		c.Direction = models.DirectionBearish
		c.Reason = "MA: short-term below long-term (bearish)"
	}
	return c
}

func rsiConfirmation(snap models.IndicatorSnapshot) models.Confirmation {
	c := models.Confirmation{Source: models.SourceRSI, Direction: models.DirectionNone, Strength: models.StrengthWeak}
	if math.IsNaN(snap.RSI) {
		return c
	}
	switch {
	case snap.RSI < rsiOversold:
		c.Direction = models.DirectionBullish
		c.Strength = models.StrengthStrong
		c.Reason = fmt.Sprintf("RSI: oversold (%.1f)", snap.RSI)
	case snap.RSI < rsiNearOversold:
		c.Direction = models.DirectionBullish
		c.Reason = fmt.Sprintf("RSI: approaching oversold (%.1f)", snap.RSI)
	case snap.RSI > rsiOverbought:
		c.Direction = models.DirectionBearish
		c.Strength = models.StrengthStrong
		c.Reason = fmt.Sprintf("RSI: overbought (%.1f)", snap.RSI)
	case snap.RSI > rsiNearOverbought:
		c.Direction = models.DirectionBearish
		c.Reason = fmt.Sprintf("RSI: approaching overbought (%.1f)", snap.RSI)
	}
	return c
}

func positionConfirmation(snap models.IndicatorSnapshot) models.Confirmation {
	c := models.Confirmation{Source: models.SourcePosition, Direction: models.DirectionNone, Strength: models.StrengthWeak}
	if math.IsNaN(snap.PositionPct) {
		return c
	}
	switch {
	case snap.PositionPct <= positionNearSupport:
		c.Direction = models.DirectionBullish
		c.Reason = fmt.Sprintf("Price near support level (%.2f)", snap.Support)
	case snap.PositionPct >= positionNearResistance:
		c.Direction = models.DirectionBearish
		c.Reason = fmt.Sprintf("Price near resistance level (%.2f)", snap.Resistance)
	}
	return c
}

func trendConfirmation(snap models.IndicatorSnapshot) models.Confirmation {
	c := models.Confirmation{Source: models.SourceTrend, Direction: models.DirectionNone, Strength: models.StrengthWeak}
	switch snap.Trend {
	case models.TrendBullish:
		c.Direction = models.DirectionBullish
		c.Reason = "Trend: bullish"
	case models.TrendBearish:
		c.Direction = models.DirectionBearish
		c.Reason = "Trend: bearish"
	}
	return c
}
