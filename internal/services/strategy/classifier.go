package strategy

import "SignalPulse/internal/domain/models"

// DefaultMinConfirmations is the number of same-direction confirmations a
// signal needs before it fires.
const DefaultMinConfirmations = 2

// Classify tallies bullish against bearish confirmations. A direction wins
// only when it reaches minConfirmations and strictly exceeds the other
// side; anything else, ties included, is HOLD with a zero count. No signal
// fires on ambiguous evidence.
func Classify(confs []models.Confirmation, minConfirmations int) (models.Verdict, int) {
	if minConfirmations <= 0 {
		minConfirmations = DefaultMinConfirmations
	}
	var bullish, bearish int
	for _, c := range confs {
		switch c.Direction {
		case models.DirectionBullish:
			bullish++
		case models.DirectionBearish:
			bearish++
		}
	}
	switch {
	case bullish >= minConfirmations && bullish > bearish:
		return models.VerdictBuy, bullish
	case bearish >= minConfirmations && bearish > bullish:
		return models.VerdictSell, bearish
	default:
		return models.VerdictHold, 0
	}
}
