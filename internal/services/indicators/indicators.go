package indicators

import (
	"errors"
	"fmt"
	"math"

	"SignalPulse/internal/domain/models"
)

var (
	// ErrInsufficientData means the series is shorter than the indicator
	// window. Recoverable: the classifier treats the slot as missing.
	ErrInsufficientData = errors.New("indicators: insufficient data")

	// ErrInvalidSeries means the series cannot be evaluated at all:
	// empty, out of order, or containing non-positive prices.
	ErrInvalidSeries = errors.New("indicators: invalid series")
)

// Config carries the indicator windows. Zero values fall back to defaults.
type Config struct {
	ShortWindow             int
	LongWindow              int
	RSIWindow               int
	SupportResistanceWindow int
}

const (
	DefaultShortWindow             = 10
	DefaultLongWindow              = 30
	DefaultRSIWindow               = 14
	DefaultSupportResistanceWindow = 20
)

func (c Config) withDefaults() Config {
	if c.ShortWindow <= 0 {
		c.ShortWindow = DefaultShortWindow
	}
	if c.LongWindow <= 0 {
		c.LongWindow = DefaultLongWindow
	}
	if c.RSIWindow <= 0 {
		c.RSIWindow = DefaultRSIWindow
	}
	if c.SupportResistanceWindow <= 0 {
		c.SupportResistanceWindow = DefaultSupportResistanceWindow
	}
	return c
}

// ValidateSeries rejects series the engine refuses to evaluate.
func ValidateSeries(series models.PriceSeries) error {
	if len(series) == 0 {
		return fmt.Errorf("%w: empty series", ErrInvalidSeries)
	}
	for i, p := range series {
		if p.Price <= 0 {
			return fmt.Errorf("%w: non-positive price %.4f at index %d", ErrInvalidSeries, p.Price, i)
		}
		if i > 0 && p.Timestamp.Before(series[i-1].Timestamp) {
			return fmt.Errorf("%w: timestamps out of order at index %d", ErrInvalidSeries, i)
		}
	}
	return nil
}

// MovingAverage computes the arithmetic mean of the last window prices.
func MovingAverage(prices []float64, window int) (float64, error) {
	if window <= 0 {
		return 0, fmt.Errorf("%w: window %d", ErrInvalidSeries, window)
	}
	if len(prices) < window {
		return 0, fmt.Errorf("%w: need %d prices, have %d", ErrInsufficientData, window, len(prices))
	}
	sum := 0.0
	for _, p := range prices[len(prices)-window:] {
		sum += p
	}
	return sum / float64(window), nil
}

// RelativeStrengthIndex computes the standard RSI over the last window
// deltas, scaled to 0..100. All gains yields 100, all losses yields 0.
// A window where the price barely moved (max |delta| under 0.05% of the
// last price) reads as neutral 50 instead of a misleading extreme.
func RelativeStrengthIndex(prices []float64, window int) (float64, error) {
	if window <= 0 {
		return 0, fmt.Errorf("%w: window %d", ErrInvalidSeries, window)
	}
	if len(prices) < window+1 {
		return 0, fmt.Errorf("%w: need %d prices, have %d", ErrInsufficientData, window+1, len(prices))
	}

	var gains, losses, maxAbsChange float64
	for i := len(prices) - window; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if a := math.Abs(change); a > maxAbsChange {
			maxAbsChange = a
		}
		if change > 0 {
			gains += change
		} else {
			losses += -change
		}
	}

	last := prices[len(prices)-1]
	if last != 0 && maxAbsChange/math.Abs(last) < 0.0005 {
		return 50, nil
	}

	avgGain := gains / float64(window)
	avgLoss := losses / float64(window)
	if avgLoss == 0 {
		return 100, nil
	}
	if avgGain == 0 {
		return 0, nil
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), nil
}

// SupportResistance returns the min and max price over the trailing window.
func SupportResistance(prices []float64, window int) (support, resistance float64, err error) {
	if window <= 0 {
		return 0, 0, fmt.Errorf("%w: window %d", ErrInvalidSeries, window)
	}
	if len(prices) < window {
		return 0, 0, fmt.Errorf("%w: need %d prices, have %d", ErrInsufficientData, window, len(prices))
	}
	recent := prices[len(prices)-window:]
	support, resistance = recent[0], recent[0]
	for _, p := range recent[1:] {
		if p < support {
			support = p
		}
		if p > resistance {
			resistance = p
		}
	}
	return support, resistance, nil
}

// PositionPct places price between support and resistance on a 0..100
// scale, clamped. A flat band (support == resistance) reads as the
// midpoint 50 rather than dividing by zero.
func PositionPct(price, support, resistance float64) float64 {
	if resistance == support {
		return 50
	}
	pct := (price - support) / (resistance - support) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// OverallTrend classifies the series direction: bullish when the short MA
// sits above the long MA with a non-decreasing short MA and the latest price
// above the long MA; bearish on the mirrored condition; neutral otherwise.
// The slope threshold is zero: the short MA of the latest window must not be
// below the short MA one point earlier.
func OverallTrend(prices []float64, shortWindow, longWindow int) (models.Trend, error) {
	need := longWindow
	if shortWindow+1 > need {
		need = shortWindow + 1
	}
	if len(prices) < need {
		return models.TrendNeutral, fmt.Errorf("%w: need %d prices, have %d", ErrInsufficientData, need, len(prices))
	}

	shortMA, err := MovingAverage(prices, shortWindow)
	if err != nil {
		return models.TrendNeutral, err
	}
	longMA, err := MovingAverage(prices, longWindow)
	if err != nil {
		return models.TrendNeutral, err
	}
	prevShortMA, err := MovingAverage(prices[:len(prices)-1], shortWindow)
	if err != nil {
		return models.TrendNeutral, err
	}

	price := prices[len(prices)-1]
	switch {
	case shortMA > longMA && price > longMA && shortMA >= prevShortMA:
		return models.TrendBullish, nil
	case shortMA < longMA && price < longMA && shortMA <= prevShortMA:
		return models.TrendBearish, nil
	default:
		return models.TrendNeutral, nil
	}
}

// Snapshot computes every indicator over the series. Indicators that lack
// data leave NaN in their slot (trend degrades to neutral); the caller
// decides how missing slots weigh in. Fails only on an invalid series.
func Snapshot(series models.PriceSeries, cfg Config) (models.IndicatorSnapshot, error) {
	if err := ValidateSeries(series); err != nil {
		return models.IndicatorSnapshot{}, err
	}
	cfg = cfg.withDefaults()
	prices := series.Prices()
	price := prices[len(prices)-1]

	snap := models.IndicatorSnapshot{
		ShortMA:     math.NaN(),
		LongMA:      math.NaN(),
		RSI:         math.NaN(),
		Support:     math.NaN(),
		Resistance:  math.NaN(),
		PositionPct: math.NaN(),
		Trend:       models.TrendNeutral,
	}

	if v, err := MovingAverage(prices, cfg.ShortWindow); err == nil {
		snap.ShortMA = v
	}
	if v, err := MovingAverage(prices, cfg.LongWindow); err == nil {
		snap.LongMA = v
	}
	if v, err := RelativeStrengthIndex(prices, cfg.RSIWindow); err == nil {
		snap.RSI = v
	}
	if s, r, err := SupportResistance(prices, cfg.SupportResistanceWindow); err == nil {
		snap.Support = s
		snap.Resistance = r
		snap.PositionPct = PositionPct(price, s, r)
	}
	if t, err := OverallTrend(prices, cfg.ShortWindow, cfg.LongWindow); err == nil {
		snap.Trend = t
	}
	return snap, nil
}
