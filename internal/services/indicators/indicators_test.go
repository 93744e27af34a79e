package indicators

import (
	"errors"
	"math"
	"testing"
	"time"

	"SignalPulse/internal/domain/models"
)

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func series(prices ...float64) models.PriceSeries {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s := make(models.PriceSeries, len(prices))
	for i, p := range prices {
		s[i] = models.PricePoint{Timestamp: base.Add(time.Duration(i) * time.Minute), Price: p}
	}
	return s
}

func TestValidateSeriesEmpty(t *testing.T) {
	if err := ValidateSeries(nil); !errors.Is(err, ErrInvalidSeries) {
		t.Fatalf("expected ErrInvalidSeries, got %v", err)
	}
}

func TestValidateSeriesNonPositivePrice(t *testing.T) {
	s := series(10, 11)
	s = append(s, models.PricePoint{Timestamp: s[1].Timestamp.Add(time.Minute), Price: 0})
	if err := ValidateSeries(s); !errors.Is(err, ErrInvalidSeries) {
		t.Fatalf("expected ErrInvalidSeries, got %v", err)
	}
}

func TestValidateSeriesOutOfOrder(t *testing.T) {
	s := series(10, 11, 12)
	s[2].Timestamp = s[0].Timestamp.Add(-time.Minute)
	if err := ValidateSeries(s); !errors.Is(err, ErrInvalidSeries) {
		t.Fatalf("expected ErrInvalidSeries, got %v", err)
	}
}

func TestMovingAverage(t *testing.T) {
	got, err := MovingAverage([]float64{1, 2, 3, 4, 5}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !floatEquals(got, 4) {
		t.Fatalf("expected 4, got %v", got)
	}
}

func TestMovingAverageInsufficient(t *testing.T) {
	if _, err := MovingAverage([]float64{1, 2}, 3); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestRSIAllGains(t *testing.T) {
	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	got, err := RelativeStrengthIndex(prices, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !floatEquals(got, 100) {
		t.Fatalf("expected 100, got %v", got)
	}
}

func TestRSIAllLosses(t *testing.T) {
	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 200 - float64(i)
	}
	got, err := RelativeStrengthIndex(prices, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !floatEquals(got, 0) {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestRSIMixed(t *testing.T) {
	// deltas +2 -1 +2: avgGain 4/3, avgLoss 1/3, RS 4, RSI 80
	got, err := RelativeStrengthIndex([]float64{100, 102, 101, 103}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !floatEquals(got, 80) {
		t.Fatalf("expected 80, got %v", got)
	}
}

func TestRSIFlatReadsNeutral(t *testing.T) {
	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 100
	}
	got, err := RelativeStrengthIndex(prices, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !floatEquals(got, 50) {
		t.Fatalf("expected 50 for flat prices, got %v", got)
	}
}

func TestRSINearFlatReadsNeutral(t *testing.T) {
	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 100 + float64(i)*0.001
	}
	got, err := RelativeStrengthIndex(prices, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !floatEquals(got, 50) {
		t.Fatalf("expected 50 for near-flat prices, got %v", got)
	}
}

func TestRSIInsufficient(t *testing.T) {
	if _, err := RelativeStrengthIndex([]float64{1, 2, 3}, 3); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestSupportResistance(t *testing.T) {
	s, r, err := SupportResistance([]float64{5, 1, 9, 2, 7}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !floatEquals(s, 2) || !floatEquals(r, 9) {
		t.Fatalf("expected support 2 resistance 9, got %v %v", s, r)
	}
}

func TestPositionPct(t *testing.T) {
	if got := PositionPct(5, 0, 10); !floatEquals(got, 50) {
		t.Fatalf("expected 50, got %v", got)
	}
	if got := PositionPct(12, 0, 10); !floatEquals(got, 100) {
		t.Fatalf("expected clamp to 100, got %v", got)
	}
	if got := PositionPct(1, 2, 9); !floatEquals(got, 0) {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
}

func TestPositionPctFlatBand(t *testing.T) {
	if got := PositionPct(7, 7, 7); !floatEquals(got, 50) {
		t.Fatalf("expected midpoint 50 for flat band, got %v", got)
	}
}

func TestOverallTrendBullish(t *testing.T) {
	got, err := OverallTrend([]float64{1, 2, 3, 4, 5}, 2, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != models.TrendBullish {
		t.Fatalf("expected bullish, got %v", got)
	}
}

func TestOverallTrendBearish(t *testing.T) {
	got, err := OverallTrend([]float64{5, 4, 3, 2, 1}, 2, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != models.TrendBearish {
		t.Fatalf("expected bearish, got %v", got)
	}
}

func TestOverallTrendNeutralOnFlat(t *testing.T) {
	got, err := OverallTrend([]float64{3, 3, 3, 3, 3}, 2, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != models.TrendNeutral {
		t.Fatalf("expected neutral, got %v", got)
	}
}

func TestOverallTrendInsufficient(t *testing.T) {
	got, err := OverallTrend([]float64{1, 2, 3}, 2, 4)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if got != models.TrendNeutral {
		t.Fatalf("expected neutral fallback, got %v", got)
	}
}

func TestSnapshotShortSeriesDegrades(t *testing.T) {
	prices := make([]float64, 12)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	snap, err := Snapshot(series(prices...), Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.IsNaN(snap.ShortMA) {
		t.Fatalf("short MA should be computable from 12 points")
	}
	if !math.IsNaN(snap.LongMA) || !math.IsNaN(snap.RSI) || !math.IsNaN(snap.Support) || !math.IsNaN(snap.PositionPct) {
		t.Fatalf("expected NaN for indicators lacking data: %+v", snap)
	}
	if snap.Trend != models.TrendNeutral {
		t.Fatalf("expected neutral trend on short series, got %v", snap.Trend)
	}
}

func TestSnapshotFullSeries(t *testing.T) {
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 100 + float64(i%7)
	}
	snap, err := Snapshot(series(prices...), Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for name, v := range map[string]float64{
		"short_ma":     snap.ShortMA,
		"long_ma":      snap.LongMA,
		"rsi":          snap.RSI,
		"support":      snap.Support,
		"resistance":   snap.Resistance,
		"position_pct": snap.PositionPct,
	} {
		if math.IsNaN(v) {
			t.Fatalf("%s should be computed on a full series", name)
		}
	}
}

func TestSnapshotInvalidSeries(t *testing.T) {
	if _, err := Snapshot(nil, Config{}); !errors.Is(err, ErrInvalidSeries) {
		t.Fatalf("expected ErrInvalidSeries, got %v", err)
	}
}
