package strategy

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"SignalPulse/internal/domain/models"
	"SignalPulse/internal/services/indicators"
)

func testSeries(prices ...float64) models.PriceSeries {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s := make(models.PriceSeries, len(prices))
	for i, p := range prices {
		s[i] = models.PricePoint{Timestamp: base.Add(time.Duration(i) * time.Minute), Price: p}
	}
	return s
}

func TestBuildConfirmationsAllBullish(t *testing.T) {
	snap := models.IndicatorSnapshot{
		ShortMA:     6920.30,
		LongMA:      6880.10,
		RSI:         28.5,
		Support:     6850.00,
		Resistance:  7150.00,
		PositionPct: 25,
		Trend:       models.TrendBullish,
	}
	confs := BuildConfirmations(snap)
	if len(confs) != 4 {
		t.Fatalf("expected 4 confirmation slots, got %d", len(confs))
	}

	order := []models.ConfirmationSource{models.SourceMA, models.SourceRSI, models.SourcePosition, models.SourceTrend}
	for i, src := range order {
		if confs[i].Source != src {
			t.Fatalf("slot %d: expected source %s, got %s", i, src, confs[i].Source)
		}
		if confs[i].Direction != models.DirectionBullish {
			t.Fatalf("slot %d: expected bullish, got %s", i, confs[i].Direction)
		}
	}

	// Oversold RSI is strong evidence but still one confirmation.
	if confs[1].Strength != models.StrengthStrong {
		t.Fatalf("expected strong RSI confirmation, got %s", confs[1].Strength)
	}

	verdict, count := Classify(confs, DefaultMinConfirmations)
	if verdict != models.VerdictBuy || count != 4 {
		t.Fatalf("expected BUY with 4 confirmations, got %s %d", verdict, count)
	}
	if tier := models.TierForCount(count); tier != models.ConfidenceVeryStrong {
		t.Fatalf("expected VERY_STRONG, got %s", tier)
	}

	want := []string{
		"MA: short-term above long-term (bullish)",
		"RSI: oversold (28.5)",
		"Price near support level (6850.00)",
		"Trend: bullish",
	}
	if got := Rationale(confs, verdict); !reflect.DeepEqual(got, want) {
		t.Fatalf("rationale mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestBuildConfirmationsBearishMajority(t *testing.T) {
	snap := models.IndicatorSnapshot{
		ShortMA:     48.20,
		LongMA:      48.80,
		RSI:         65.2,
		Support:     40.00,
		Resistance:  52.00,
		PositionPct: 75,
		Trend:       models.TrendNeutral,
	}
	confs := BuildConfirmations(snap)

	verdict, count := Classify(confs, DefaultMinConfirmations)
	if verdict != models.VerdictSell || count != 3 {
		t.Fatalf("expected SELL with 3 confirmations, got %s %d", verdict, count)
	}
	if tier := models.TierForCount(count); tier != models.ConfidenceStrong {
		t.Fatalf("expected STRONG, got %s", tier)
	}

	want := []string{
		"MA: short-term below long-term (bearish)",
		"RSI: approaching overbought (65.2)",
		"Price near resistance level (52.00)",
	}
	if got := Rationale(confs, verdict); !reflect.DeepEqual(got, want) {
		t.Fatalf("rationale mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestBuildConfirmationsMissingIndicators(t *testing.T) {
	snap := models.IndicatorSnapshot{
		ShortMA:     math.NaN(),
		LongMA:      math.NaN(),
		RSI:         math.NaN(),
		Support:     math.NaN(),
		Resistance:  math.NaN(),
		PositionPct: math.NaN(),
		Trend:       models.TrendNeutral,
	}
	for _, c := range BuildConfirmations(snap) {
		if c.Direction != models.DirectionNone {
			t.Fatalf("missing indicator must not confirm: %+v", c)
		}
	}
}

func TestClassifyTieIsHold(t *testing.T) {
	confs := []models.Confirmation{
		{Source: models.SourceMA, Direction: models.DirectionBullish},
		{Source: models.SourceRSI, Direction: models.DirectionBearish},
		{Source: models.SourcePosition, Direction: models.DirectionBearish},
		{Source: models.SourceTrend, Direction: models.DirectionBullish},
	}
	verdict, count := Classify(confs, 2)
	if verdict != models.VerdictHold || count != 0 {
		t.Fatalf("tie must be HOLD with count 0, got %s %d", verdict, count)
	}
	if got := Rationale(confs, verdict); got != nil {
		t.Fatalf("HOLD must have no rationale, got %v", got)
	}
}

func TestClassifyBelowThresholdIsHold(t *testing.T) {
	confs := []models.Confirmation{
		{Source: models.SourceMA, Direction: models.DirectionBullish},
		{Source: models.SourceRSI, Direction: models.DirectionNone},
		{Source: models.SourcePosition, Direction: models.DirectionNone},
		{Source: models.SourceTrend, Direction: models.DirectionNone},
	}
	verdict, count := Classify(confs, 2)
	if verdict != models.VerdictHold || count != 0 {
		t.Fatalf("single confirmation must be HOLD, got %s %d", verdict, count)
	}
}

func TestClassifyRaisedThreshold(t *testing.T) {
	confs := []models.Confirmation{
		{Source: models.SourceMA, Direction: models.DirectionBullish},
		{Source: models.SourceRSI, Direction: models.DirectionBullish},
		{Source: models.SourcePosition, Direction: models.DirectionNone},
		{Source: models.SourceTrend, Direction: models.DirectionNone},
	}
	if verdict, _ := Classify(confs, 3); verdict != models.VerdictHold {
		t.Fatalf("2 confirmations under threshold 3 must be HOLD, got %s", verdict)
	}
	if verdict, count := Classify(confs, 2); verdict != models.VerdictBuy || count != 2 {
		t.Fatalf("expected BUY with 2 confirmations, got %s %d", verdict, count)
	}
}

func TestTierForCount(t *testing.T) {
	cases := map[int]models.ConfidenceTier{
		0: models.ConfidenceNone,
		1: models.ConfidenceNone,
		2: models.ConfidenceModerate,
		3: models.ConfidenceStrong,
		4: models.ConfidenceVeryStrong,
		5: models.ConfidenceVeryStrong,
	}
	for n, want := range cases {
		if got := models.TierForCount(n); got != want {
			t.Fatalf("count %d: expected %s, got %s", n, want, got)
		}
	}
}

func TestEngineEvaluateBuy(t *testing.T) {
	eng := NewEngine(WithIndicatorConfig(indicators.Config{
		ShortWindow:             2,
		LongWindow:              4,
		RSIWindow:               3,
		SupportResistanceWindow: 8,
	}))

	// Spike early in the range keeps the latest price near the window low
	// while the short MA still rides above the long MA.
	s := testSeries(10, 30, 10, 10, 10, 10.5, 11, 12)
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	rec, err := eng.Evaluate("BTC-USD", s, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Verdict != models.VerdictBuy {
		t.Fatalf("expected BUY, got %s", rec.Verdict)
	}
	if rec.Confirmations != 3 {
		t.Fatalf("expected 3 confirmations, got %d", rec.Confirmations)
	}
	if rec.Confidence != models.ConfidenceStrong {
		t.Fatalf("expected STRONG, got %s", rec.Confidence)
	}
	if rec.Asset != "BTC-USD" || rec.Price != 12 || !rec.GeneratedAt.Equal(at) {
		t.Fatalf("record header mismatch: %+v", rec)
	}
	if len(rec.Rationale) != rec.Confirmations {
		t.Fatalf("rationale entries must match the count: %v", rec.Rationale)
	}
	for _, r := range rec.Rationale {
		if r == "" {
			t.Fatalf("empty rationale entry")
		}
	}
	// The overbought RSI is minority evidence and must not appear.
	want := []string{
		"MA: short-term above long-term (bullish)",
		"Price near support level (10.00)",
		"Trend: bullish",
	}
	if !reflect.DeepEqual(rec.Rationale, want) {
		t.Fatalf("rationale mismatch:\n got %v\nwant %v", rec.Rationale, want)
	}
}

func TestEngineEvaluateDeterministic(t *testing.T) {
	eng := NewEngine(WithIndicatorConfig(indicators.Config{
		ShortWindow:             2,
		LongWindow:              4,
		RSIWindow:               3,
		SupportResistanceWindow: 8,
	}))
	s := testSeries(10, 30, 10, 10, 10, 10.5, 11, 12)
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	a, err := eng.Evaluate("BTC-USD", s, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := eng.Evaluate("BTC-USD", s, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same series must yield the same record")
	}
}

func TestEngineEvaluateShortSeriesHolds(t *testing.T) {
	eng := NewEngine()
	prices := make([]float64, 12)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	rec, err := eng.Evaluate("ETH-USD", testSeries(prices...), time.Now())
	if err != nil {
		t.Fatalf("short series must degrade, not fail: %v", err)
	}
	if rec.Verdict != models.VerdictHold || rec.Confirmations != 0 {
		t.Fatalf("expected HOLD with 0 confirmations, got %s %d", rec.Verdict, rec.Confirmations)
	}
	if rec.Confidence != models.ConfidenceNone {
		t.Fatalf("expected NONE confidence, got %s", rec.Confidence)
	}
	if rec.Rationale != nil {
		t.Fatalf("HOLD must carry no rationale, got %v", rec.Rationale)
	}
}

func TestEngineEvaluateInvalidSeries(t *testing.T) {
	eng := NewEngine()
	if _, err := eng.Evaluate("BTC-USD", nil, time.Now()); !errors.Is(err, indicators.ErrInvalidSeries) {
		t.Fatalf("expected ErrInvalidSeries, got %v", err)
	}
}

func TestVerdictMonotonicInShortMA(t *testing.T) {
	snap := models.IndicatorSnapshot{
		ShortMA:     6890.00,
		LongMA:      6880.10,
		RSI:         28.5,
		Support:     6850.00,
		Resistance:  7150.00,
		PositionPct: 25,
		Trend:       models.TrendBullish,
	}
	verdict, _ := Classify(BuildConfirmations(snap), DefaultMinConfirmations)
	if verdict != models.VerdictBuy {
		t.Fatalf("baseline snapshot should classify BUY, got %s", verdict)
	}

	// Raising the short average with the long average fixed only ever
	// adds bullish evidence, so the verdict must never swing to SELL.
	for delta := 0.5; delta <= 4096; delta *= 2 {
		s := snap
		s.ShortMA += delta
		if got, _ := Classify(BuildConfirmations(s), DefaultMinConfirmations); got == models.VerdictSell {
			t.Fatalf("ShortMA %.2f flipped the verdict to SELL", s.ShortMA)
		}
	}
}

func TestEngineEvaluateRequiresAsset(t *testing.T) {
	eng := NewEngine()
	if _, err := eng.Evaluate("", testSeries(1, 2, 3), time.Now()); err == nil {
		t.Fatalf("expected error for empty asset")
	}
}
