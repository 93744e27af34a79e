package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"SignalPulse/internal/domain/models"
	"SignalPulse/internal/services/indicators"
)

type mockHistory struct {
	series   models.PriceSeries
	err      error
	appended []models.PricePoint
}

func (m *mockHistory) Append(ctx context.Context, asset string, p models.PricePoint) error {
	m.appended = append(m.appended, p)
	return m.err
}

func (m *mockHistory) Series(ctx context.Context, asset string, n int) (models.PriceSeries, error) {
	return m.series, m.err
}

func (m *mockHistory) Close() error { return nil }

type mockEngine struct {
	rec *models.SignalRecord
	err error
}

func (m *mockEngine) Evaluate(asset string, series models.PriceSeries, at time.Time) (*models.SignalRecord, error) {
	return m.rec, m.err
}

type mockPublisher struct {
	published []*models.SignalRecord
	err       error
}

func (m *mockPublisher) Publish(ctx context.Context, rec *models.SignalRecord) error {
	m.published = append(m.published, rec)
	return m.err
}

func (m *mockPublisher) Close() error { return nil }

type mockMetrics struct {
	evaluations int
	errors      map[string]int
}

func newMockMetrics() *mockMetrics { return &mockMetrics{errors: map[string]int{}} }

func (m *mockMetrics) RecordEvaluation(asset, verdict string)   { m.evaluations++ }
func (m *mockMetrics) RecordArchived(asset string)              {}
func (m *mockMetrics) RecordError(kind string)                  { m.errors[kind]++ }
func (m *mockMetrics) RecordLastPrice(asset string, p float64)  {}
func (m *mockMetrics) RecordLatency(op string, seconds float64) {}

func evalSeries(n int) models.PriceSeries {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s := make(models.PriceSeries, n)
	for i := range s {
		s[i] = models.PricePoint{Timestamp: base.Add(time.Duration(i) * time.Minute), Price: 100 + float64(i)}
	}
	return s
}

func buyRecord(asset string) *models.SignalRecord {
	return &models.SignalRecord{
		Asset:         asset,
		Price:         112,
		Verdict:       models.VerdictBuy,
		Confidence:    models.ConfidenceStrong,
		Confirmations: 3,
		Rationale:     []string{"Trend: bullish"},
		GeneratedAt:   time.Now(),
	}
}

func TestEvaluateAssetPublishesActionable(t *testing.T) {
	pub := &mockPublisher{}
	ev := NewSignalEvaluator(
		&mockHistory{series: evalSeries(40)},
		&mockEngine{rec: buyRecord("BTC-USD")},
		pub,
		newMockMetrics(),
		[]string{"BTC-USD"},
	)

	rec, err := ev.EvaluateAsset(context.Background(), "BTC-USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Verdict != models.VerdictBuy {
		t.Fatalf("expected BUY, got %s", rec.Verdict)
	}
	if len(pub.published) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(pub.published))
	}
}

func TestEvaluateAssetSuppressesHold(t *testing.T) {
	pub := &mockPublisher{}
	hold := &models.SignalRecord{Asset: "BTC-USD", Verdict: models.VerdictHold, Confidence: models.ConfidenceNone}
	ev := NewSignalEvaluator(
		&mockHistory{series: evalSeries(40)},
		&mockEngine{rec: hold},
		pub,
		newMockMetrics(),
		[]string{"BTC-USD"},
	)

	rec, err := ev.EvaluateAsset(context.Background(), "BTC-USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Verdict != models.VerdictHold {
		t.Fatalf("expected HOLD record returned, got %s", rec.Verdict)
	}
	if len(pub.published) != 0 {
		t.Fatalf("HOLD must never be published, got %d publishes", len(pub.published))
	}
}

func TestEvaluateAssetHistoryError(t *testing.T) {
	pub := &mockPublisher{}
	metrics := newMockMetrics()
	ev := NewSignalEvaluator(
		&mockHistory{err: errors.New("redis down")},
		&mockEngine{rec: buyRecord("BTC-USD")},
		pub,
		metrics,
		[]string{"BTC-USD"},
	)

	if _, err := ev.EvaluateAsset(context.Background(), "BTC-USD"); err == nil {
		t.Fatalf("expected error")
	}
	if len(pub.published) != 0 {
		t.Fatalf("nothing should be published on history error")
	}
	if metrics.errors["history_read"] != 1 {
		t.Fatalf("expected history_read error recorded, got %v", metrics.errors)
	}
}

func TestEvaluateAssetInvalidSeries(t *testing.T) {
	metrics := newMockMetrics()
	ev := NewSignalEvaluator(
		&mockHistory{series: evalSeries(40)},
		&mockEngine{err: indicators.ErrInvalidSeries},
		&mockPublisher{},
		metrics,
		[]string{"BTC-USD"},
	)

	if _, err := ev.EvaluateAsset(context.Background(), "BTC-USD"); !errors.Is(err, indicators.ErrInvalidSeries) {
		t.Fatalf("expected ErrInvalidSeries")
	}
	if metrics.errors["invalid_series"] != 1 {
		t.Fatalf("expected invalid_series error recorded, got %v", metrics.errors)
	}
}

func TestEvaluateAssetPublishError(t *testing.T) {
	metrics := newMockMetrics()
	ev := NewSignalEvaluator(
		&mockHistory{series: evalSeries(40)},
		&mockEngine{rec: buyRecord("BTC-USD")},
		&mockPublisher{err: errors.New("kafka down")},
		metrics,
		[]string{"BTC-USD"},
	)

	rec, err := ev.EvaluateAsset(context.Background(), "BTC-USD")
	if err == nil {
		t.Fatalf("expected publish error")
	}
	if rec == nil {
		t.Fatalf("record should still be returned on publish failure")
	}
	if metrics.errors["publish"] != 1 {
		t.Fatalf("expected publish error recorded, got %v", metrics.errors)
	}
}

func TestInspectNeverPublishes(t *testing.T) {
	pub := &mockPublisher{}
	ev := NewSignalEvaluator(
		&mockHistory{series: evalSeries(40)},
		&mockEngine{rec: buyRecord("BTC-USD")},
		pub,
		newMockMetrics(),
		[]string{"BTC-USD"},
	)

	rec, err := ev.Inspect(context.Background(), "BTC-USD", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Verdict != models.VerdictBuy {
		t.Fatalf("expected BUY record, got %s", rec.Verdict)
	}
	if len(pub.published) != 0 {
		t.Fatalf("Inspect must not dispatch, got %d publishes", len(pub.published))
	}
}

func TestEvaluateAllCoversEveryAsset(t *testing.T) {
	assets := []string{"BTC-USD", "ETH-USD", "SOL-USD"}
	metrics := newMockMetrics()
	ev := NewSignalEvaluator(
		&mockHistory{series: evalSeries(40)},
		&mockEngine{rec: buyRecord("X")},
		&mockPublisher{},
		metrics,
		assets,
	)

	results := ev.EvaluateAll(context.Background())
	if len(results) != len(assets) {
		t.Fatalf("expected %d results, got %d", len(assets), len(results))
	}
	seen := map[string]bool{}
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("unexpected error for %s: %v", r.Asset, r.Err)
		}
		seen[r.Asset] = true
	}
	for _, a := range assets {
		if !seen[a] {
			t.Fatalf("missing result for %s", a)
		}
	}
}

func TestQuoteProcessorAppends(t *testing.T) {
	h := &mockHistory{}
	p := NewQuoteProcessor(h, newMockMetrics())

	q := &models.Quote{Asset: "BTC-USD", Timestamp: time.Now().Unix(), Price: 42000.5}
	if err := p.Process(context.Background(), q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(h.appended) != 1 || h.appended[0].Price != 42000.5 {
		t.Fatalf("expected one appended point, got %+v", h.appended)
	}
	if err := p.Process(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil quote")
	}
}
