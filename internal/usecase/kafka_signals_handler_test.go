package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"SignalPulse/internal/domain/models"
	internalrepo "SignalPulse/internal/repository"
)

type mockArchive struct {
	stored []*models.SignalRecord
	err    error
}

func (m *mockArchive) Init(ctx context.Context) error { return nil }
func (m *mockArchive) Store(ctx context.Context, rec *models.SignalRecord) error {
	m.stored = append(m.stored, rec)
	return m.err
}
func (m *mockArchive) Query(ctx context.Context, asset string, from, to time.Time, limit int) ([]*models.SignalRecord, error) {
	return m.stored, nil
}
func (m *mockArchive) Health(ctx context.Context) error { return nil }
func (m *mockArchive) Close() error                     { return nil }

func TestKafkaSignalsHandlerArchives(t *testing.T) {
	arch := &mockArchive{}
	h := NewKafkaSignalsHandler("signals", arch, newMockMetrics())

	if h.Topic() != "signals" {
		t.Fatalf("unexpected topic %s", h.Topic())
	}

	rec := buyRecord("BTC-USD")
	b, err := json.Marshal(internalrepo.NewSignalMessage(rec))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := h.Handle(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(arch.stored) != 1 {
		t.Fatalf("expected 1 archived record, got %d", len(arch.stored))
	}
	got := arch.stored[0]
	if got.Asset != rec.Asset || got.Verdict != rec.Verdict || got.Confirmations != rec.Confirmations {
		t.Fatalf("archived record mismatch: %+v", got)
	}
	if got.GeneratedAt.Unix() != rec.GeneratedAt.Unix() {
		t.Fatalf("generated_at lost in transit: %v vs %v", got.GeneratedAt, rec.GeneratedAt)
	}
}

func TestKafkaSignalsHandlerRejectsGarbage(t *testing.T) {
	metrics := newMockMetrics()
	h := NewKafkaSignalsHandler("signals", &mockArchive{}, metrics)

	if err := h.Handle(context.Background(), []byte("{not json")); err == nil {
		t.Fatalf("expected unmarshal error")
	}
	if metrics.errors["consumer_unmarshal"] != 1 {
		t.Fatalf("expected consumer_unmarshal error recorded, got %v", metrics.errors)
	}
}
