package usecase

import (
	"context"
	"encoding/json"
	"time"

	domrepo "SignalPulse/internal/domain/repository"
	internalrepo "SignalPulse/internal/repository"
	pkgkafka "SignalPulse/pkg/kafka"
)

// KafkaSignalsHandler consumes dispatched signals and archives them.
type KafkaSignalsHandler struct {
	topic   string
	archive domrepo.SignalArchive
	metrics domrepo.Metrics
}

func NewKafkaSignalsHandler(topic string, archive domrepo.SignalArchive, metrics domrepo.Metrics) *KafkaSignalsHandler {
	return &KafkaSignalsHandler{topic: topic, archive: archive, metrics: metrics}
}

func (h *KafkaSignalsHandler) Topic() string { return h.topic }

func (h *KafkaSignalsHandler) Handle(ctx context.Context, b []byte) error {
	var m internalrepo.SignalMessage
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	rec := m.Record()
	rec.GeneratedAt = time.Unix(m.GeneratedAt, 0)

	// E2E latency from generation to archive (approx)
	h.metrics.RecordLatency("archive_e2e_seconds", time.Since(rec.GeneratedAt).Seconds())

	start := time.Now()
	err := h.archive.Store(ctx, rec)
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordArchived(rec.Asset)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaSignalsHandler)(nil)
