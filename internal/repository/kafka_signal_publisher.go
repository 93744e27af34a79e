package repository

import (
	"context"
	"fmt"

	"SignalPulse/internal/domain/models"
	"SignalPulse/internal/domain/repository"
	pkgkafka "SignalPulse/pkg/kafka"
)

// SignalMessage is the wire schema for dispatched signals. The archive
// consumer decodes the same shape.
type SignalMessage struct {
	Asset         string   `json:"asset"`
	Price         float64  `json:"price"`
	Verdict       string   `json:"verdict"`
	Confidence    string   `json:"confidence"`
	Confirmations int      `json:"confirmations"`
	Rationale     []string `json:"rationale"`
	// Indicator slots are pointers: a missing indicator (NaN in the
	// snapshot) travels as null, which encoding/json cannot do for NaN.
	ShortMA     *float64 `json:"short_ma"`
	LongMA      *float64 `json:"long_ma"`
	RSI         *float64 `json:"rsi"`
	Support     *float64 `json:"support"`
	Resistance  *float64 `json:"resistance"`
	PositionPct *float64 `json:"position_pct"`
	Trend       string   `json:"trend"`
	GeneratedAt int64    `json:"generated_at"`
}

// NewSignalMessage flattens a record into the wire shape.
func NewSignalMessage(rec *models.SignalRecord) SignalMessage {
	return SignalMessage{
		Asset:         rec.Asset,
		Price:         rec.Price,
		Verdict:       string(rec.Verdict),
		Confidence:    string(rec.Confidence),
		Confirmations: rec.Confirmations,
		Rationale:     rec.Rationale,
		ShortMA:       models.NullableFloat(rec.Snapshot.ShortMA),
		LongMA:        models.NullableFloat(rec.Snapshot.LongMA),
		RSI:           models.NullableFloat(rec.Snapshot.RSI),
		Support:       models.NullableFloat(rec.Snapshot.Support),
		Resistance:    models.NullableFloat(rec.Snapshot.Resistance),
		PositionPct:   models.NullableFloat(rec.Snapshot.PositionPct),
		Trend:         string(rec.Snapshot.Trend),
		GeneratedAt:   rec.GeneratedAt.Unix(),
	}
}

// Record rebuilds the domain record from the wire shape.
func (m SignalMessage) Record() *models.SignalRecord {
	return &models.SignalRecord{
		Asset:         m.Asset,
		Price:         m.Price,
		Verdict:       models.Verdict(m.Verdict),
		Confidence:    models.ConfidenceTier(m.Confidence),
		Confirmations: m.Confirmations,
		Rationale:     m.Rationale,
		Snapshot: models.IndicatorSnapshot{
			ShortMA:     models.FloatOrNaN(m.ShortMA),
			LongMA:      models.FloatOrNaN(m.LongMA),
			RSI:         models.FloatOrNaN(m.RSI),
			Support:     models.FloatOrNaN(m.Support),
			Resistance:  models.FloatOrNaN(m.Resistance),
			PositionPct: models.FloatOrNaN(m.PositionPct),
			Trend:       models.Trend(m.Trend),
		},
	}
}

// KafkaSignalPublisher implements SignalPublisher for Kafka. Messages are
// keyed by asset so per-asset ordering survives partitioning.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSignalPublisher creates the Kafka publisher.
func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) repository.SignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) Publish(ctx context.Context, rec *models.SignalRecord) error {
	if rec == nil {
		return fmt.Errorf("record is nil")
	}
	if rec.Verdict == models.VerdictHold {
		// output contract: HOLD is suppressed upstream, never dispatched
		return fmt.Errorf("refusing to publish HOLD for %s", rec.Asset)
	}
	return p.producer.Publish(ctx, p.topic, []byte(rec.Asset), NewSignalMessage(rec))
}

func (p *KafkaSignalPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
