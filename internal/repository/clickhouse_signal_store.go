package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"SignalPulse/internal/domain/models"
	"SignalPulse/internal/domain/repository"
	applogger "SignalPulse/pkg/logger"
)

// ClickHouseSignalStore implements SignalArchive for ClickHouse.
type ClickHouseSignalStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// NewClickHouseSignalStore creates the ClickHouse-backed signal archive.
func NewClickHouseSignalStore(db *sql.DB, table string) *ClickHouseSignalStore {
	return &ClickHouseSignalStore{db: db, table: table}
}

// SetLogger injects a structured logger.
func (s *ClickHouseSignalStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *ClickHouseSignalStore) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseSignalStore) Store(ctx context.Context, rec *models.SignalRecord) error {
	if rec == nil {
		return fmt.Errorf("record is nil")
	}
	rationale, err := json.Marshal(rec.Rationale)
	if err != nil {
		return fmt.Errorf("marshal rationale: %w", err)
	}
	q := fmt.Sprintf(`INSERT INTO %s
        (ts, asset, price, verdict, confidence, confirmations,
         short_ma, long_ma, rsi, support, resistance, position_pct, trend, rationale)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	_, err = s.db.ExecContext(ctx, q,
		rec.GeneratedAt,
		rec.Asset,
		rec.Price,
		string(rec.Verdict),
		string(rec.Confidence),
		uint8(rec.Confirmations),
		rec.Snapshot.ShortMA,
		rec.Snapshot.LongMA,
		rec.Snapshot.RSI,
		rec.Snapshot.Support,
		rec.Snapshot.Resistance,
		rec.Snapshot.PositionPct,
		string(rec.Snapshot.Trend),
		string(rationale),
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse signal insert error",
				applogger.String("asset", rec.Asset),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("store signal: %w", err)
	}
	return nil
}

func (s *ClickHouseSignalStore) Query(ctx context.Context, asset string, from, to time.Time, limit int) ([]*models.SignalRecord, error) {
	start := time.Now()
	q := fmt.Sprintf(`SELECT ts, asset, price, verdict, confidence, confirmations,
            short_ma, long_ma, rsi, support, resistance, position_pct, trend, rationale
        FROM %s
        WHERE asset = ? AND ts >= ? AND ts <= ?
        ORDER BY ts DESC
        LIMIT ?`, s.table)
	rows, err := s.db.QueryContext(ctx, q, asset, from, to, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse signal query error",
				applogger.String("asset", asset),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	out := make([]*models.SignalRecord, 0, limit)
	for rows.Next() {
		var (
			rec           models.SignalRecord
			verdict       string
			confidence    string
			confirmations uint8
			trend         string
			rationale     string
		)
		if err := rows.Scan(
			&rec.GeneratedAt, &rec.Asset, &rec.Price, &verdict, &confidence, &confirmations,
			&rec.Snapshot.ShortMA, &rec.Snapshot.LongMA, &rec.Snapshot.RSI,
			&rec.Snapshot.Support, &rec.Snapshot.Resistance, &rec.Snapshot.PositionPct,
			&trend, &rationale,
		); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		rec.Verdict = models.Verdict(verdict)
		rec.Confidence = models.ConfidenceTier(confidence)
		rec.Confirmations = int(confirmations)
		rec.Snapshot.Trend = models.Trend(trend)
		if rationale != "" {
			if err := json.Unmarshal([]byte(rationale), &rec.Rationale); err != nil {
				return nil, fmt.Errorf("decode rationale: %w", err)
			}
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if s.l != nil {
		s.l.Info("clickhouse signal query ok",
			applogger.String("asset", asset),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *ClickHouseSignalStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseSignalStore) Close() error {
	return nil // Managed by pkg
}

var _ repository.SignalArchive = (*ClickHouseSignalStore)(nil)
