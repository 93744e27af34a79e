package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"SignalPulse/internal/domain/models"
	domrepo "SignalPulse/internal/domain/repository"
)

// RedisPriceHistory keeps a capped per-asset price list in Redis. Newest
// points are appended on the right, so a range read comes back already in
// chronological order.
type RedisPriceHistory struct {
	cli        *redis.Client
	keyPrefix  string
	maxEntries int
}

type historyEntry struct {
	T int64   `json:"t"`
	P float64 `json:"p"`
}

// HistoryOption configures RedisPriceHistory.
type HistoryOption func(*RedisPriceHistory)

// WithHistoryKeyPrefix sets a custom key prefix.
func WithHistoryKeyPrefix(prefix string) HistoryOption {
	return func(h *RedisPriceHistory) { h.keyPrefix = prefix }
}

// WithHistoryMaxEntries caps how many points are kept per asset.
func WithHistoryMaxEntries(n int) HistoryOption {
	return func(h *RedisPriceHistory) {
		if n > 0 {
			h.maxEntries = n
		}
	}
}

// NewRedisPriceHistory creates a Redis-backed price history store.
func NewRedisPriceHistory(cli *redis.Client, opts ...HistoryOption) *RedisPriceHistory {
	h := &RedisPriceHistory{
		cli:        cli,
		keyPrefix:  "signalpulse:history",
		maxEntries: 100,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *RedisPriceHistory) key(asset string) string {
	return fmt.Sprintf("%s:%s", h.keyPrefix, asset)
}

// Append pushes the point and trims the list to the configured cap.
func (h *RedisPriceHistory) Append(ctx context.Context, asset string, p models.PricePoint) error {
	if asset == "" {
		return fmt.Errorf("asset required")
	}
	b, err := json.Marshal(historyEntry{T: p.Timestamp.Unix(), P: p.Price})
	if err != nil {
		return fmt.Errorf("marshal point: %w", err)
	}
	key := h.key(asset)
	pipe := h.cli.TxPipeline()
	pipe.RPush(ctx, key, b)
	pipe.LTrim(ctx, key, int64(-h.maxEntries), -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append %s: %w", asset, err)
	}
	return nil
}

// Series reads the last n points in chronological order.
func (h *RedisPriceHistory) Series(ctx context.Context, asset string, n int) (models.PriceSeries, error) {
	if n <= 0 || n > h.maxEntries {
		n = h.maxEntries
	}
	raw, err := h.cli.LRange(ctx, h.key(asset), int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read series %s: %w", asset, err)
	}
	series := make(models.PriceSeries, 0, len(raw))
	for _, s := range raw {
		var e historyEntry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, fmt.Errorf("decode point for %s: %w", asset, err)
		}
		series = append(series, models.PricePoint{Timestamp: time.Unix(e.T, 0), Price: e.P})
	}
	return series, nil
}

func (h *RedisPriceHistory) Close() error {
	if h.cli != nil {
		return h.cli.Close()
	}
	return nil
}

var _ domrepo.PriceHistory = (*RedisPriceHistory)(nil)
