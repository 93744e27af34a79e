package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"SignalPulse/internal/domain/models"
)

// flakyStream fails its first Read pair the way a dropped WebSocket does:
// an error followed by both channels closing. Subsequent Read calls
// deliver quotes.
type flakyStream struct {
	mu         sync.Mutex
	reads      int
	reconnects int
	connected  bool
}

func (s *flakyStream) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return nil
}

func (s *flakyStream) Subscribe(ctx context.Context) error { return nil }

func (s *flakyStream) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnects++
	s.connected = true
	return nil
}

func (s *flakyStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}

func (s *flakyStream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *flakyStream) Read(ctx context.Context) (<-chan *models.Quote, <-chan error) {
	s.mu.Lock()
	s.reads++
	first := s.reads == 1
	s.mu.Unlock()

	qCh := make(chan *models.Quote, 4)
	errCh := make(chan error, 1)
	if first {
		errCh <- errors.New("read tcp: connection reset by peer")
		close(qCh)
		close(errCh)
		return qCh, errCh
	}
	qCh <- &models.Quote{Asset: "BTC-USD", Timestamp: 1700000000, Price: 42000}
	return qCh, errCh
}

func (s *flakyStream) counts() (reads, reconnects int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads, s.reconnects
}

type notifyHistory struct {
	mu       sync.Mutex
	appended []models.PricePoint
	ch       chan struct{}
}

func (h *notifyHistory) Append(ctx context.Context, asset string, p models.PricePoint) error {
	h.mu.Lock()
	h.appended = append(h.appended, p)
	h.mu.Unlock()
	select {
	case h.ch <- struct{}{}:
	default:
	}
	return nil
}

func (h *notifyHistory) Series(ctx context.Context, asset string, n int) (models.PriceSeries, error) {
	return nil, nil
}

func (h *notifyHistory) Close() error { return nil }

func TestQuoteCollectorReacquiresStreamAfterReadFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hist := &notifyHistory{ch: make(chan struct{}, 1)}
	metrics := newMockMetrics()
	stream := &flakyStream{}
	coll := NewQuoteCollector(stream, NewQuoteProcessor(hist, metrics), metrics, nil)

	if err := coll.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-hist.ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("no quote processed after the stream read failure")
	}

	hist.mu.Lock()
	got := len(hist.appended)
	hist.mu.Unlock()
	if got == 0 {
		t.Fatalf("expected at least one appended point, got none")
	}

	reads, reconnects := stream.counts()
	if reconnects == 0 {
		t.Fatalf("expected a reconnect after the read error")
	}
	if reads < 2 {
		t.Fatalf("expected a fresh Read after reconnect, got %d reads", reads)
	}
}
