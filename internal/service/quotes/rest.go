package quotes

import (
	"context"
	"fmt"
	"log"
	"time"

	"SignalPulse/internal/domain/models"
	drepo "SignalPulse/internal/domain/repository"
	xhttp "SignalPulse/pkg/http"
)

// RESTClient implements a QuoteStream by polling a REST quote API. It is
// the fallback transport for feeds without a streaming endpoint; the Read
// channel contract matches the WebSocket client so callers cannot tell
// the two apart.
type RESTClient struct {
	apiKey       string
	baseURL      string
	assets       []string
	pollInterval time.Duration

	http      *xhttp.Client
	connected bool
}

type restQuote struct {
	Asset     string  `json:"asset"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"` // unix seconds, 0 means "now"
}

// NewREST creates a polling QuoteStream.
func NewREST(apiKey, baseURL string, assets []string, pollInterval time.Duration) drepo.QuoteStream {
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	return &RESTClient{
		apiKey:       apiKey,
		baseURL:      baseURL,
		assets:       assets,
		pollInterval: pollInterval,
		http:         xhttp.NewClient(xhttp.WithTimeout(15 * time.Second)),
	}
}

// Connect probes the API with a single fetch for the first asset.
func (c *RESTClient) Connect(ctx context.Context) error {
	if len(c.assets) == 0 {
		return fmt.Errorf("quotes rest: no assets configured")
	}
	if _, err := c.fetch(ctx, c.assets[0]); err != nil {
		return fmt.Errorf("quotes rest connect: %w", err)
	}
	c.connected = true
	log.Printf("quotes rest: connected")
	return nil
}

// Subscribe is a no-op: polling covers every configured asset.
func (c *RESTClient) Subscribe(ctx context.Context) error {
	if !c.connected {
		return fmt.Errorf("quotes rest not connected")
	}
	return nil
}

// Read polls every asset once per interval and streams the results.
func (c *RESTClient) Read(ctx context.Context) (<-chan *models.Quote, <-chan error) {
	quotesCh := make(chan *models.Quote, 256)
	errs := make(chan error, 1)

	go func() {
		defer close(quotesCh)
		defer close(errs)
		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()

		c.poll(ctx, quotesCh)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.poll(ctx, quotesCh)
			}
		}
	}()

	return quotesCh, errs
}

func (c *RESTClient) poll(ctx context.Context, out chan<- *models.Quote) {
	for _, asset := range c.assets {
		q, err := c.fetch(ctx, asset)
		if err != nil {
			// one bad asset must not starve the rest
			log.Printf("quotes rest: fetch %s: %v", asset, err)
			continue
		}
		select {
		case out <- q:
		default:
			// drop on backpressure
		}
	}
}

func (c *RESTClient) fetch(ctx context.Context, asset string) (*models.Quote, error) {
	var body restQuote
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/quote",
		Headers:     map[string]string{"x-access-token": c.apiKey},
		QueryParams: map[string][]string{"asset": {asset}},
	}, &body)
	if err != nil {
		return nil, err
	}
	if body.Price <= 0 {
		return nil, fmt.Errorf("non-positive price %.4f", body.Price)
	}
	ts := body.Timestamp
	if ts == 0 {
		ts = time.Now().Unix()
	}
	return &models.Quote{Asset: asset, Timestamp: ts, Price: body.Price}, nil
}

// Reconnect re-probes the API after the poll delay.
func (c *RESTClient) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.pollInterval)
	return c.Connect(ctx)
}

// Close stops marking the stream as connected. Polling goroutines exit
// with their context.
func (c *RESTClient) Close() error {
	c.connected = false
	return nil
}

// IsConnected indicates status.
func (c *RESTClient) IsConnected() bool { return c.connected }
