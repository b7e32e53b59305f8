package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// HTTPConfig configures a remote snapshot endpoint.
type HTTPConfig struct {
	URL        string
	Timeout    time.Duration // per request, default 10s
	RatePerSec float64       // client-side request rate; <= 0 means unlimited

	// MaxFailures is the number of consecutive failures that opens the
	// circuit (default 3). OpenTimeout is how long it stays open before a
	// trial request is allowed (default 30s).
	MaxFailures uint32
	OpenTimeout time.Duration

	// MaxBytes caps the response body (default 32MB).
	MaxBytes int64

	// Client overrides the HTTP client, mostly for tests.
	Client *http.Client
}

// HTTPSource fetches a snapshot document over HTTP. Requests are rate
// limited and pass through a circuit breaker so a failing endpoint is not
// hammered by the watcher or repeated exports.
type HTTPSource struct {
	url     string
	client  *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	maxBytes int64
}

// NewHTTPSource validates cfg and builds the source.
func NewHTTPSource(cfg HTTPConfig) (*HTTPSource, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("source: http url required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}

	maxFailures := cfg.MaxFailures
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "snapshot-http",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	})

	return &HTTPSource{
		url:      cfg.URL,
		client:   client,
		limiter:  rate.NewLimiter(limit, 1),
		breaker:  breaker,
		maxBytes: cfg.MaxBytes,
	}, nil
}

// Load performs a GET and returns the body. Non-2xx responses are errors.
func (h *HTTPSource) Load(ctx context.Context) ([]byte, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, err := h.breaker.Execute(func() (interface{}, error) {
		return h.fetch(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrCircuitOpen
		}
		return nil, err
	}
	return result.([]byte), nil
}

func (h *HTTPSource) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", h.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("get %s: unexpected status %d", h.url, resp.StatusCode)
	}

	data, err := readDocument(resp.Body, h.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", h.url, err)
	}
	return data, nil
}

// State reports the circuit breaker state: closed, open or half-open.
func (h *HTTPSource) State() string {
	return h.breaker.State().String()
}

func (h *HTTPSource) Name() string { return h.url }
