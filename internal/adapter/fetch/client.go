package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"
)

// HTTPDoer is the subset of *http.Client the fetcher needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Client.
type Options struct {
	Timeout        time.Duration
	MaxRetries     int // 0 means a single attempt
	RetryDelay     time.Duration
	Multiplier     float64
	BreakerTimeout time.Duration
	Clock          clockwork.Clock // paces retry backoff; real clock when nil
}

// Client performs GET requests behind a circuit breaker, with optional
// exponential retry.
type Client struct {
	http       HTTPDoer
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
	clock      clockwork.Clock
	maxRetries int
	retryDelay time.Duration
	multiplier float64
}

// NewClient creates a fetch client. name identifies the breaker in logs.
func NewClient(name string, opts Options, logger *slog.Logger) *Client {
	if opts.Multiplier <= 0 {
		opts.Multiplier = 2
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"client", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &Client{
		http:       &http.Client{Timeout: opts.Timeout},
		breaker:    gobreaker.NewCircuitBreaker(settings),
		logger:     logger,
		clock:      opts.Clock,
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		multiplier: opts.Multiplier,
	}
}

// Get returns the response body of a 2xx GET to url.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	body, err := c.breaker.Execute(func() (any, error) {
		return c.getWithRetry(ctx, url)
	})
	if err != nil {
		return nil, err
	}
	return body.([]byte), nil
}

func (c *Client) getWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(c.retryDelay) * math.Pow(c.multiplier, float64(attempt-1)))
			c.logger.Debug("retrying request", "url", url, "attempt", attempt, "delay", delay)

			timer := c.clock.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.Chan():
			}
		}

		body, retryable, err := c.getOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		c.logger.Warn("http request failed", "url", url, "attempt", attempt, "error", err)
		if !retryable || ctx.Err() != nil {
			break
		}
	}

	return nil, lastErr
}

// getOnce performs one request. Client errors other than 429 are not retryable.
func (c *Client) getOnce(ctx context.Context, url string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return nil, retryable, &StatusError{URL: url, StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read body: %w", err)
	}
	return body, false, nil
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("get %s: status %d: %s", e.URL, e.StatusCode, e.Body)
}
