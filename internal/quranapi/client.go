// Package quranapi is the client for the remote Quran content API
// (api.alquran.cloud compatible) and the audio CDN.
package quranapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/mrlokans/quransync/internal/logging"
)

const (
	DefaultBaseURL = "https://api.alquran.cloud/v1"

	defaultTimeout = 30 * time.Second
)

// RetryPolicy controls FetchWithRetry. Statuses listed in TerminalStatuses
// end the loop on the first attempt.
type RetryPolicy struct {
	MaxAttempts      int
	Delay            time.Duration
	TerminalStatuses []int
}

// DefaultRetryPolicy is three attempts one second apart, with 404 terminal.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:      3,
		Delay:            time.Second,
		TerminalStatuses: []int{http.StatusNotFound},
	}
}

func (p RetryPolicy) isTerminal(status int) bool {
	return slices.Contains(p.TerminalStatuses, status)
}

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	Retry      RetryPolicy
	HTTPClient *http.Client

	// Requests per second; zero disables pacing.
	RateLimit float64
	RateBurst int

	// Consecutive failures that open the breaker; zero disables it.
	BreakerFailures uint32
}

// upstream paces and trips requests to one host. The content API and the
// audio CDN each get their own, so an outage on one never blocks the other.
type upstream struct {
	name    string
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func newUpstream(name string, cfg Config) *upstream {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}
	u := &upstream{name: name, limiter: rate.NewLimiter(limit, burst)}
	if cfg.BreakerFailures > 0 {
		u.breaker = newBreaker(name, cfg.BreakerFailures)
	}
	return u
}

// Client interfaces with the content API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	policy     RetryPolicy
	api        *upstream
	audio      *upstream
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	policy := cfg.Retry
	if policy.MaxAttempts <= 0 {
		policy = DefaultRetryPolicy()
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		policy:     policy,
		api:        newUpstream("content API", cfg),
		audio:      newUpstream("audio CDN", cfg),
	}
}

func newBreaker(name string, failures uint32) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Absent resources and cancellations say nothing about API health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrCancelled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
		},
	})
}

// Policy returns the retry policy used for API calls.
func (c *Client) Policy() RetryPolicy {
	return c.policy
}

// FetchWithRetry GETs url and returns the response body. Failed attempts
// are retried with a fixed delay; a terminal status ends the loop at once
// (404 maps to ErrNotFound). A done context yields ErrCancelled without
// issuing further requests.
func (c *Client) FetchWithRetry(ctx context.Context, url string, policy RetryPolicy) ([]byte, error) {
	return c.fetchWithRetry(ctx, c.api, url, policy)
}

func (c *Client) fetchWithRetry(ctx context.Context, up *upstream, url string, policy RetryPolicy) ([]byte, error) {
	attempts := policy.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ErrCancelled
			case <-time.After(policy.Delay):
			}
		}

		body, err := c.fetchOnce(ctx, up, url, policy)
		if err == nil {
			return body, nil
		}
		if errors.Is(err, ErrCancelled) || errors.Is(err, ErrNotFound) || !isRetryableError(err, policy) {
			return nil, err
		}

		lastErr = err
		logging.Debug().Err(err).Str("url", url).Int("attempt", attempt+1).Msg("Request failed")
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, up *upstream, url string, policy RetryPolicy) ([]byte, error) {
	if err := up.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	if up.breaker == nil {
		return c.do(ctx, url, policy)
	}
	body, err := up.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, url, policy)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s unavailable: %w", up.name, err)
	}
	return body, err
}

func (c *Client) do(ctx context.Context, url string, policy RetryPolicy) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		if resp.StatusCode == http.StatusNotFound && policy.isTerminal(resp.StatusCode) {
			return nil, ErrNotFound
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// isRetryableError reports whether another attempt may succeed. Transport
// errors and non-terminal statuses are retried.
func isRetryableError(err error, policy RetryPolicy) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return !policy.isTerminal(statusErr.StatusCode)
	}
	return !errors.Is(err, gobreaker.ErrOpenState) && !errors.Is(err, gobreaker.ErrTooManyRequests)
}

type envelope struct {
	Code   int             `json:"code"`
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// getData fetches an API path and decodes the envelope's data into dst.
func (c *Client) getData(ctx context.Context, path string, dst any) error {
	body, err := c.FetchWithRetry(ctx, c.baseURL+path, c.policy)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if env.Code != http.StatusOK {
		return &APIError{Code: env.Code, Status: env.Status}
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	return nil
}
