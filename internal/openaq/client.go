package openaq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

const (
	// DefaultBaseURL is the OpenAQ v3 API root, overridable via configuration.
	DefaultBaseURL = "https://api.openaq.org/v3"

	userAgent = "openaq-dashboard/1.0"

	// rateLimitResetHeader carries the seconds until the upstream rate
	// window resets on a 429 response.
	rateLimitResetHeader = "x-ratelimit-reset"

	defaultRateLimitReset = 60 * time.Second
)

var (
	// ErrRateLimited is returned when the upstream keeps answering 429
	// after the single allowed retry.
	ErrRateLimited = errors.New("openaq: rate limited")

	// ErrCircuitOpen is returned when the circuit breaker rejects a request.
	ErrCircuitOpen = errors.New("openaq: circuit breaker open")
)

// StatusError reports a non-2xx upstream response other than 429.
type StatusError struct {
	StatusCode int
	Endpoint   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openaq: %s returned status %d", e.Endpoint, e.StatusCode)
}

// rateLimitError carries the reset hint from a 429 response.
type rateLimitError struct {
	reset time.Duration
}

func (e *rateLimitError) Error() string {
	return fmt.Sprintf("openaq: rate limited, reset in %s", e.reset)
}

func (e *rateLimitError) Unwrap() error { return ErrRateLimited }

// Client is a rate-limited OpenAQ v3 API client. All requests pass through
// the local rate limiter gate and a circuit breaker; a 429 response is
// retried exactly once after sleeping out the advertised reset interval.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *RateLimiter
	circuit    *gobreaker.CircuitBreaker

	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a Client. requestsPerMinute <= 0 defaults to 60.
func NewClient(httpClient *http.Client, baseURL, apiKey string, requestsPerMinute int) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openaq",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		limiter:    NewRateLimiter(requestsPerMinute),
		circuit:    cb,
		sleep:      sleepContext,
	}
}

// Remaining reports the request slots left in the local rate window.
func (c *Client) Remaining() int {
	return c.limiter.Remaining()
}

// get issues a GET against the given endpoint path (leading slash stripped)
// with the given query parameters and decodes the response envelope.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (Envelope, error) {
	env, err := c.doOnce(ctx, endpoint, params)
	if err == nil {
		return env, nil
	}

	var rle *rateLimitError
	if !errors.As(err, &rle) {
		return Envelope{}, err
	}

	// 429: sleep out the advertised reset, then retry exactly once.
	// A second 429 is not retried again.
	if serr := c.sleep(ctx, rle.reset); serr != nil {
		return Envelope{}, serr
	}
	return c.doOnce(ctx, endpoint, params)
}

func (c *Client) doOnce(ctx context.Context, endpoint string, params url.Values) (Envelope, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return Envelope{}, err
	}

	target := fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(endpoint, "/"))
	if len(params) > 0 {
		target = fmt.Sprintf("%s?%s", target, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Envelope{}, err
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("User-Agent", userAgent)

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.httpClient.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, &rateLimitError{reset: parseResetHeader(resp)}
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &StatusError{StatusCode: resp.StatusCode, Endpoint: endpoint}
		}

		var env Envelope
		if decErr := json.NewDecoder(resp.Body).Decode(&env); decErr != nil {
			return nil, fmt.Errorf("openaq: decode %s response: %w", endpoint, decErr)
		}
		return env, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Envelope{}, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return Envelope{}, err
	}

	env, ok := result.(Envelope)
	if !ok {
		return Envelope{}, fmt.Errorf("openaq: unexpected result type from circuit breaker")
	}
	return env, nil
}

// parseResetHeader reads the reset hint from a 429 response, defaulting to
// 60 seconds when the header is absent or malformed.
func parseResetHeader(resp *http.Response) time.Duration {
	v := resp.Header.Get(rateLimitResetHeader)
	if v == "" {
		return defaultRateLimitReset
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return defaultRateLimitReset
	}
	return time.Duration(secs) * time.Second
}
