package openaq

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

// newTestClient points a client at the test server with sleeps recorded
// instead of performed.
func newTestClient(t *testing.T, srv *httptest.Server) (*Client, *[]time.Duration) {
	t.Helper()

	var slept []time.Duration
	c := NewClient(srv.Client(), srv.URL, "test-key", 1000)
	c.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return c, &slept
}

func TestGetAttachesHeadersAndStripsLeadingSlash(t *testing.T) {
	var gotPath, gotKey, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte(`{"results":[{"code":"US"}]}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv)

	env, err := c.get(context.Background(), "/countries", url.Values{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/countries" {
		t.Errorf("expected path /countries, got %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("expected X-API-Key header, got %q", gotKey)
	}
	if gotAgent != userAgent {
		t.Errorf("expected User-Agent %q, got %q", userAgent, gotAgent)
	}
	if len(env.Unwrap()) != 1 {
		t.Errorf("expected one result, got %d", len(env.Unwrap()))
	}
}

func TestRateLimitedRetriesExactlyOnce(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.Header().Set("x-ratelimit-reset", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	c, slept := newTestClient(t, srv)

	if _, err := c.get(context.Background(), "measurements", url.Values{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requests != 2 {
		t.Errorf("expected 2 requests, got %d", requests)
	}
	if len(*slept) != 1 || (*slept)[0] != 7*time.Second {
		t.Errorf("expected one sleep of 7s, got %v", *slept)
	}
}

func TestRateLimitedDefaultsToSixtySecondReset(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	c, slept := newTestClient(t, srv)

	if _, err := c.get(context.Background(), "latest", url.Values{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*slept) != 1 || (*slept)[0] != 60*time.Second {
		t.Errorf("expected one default 60s sleep, got %v", *slept)
	}
}

func TestSecondRateLimitIsNotRetried(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("x-ratelimit-reset", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv)

	_, err := c.get(context.Background(), "latest", url.Values{})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if requests != 2 {
		t.Errorf("expected exactly 2 requests, got %d", requests)
	}
}

func TestNonSuccessStatusReturnsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv)

	_, err := c.get(context.Background(), "countries", url.Values{})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", statusErr.StatusCode)
	}
}

func TestMalformedBodyReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": not-json`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv)

	if _, err := c.get(context.Background(), "countries", url.Values{}); err == nil {
		t.Fatal("expected decode error, got nil")
	}
}
