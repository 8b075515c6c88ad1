package httpclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func breakerLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCBConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      time.Second,
		FailureRatio: 0.5,
		MinRequests:  3,
	}
}

func newBreakerClient(cfg CircuitBreakerConfig) *CircuitBreakerClient {
	client := New(Config{Timeout: 5 * time.Second, MaxRetries: 0, MaxConnsPerHost: 10})
	return NewCircuitBreakerClient(client, cfg, breakerLogger())
}

// tripBreaker drives enough failing requests through cb to open it.
func tripBreaker(t *testing.T, cb *CircuitBreakerClient, url string) {
	t.Helper()
	for i := 0; i < 3; i++ {
		_, _ = cb.Get(context.Background(), url)
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())
}

func failingServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`error`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCircuitBreaker_ClosedOnSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	cb := newBreakerClient(testCBConfig("stores-closed"))

	resp, err := cb.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_TripsAfterRepeated5xx(t *testing.T) {
	server := failingServer(t)
	cb := newBreakerClient(testCBConfig("stores-trip"))

	for i := 0; i < 3; i++ {
		_, err := cb.Get(context.Background(), server.URL)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.Get(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_RecoversThroughHalfOpen(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	cfg := testCBConfig("stores-recovery")
	cfg.Timeout = 100 * time.Millisecond
	cb := newBreakerClient(cfg)

	tripBreaker(t, cb, server.URL)

	time.Sleep(150 * time.Millisecond)
	failing.Store(false)

	resp, err := cb.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_4xxDoesNotTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad request"}`))
	}))
	defer server.Close()

	cb := newBreakerClient(testCBConfig("stores-4xx"))

	for i := 0; i < 5; i++ {
		resp, err := cb.Get(context.Background(), server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_Post(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"123"}`))
	}))
	defer server.Close()

	cb := newBreakerClient(testCBConfig("stores-post"))

	resp, err := cb.Post(context.Background(), server.URL, "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestDefaultCircuitBreakerConfig(t *testing.T) {
	cfg := DefaultCircuitBreakerConfig("marketplace-api")
	assert.Equal(t, "marketplace-api", cfg.Name)
	assert.Equal(t, uint32(1), cfg.MaxRequests)
	assert.Equal(t, 60*time.Second, cfg.Interval)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 0.5, cfg.FailureRatio)
	assert.Equal(t, uint32(5), cfg.MinRequests)
}

func TestCircuitBreaker_OpenStateShortCircuits(t *testing.T) {
	var reqCount atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqCount.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testCBConfig("stores-open")
	cfg.Timeout = 5 * time.Second
	cb := newBreakerClient(cfg)

	tripBreaker(t, cb, server.URL)
	before := reqCount.Load()

	for i := 0; i < 5; i++ {
		_, err := cb.Get(context.Background(), server.URL)
		assert.ErrorIs(t, err, ErrCircuitOpen)
	}

	assert.Equal(t, before, reqCount.Load(), "open breaker must not forward requests")
}

func TestCircuitBreaker_FallbackInvokedWhenOpen(t *testing.T) {
	server := failingServer(t)

	cfg := testCBConfig("stores-fallback")
	cfg.Timeout = 5 * time.Second

	var fallbackCalled atomic.Bool
	cb := newBreakerClient(cfg).WithFallback(func(ctx context.Context, err error) (*http.Response, error) {
		fallbackCalled.Store(true)
		return &http.Response{StatusCode: http.StatusServiceUnavailable, Body: http.NoBody}, nil
	})

	tripBreaker(t, cb, server.URL)

	resp, err := cb.Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.True(t, fallbackCalled.Load())
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestCircuitBreaker_FallbackSkippedWhenClosed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`ok`))
	}))
	defer server.Close()

	var fallbackCalled atomic.Bool
	cb := newBreakerClient(testCBConfig("stores-fallback-closed")).WithFallback(
		func(ctx context.Context, err error) (*http.Response, error) {
			fallbackCalled.Store(true)
			return nil, fmt.Errorf("fallback error")
		})

	resp, err := cb.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, fallbackCalled.Load())
}

func TestCircuitBreaker_FallbackErrorPropagates(t *testing.T) {
	server := failingServer(t)

	cfg := testCBConfig("stores-fallback-err")
	cfg.Timeout = 5 * time.Second
	cb := newBreakerClient(cfg).WithFallback(func(ctx context.Context, err error) (*http.Response, error) {
		return nil, fmt.Errorf("fallback failed: %w", err)
	})

	tripBreaker(t, cb, server.URL)

	_, err := cb.Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback failed")
}

func TestCircuitBreaker_NoFallbackReturnsErrCircuitOpen(t *testing.T) {
	server := failingServer(t)

	cfg := testCBConfig("stores-no-fallback")
	cfg.Timeout = 5 * time.Second
	cb := newBreakerClient(cfg)

	tripBreaker(t, cb, server.URL)

	_, err := cb.Get(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cb := newBreakerClient(testCBConfig("stores-ctx"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := cb.Get(ctx, server.URL)
	require.Error(t, err)
}
