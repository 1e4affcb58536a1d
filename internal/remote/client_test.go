package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyrag/internal/domain"
)

func noSleep(context.Context, time.Duration) error { return nil }

func TestDoDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/echo", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["say"]})
	}))
	defer srv.Close()

	c := New(Config{Service: "test", BaseURL: srv.URL + "/", Headers: map[string]string{"Authorization": "Bearer k"}})
	var out struct {
		Echo string `json:"echo"`
	}
	require.NoError(t, c.Do(context.Background(), http.MethodPost, "/v1/echo", map[string]string{"say": "hi"}, &out))
	assert.Equal(t, "hi", out.Echo)
}

func TestDoMapsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(Config{Service: "cohere", BaseURL: srv.URL, MaxRetries: 3})
	c.sleep = noSleep
	err := c.Do(context.Background(), http.MethodPost, "/x", nil, nil)
	require.Error(t, err)

	var se *domain.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "cohere", se.Service)
	assert.Equal(t, domain.KindAuth, se.Kind)
	assert.Equal(t, http.StatusUnauthorized, se.Status)
	assert.Contains(t, se.Error(), "bad key")
}

func TestDoNoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(Config{Service: "cohere", BaseURL: srv.URL})
	err := c.Do(context.Background(), http.MethodPost, "/x", nil, nil)
	assert.True(t, domain.IsKind(err, domain.KindRateLimit))
	assert.Equal(t, int32(1), calls.Load())
}

func TestDoRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(Config{Service: "cohere", BaseURL: srv.URL, MaxRetries: 3})
	var waits []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	require.NoError(t, c.Do(context.Background(), http.MethodPost, "/x", nil, &struct{}{}))
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{time.Second, time.Second}, waits)
}

func TestDoBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := New(Config{Service: "qdrant", BaseURL: srv.URL})
	err := c.Do(context.Background(), http.MethodGet, "/", nil, &struct{}{})
	assert.True(t, domain.IsKind(err, domain.KindBadResponse))
}

func TestDoTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(Config{Service: "qdrant", BaseURL: srv.URL, Timeout: 20 * time.Millisecond})
	err := c.Do(context.Background(), http.MethodGet, "/", nil, nil)
	assert.True(t, domain.IsKind(err, domain.KindTimeout), "got %v", err)
}

func TestRetryDelayCapped(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, retryDelay(0))
	assert.Equal(t, 400*time.Millisecond, retryDelay(1))
	assert.Equal(t, 5*time.Second, retryDelay(10))
}

func countingServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestDoThrottlesRequests(t *testing.T) {
	srv, hits := countingServer(t)
	c := New(Config{Service: "cohere", BaseURL: srv.URL, RequestsPerSecond: 20})

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Do(context.Background(), http.MethodPost, "/x", nil, nil))
	}
	// burst of one, then 50ms per token
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	assert.Equal(t, int32(3), hits.Load())
}

func TestDoThrottleDeadlineIsTimeout(t *testing.T) {
	srv, hits := countingServer(t)
	c := New(Config{Service: "cohere", BaseURL: srv.URL, RequestsPerSecond: 0.5})
	require.NoError(t, c.Do(context.Background(), http.MethodPost, "/x", nil, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.Do(ctx, http.MethodPost, "/x", nil, nil)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindTimeout), "got %v", err)

	var se *domain.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "cohere", se.Service)
	assert.Equal(t, int32(1), hits.Load())
}

func TestDoThrottleCancelledIsNetwork(t *testing.T) {
	srv, hits := countingServer(t)
	c := New(Config{Service: "qdrant", BaseURL: srv.URL, RequestsPerSecond: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Do(ctx, http.MethodGet, "/", nil, nil)
	assert.True(t, domain.IsKind(err, domain.KindNetwork), "got %v", err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), hits.Load())

	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/", nil, nil))
	ctx, cancel = context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	err = c.Do(ctx, http.MethodGet, "/", nil, nil)
	assert.True(t, domain.IsKind(err, domain.KindNetwork), "got %v", err)
	assert.Equal(t, int32(1), hits.Load())
}
