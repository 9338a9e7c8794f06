package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestFetcher(maxRetries int) *Retrying {
	return New(Config{
		MaxRetries:  maxRetries,
		BackoffBase: time.Millisecond,
		Timeout:     5 * time.Second,
	}, zap.NewNop())
}

func TestRetrying_Fetch_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer srv.Close()

	body, err := newTestFetcher(3).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Contains(t, string(body), "hello")
}

func TestRetrying_Fetch_RetriesExactlyMaxOnRateLimit(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestFetcher(5).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	require.EqualValues(t, 5, attempts.Load())

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.True(t, fetchErr.Retryable)
	require.Equal(t, http.StatusTooManyRequests, fetchErr.StatusCode)
}

func TestRetrying_Fetch_RecoversAfterRateLimit(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := newTestFetcher(5).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "ok", string(body))
	require.EqualValues(t, 3, attempts.Load())
}

func TestRetrying_Fetch_ClientErrorIsFatal(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher(5).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	require.EqualValues(t, 1, attempts.Load(), "non-429 failures must not retry")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.False(t, fetchErr.Retryable)
}

func TestRetrying_Fetch_NetworkErrorIsFatal(t *testing.T) {
	t.Parallel()

	_, err := newTestFetcher(5).Fetch(context.Background(), "http://127.0.0.1:1")
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.False(t, fetchErr.Retryable)
}

func TestRetrying_Fetch_ContextCancelStopsBackoff(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := New(Config{
		MaxRetries:  5,
		BackoffBase: 10 * time.Second,
		Timeout:     5 * time.Second,
	}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := f.Fetch(ctx, srv.URL)
	require.Error(t, err)
	require.Less(t, time.Since(start), 5*time.Second)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.True(t, errors.Is(fetchErr, context.DeadlineExceeded))
}

func TestRetrying_Backoff_StaysWithinBounds(t *testing.T) {
	t.Parallel()

	f := New(Config{MaxRetries: 5, BackoffBase: 2 * time.Second}, zap.NewNop())
	for attempt := 1; attempt <= 5; attempt++ {
		ceiling := 2 * time.Second << (attempt - 1)
		for i := 0; i < 20; i++ {
			wait := f.backoff(attempt)
			require.GreaterOrEqual(t, wait, 2*time.Second)
			require.LessOrEqual(t, wait, ceiling)
		}
	}
}
