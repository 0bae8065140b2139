package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/foglio/clipper/internal/clip"
)

func testPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts: 3,
		Multiplier:  time.Millisecond,
		MinWait:     time.Millisecond,
		MaxWait:     5 * time.Millisecond,
	}
}

func newTestFetcher(t *testing.T) *Fetcher {
	t.Helper()
	f := New(Config{Retry: testPolicy()}, zap.NewNop())
	t.Cleanup(f.Close)
	return f
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	resp, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(resp.Body), "hello")
	require.Equal(t, srv.URL, resp.URL)
}

func TestFetchStopsAfterThreeAttempts(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	_, err := f.Fetch(context.Background(), srv.URL)

	var fetchErr *clip.FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Contains(t, fetchErr.Error(), "unexpected status 500")
	require.EqualValues(t, 3, attempts.Load())
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	resp, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.EqualValues(t, 3, attempts.Load())
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFetchInvalidURLSkipsNetwork(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		attempts.Add(1)
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	_, err := f.Fetch(context.Background(), "not a url")

	var invalidErr *clip.InvalidURLError
	require.ErrorAs(t, err, &invalidErr)
	require.Zero(t, attempts.Load(), "invalid input must fail before any network call")
}

func TestFetchHonorsContextDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := New(Config{Retry: &RetryPolicy{
		MaxAttempts: 3,
		Multiplier:  time.Second,
		MinWait:     10 * time.Second,
		MaxWait:     10 * time.Second,
	}}, zap.NewNop())
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := f.Fetch(ctx, srv.URL)
	require.Error(t, err)
	require.Less(t, time.Since(start), 2*time.Second, "canceled context should cut the backoff wait short")
}

func TestIsResponseValid(t *testing.T) {
	htmlHeaders := http.Header{"Content-Type": []string{"text/html; charset=utf-8"}}
	require.True(t, IsResponseValid(Response{Headers: htmlHeaders, Body: []byte("<html/>")}))
	require.False(t, IsResponseValid(Response{Headers: htmlHeaders, Body: nil}), "empty body")
	require.False(t, IsResponseValid(Response{
		Headers: http.Header{"Content-Type": []string{"application/json"}},
		Body:    []byte("{}"),
	}), "non-HTML content type")
}

func TestParseDocument(t *testing.T) {
	resp := Response{
		URL:     "https://example.com",
		Headers: http.Header{"Content-Type": []string{"text/html"}},
		Body:    []byte("<html><head><title>T</title></head><body><p>x</p></body></html>"),
	}
	doc, err := ParseDocument(resp)
	require.NoError(t, err)
	require.Equal(t, "T", doc.Find("title").Text())

	_, err = ParseDocument(Response{URL: "https://example.com", Headers: http.Header{}, Body: []byte("{}")})
	var fetchErr *clip.FetchError
	require.ErrorAs(t, err, &fetchErr)
}
