// Package fetcher retrieves raw page content over HTTP with bounded
// retries.
package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/foglio/clipper/internal/clip"
)

const defaultUserAgent = "clipper/1.0 (+https://github.com/foglio/clipper)"

// defaultHeaders are sent on every request unless overridden via Config.
var defaultHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9",
	"Accept-Language": "en-US,en;q=0.5",
}

// Config carries fetcher construction knobs. Zero values fall back to
// defaults.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	Headers   map[string]string
	Retry     *RetryPolicy
}

// Response is the raw result of a successful fetch. Response validation is
// a separate step; see IsResponseValid.
type Response struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Fetcher performs retried GETs over a long-lived HTTP client. It is safe
// for concurrent use; Close releases the held connections.
type Fetcher struct {
	client  *http.Client
	headers map[string]string
	retry   *RetryPolicy
	logger  *zap.Logger
}

// New creates a Fetcher.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	retry := cfg.Retry
	if retry == nil {
		retry = DefaultRetryPolicy()
	}
	headers := make(map[string]string, len(defaultHeaders)+1)
	for k, v := range defaultHeaders {
		headers[k] = v
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	headers["User-Agent"] = ua
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	return &Fetcher{
		client:  &http.Client{Timeout: cfg.Timeout},
		headers: headers,
		retry:   retry,
		logger:  logger,
	}
}

// Fetch sanitizes and retrieves rawURL. Invalid URLs fail immediately and
// are never retried; transport errors and non-2xx statuses consume retry
// attempts, and the last attempt's error is the one surfaced inside
// clip.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Response, error) {
	target, err := SanitizeURL(rawURL)
	if err != nil {
		return Response{}, err
	}

	var lastErr error
	for attempt := 1; attempt <= f.retry.MaxAttempts; attempt++ {
		resp, err := f.do(ctx, target)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		f.logger.Warn("fetch attempt failed",
			zap.String("url", target),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt == f.retry.MaxAttempts {
			break
		}
		select {
		case <-time.After(f.retry.Backoff(attempt)):
		case <-ctx.Done():
			return Response{}, &clip.FetchError{URL: target, Err: ctx.Err()}
		}
	}
	return Response{}, &clip.FetchError{URL: target, Err: lastErr}
}

func (f *Fetcher) do(ctx context.Context, target string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("get %s: %w", target, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return Response{
		URL:        target,
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}

// IsResponseValid reports whether resp looks like parseable HTML: an HTML
// content type and a non-empty body. Fetch does not apply this check
// itself; callers decide when a non-HTML response is acceptable.
func IsResponseValid(resp Response) bool {
	contentType := strings.ToLower(resp.Headers.Get("Content-Type"))
	return strings.Contains(contentType, "html") && len(resp.Body) > 0
}

// ParseDocument validates resp and parses its body into a traversable
// document. Validation or parse failures surface as clip.FetchError.
func ParseDocument(resp Response) (*goquery.Document, error) {
	if !IsResponseValid(resp) {
		return nil, &clip.FetchError{URL: resp.URL, Err: errors.New("response is not valid HTML")}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, &clip.FetchError{URL: resp.URL, Err: fmt.Errorf("parse html: %w", err)}
	}
	return doc, nil
}

// Close releases the idle connections held by the underlying client.
func (f *Fetcher) Close() {
	f.client.CloseIdleConnections()
}
