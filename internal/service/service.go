// Package service orchestrates the retrieval pipeline: cache check, fetch,
// extract, cite, cache write.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foglio/clipper/internal/cache"
	"github.com/foglio/clipper/internal/citations"
	"github.com/foglio/clipper/internal/clip"
	"github.com/foglio/clipper/internal/extractor"
	"github.com/foglio/clipper/internal/fetcher"
	"github.com/foglio/clipper/internal/metrics"
)

// DefaultExcerptLength bounds the snippet copied from the extracted body
// into the citation record.
const DefaultExcerptLength = 500

var errInvalidResponse = errors.New("response is not valid HTML")

// Service wires the four core components behind the operations the API
// exposes. It holds no state of its own and is safe for concurrent use.
type Service struct {
	fetcher       *fetcher.Fetcher
	extractor     *extractor.Extractor
	cache         *cache.Cache
	citations     *citations.Store
	excerptLength int
	logger        *zap.Logger
}

// New creates a Service. A non-positive excerptLength uses the default.
func New(
	f *fetcher.Fetcher,
	e *extractor.Extractor,
	c *cache.Cache,
	cs *citations.Store,
	excerptLength int,
	logger *zap.Logger,
) *Service {
	if excerptLength <= 0 {
		excerptLength = DefaultExcerptLength
	}
	return &Service{
		fetcher:       f,
		extractor:     e,
		cache:         c,
		citations:     cs,
		excerptLength: excerptLength,
		logger:        logger,
	}
}

// FetchContent returns the extracted content for rawURL, served from cache
// when possible. On a miss (or forceRefresh) it fetches the page, extracts
// the article, mints a citation, and caches the combined result. A failed
// cache write is logged and swallowed; the caller still gets the content.
func (s *Service) FetchContent(ctx context.Context, rawURL string, forceRefresh bool) (clip.PageContent, error) {
	target, err := fetcher.SanitizeURL(rawURL)
	if err != nil {
		metrics.ObserveFetch("invalid_url")
		return clip.PageContent{}, err
	}

	if !forceRefresh {
		cached, err := s.cache.Get(ctx, target)
		if err != nil {
			return clip.PageContent{}, err
		}
		metrics.ObserveCacheLookup(cached != nil)
		if cached != nil {
			return *cached, nil
		}
	}

	resp, err := s.fetcher.Fetch(ctx, target)
	if err != nil {
		metrics.ObserveFetch("error")
		return clip.PageContent{}, err
	}
	if !fetcher.IsResponseValid(resp) {
		metrics.ObserveFetch("invalid_response")
		return clip.PageContent{}, &clip.FetchError{URL: target, Err: errInvalidResponse}
	}
	metrics.ObserveFetch("success")

	article, err := s.extractor.ExtractArticle(string(resp.Body), target)
	if err != nil {
		metrics.ObserveExtraction("error")
		return clip.PageContent{}, err
	}
	metrics.ObserveExtraction("success")

	citation, err := s.citations.Create(ctx, target, article, excerpt(article.Content, s.excerptLength))
	if err != nil {
		metrics.ObserveCitationOp("create", "error")
		return clip.PageContent{}, err
	}
	metrics.ObserveCitationOp("create", "success")

	content := clip.PageContent{
		URL:      target,
		Title:    citation.Title,
		Author:   article.Author,
		Content:  article.Content,
		Citation: citation,
	}
	if err := s.cache.Put(ctx, target, content, 0); err != nil {
		s.logger.Warn("cache write failed", zap.String("url", target), zap.Error(err))
	}
	return content, nil
}

// Citation returns a single citation by id.
func (s *Service) Citation(ctx context.Context, id uuid.UUID) (clip.Citation, error) {
	return s.citations.Get(ctx, id)
}

// ArticleCitations returns every citation associated with an article.
func (s *Service) ArticleCitations(ctx context.Context, articleID uuid.UUID) ([]clip.Citation, error) {
	return s.citations.GetByArticle(ctx, articleID)
}

// InvalidateCache drops the cached content for rawURL.
func (s *Service) InvalidateCache(ctx context.Context, rawURL string) error {
	target, err := fetcher.SanitizeURL(rawURL)
	if err != nil {
		return err
	}
	return s.cache.Invalidate(ctx, target)
}

// excerpt returns the first n runes of text.
func excerpt(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
