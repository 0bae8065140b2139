// Package cache persists retrieved page content in the key-value store as
// JSON, zlib-compressed past a size threshold, under a store-enforced TTL.
package cache

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/foglio/clipper/internal/clip"
	"github.com/foglio/clipper/internal/store"
)

const (
	keyPrefix = "web:cache:"

	// DefaultTTL applies when Put is called with a non-positive ttl.
	DefaultTTL = 24 * time.Hour

	// DefaultCompressionThreshold is the encoded size past which entries
	// are stored compressed.
	DefaultCompressionThreshold = 10 * 1024
)

// Stored bytes are either raw JSON or a zlib stream, told apart purely by
// the leading byte pair. JSON text starts with whitespace, '{', or '[',
// so neither zlib header can collide with it.
var zlibPrefixes = [][]byte{
	{0x78, 0x9c},
	{0x78, 0xda},
}

// Config carries cache construction knobs. Zero values fall back to
// defaults.
type Config struct {
	TTL                  time.Duration
	CompressionThreshold int
}

// Cache wraps a key-value store with the serialization, compression, and
// TTL policy for page content. Keys are the caller-supplied URL verbatim;
// syntactically different URLs for the same resource are distinct entries.
type Cache struct {
	store     store.Store
	ttl       time.Duration
	threshold int
	logger    *zap.Logger
}

// New creates a Cache and probes store connectivity once. A failed probe is
// a construction-time clip.CacheError rather than a deferred surprise on
// first use.
func New(ctx context.Context, st store.Store, cfg Config, logger *zap.Logger) (*Cache, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.CompressionThreshold <= 0 {
		cfg.CompressionThreshold = DefaultCompressionThreshold
	}
	if err := st.Ping(ctx); err != nil {
		return nil, &clip.CacheError{Err: fmt.Errorf("store ping: %w", err)}
	}
	return &Cache{
		store:     st,
		ttl:       cfg.TTL,
		threshold: cfg.CompressionThreshold,
		logger:    logger,
	}, nil
}

// Key derives the namespaced store key for a URL.
func Key(url string) string {
	return keyPrefix + url
}

// Get returns the cached content for url, or (nil, nil) on a miss. Store,
// decompression, and decode failures are clip.CacheError; corrupted data
// is never silently reported as absent.
func (c *Cache) Get(ctx context.Context, url string) (*clip.PageContent, error) {
	data, err := c.store.Get(ctx, Key(url))
	if errors.Is(err, store.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &clip.CacheError{URL: url, Err: err}
	}

	if isCompressed(data) {
		r, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, &clip.CacheError{URL: url, Err: fmt.Errorf("open zlib stream: %w", err)}
		}
		data, err = io.ReadAll(r)
		if cerr := r.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, &clip.CacheError{URL: url, Err: fmt.Errorf("decompress: %w", err)}
		}
	}

	var content clip.PageContent
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, &clip.CacheError{URL: url, Err: fmt.Errorf("decode entry: %w", err)}
	}
	return &content, nil
}

// Put stores content under url. A non-positive ttl uses the default.
func (c *Cache) Put(ctx context.Context, url string, content clip.PageContent, ttl time.Duration) error {
	data, err := json.Marshal(content)
	if err != nil {
		return &clip.CacheError{URL: url, Err: fmt.Errorf("encode entry: %w", err)}
	}
	if len(data) > c.threshold {
		var buf bytes.Buffer
		w := zlib.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return &clip.CacheError{URL: url, Err: fmt.Errorf("compress: %w", err)}
		}
		if err := w.Close(); err != nil {
			return &clip.CacheError{URL: url, Err: fmt.Errorf("compress: %w", err)}
		}
		data = buf.Bytes()
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	if err := c.store.Set(ctx, Key(url), data, ttl); err != nil {
		return &clip.CacheError{URL: url, Err: err}
	}
	return nil
}

// Invalidate drops the entry for url.
func (c *Cache) Invalidate(ctx context.Context, url string) error {
	if err := c.store.Delete(ctx, Key(url)); err != nil {
		return &clip.CacheError{URL: url, Err: err}
	}
	return nil
}

// CleanupExpired is a no-op. The store's own TTL expiry is authoritative,
// so there is nothing to sweep.
func (c *Cache) CleanupExpired(context.Context) error {
	return nil
}

func isCompressed(data []byte) bool {
	for _, prefix := range zlibPrefixes {
		if bytes.HasPrefix(data, prefix) {
			return true
		}
	}
	return false
}
