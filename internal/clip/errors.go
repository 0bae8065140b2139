package clip

import (
	"errors"
	"fmt"
)

// ErrCitationNotFound marks the expected absence of a citation. It is kept
// distinct from CitationError so callers can tell "doesn't exist" from
// "store is unhealthy".
var ErrCitationNotFound = errors.New("citation not found")

// InvalidURLError reports input that failed URL validation. No network I/O
// was attempted.
type InvalidURLError struct {
	URL string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid url: %q", e.URL)
}

// FetchError reports a fetch that failed after retries were exhausted, or a
// response that could not be validated or parsed.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionError reports content that failed the extraction quality bar or
// an error raised by the extraction transform itself.
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// CacheError normalizes store, codec, and serialization failures raised by
// the cache. Ordinary misses are not errors.
type CacheError struct {
	URL string
	Err error
}

func (e *CacheError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("cache: %v", e.Err)
	}
	return fmt.Sprintf("cache %s: %v", e.URL, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }

// CitationError normalizes store and serialization failures raised by the
// citation store. ErrCitationNotFound is never wrapped in one.
type CitationError struct {
	Op  string
	Err error
}

func (e *CitationError) Error() string {
	return fmt.Sprintf("citation %s: %v", e.Op, e.Err)
}

func (e *CitationError) Unwrap() error { return e.Err }
