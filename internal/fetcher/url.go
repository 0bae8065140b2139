package fetcher

import (
	"net/url"
	"strings"

	"github.com/foglio/clipper/internal/clip"
)

// IsValidURL reports whether raw is an absolute HTTP or HTTPS URL with a
// non-empty host. It is pure and performs no I/O.
func IsValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// SanitizeURL trims surrounding whitespace and validates the result.
// Invalid input fails fast with clip.InvalidURLError before any network
// attempt.
func SanitizeURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if !IsValidURL(trimmed) {
		return "", &clip.InvalidURLError{URL: trimmed}
	}
	return trimmed, nil
}

// Domain returns the host component of raw, or "" when raw does not parse.
// It exists as a per-domain policy extension point.
func Domain(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return u.Host
}
