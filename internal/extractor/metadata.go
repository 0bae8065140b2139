package extractor

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// authorMetaKeys and dateMetaKeys are tried in order as both property and
// name attributes; the first usable hit wins.
var (
	authorMetaKeys = []string{"author", "article:author", "og:author"}
	dateMetaKeys   = []string{
		"article:published_time",
		"article:modified_time",
		"og:published_time",
		"og:modified_time",
		"datePublished",
		"dateModified",
		"date",
	}
)

func extractTitle(doc *goquery.Document) string {
	probes := []func(*goquery.Document) string{
		func(d *goquery.Document) string { return metaContent(d, "og:title") },
		func(d *goquery.Document) string { return normalizeText(d.Find("title").First().Text()) },
		func(d *goquery.Document) string { return normalizeText(d.Find("h1").First().Text()) },
	}
	for _, probe := range probes {
		if title := probe(doc); title != "" {
			return title
		}
	}
	return ""
}

func extractAuthor(doc *goquery.Document) string {
	probes := []func(*goquery.Document) string{
		func(d *goquery.Document) string {
			for _, key := range authorMetaKeys {
				if author := metaContent(d, key); author != "" {
					return author
				}
			}
			return ""
		},
		func(d *goquery.Document) string {
			return normalizeText(d.Find(`[itemprop="author"]`).First().Text())
		},
		func(d *goquery.Document) string {
			for _, class := range []string{"author", "byline"} {
				if author := normalizeText(d.Find("." + class).First().Text()); author != "" {
					return author
				}
			}
			return ""
		},
	}
	for _, probe := range probes {
		if author := probe(doc); author != "" {
			return author
		}
	}
	return ""
}

func extractDate(doc *goquery.Document) *time.Time {
	for _, key := range dateMetaKeys {
		candidate := metaContent(doc, key)
		if candidate == "" {
			continue
		}
		// Unparsable candidates are skipped, not fatal.
		if ts, ok := parseISOTimestamp(candidate); ok {
			return &ts
		}
	}
	if datetime, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		if ts, ok := parseISOTimestamp(datetime); ok {
			return &ts
		}
	}
	return nil
}

// metaContent returns the trimmed content attribute of the first meta tag
// whose property or name attribute equals key.
func metaContent(doc *goquery.Document, key string) string {
	selectors := []string{
		fmt.Sprintf(`meta[property=%q]`, key),
		fmt.Sprintf(`meta[name=%q]`, key),
	}
	for _, sel := range selectors {
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			if trimmed := strings.TrimSpace(content); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// parseISOTimestamp accepts ISO-8601 timestamps, with or without a zone
// offset, and bare dates. A trailing Z reads as UTC.
func parseISOTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
