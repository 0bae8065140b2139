// Package extractor turns raw page markup into normalized article text
// plus metadata. It is a pure transformation: no network, no store access.
package extractor

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/foglio/clipper/internal/clip"
)

// DefaultMinContentLength is the inclusive quality bar: cleaned text shorter
// than this rejects the extraction instead of returning a degenerate result.
const DefaultMinContentLength = 100

// Extractor runs the readability transform and the cleaning pipeline.
type Extractor struct {
	minContentLength int
}

// New creates an Extractor. A non-positive minContentLength falls back to
// DefaultMinContentLength.
func New(minContentLength int) *Extractor {
	if minContentLength <= 0 {
		minContentLength = DefaultMinContentLength
	}
	return &Extractor{minContentLength: minContentLength}
}

// ExtractArticle isolates the primary content region of rawHTML, cleans it
// to plain text, and probes the original document for metadata. pageURL
// anchors relative link rewriting. Failures of any step, including text
// below the minimum length, surface as clip.ExtractionError.
func (e *Extractor) ExtractArticle(rawHTML, pageURL string) (clip.ExtractedArticle, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return clip.ExtractedArticle{}, &clip.ExtractionError{URL: pageURL, Err: fmt.Errorf("parse page url: %w", err)}
	}

	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(rawHTML), base)
	if err != nil {
		return clip.ExtractedArticle{}, &clip.ExtractionError{URL: pageURL, Err: fmt.Errorf("readability: %w", err)}
	}

	contentDoc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return clip.ExtractedArticle{}, &clip.ExtractionError{URL: pageURL, Err: fmt.Errorf("parse content region: %w", err)}
	}
	content := cleanContent(contentDoc, base)
	if n := utf8.RuneCountInString(content); n < e.minContentLength {
		return clip.ExtractedArticle{}, &clip.ExtractionError{
			URL: pageURL,
			Err: fmt.Errorf("content length %d below minimum %d", n, e.minContentLength),
		}
	}

	// Metadata comes from the original document, not the isolated
	// subtree: sites keep meta tags in <head>, which readability drops.
	fullDoc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return clip.ExtractedArticle{}, &clip.ExtractionError{URL: pageURL, Err: fmt.Errorf("parse document: %w", err)}
	}

	return clip.ExtractedArticle{
		URL:             pageURL,
		Title:           extractTitle(fullDoc),
		Author:          extractAuthor(fullDoc),
		PublicationDate: extractDate(fullDoc),
		Content:         content,
	}, nil
}

// cleanContent strips non-content elements, rewrites relative references
// against base, and flattens the remaining visible text into a single
// whitespace-normalized string.
func cleanContent(doc *goquery.Document, base *url.URL) string {
	doc.Find("script, style, iframe, form").Remove()

	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			s.SetAttr("src", absoluteURL(base, src))
		}
	})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			s.SetAttr("href", absoluteURL(base, href))
		}
	})

	var b strings.Builder
	for _, n := range doc.Selection.Nodes {
		flattenText(n, &b)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// absoluteURL resolves ref against base unless it is already an absolute
// http(s) URL. Unresolvable references are left as-is.
func absoluteURL(base *url.URL, ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	abs, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return abs.String()
}

// flattenText concatenates text nodes with single-space separators.
func flattenText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		flattenText(c, b)
	}
}
