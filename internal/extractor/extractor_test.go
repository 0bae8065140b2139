package extractor

import (
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/foglio/clipper/internal/clip"
)

const scenarioPage = `<!DOCTYPE html>
<html>
<head>
<meta property="og:title" content="X">
<meta name="author" content="Jane Doe">
<meta property="article:published_time" content="2024-03-01T12:00:00Z">
<title>Fallback Title</title>
</head>
<body>
<h1>Visible Headline</h1>
<article>
<p>The consumer price index rose again last month, driven largely by housing
and energy costs. Analysts had expected a smaller increase, and markets
reacted quickly to the news. Several economists said the trend is likely to
continue through the remainder of the year unless supply conditions improve
substantially across the affected sectors.</p>
<script>var evilScript = true;</script>
<img src="/img.jpg" alt="chart">
<a href="/next">continue reading</a>
</article>
</body>
</html>`

func TestExtractArticleScenario(t *testing.T) {
	e := New(0)
	article, err := e.ExtractArticle(scenarioPage, "https://example.com/article")
	require.NoError(t, err)

	require.Equal(t, "X", article.Title, "og:title wins over <title> and <h1>")
	require.Equal(t, "Jane Doe", article.Author)
	require.NotNil(t, article.PublicationDate)
	require.True(t, article.PublicationDate.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
	require.Equal(t, "https://example.com/article", article.URL)

	require.Contains(t, article.Content, "consumer price index")
	require.NotContains(t, article.Content, "evilScript", "script content must not leak into text")
	require.NotContains(t, article.Content, "  ", "whitespace runs must be collapsed")
}

func TestExtractArticleLengthBoundary(t *testing.T) {
	words := make([]string, 10)
	for i := range words {
		words[i] = strings.Repeat("x", 9)
	}
	text99 := strings.Join(words, " ")
	require.Len(t, text99, 99)
	text100 := text99 + "x"

	page := func(body string) string {
		return fmt.Sprintf(`<html><head><title>Boundary</title></head><body><article><p>%s</p></article></body></html>`, body)
	}

	e := New(0)

	_, err := e.ExtractArticle(page(text99), "https://example.com/short")
	var extractionErr *clip.ExtractionError
	require.ErrorAs(t, err, &extractionErr, "99 characters is below the bar")

	article, err := e.ExtractArticle(page(text100), "https://example.com/long")
	require.NoError(t, err, "100 characters meets the inclusive threshold")
	require.Equal(t, text100, article.Content)
	require.Equal(t, "Boundary", article.Title)
}

func TestCleanContentRewritesAndFlattens(t *testing.T) {
	fragment := `<div><p>Hello  world</p><script>var x = 1;</script>` +
		`<img src="/img.jpg"><a href="relative/page">link</a>` +
		`<a href="https://other.example/x">abs</a></div>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	require.NoError(t, err)
	base, err := url.Parse("https://example.com/news/article")
	require.NoError(t, err)

	text := cleanContent(doc, base)
	require.Equal(t, "Hello world link abs", text)

	require.Zero(t, doc.Find("script").Length())
	src, _ := doc.Find("img").First().Attr("src")
	require.Equal(t, "https://example.com/img.jpg", src)
	href, _ := doc.Find("a").First().Attr("href")
	require.Equal(t, "https://example.com/news/relative/page", href)
	absHref, _ := doc.Find("a").Last().Attr("href")
	require.Equal(t, "https://other.example/x", absHref, "absolute references stay untouched")
}

func TestCleanContentRemovesNonContentElements(t *testing.T) {
	fragment := `<div><style>p { color: red; }</style><iframe src="/embed"></iframe>` +
		`<form><input name="q"></form><p>kept</p></div>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	require.NoError(t, err)
	base, _ := url.Parse("https://example.com/")

	require.Equal(t, "kept", cleanContent(doc, base))
}
