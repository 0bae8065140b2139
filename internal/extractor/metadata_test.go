package extractor

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

func TestExtractTitleFallbackChain(t *testing.T) {
	cases := []struct {
		name string
		html string
		want string
	}{
		{
			"og:title wins",
			`<head><meta property="og:title" content="OG"><title>T</title></head><body><h1>H</h1></body>`,
			"OG",
		},
		{
			"title tag next",
			`<head><title>T</title></head><body><h1>H</h1></body>`,
			"T",
		},
		{
			"h1 last",
			`<body><h1>  H  </h1></body>`,
			"H",
		},
		{
			"nothing",
			`<body><p>text</p></body>`,
			"",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, extractTitle(doc(t, tc.html)))
		})
	}
}

func TestExtractAuthorFallbackChain(t *testing.T) {
	cases := []struct {
		name string
		html string
		want string
	}{
		{
			"meta name author",
			`<head><meta name="author" content="Meta Author"></head>`,
			"Meta Author",
		},
		{
			"meta property article:author",
			`<head><meta property="article:author" content="Article Author"></head>`,
			"Article Author",
		},
		{
			"schema.org itemprop",
			`<body><span itemprop="author">Schema Author</span></body>`,
			"Schema Author",
		},
		{
			"byline class",
			`<body><div class="byline">  By Line  </div></body>`,
			"By Line",
		},
		{
			"meta wins over itemprop",
			`<head><meta name="author" content="Meta"></head><body><span itemprop="author">Schema</span></body>`,
			"Meta",
		},
		{
			"absent",
			`<body><p>text</p></body>`,
			"",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, extractAuthor(doc(t, tc.html)))
		})
	}
}

func TestExtractDateSkipsUnparsableCandidates(t *testing.T) {
	html := `<head>
<meta property="article:published_time" content="yesterday-ish">
<meta property="og:published_time" content="2024-03-01T12:00:00Z">
</head>`
	got := extractDate(doc(t, html))
	require.NotNil(t, got)
	require.True(t, got.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
}

func TestExtractDateTimeElementFallback(t *testing.T) {
	html := `<body><time datetime="2023-11-05">November 5th</time></body>`
	got := extractDate(doc(t, html))
	require.NotNil(t, got)
	require.True(t, got.Equal(time.Date(2023, 11, 5, 0, 0, 0, 0, time.UTC)))
}

func TestExtractDateAbsent(t *testing.T) {
	require.Nil(t, extractDate(doc(t, `<body><p>undated</p></body>`)))
	require.Nil(t, extractDate(doc(t, `<head><meta name="date" content="not a date"></head>`)))
}

func TestParseISOTimestamp(t *testing.T) {
	ts, ok := parseISOTimestamp("2024-03-01T12:00:00Z")
	require.True(t, ok)
	require.True(t, ts.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))

	ts, ok = parseISOTimestamp("2024-03-01T12:00:00+02:00")
	require.True(t, ok)
	require.True(t, ts.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))

	ts, ok = parseISOTimestamp("2024-03-01T12:00:00")
	require.True(t, ok)
	require.Equal(t, 12, ts.Hour())

	_, ok = parseISOTimestamp("March 1, 2024")
	require.False(t, ok)
}
