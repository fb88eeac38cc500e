package extract

import (
	"testing"
	"time"
)

func assertDate(t *testing.T, got *time.Time, year int, month time.Month, day int) {
	t.Helper()
	if got == nil {
		t.Fatal("Expected a date, got nil")
	}
	if got.Year() != year || got.Month() != month || got.Day() != day {
		t.Errorf("Expected %d-%02d-%02d, got %s", year, month, day, got.Format("2006-01-02"))
	}
}

func TestExtractPublishDate_LDJSON(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{"@type":"NewsArticle","datePublished":"2024-03-15T10:30:00Z"}</script>
	</head><body></body></html>`

	assertDate(t, ExtractPublishDate(html), 2024, time.March, 15)
}

func TestExtractPublishDate_LDJSONGraph(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{"@graph":[{"@type":"WebPage"},{"@type":"Article","datePublished":"2023-11-03T08:00:00-04:00"}]}</script>
	</head><body></body></html>`

	assertDate(t, ExtractPublishDate(html), 2023, time.November, 3)
}

func TestExtractPublishDate_LDJSONBeatsTimeTag(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{"datePublished":"2024-01-05T00:00:00Z"}</script>
	</head><body>
		<time datetime="2020-01-01T00:00:00Z">Jan 1, 2020</time>
	</body></html>`

	assertDate(t, ExtractPublishDate(html), 2024, time.January, 5)
}

func TestExtractPublishDate_TimeTag(t *testing.T) {
	html := `<html><body><time datetime="2024-06-21T09:00:00Z">June 21</time></body></html>`

	assertDate(t, ExtractPublishDate(html), 2024, time.June, 21)
}

func TestExtractPublishDate_MetaFallback(t *testing.T) {
	html := `<html><head>
		<meta property="article:published_time" content="2022-09-09T12:00:00Z">
	</head><body></body></html>`

	assertDate(t, ExtractPublishDate(html), 2022, time.September, 9)
}

func TestExtractPublishDate_MalformedLDJSONIsSkipped(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">{not json</script>
	</head><body><time datetime="2024-02-02T00:00:00Z">Feb 2</time></body></html>`

	assertDate(t, ExtractPublishDate(html), 2024, time.February, 2)
}

func TestExtractPublishDate_NoneFound(t *testing.T) {
	html := `<html><body><p>No dates here.</p></body></html>`

	if got := ExtractPublishDate(html); got != nil {
		t.Errorf("Expected nil, got %s", got)
	}
}
