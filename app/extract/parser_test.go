package extract

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rhymeswithjazz/installer-archive/app/source"
)

const issuePayloadPage = `<html><head></head><body>
<script id="__NEXT_DATA__" type="application/json">
{"props":{"pageProps":{"hydration":{"responses":[
  {"data":{"entryRevision":{"body":{"components":[
    {"__typename":"EntryBodyHeading","contents":{"html":"To install"}},
    {"__typename":"EntryBodyParagraph","contents":{"html":"<a href=\"https://example.com/widget\">Widget Pro</a> (link) is my favorite new launcher this week."}},
    {"__typename":"EntryBodyHeading","contents":{"html":"Crowdsourced"}},
    {"__typename":"EntryBodyParagraph","contents":{"html":"“<a href=\"https://example.com/gizmo\">Gizmo Tracker</a> changed how I read everything.” &mdash; Sam"}},
    {"__typename":"EntryBodyList","items":[
      {"contents":{"html":"<a href=\"https://store.steampowered.com/app/12345/Dungeon_Crawl\">Dungeon Crawl Deluxe</a>"}}
    ]},
    {"__typename":"EntryBodyParagraph","contents":{"html":"Read our <a href=\"/about\">about page</a> and <a href=\"https://example.com/widget\">Widget Pro</a> once more."}}
  ]}}}}
]}}}}
</script>
</body></html>`

func TestParseNewsletterContent_StructuredPayload(t *testing.T) {
	recs := ParseNewsletterContent(issuePayloadPage, source.Default())

	if len(recs) != 3 {
		t.Fatalf("Expected 3 recommendations, got %d", len(recs))
	}

	first := recs[0]
	if first.Title != "Widget Pro" {
		t.Errorf("Expected title 'Widget Pro', got %q", first.Title)
	}
	if first.URL != "https://example.com/widget" {
		t.Errorf("Expected widget URL, got %q", first.URL)
	}
	if first.SectionName != "to_install" {
		t.Errorf("Expected section 'to_install', got %q", first.SectionName)
	}
	if !first.IsPrimaryLink {
		t.Error("Expected first recommendation to be marked primary via (link)")
	}
	if first.IsCrowdsourced {
		t.Error("First recommendation should not be crowdsourced")
	}

	second := recs[1]
	if second.Title != "Gizmo Tracker" {
		t.Errorf("Expected title 'Gizmo Tracker', got %q", second.Title)
	}
	if second.SectionName != "crowdsourced" {
		t.Errorf("Expected section 'crowdsourced', got %q", second.SectionName)
	}
	if !second.IsCrowdsourced {
		t.Error("Expected second recommendation to be crowdsourced")
	}
	if second.ContributorName != "Sam" {
		t.Errorf("Expected contributor 'Sam', got %q", second.ContributorName)
	}

	third := recs[2]
	if third.Title != "Dungeon Crawl Deluxe" {
		t.Errorf("Expected title 'Dungeon Crawl Deluxe', got %q", third.Title)
	}
	if third.Category != CategoryGames {
		t.Errorf("Expected games category, got %s", third.Category)
	}
	if third.ContributorName != "" {
		t.Errorf("List items carry no attribution, got %q", third.ContributorName)
	}
}

func TestParseNewsletterContent_DeduplicatesWithinIssue(t *testing.T) {
	recs := ParseNewsletterContent(issuePayloadPage, source.Default())

	seen := make(map[string]bool)
	for _, rec := range recs {
		if seen[rec.URL] {
			t.Errorf("URL %s appears more than once", rec.URL)
		}
		seen[rec.URL] = true
	}
}

func TestParseNewsletterContent_SkipsBoilerplateLinks(t *testing.T) {
	recs := ParseNewsletterContent(issuePayloadPage, source.Default())

	for _, rec := range recs {
		if strings.Contains(rec.URL, "/about") {
			t.Errorf("Boilerplate URL should have been skipped: %s", rec.URL)
		}
	}
}

func TestParseNewsletterContent_ArticleFallback(t *testing.T) {
	html := `<html><body><article>
		<p><a href="https://example.com/neat-little-tool">Neat Little Tool</a> is worth your time.</p>
		<p><a href="https://example.com/privacy">Privacy</a></p>
	</article></body></html>`

	recs := ParseNewsletterContent(html, source.Default())

	if len(recs) != 1 {
		t.Fatalf("Expected 1 recommendation from fallback, got %d", len(recs))
	}
	if recs[0].Title != "Neat Little Tool" {
		t.Errorf("Expected 'Neat Little Tool', got %q", recs[0].Title)
	}
	if recs[0].SectionName != "" {
		t.Errorf("Fallback recommendations carry no section, got %q", recs[0].SectionName)
	}
}

func TestParseNewsletterContent_EmptyDocument(t *testing.T) {
	recs := ParseNewsletterContent("<html><body><p>nothing here</p></body></html>", source.Default())

	if len(recs) != 0 {
		t.Errorf("Expected no recommendations, got %d", len(recs))
	}
}

func TestParseNewsletterContent_JunkAnchorRescuedByMarker(t *testing.T) {
	html := `<html><body>
<script type="application/json">
{"components":[
  {"__typename":"EntryBodyParagraph","contents":{"html":"Tape Deck Weekly (link) is lovely, get it <a href=\"https://example.com/tape-deck\">here</a>."}}
]}
</script>
</body></html>`

	recs := ParseNewsletterContent(html, source.Default())

	if len(recs) != 1 {
		t.Fatalf("Expected 1 recommendation, got %d", len(recs))
	}
	if recs[0].Title != "Tape Deck Weekly" {
		t.Errorf("Expected title from (link) marker, got %q", recs[0].Title)
	}
	if !recs[0].IsPrimaryLink {
		t.Error("Expected (link) context to mark the recommendation primary")
	}
}

func TestParseNewsletterContent_DescriptionTruncated(t *testing.T) {
	long := strings.Repeat("word ", 200)
	html := `<html><body>
<script type="application/json">
{"components":[
  {"__typename":"EntryBodyParagraph","contents":{"html":"<a href=\"https://example.com/long-one\">Long One App</a> ` + long + `"}}
]}
</script>
</body></html>`

	recs := ParseNewsletterContent(html, source.Default())

	if len(recs) != 1 {
		t.Fatalf("Expected 1 recommendation, got %d", len(recs))
	}
	if len(recs[0].Description) > 500 {
		t.Errorf("Expected description capped at 500 characters, got %d", len(recs[0].Description))
	}
}

func TestParseNewsletterContent_TruncatedDescriptionStaysValidUTF8(t *testing.T) {
	// Em-dash filler positioned so the byte cap lands inside a dash.
	filler := strings.Repeat("&mdash; ", 300)
	html := `<html><body>
<script type="application/json">
{"components":[
  {"__typename":"EntryBodyParagraph","contents":{"html":"<a href=\"https://example.com/long-one\">Widget Pro</a> ` + filler + `"}}
]}
</script>
</body></html>`

	recs := ParseNewsletterContent(html, source.Default())

	if len(recs) != 1 {
		t.Fatalf("Expected 1 recommendation, got %d", len(recs))
	}
	description := recs[0].Description
	if len(description) > 500 {
		t.Errorf("Expected description capped at 500 bytes, got %d", len(description))
	}
	if !utf8.ValidString(description) {
		t.Errorf("Expected valid UTF-8 description, got trailing bytes %q", description[len(description)-4:])
	}
}

func TestExtractContributor(t *testing.T) {
	cases := []struct {
		text     string
		expected string
	}{
		{"Great pick for sure. — Sam", "Sam"},
		{"Great pick for sure. — Sam.", "Sam"},
		{"No attribution at all.", ""},
		// Multi-word attributions are outside the single-word convention.
		{"Great pick. — Sam Smith", ""},
	}

	for _, c := range cases {
		got := extractContributor(c.text)
		if got != c.expected {
			t.Errorf("%q: expected %q, got %q", c.text, c.expected, got)
		}
	}
}
