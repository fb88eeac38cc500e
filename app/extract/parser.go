package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/rhymeswithjazz/installer-archive/app/source"
)

const maxDescriptionLength = 500

// Candidate locations of the response list inside an embedded payload. The
// relevant content can sit at varying depth depending on how the page was
// rendered, so every response object is searched, not just the first.
var payloadResponsePaths = []string{
	"props.pageProps.hydration.responses",
	"props.pageProps.data.responses",
	"responses",
}

// Candidate locations of the block list inside a response object.
var payloadBlockPaths = []string{
	"data.entryRevision.body.components",
	"data.entity.body.components",
	"body.components",
	"components",
	"blocks",
}

var (
	anchorPattern      = regexp.MustCompile(`(?is)<a[^>]+href\s*=\s*["']([^"']*)["'][^>]*>(.*?)</a>`)
	contributorPattern = regexp.MustCompile(`\x{2014}\s*([A-Za-z][A-Za-z.'\x{2019}-]*)\.?\s*$`)
)

// block is one structural unit of a newsletter issue body.
type block struct {
	kind  string // "heading", "paragraph" or "list"
	html  string
	items []string
}

// parseState is the accumulator threaded through the block walk. Keeping it
// explicit makes the parser safe to run concurrently across documents.
type parseState struct {
	section string
	seen    map[string]bool
	recs    []Recommendation
}

// ParseNewsletterContent extracts every qualifying recommendation from one
// issue page, in document order. The structured payload is preferred; a raw
// <article> anchor sweep is the fallback. Zero results is a valid outcome.
func ParseNewsletterContent(html string, src *source.Profile) []Recommendation {
	state := &parseState{seen: make(map[string]bool)}

	for _, b := range findContentBlocks(html) {
		switch b.kind {
		case "heading":
			text := DecodeAndStrip(b.html)
			if text != "" {
				state.section = strings.ReplaceAll(strings.ToLower(text), " ", "_")
			}
		case "paragraph":
			context := DecodeAndStrip(b.html)
			contributor := extractContributor(context)
			for _, m := range anchorPattern.FindAllStringSubmatch(b.html, -1) {
				processCandidate(state, src, m[1], DecodeAndStrip(m[2]), context, contributor)
			}
		case "list":
			// List items carry no per-item attribution in this format.
			for _, item := range b.items {
				context := DecodeAndStrip(item)
				for _, m := range anchorPattern.FindAllStringSubmatch(item, -1) {
					processCandidate(state, src, m[1], DecodeAndStrip(m[2]), context, "")
				}
			}
		}
	}

	if len(state.recs) > 0 {
		return state.recs
	}

	return parseArticleFallback(html, src, state)
}

// parseArticleFallback sweeps every anchor inside the first <article> region
// when the structured payload is missing, malformed or empty.
func parseArticleFallback(html string, src *source.Profile, state *parseState) []Recommendation {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return state.recs
	}

	article := doc.Find("article").First()
	if article.Length() == 0 {
		return state.recs
	}

	state.section = ""
	article.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := s.AttrOr("href", "")
		anchorText := DecodeAndStrip(s.Text())
		context := DecodeAndStrip(s.Parent().Text())
		processCandidate(state, src, href, anchorText, context, "")
	})

	return state.recs
}

// processCandidate runs one anchor through the shared filter, title
// inference, classification and dedup steps, appending to the accumulator on
// success. A candidate failing any step is dropped; it never aborts the rest
// of the document.
func processCandidate(state *parseState, src *source.Profile, href, anchorText, context, contributor string) {
	href = strings.TrimSpace(src.ResolveHref(href))
	if state.seen[href] || ShouldSkipURL(href) {
		return
	}

	title := ExtractBetterTitle(anchorText, context, href)
	if title == "" || IsJunkTitle(title) {
		return
	}

	crowdsourced := contributor != "" || looksCrowdsourced(context)
	if crowdsourced && contributor == "" {
		contributor = extractContributor(context)
	}

	description := truncate(context, maxDescriptionLength)

	state.recs = append(state.recs, Recommendation{
		Title:           title,
		URL:             href,
		Description:     description,
		Category:        GuessCategory(title, context, href),
		SectionName:     state.section,
		IsPrimaryLink:   containsLinkMarker(context),
		IsCrowdsourced:  crowdsourced,
		ContributorName: contributor,
	})
	state.seen[href] = true
}

// extractContributor pulls a reader attribution from text ending in an
// em-dash followed by a single word. Multi-word names are a known limitation
// of this convention.
func extractContributor(text string) string {
	m := contributorPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return ""
	}
	return m[1]
}

func looksCrowdsourced(context string) bool {
	if contributorPattern.MatchString(strings.TrimSpace(context)) {
		return true
	}
	lower := strings.ToLower(context)
	return strings.Contains(lower, "community") || strings.Contains(lower, "installer reader")
}

func containsLinkMarker(context string) bool {
	return strings.Contains(strings.ToLower(context), "(link)")
}

// findContentBlocks locates the first non-empty block list across every
// embedded JSON payload on the page.
func findContentBlocks(html string) []block {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var payloads []string
	doc.Find(`script#__NEXT_DATA__, script[type="application/json"]`).Each(func(_ int, s *goquery.Selection) {
		payloads = append(payloads, s.Text())
	})

	for _, payload := range payloads {
		if !gjson.Valid(payload) {
			continue
		}
		root := gjson.Parse(payload)

		responses := []gjson.Result{root}
		for _, path := range payloadResponsePaths {
			if list := root.Get(path); list.IsArray() {
				responses = append(responses, list.Array()...)
			}
		}

		for _, response := range responses {
			for _, path := range payloadBlockPaths {
				list := response.Get(path)
				if !list.IsArray() {
					continue
				}
				if blocks := convertBlocks(list.Array()); len(blocks) > 0 {
					return blocks
				}
			}
		}
	}

	return nil
}

// convertBlocks maps raw payload components onto blocks. Both the
// "__typename" style (EntryBodyHeading etc.) and a plain "type" field are
// recognized; unknown component kinds are ignored.
func convertBlocks(components []gjson.Result) []block {
	var blocks []block

	for _, component := range components {
		kind := strings.ToLower(component.Get("__typename").String())
		if kind == "" {
			kind = strings.ToLower(component.Get("type").String())
		}

		switch {
		case strings.Contains(kind, "heading"):
			blocks = append(blocks, block{kind: "heading", html: componentHTML(component)})
		case strings.Contains(kind, "paragraph"):
			blocks = append(blocks, block{kind: "paragraph", html: componentHTML(component)})
		case strings.Contains(kind, "list"):
			var items []string
			for _, item := range component.Get("items").Array() {
				if h := componentHTML(item); h != "" {
					items = append(items, h)
				} else if item.Type == gjson.String {
					items = append(items, item.String())
				}
			}
			blocks = append(blocks, block{kind: "list", items: items})
		}
	}

	return blocks
}

func componentHTML(component gjson.Result) string {
	for _, path := range []string{"contents.html", "line.html", "html", "text"} {
		if v := component.Get(path); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
