package extract

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// The newsletter marks its canonical recommendation with a capitalized
// phrase followed by a literal "(link)". The phrase is a run of capitalized
// words, allowing a few lowercase connectives inside.
var linkMarkerPattern = regexp.MustCompile(`((?:[A-Z0-9][\w'\x{2019}&.+:-]*)(?:\s+(?:[A-Z0-9][\w'\x{2019}&.+:-]*|of|the|and|for|a|an|to|in|vs\.?))*)\s*(?i:\(link\))`)

var slugCaser = cases.Title(language.English)

// ExtractBetterTitle resolves the best title for a candidate link. The
// "(link)" convention is the newsletter's own authoring signal and ranks
// ahead of every generic heuristic. Returns "" when nothing usable remains.
func ExtractBetterTitle(anchorText, context, rawURL string) string {
	anchor := strings.TrimSpace(anchorText)

	if len(anchor) >= 5 && !IsJunkTitle(anchor) {
		return anchor
	}

	if m := linkMarkerPattern.FindStringSubmatch(context); m != nil {
		phrase := strings.TrimSpace(m[1])
		if !IsJunkTitle(phrase) {
			return phrase
		}
	}

	if anchor != "" && len(anchor) < 20 && !IsJunkTitle(anchor) {
		if expanded := expandInContext(anchor, context); expanded != "" && !IsJunkTitle(expanded) {
			return expanded
		}
	}

	if slug := titleFromSlug(rawURL); slug != "" {
		return slug
	}

	return anchor
}

// expandInContext grows a short anchor text outward to the surrounding word
// boundaries, bounded to keep the result a phrase rather than a paragraph.
func expandInContext(anchor, context string) string {
	const maxExpanded = 100

	idx := strings.Index(context, anchor)
	if idx < 0 {
		return ""
	}

	isBoundary := func(r byte) bool {
		switch r {
		case '.', '!', '?', ';', ':', ',', '\n', '(', ')', '"':
			return true
		}
		return false
	}

	start := idx
	for start > 0 && !isBoundary(context[start-1]) && idx-start < (maxExpanded-len(anchor))/2 {
		start--
	}
	end := idx + len(anchor)
	for end < len(context) && !isBoundary(context[end]) && end-(idx+len(anchor)) < (maxExpanded-len(anchor))/2 {
		end++
	}

	expanded := strings.TrimSpace(context[start:end])
	if len(expanded) <= len(anchor) || len(expanded) > maxExpanded {
		return ""
	}
	return expanded
}

// titleFromSlug derives a title from the final path segment of a URL:
// hyphens to spaces, words title-cased. Only kept when the result is a
// plausible title on its own.
func titleFromSlug(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) == 0 {
		return ""
	}
	slug := segments[len(segments)-1]
	if slug == "" {
		return ""
	}

	if dot := strings.LastIndex(slug, "."); dot > 0 {
		slug = slug[:dot]
	}

	title := slugCaser.String(strings.Join(strings.Split(slug, "-"), " "))
	title = strings.TrimSpace(title)
	if len(title) <= 5 || IsJunkTitle(title) {
		return ""
	}
	return title
}
