package extract

import (
	"strings"

	"github.com/rhymeswithjazz/installer-archive/app/source"
)

const minArchiveTitleLength = 15

// Archive listings repeat UI chrome around every entry; these phrases mark
// an anchor as chrome rather than an issue title.
var archiveChromePhrases = []string{"comment", "see all"}

// ParseArchiveIndex harvests issue stubs from an archive listing page:
// anchors whose href matches the source's canonical issue URL shape, with a
// plausible title, deduplicated within the page. Dates are derived
// opportunistically from dated URLs.
func ParseArchiveIndex(html string, src *source.Profile) []IssueStub {
	seen := make(map[string]bool)
	var stubs []IssueStub

	for _, m := range anchorPattern.FindAllStringSubmatch(html, -1) {
		href := strings.TrimSpace(src.ResolveHref(m[1]))
		if seen[href] || !src.IsIssueURL(href) {
			continue
		}

		title := DecodeAndStrip(m[2])
		if len(title) < minArchiveTitleLength || containsChrome(title) {
			continue
		}

		stubs = append(stubs, IssueStub{
			Title:       title,
			URL:         href,
			PublishedAt: src.IssueDateFromURL(href),
		})
		seen[href] = true
	}

	return stubs
}

func containsChrome(title string) bool {
	lower := strings.ToLower(title)
	for _, phrase := range archiveChromePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
