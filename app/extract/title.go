package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Trailing site names stripped from page titles. Matched case-insensitively
// against " - Site" and " | Site" endings.
var knownSiteSuffixes = []string{
	"YouTube",
	"Netflix",
	"Amazon.com",
	"Amazon",
	"Wikipedia",
	"IMDb",
	"Steam",
	"Spotify",
	"App Store",
	"Google Play",
	"The Verge",
	"The New York Times",
	"Apple TV+",
	"Apple Podcasts",
	"Max",
	"Hulu",
	"Goodreads",
	"Bandcamp",
	"Twitch",
}

// Generic trailing " - Some Site" of a capitalized word or two, 3-20 chars,
// for sites not on the list above.
var genericSuffixPattern = regexp.MustCompile(`\s+[-|\x{2013}\x{2014}]\s+[A-Z][A-Za-z0-9.'&+]*(?:\s+[A-Z][A-Za-z0-9.'&+]*){0,2}$`)

// ExtractPageTitle returns the best human-readable title for a fetched page,
// or "" when none of the candidates qualifies. Callers treat "" as "could not
// determine" and keep whatever title they already have.
func ExtractPageTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	candidates := []string{
		doc.Find(`meta[property="og:title"]`).First().AttrOr("content", ""),
		doc.Find(`meta[name="twitter:title"]`).First().AttrOr("content", ""),
		doc.Find("title").First().Text(),
	}

	for _, candidate := range candidates {
		title := CleanSiteSuffix(DecodeAndStrip(candidate))
		if len(title) > 2 {
			return title
		}
	}

	return ""
}

// CleanSiteSuffix strips a trailing " - SiteName" / " | SiteName" from a
// title. Known platforms are matched explicitly; anything else falls to a
// conservative generic pattern.
func CleanSiteSuffix(title string) string {
	for _, site := range knownSiteSuffixes {
		for _, sep := range []string{" - ", " | ", " – ", " — "} {
			suffix := sep + site
			if len(title) > len(suffix) && strings.EqualFold(title[len(title)-len(suffix):], suffix) {
				return strings.TrimSpace(title[:len(title)-len(suffix)])
			}
		}
	}

	if loc := genericSuffixPattern.FindStringIndex(title); loc != nil {
		suffixLen := loc[1] - loc[0]
		// Length includes the separator and its padding.
		if suffixLen >= 6 && suffixLen <= 23 && loc[0] > 0 {
			return strings.TrimSpace(title[:loc[0]])
		}
	}

	return title
}
