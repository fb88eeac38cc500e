package extract

import (
	"regexp"
	"strings"
)

// URL substrings that mark navigation, boilerplate and sharing links rather
// than recommendations. Checked in order against the lowercased URL.
var skipURLPatterns = []string{
	"/about",
	"/contact",
	"/privacy",
	"/terms",
	"/legal",
	"/sitemap",
	"/authors/",
	"/cookie-policy",
	"/ethics-statement",
	"/community-guidelines",
	// Matches the archive index and issue pages alike: a link from one
	// issue to another is navigation, not a recommendation.
	"/installer-newsletter",
	"twitter.com/intent",
	"x.com/intent",
	"facebook.com/sharer",
	"facebook.com/share",
	"linkedin.com/sharearticle",
	"linkedin.com/sharing",
	"reddit.com/submit",
	"threads.net/intent",
	"bsky.app/intent",
	"mailto:",
	"/rss/index.xml",
	"/subscribe",
	"/newsletters",
	"/tip-us",
}

var staticAssetPattern = regexp.MustCompile(`\.(png|jpe?g|gif|svg|webp|ico|css|js|woff2?)(\?|$)`)

// ShouldSkipURL reports whether a candidate href is noise: navigation, legal
// boilerplate, share intents, anchors, mail links or static assets.
func ShouldSkipURL(rawURL string) bool {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return true
	}
	if strings.HasPrefix(trimmed, "#") {
		return true
	}

	lower := strings.ToLower(trimmed)
	for _, pattern := range skipURLPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}

	return staticAssetPattern.MatchString(lower)
}

// UI chrome phrases that disqualify anchor text as a title.
var junkTitlePhrases = []string{
	"see all",
	"comments",
	"comment",
	"share",
	"subscribe",
	"sign up",
	"sign in",
	"log in",
	"click here",
	"read more",
	"learn more",
	"here",
	"link",
	"this",
	"the",
	"a",
	"an",
	"via",
	"more",
}

var bareNumberPattern = regexp.MustCompile(`^\d+$`)

// IsJunkTitle reports whether a title is too weak to keep: empty, too short,
// too long, a bare number, or a known chrome phrase.
func IsJunkTitle(title string) bool {
	trimmed := strings.TrimSpace(title)
	if len(trimmed) < 3 {
		return true
	}
	if len(trimmed) > 200 {
		return true
	}
	if bareNumberPattern.MatchString(trimmed) {
		return true
	}

	lower := strings.ToLower(trimmed)
	for _, phrase := range junkTitlePhrases {
		if lower == phrase {
			return true
		}
	}

	return false
}
