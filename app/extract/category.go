package extract

import (
	"net/url"
	"regexp"
	"strings"
)

// Category is the fixed set of labels a recommendation can carry.
type Category string

const (
	CategoryArticles  Category = "articles"
	CategoryApps      Category = "apps"
	CategoryShows     Category = "shows"
	CategoryMovies    Category = "movies"
	CategoryVideos    Category = "videos"
	CategoryMusic     Category = "music"
	CategoryPodcasts  Category = "podcasts"
	CategoryGames     Category = "games"
	CategoryBooks     Category = "books"
	CategoryGadgets   Category = "gadgets"
	CategoryFoodDrink Category = "food-drink"
)

// Categories lists every valid category value.
var Categories = []Category{
	CategoryArticles, CategoryApps, CategoryShows, CategoryMovies,
	CategoryVideos, CategoryMusic, CategoryPodcasts, CategoryGames,
	CategoryBooks, CategoryGadgets, CategoryFoodDrink,
}

// ValidCategory reports whether s names a known category.
func ValidCategory(s string) bool {
	for _, c := range Categories {
		if string(c) == s {
			return true
		}
	}
	return false
}

// domainRule maps a hostname (and optionally a path condition) to a category.
// Rules are evaluated in declaration order and the first match wins. The
// order is load-bearing: spotify podcast paths must be tested before the
// generic spotify music rule, and amazon book pages before the retail rule.
type domainRule struct {
	category Category
	match    func(host, path string) bool
}

func hostHasAny(host string, domains ...string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

var domainRules = []domainRule{
	{CategoryApps, func(host, path string) bool {
		return hostHasAny(host, "apps.apple.com", "itunes.apple.com", "testflight.apple.com", "apps.microsoft.com") ||
			(hostHasAny(host, "play.google.com") && strings.Contains(path, "/store/apps"))
	}},
	{CategoryPodcasts, func(host, path string) bool {
		return hostHasAny(host, "podcasts.apple.com", "pocketcasts.com", "pca.st", "overcast.fm") ||
			(hostHasAny(host, "open.spotify.com") && (strings.HasPrefix(path, "/show/") || strings.HasPrefix(path, "/episode/")))
	}},
	{CategoryMusic, func(host, path string) bool {
		return hostHasAny(host, "music.apple.com", "bandcamp.com", "soundcloud.com") ||
			(hostHasAny(host, "open.spotify.com") && (strings.HasPrefix(path, "/track/") || strings.HasPrefix(path, "/album/") || strings.HasPrefix(path, "/artist/")))
	}},
	{CategoryShows, func(host, path string) bool {
		return hostHasAny(host, "netflix.com", "hulu.com", "max.com", "hbomax.com", "disneyplus.com",
			"peacocktv.com", "paramountplus.com", "tv.apple.com", "crunchyroll.com") ||
			(hostHasAny(host, "themoviedb.org") && strings.HasPrefix(path, "/tv/"))
	}},
	{CategoryMovies, func(host, path string) bool {
		return hostHasAny(host, "letterboxd.com") ||
			(hostHasAny(host, "imdb.com") && strings.HasPrefix(path, "/title/")) ||
			(hostHasAny(host, "themoviedb.org") && strings.HasPrefix(path, "/movie/"))
	}},
	{CategoryVideos, func(host, path string) bool {
		return hostHasAny(host, "youtube.com", "youtu.be", "vimeo.com", "twitch.tv", "tiktok.com")
	}},
	{CategoryGames, func(host, path string) bool {
		return hostHasAny(host, "store.steampowered.com", "steampowered.com", "epicgames.com", "gog.com",
			"itch.io", "nintendo.com", "playstation.com", "xbox.com")
	}},
	{CategoryBooks, func(host, path string) bool {
		return hostHasAny(host, "goodreads.com", "books.apple.com", "bookshop.org", "audible.com",
			"kobo.com", "librarything.com") ||
			(hostHasAny(host, "amazon.com") && (strings.Contains(path, "/books/") || strings.Contains(path, "ebook")))
	}},
	{CategoryGadgets, func(host, path string) bool {
		return hostHasAny(host, "bestbuy.com", "store.google.com", "newegg.com", "bhphotovideo.com") ||
			(hostHasAny(host, "amazon.com", "walmart.com", "target.com") && (strings.Contains(path, "/dp/") || strings.Contains(path, "/ip/") || strings.Contains(path, "/p/")))
	}},
	{CategoryFoodDrink, func(host, path string) bool {
		return hostHasAny(host, "bonappetit.com", "seriouseats.com", "epicurious.com", "food52.com",
			"punchdrink.com", "eater.com", "thetakeout.com")
	}},
}

// textRule is a deliberately narrow fallback applied only when no domain rule
// matched. Patterns require multi-word, unambiguous phrasing: an article
// *about* a topic must not be classified as an item *in* that topic. There
// is intentionally no text rule for podcasts or articles.
type textRule struct {
	category Category
	pattern  *regexp.Regexp
}

var textRules = []textRule{
	{CategoryShows, regexp.MustCompile(`(?i)\b(tv series|season \d+,? episode \d+|watch the series|miniseries premiere)\b`)},
	{CategoryGames, regexp.MustCompile(`(?i)\b(video game|nintendo switch|playstation \d|xbox series [xs]|now on steam)\b`)},
	{CategoryMovies, regexp.MustCompile(`(?i)\b(in theaters (now|this weekend)|feature film debut)\b`)},
	{CategoryBooks, regexp.MustCompile(`(?i)\b(novel by [A-Z]|memoir by [A-Z]|paperback edition)\b`)},
}

// GuessCategory assigns a category to a recommendation. Domain rules carry
// high confidence and are checked first; text patterns are a conservative
// fallback; "articles" is the uncertainty default. Total: always returns a
// valid category.
func GuessCategory(title, description, rawURL string) Category {
	if host, path, ok := splitURL(rawURL); ok {
		for _, rule := range domainRules {
			if rule.match(host, path) {
				return rule.category
			}
		}
	}

	haystack := title + " " + description + " " + rawURL
	for _, rule := range textRules {
		if rule.pattern.MatchString(haystack) {
			return rule.category
		}
	}

	return CategoryArticles
}

func splitURL(rawURL string) (host, path string, ok bool) {
	if rawURL == "" {
		return "", "", false
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", "", false
	}
	host = strings.ToLower(strings.TrimPrefix(u.Host, "www."))
	return host, u.Path, true
}
