package extract

import "testing"

func TestGuessCategory_DomainRules(t *testing.T) {
	cases := []struct {
		url      string
		expected Category
	}{
		{"https://apps.apple.com/us/app/widget/id123", CategoryApps},
		{"https://play.google.com/store/apps/details?id=com.example", CategoryApps},
		{"https://podcasts.apple.com/us/podcast/search-engine/id123", CategoryPodcasts},
		{"https://overcast.fm/+abc123", CategoryPodcasts},
		{"https://music.apple.com/us/album/abc/123", CategoryMusic},
		{"https://artist.bandcamp.com/album/record", CategoryMusic},
		{"https://www.netflix.com/title/81234567", CategoryShows},
		{"https://tv.apple.com/us/show/severance", CategoryShows},
		{"https://letterboxd.com/film/dune-part-two/", CategoryMovies},
		{"https://www.imdb.com/title/tt1234567/", CategoryMovies},
		{"https://www.youtube.com/watch?v=abc123", CategoryVideos},
		{"https://youtu.be/abc123", CategoryVideos},
		{"https://store.steampowered.com/app/12345/Game/", CategoryGames},
		{"https://example-game.itch.io/cool-game", CategoryGames},
		{"https://www.goodreads.com/book/show/12345", CategoryBooks},
		{"https://bookshop.org/p/books/some-novel", CategoryBooks},
		{"https://www.bestbuy.com/site/gadget/12345.p", CategoryGadgets},
		{"https://www.amazon.com/dp/B0TEST1234", CategoryGadgets},
		{"https://www.seriouseats.com/best-pan-pizza-recipe", CategoryFoodDrink},
	}

	for _, c := range cases {
		got := GuessCategory("", "", c.url)
		if got != c.expected {
			t.Errorf("URL %s: expected %s, got %s", c.url, c.expected, got)
		}
	}
}

func TestGuessCategory_SpotifyPathPrecedence(t *testing.T) {
	// Podcast paths on spotify must win over the generic music rule.
	if got := GuessCategory("", "", "https://open.spotify.com/show/abc123"); got != CategoryPodcasts {
		t.Errorf("Expected podcasts for spotify show, got %s", got)
	}
	if got := GuessCategory("", "", "https://open.spotify.com/episode/abc123"); got != CategoryPodcasts {
		t.Errorf("Expected podcasts for spotify episode, got %s", got)
	}
	if got := GuessCategory("", "", "https://open.spotify.com/album/abc123"); got != CategoryMusic {
		t.Errorf("Expected music for spotify album, got %s", got)
	}
}

func TestGuessCategory_AmazonBookBeforeRetail(t *testing.T) {
	got := GuessCategory("", "", "https://www.amazon.com/books/dp/B0TEST1234")
	if got != CategoryBooks {
		t.Errorf("Expected books for amazon book page, got %s", got)
	}
}

func TestGuessCategory_TextFallback(t *testing.T) {
	cases := []struct {
		title       string
		description string
		expected    Category
	}{
		{"Dungeon Crawl", "a cozy video game for winter evenings", CategoryGames},
		{"Pachinko", "the tv series everyone is talking about", CategoryShows},
		{"Sinners", "in theaters now and worth the trip", CategoryMovies},
		{"Tomorrow x3", "a novel by Gabrielle Zevin", CategoryBooks},
	}

	for _, c := range cases {
		got := GuessCategory(c.title, c.description, "https://example.com/item")
		if got != c.expected {
			t.Errorf("%q: expected %s, got %s", c.description, c.expected, got)
		}
	}
}

func TestGuessCategory_NoTextRuleForPodcasts(t *testing.T) {
	// An article about podcasts is still an article.
	got := GuessCategory("The podcast boom", "why every podcast sounds the same now", "https://example.com/essay")
	if got != CategoryArticles {
		t.Errorf("Expected articles for an article about podcasts, got %s", got)
	}
}

func TestGuessCategory_DefaultsToArticles(t *testing.T) {
	got := GuessCategory("A long read", "an essay about attention", "https://example.com/essay")
	if got != CategoryArticles {
		t.Errorf("Expected articles, got %s", got)
	}
}

func TestGuessCategory_TotalOnGarbageInput(t *testing.T) {
	inputs := []string{"", "::::", "not a url at all", "//missing-scheme"}

	for _, url := range inputs {
		got := GuessCategory("", "", url)
		if !ValidCategory(string(got)) {
			t.Errorf("URL %q: expected a valid category, got %q", url, got)
		}
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range Categories {
		if !ValidCategory(string(c)) {
			t.Errorf("Expected %s to be valid", c)
		}
	}

	if ValidCategory("gardening") {
		t.Error("Expected unknown category to be invalid")
	}
	if ValidCategory("") {
		t.Error("Expected empty category to be invalid")
	}
}
