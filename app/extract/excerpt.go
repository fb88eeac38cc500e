package extract

import (
	"strings"

	readability "github.com/go-shiori/go-readability"
)

const maxExcerptLength = 500

// ExtractExcerpt pulls a short readable snippet from a fetched page, for
// recommendations that were stored without any surrounding context. Returns
// "" when the page yields nothing usable.
func ExtractExcerpt(html string) string {
	article, err := readability.FromReader(strings.NewReader(html), nil)
	if err != nil {
		return ""
	}

	excerpt := strings.TrimSpace(article.Excerpt)
	if excerpt == "" {
		excerpt = strings.TrimSpace(article.TextContent)
	}
	excerpt = DecodeAndStrip(excerpt)

	return truncate(excerpt, maxExcerptLength)
}
