package extract

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/tidwall/gjson"
)

// Field paths probed inside ld+json payloads, in priority order. Publishers
// nest these at varying depths, so each path is tried against every script
// block on the page.
var ldJSONDatePaths = []string{
	"datePublished",
	"dateCreated",
	"uploadDate",
	// The leading @ is escaped so gjson reads a key, not a modifier.
	"\\@graph.#.datePublished",
	"0.datePublished",
}

// ExtractPublishDate locates a publication date in a fetched page. Dates are
// often simply unavailable; nil is a normal outcome, not an error.
func ExtractPublishDate(html string) *time.Time {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var found *time.Time

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		payload := s.Text()
		if !gjson.Valid(payload) {
			return true
		}
		for _, path := range ldJSONDatePaths {
			result := gjson.Get(payload, path)
			if !result.Exists() {
				continue
			}
			// "#" paths yield an array of candidates.
			if result.IsArray() {
				for _, entry := range result.Array() {
					if t := parseDate(entry.String()); t != nil {
						found = t
						return false
					}
				}
				continue
			}
			if t := parseDate(result.String()); t != nil {
				found = t
				return false
			}
		}
		return true
	})
	if found != nil {
		return found
	}

	if datetime, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		if t := parseDate(datetime); t != nil {
			return t
		}
	}

	if content, ok := doc.Find(`meta[property="article:published_time"]`).First().Attr("content"); ok {
		if t := parseDate(content); t != nil {
			return t
		}
	}

	return nil
}

func parseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	t, err := dateparse.ParseAny(value)
	if err != nil {
		return nil
	}
	return &t
}
