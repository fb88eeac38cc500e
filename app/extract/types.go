package extract

import "time"

// Recommendation is one extracted item from a newsletter issue. The
// persistence layer assigns identity and curation flags; everything here
// comes straight from the page content.
type Recommendation struct {
	Title           string
	URL             string
	Description     string
	Category        Category
	SectionName     string
	IsPrimaryLink   bool
	IsCrowdsourced  bool
	ContributorName string
}

// IssueStub is a newsletter issue discovered on an archive index page or in
// the newsletter feed, before its content has been parsed.
type IssueStub struct {
	Title       string
	URL         string
	PublishedAt *time.Time
}
