package database

import (
	"time"
)

// Issue is one newsletter edition. The URL is the natural key; ScrapedAt is
// null until the content parser has run for it at least once.
type Issue struct {
	ID          int64
	Title       string
	URL         string
	PublishedAt *time.Time
	ScrapedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Recommendation is one archived item, always owned by exactly one issue.
// Hidden and Dead are admin-curation flags; both exclude the record from
// public listings.
type Recommendation struct {
	ID              int64
	IssueID         int64
	Title           string
	URL             string
	Description     string
	Category        string
	SectionName     string
	IsPrimaryLink   bool
	IsCrowdsourced  bool
	ContributorName string
	Hidden          bool
	Dead            bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Tag is a free-form label, globally unique by name.
type Tag struct {
	ID   int64
	Name string
}
