package database

import "time"

// NewRecommendation carries the parser's output into the persistence layer.
// Identity and curation flags are assigned on insert.
type NewRecommendation struct {
	Title           string
	URL             string
	Description     string
	Category        string
	SectionName     string
	IsPrimaryLink   bool
	IsCrowdsourced  bool
	ContributorName string
}

// SearchOptions filters public recommendation listings. Hidden and dead
// records are always excluded from search results.
type SearchOptions struct {
	Query    string
	Category string
	Tag      string
	IssueID  int64
	Limit    int
	Offset   int
}

// CurationUpdate is a partial update applied by admin actions. Nil fields
// are left untouched.
type CurationUpdate struct {
	Title    *string
	Category *string
	Hidden   *bool
	Dead     *bool
}

type IssueRepository interface {
	UpsertStub(title, url string, publishedAt *time.Time) (int64, bool, error)
	GetIssue(id int64) (*Issue, error)
	GetIssueByURL(url string) (*Issue, error)
	ListIssues(limit, offset int) ([]Issue, error)
	GetUnscrapedIssues(limit int) ([]Issue, error)
	GetIssuesMissingDate(limit int) ([]Issue, error)
	MarkScraped(id int64, publishedAt *time.Time) error
	UpdateIssueDate(id int64, publishedAt time.Time) error
	UpdateIssueTitle(id int64, title string) error
	GetIssueCount() (int, error)
	GetScrapedIssueCount() (int, error)
}

type RecommendationRepository interface {
	GetURLsForIssue(issueID int64) (map[string]bool, error)
	InsertRecommendation(issueID int64, rec NewRecommendation) (int64, error)
	GetRecommendation(id int64) (*Recommendation, error)
	ListByIssue(issueID int64, includeHidden bool) ([]Recommendation, error)
	Search(opts SearchOptions) ([]Recommendation, error)
	UpdateCuration(id int64, update CurationUpdate) error
	GetWeakTitleRecommendations(limit int) ([]Recommendation, error)
	UpdateTitleAndDescription(id int64, title, description string) error
	GetRecommendationCount() (int, error)
	GetCategoryCounts() (map[string]int, error)
}

type TagRepository interface {
	EnsureTag(name string) (int64, error)
	TagRecommendation(recommendationID, tagID int64) error
	UntagRecommendation(recommendationID int64, name string) error
	ListTags() ([]Tag, error)
	ListTagsForRecommendation(recommendationID int64) ([]Tag, error)
}
