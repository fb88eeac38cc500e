package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rhymeswithjazz/installer-archive/app/database"
	"github.com/rhymeswithjazz/installer-archive/app/source"
)

// mockFetcher serves canned pages keyed by URL.
type mockFetcher struct {
	pages    map[string]string
	err      error
	requests []string
}

func (m *mockFetcher) Get(ctx context.Context, url string) (string, error) {
	m.requests = append(m.requests, url)
	if m.err != nil {
		return "", m.err
	}
	page, ok := m.pages[url]
	if !ok {
		return "", errors.New("no canned page for " + url)
	}
	return page, nil
}

// mockIssueRepo implements IssueRepository in memory.
type mockIssueRepo struct {
	issues       []database.Issue
	nextID       int64
	scraped      []int64
	titleUpdates map[int64]string
	upsertErr    error
}

func newMockIssueRepo() *mockIssueRepo {
	return &mockIssueRepo{nextID: 1, titleUpdates: make(map[int64]string)}
}

func (m *mockIssueRepo) UpsertStub(title, url string, publishedAt *time.Time) (int64, bool, error) {
	if m.upsertErr != nil {
		return 0, false, m.upsertErr
	}
	for _, issue := range m.issues {
		if issue.URL == url {
			return issue.ID, false, nil
		}
	}
	issue := database.Issue{ID: m.nextID, Title: title, URL: url, PublishedAt: publishedAt}
	m.nextID++
	m.issues = append(m.issues, issue)
	return issue.ID, true, nil
}

func (m *mockIssueRepo) GetIssue(id int64) (*database.Issue, error) {
	for i := range m.issues {
		if m.issues[i].ID == id {
			return &m.issues[i], nil
		}
	}
	return nil, nil
}

func (m *mockIssueRepo) GetIssueByURL(url string) (*database.Issue, error) {
	for i := range m.issues {
		if m.issues[i].URL == url {
			return &m.issues[i], nil
		}
	}
	return nil, nil
}

func (m *mockIssueRepo) ListIssues(limit, offset int) ([]database.Issue, error) {
	return m.issues, nil
}

func (m *mockIssueRepo) GetUnscrapedIssues(limit int) ([]database.Issue, error) {
	var out []database.Issue
	for _, issue := range m.issues {
		if issue.ScrapedAt == nil {
			out = append(out, issue)
		}
	}
	return out, nil
}

func (m *mockIssueRepo) GetIssuesMissingDate(limit int) ([]database.Issue, error) {
	var out []database.Issue
	for _, issue := range m.issues {
		if issue.PublishedAt == nil {
			out = append(out, issue)
		}
	}
	return out, nil
}

func (m *mockIssueRepo) MarkScraped(id int64, publishedAt *time.Time) error {
	now := time.Now()
	for i := range m.issues {
		if m.issues[i].ID == id {
			m.issues[i].ScrapedAt = &now
			if m.issues[i].PublishedAt == nil {
				m.issues[i].PublishedAt = publishedAt
			}
		}
	}
	m.scraped = append(m.scraped, id)
	return nil
}

func (m *mockIssueRepo) UpdateIssueDate(id int64, publishedAt time.Time) error {
	for i := range m.issues {
		if m.issues[i].ID == id {
			m.issues[i].PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *mockIssueRepo) UpdateIssueTitle(id int64, title string) error {
	m.titleUpdates[id] = title
	return nil
}

func (m *mockIssueRepo) GetIssueCount() (int, error) {
	return len(m.issues), nil
}

func (m *mockIssueRepo) GetScrapedIssueCount() (int, error) {
	return len(m.scraped), nil
}

// mockRecRepo implements RecommendationRepository in memory. When
// insertFailAfter is set, inserts beyond that count fail.
type mockRecRepo struct {
	existing        map[int64]map[string]bool
	inserted        []database.NewRecommendation
	insertFailAfter int
}

func newMockRecRepo() *mockRecRepo {
	return &mockRecRepo{existing: make(map[int64]map[string]bool)}
}

func (m *mockRecRepo) GetURLsForIssue(issueID int64) (map[string]bool, error) {
	urls := make(map[string]bool)
	for url := range m.existing[issueID] {
		urls[url] = true
	}
	return urls, nil
}

func (m *mockRecRepo) InsertRecommendation(issueID int64, rec database.NewRecommendation) (int64, error) {
	if m.insertFailAfter > 0 && len(m.inserted) >= m.insertFailAfter {
		return 0, errors.New("disk I/O error")
	}
	if m.existing[issueID] == nil {
		m.existing[issueID] = make(map[string]bool)
	}
	m.existing[issueID][rec.URL] = true
	m.inserted = append(m.inserted, rec)
	return int64(len(m.inserted)), nil
}

func (m *mockRecRepo) GetRecommendation(id int64) (*database.Recommendation, error) {
	return nil, nil
}

func (m *mockRecRepo) ListByIssue(issueID int64, includeHidden bool) ([]database.Recommendation, error) {
	return nil, nil
}

func (m *mockRecRepo) Search(opts database.SearchOptions) ([]database.Recommendation, error) {
	return nil, nil
}

func (m *mockRecRepo) UpdateCuration(id int64, update database.CurationUpdate) error {
	return nil
}

func (m *mockRecRepo) GetWeakTitleRecommendations(limit int) ([]database.Recommendation, error) {
	return nil, nil
}

func (m *mockRecRepo) UpdateTitleAndDescription(id int64, title, description string) error {
	return nil
}

func (m *mockRecRepo) GetRecommendationCount() (int, error) {
	return len(m.inserted), nil
}

func (m *mockRecRepo) GetCategoryCounts() (map[string]int, error) {
	return nil, nil
}

var _ database.IssueRepository = (*mockIssueRepo)(nil)
var _ database.RecommendationRepository = (*mockRecRepo)(nil)

const testIssueURL = "https://www.theverge.com/installer-newsletter/600001/the-best-apps-this-week"

const testIssuePage = `<html><body>
<script type="application/json">
{"components":[
  {"__typename":"EntryBodyHeading","contents":{"html":"Apps"}},
  {"__typename":"EntryBodyParagraph","contents":{"html":"<a href=\"https://example.com/widget\">Widget Pro</a> (link) is great."}},
  {"__typename":"EntryBodyParagraph","contents":{"html":"<a href=\"https://example.com/gizmo\">Gizmo Tracker</a> also worth a look."}}
]}
</script>
</body></html>`

func TestScrapeArchiveTask(t *testing.T) {
	profile := source.Default()
	fetcher := &mockFetcher{pages: map[string]string{
		profile.ArchiveURL: `<html><body>
			<a href="https://www.theverge.com/installer-newsletter/600001/the-best-apps-this-week">Installer: the best apps this week</a>
			<a href="https://www.theverge.com/installer-newsletter/600002/a-fine-week-for-gadgets">Installer: a fine week for gadgets</a>
		</body></html>`,
	}}
	issueRepo := newMockIssueRepo()
	issueRepo.UpsertStub("Installer: the best apps this week", testIssueURL, nil)

	task := NewScrapeArchiveTask(profile, fetcher, issueRepo)
	task.Start()
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	result := task.GetResult()
	if result.Found != 2 {
		t.Errorf("Expected 2 found, got %d", result.Found)
	}
	if result.Processed != 2 {
		t.Errorf("Expected 2 processed, got %d", result.Processed)
	}
	// One stub pre-existed, so only one is newly added.
	if result.Added != 1 {
		t.Errorf("Expected 1 added, got %d", result.Added)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Expected no errors, got %v", result.Errors)
	}
}

func TestScrapeArchiveTask_FetchError(t *testing.T) {
	profile := source.Default()
	fetcher := &mockFetcher{err: errors.New("connection refused")}

	task := NewScrapeArchiveTask(profile, fetcher, newMockIssueRepo())
	if err := task.Execute(context.Background()); err == nil {
		t.Error("Expected error when the archive page cannot be fetched")
	}
}

func TestScrapeIssuesTask(t *testing.T) {
	profile := source.Default()
	fetcher := &mockFetcher{pages: map[string]string{testIssueURL: testIssuePage}}

	issueRepo := newMockIssueRepo()
	issueRepo.UpsertStub("Installer: the best apps this week", testIssueURL, nil)

	recRepo := newMockRecRepo()

	task := NewScrapeIssuesTask(profile, fetcher, issueRepo, recRepo, 100)
	task.Start()
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	result := task.GetResult()
	if result.Found != 1 || result.Processed != 1 {
		t.Errorf("Expected 1 found and processed, got %d/%d", result.Found, result.Processed)
	}
	if result.Added != 2 {
		t.Errorf("Expected 2 recommendations added, got %d", result.Added)
	}
	if len(issueRepo.scraped) != 1 {
		t.Errorf("Expected issue marked scraped, got %v", issueRepo.scraped)
	}
}

func TestScrapeIssuesTask_RerunAddsNothing(t *testing.T) {
	profile := source.Default()
	fetcher := &mockFetcher{pages: map[string]string{testIssueURL: testIssuePage}}

	issueRepo := newMockIssueRepo()
	id, _, _ := issueRepo.UpsertStub("Installer: the best apps this week", testIssueURL, nil)

	recRepo := newMockRecRepo()
	recRepo.existing[id] = map[string]bool{
		"https://example.com/widget": true,
		"https://example.com/gizmo":  true,
	}

	task := NewScrapeIssuesTask(profile, fetcher, issueRepo, recRepo, 100)
	task.Start()
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got := task.GetResult().Added; got != 0 {
		t.Errorf("Expected re-parse to add nothing, got %d", got)
	}
}

func TestScrapeIssuesTask_PartialInsertStillCounted(t *testing.T) {
	profile := source.Default()
	fetcher := &mockFetcher{pages: map[string]string{testIssueURL: testIssuePage}}

	issueRepo := newMockIssueRepo()
	issueRepo.UpsertStub("Installer: the best apps this week", testIssueURL, nil)

	recRepo := newMockRecRepo()
	recRepo.insertFailAfter = 1

	task := NewScrapeIssuesTask(profile, fetcher, issueRepo, recRepo, 100)
	task.Start()
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	result := task.GetResult()
	if len(result.Errors) != 1 {
		t.Fatalf("Expected 1 soft error, got %v", result.Errors)
	}
	// The first insert landed before the failure and must be counted.
	if result.Added != 1 {
		t.Errorf("Expected 1 added despite the mid-issue failure, got %d", result.Added)
	}
	if result.Processed != 0 {
		t.Errorf("Failed issue must not count as processed, got %d", result.Processed)
	}
}

func TestScrapeIssuesTask_SoftFetchError(t *testing.T) {
	profile := source.Default()
	fetcher := &mockFetcher{err: errors.New("timeout")}

	issueRepo := newMockIssueRepo()
	issueRepo.UpsertStub("Installer: the best apps this week", testIssueURL, nil)

	task := NewScrapeIssuesTask(profile, fetcher, issueRepo, newMockRecRepo(), 100)
	task.Start()
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Per-issue failures should not fail the batch: %v", err)
	}

	result := task.GetResult()
	if len(result.Errors) != 1 {
		t.Errorf("Expected 1 soft error, got %v", result.Errors)
	}
	if result.Processed != 0 {
		t.Errorf("Expected 0 processed, got %d", result.Processed)
	}
	if len(issueRepo.scraped) != 0 {
		t.Error("Failed issue must not be marked scraped")
	}
}

func TestScrapeIssueTask_InvalidURL(t *testing.T) {
	profile := source.Default()

	task := NewScrapeIssueTask("https://example.com/not-an-issue", profile, &mockFetcher{},
		newMockIssueRepo(), newMockRecRepo())
	if err := task.Execute(context.Background()); err == nil {
		t.Error("Expected error for a URL that does not match the issue shape")
	}
}

func TestScrapeIssueTask_CreatesStubAndRepairsTitle(t *testing.T) {
	page := `<html><head><meta property="og:title" content="Installer: a very good week"></head><body>
<script type="application/json">
{"components":[
  {"__typename":"EntryBodyParagraph","contents":{"html":"<a href=\"https://example.com/widget\">Widget Pro</a> is great."}}
]}
</script>
</body></html>`

	profile := source.Default()
	fetcher := &mockFetcher{pages: map[string]string{testIssueURL: page}}
	issueRepo := newMockIssueRepo()
	recRepo := newMockRecRepo()

	task := NewScrapeIssueTask(testIssueURL, profile, fetcher, issueRepo, recRepo)
	task.Start()
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	result := task.GetResult()
	if result.Added != 1 {
		t.Errorf("Expected 1 recommendation added, got %d", result.Added)
	}

	issue, _ := issueRepo.GetIssueByURL(testIssueURL)
	if issue == nil {
		t.Fatal("Expected issue stub to be created")
	}
	if got := issueRepo.titleUpdates[issue.ID]; got != "Installer: a very good week" {
		t.Errorf("Expected page title to replace the URL stand-in, got %q", got)
	}
}
