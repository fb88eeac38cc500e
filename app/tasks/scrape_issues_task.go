package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rhymeswithjazz/installer-archive/app/database"
	"github.com/rhymeswithjazz/installer-archive/app/extract"
	"github.com/rhymeswithjazz/installer-archive/app/source"
)

// ScrapeIssuesTask parses every issue not yet marked as scraped, strictly
// sequentially. A failing issue is recorded as a soft error and the batch
// continues; a re-run skips issues that already succeeded.
type ScrapeIssuesTask struct {
	Task
	profile   *source.Profile
	fetcher   Fetcher
	issueRepo database.IssueRepository
	recRepo   database.RecommendationRepository
	limit     int
}

func NewScrapeIssuesTask(profile *source.Profile, fetcher Fetcher,
	issueRepo database.IssueRepository, recRepo database.RecommendationRepository, limit int) *ScrapeIssuesTask {
	return &ScrapeIssuesTask{
		Task:      NewTask(TaskTypeScrapeIssues),
		profile:   profile,
		fetcher:   fetcher,
		issueRepo: issueRepo,
		recRepo:   recRepo,
		limit:     limit,
	}
}

func (t *ScrapeIssuesTask) Execute(ctx context.Context) error {
	issues, err := t.issueRepo.GetUnscrapedIssues(t.limit)
	if err != nil {
		return fmt.Errorf("failed to get unscraped issues: %w", err)
	}

	t.Result.Found = len(issues)

	for _, issue := range issues {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		added, err := scrapeIssueContent(ctx, t.fetcher, t.profile, t.issueRepo, t.recRepo, &issue)
		// Rows written before a mid-issue failure are still in the database
		// and still count as added.
		t.Result.Added += added
		if err != nil {
			t.Result.addError("issue %s: %v", issue.URL, err)
			continue
		}
		t.Result.Processed++
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"found", t.Result.Found,
		"processed", t.Result.Processed,
		"recommendations_added", t.Result.Added,
		"errors", len(t.Result.Errors))

	return nil
}

// scrapeIssueContent fetches one issue page, runs the content parser and
// persists the results. The dedup check consults URLs already stored for the
// issue, so re-parsing the same page never creates duplicate (issue, url)
// pairs.
func scrapeIssueContent(ctx context.Context, fetcher Fetcher, profile *source.Profile,
	issueRepo database.IssueRepository, recRepo database.RecommendationRepository,
	issue *database.Issue) (int, error) {

	html, err := fetcher.Get(ctx, issue.URL)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch issue page: %w", err)
	}

	existing, err := recRepo.GetURLsForIssue(issue.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to load existing recommendation URLs: %w", err)
	}

	recs := extract.ParseNewsletterContent(html, profile)

	added := 0
	for _, rec := range recs {
		if existing[rec.URL] {
			continue
		}
		_, err := recRepo.InsertRecommendation(issue.ID, database.NewRecommendation{
			Title:           rec.Title,
			URL:             rec.URL,
			Description:     rec.Description,
			Category:        string(rec.Category),
			SectionName:     rec.SectionName,
			IsPrimaryLink:   rec.IsPrimaryLink,
			IsCrowdsourced:  rec.IsCrowdsourced,
			ContributorName: rec.ContributorName,
		})
		if err != nil {
			return added, fmt.Errorf("failed to store recommendation %s: %w", rec.URL, err)
		}
		existing[rec.URL] = true
		added++
	}

	// A stub created from a bare URL carries the URL as a stand-in title;
	// replace it with the page's own title once the page is in hand.
	if issue.Title == issue.URL {
		if title := extract.ExtractPageTitle(html); title != "" {
			if err := issueRepo.UpdateIssueTitle(issue.ID, title); err != nil {
				slog.Warn("Failed to update issue title", "url", issue.URL, "error", err)
			}
		}
	}

	// Zero recommendations is a valid outcome for some issues; the issue is
	// still stamped as scraped so the batch does not revisit it.
	publishedAt := issue.PublishedAt
	if publishedAt == nil {
		publishedAt = extract.ExtractPublishDate(html)
	}
	if err := issueRepo.MarkScraped(issue.ID, publishedAt); err != nil {
		return added, fmt.Errorf("failed to mark issue scraped: %w", err)
	}

	slog.Debug("Issue scraped", "url", issue.URL, "recommendations", len(recs), "new", added)
	return added, nil
}
