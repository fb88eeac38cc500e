package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rhymeswithjazz/installer-archive/app/database"
	"github.com/rhymeswithjazz/installer-archive/app/source"
)

// ScrapeIssueTask scrapes a single issue by address, creating the issue
// record first when the URL has not been seen before. A structurally invalid
// URL is the one hard failure this task reports.
type ScrapeIssueTask struct {
	Task
	URL       string
	profile   *source.Profile
	fetcher   Fetcher
	issueRepo database.IssueRepository
	recRepo   database.RecommendationRepository
}

func NewScrapeIssueTask(url string, profile *source.Profile, fetcher Fetcher,
	issueRepo database.IssueRepository, recRepo database.RecommendationRepository) *ScrapeIssueTask {
	return &ScrapeIssueTask{
		Task:      NewTask(TaskTypeScrapeIssue),
		URL:       url,
		profile:   profile,
		fetcher:   fetcher,
		issueRepo: issueRepo,
		recRepo:   recRepo,
	}
}

func (t *ScrapeIssueTask) Execute(ctx context.Context) error {
	if !t.profile.IsIssueURL(t.URL) {
		return fmt.Errorf("not a valid issue URL for %s: %s", t.profile.Name, t.URL)
	}

	issue, err := t.issueRepo.GetIssueByURL(t.URL)
	if err != nil {
		return fmt.Errorf("failed to look up issue: %w", err)
	}

	if issue == nil {
		id, _, err := t.issueRepo.UpsertStub(t.URL, t.URL, t.profile.IssueDateFromURL(t.URL))
		if err != nil {
			return fmt.Errorf("failed to create issue: %w", err)
		}
		issue, err = t.issueRepo.GetIssue(id)
		if err != nil || issue == nil {
			return fmt.Errorf("failed to reload created issue: %w", err)
		}
	}

	t.Result.Found = 1

	added, err := scrapeIssueContent(ctx, t.fetcher, t.profile, t.issueRepo, t.recRepo, issue)
	t.Result.Added = added
	if err != nil {
		t.Result.addError("issue %s: %v", issue.URL, err)
		return nil
	}
	t.Result.Processed = 1

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"url", t.URL,
		"recommendations_added", added,
		"errors", len(t.Result.Errors))

	return nil
}
