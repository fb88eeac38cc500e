package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rhymeswithjazz/installer-archive/app/database"
	"github.com/rhymeswithjazz/installer-archive/app/extract"
	"github.com/rhymeswithjazz/installer-archive/app/source"
)

// ScrapeArchiveTask harvests issue stubs from the newsletter's archive index
// page. It only discovers issues; their content is parsed by ScrapeIssuesTask.
type ScrapeArchiveTask struct {
	Task
	profile   *source.Profile
	fetcher   Fetcher
	issueRepo database.IssueRepository
}

func NewScrapeArchiveTask(profile *source.Profile, fetcher Fetcher, issueRepo database.IssueRepository) *ScrapeArchiveTask {
	return &ScrapeArchiveTask{
		Task:      NewTask(TaskTypeScrapeArchive),
		profile:   profile,
		fetcher:   fetcher,
		issueRepo: issueRepo,
	}
}

func (t *ScrapeArchiveTask) Execute(ctx context.Context) error {
	html, err := t.fetcher.Get(ctx, t.profile.ArchiveURL)
	if err != nil {
		return fmt.Errorf("failed to fetch archive index: %w", err)
	}

	stubs := extract.ParseArchiveIndex(html, t.profile)
	t.Result.Found = len(stubs)

	for _, stub := range stubs {
		_, created, err := t.issueRepo.UpsertStub(stub.Title, stub.URL, stub.PublishedAt)
		if err != nil {
			t.Result.addError("failed to record issue %s: %v", stub.URL, err)
			continue
		}
		t.Result.Processed++
		if created {
			t.Result.Added++
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"found", t.Result.Found,
		"added", t.Result.Added,
		"errors", len(t.Result.Errors))

	return nil
}
