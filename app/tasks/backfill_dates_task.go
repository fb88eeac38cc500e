package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rhymeswithjazz/installer-archive/app/database"
	"github.com/rhymeswithjazz/installer-archive/app/extract"
)

// BackfillDatesTask revisits issues stored without a publish date and tries
// to extract one from the page. Dates stay null for pages that simply carry
// none; that is permanent, not an error.
type BackfillDatesTask struct {
	Task
	fetcher   Fetcher
	issueRepo database.IssueRepository
	limit     int
}

func NewBackfillDatesTask(fetcher Fetcher, issueRepo database.IssueRepository, limit int) *BackfillDatesTask {
	return &BackfillDatesTask{
		Task:      NewTask(TaskTypeBackfillDates),
		fetcher:   fetcher,
		issueRepo: issueRepo,
		limit:     limit,
	}
}

func (t *BackfillDatesTask) Execute(ctx context.Context) error {
	issues, err := t.issueRepo.GetIssuesMissingDate(t.limit)
	if err != nil {
		return fmt.Errorf("failed to get issues missing dates: %w", err)
	}

	t.Result.Found = len(issues)

	for _, issue := range issues {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		html, err := t.fetcher.Get(ctx, issue.URL)
		if err != nil {
			t.Result.addError("issue %s: %v", issue.URL, err)
			continue
		}
		t.Result.Processed++

		date := extract.ExtractPublishDate(html)
		if date == nil {
			continue
		}

		if err := t.issueRepo.UpdateIssueDate(issue.ID, *date); err != nil {
			t.Result.addError("issue %s: %v", issue.URL, err)
			continue
		}
		t.Result.Added++
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"found", t.Result.Found,
		"dates_filled", t.Result.Added,
		"errors", len(t.Result.Errors))

	return nil
}
