package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rhymeswithjazz/installer-archive/app/database"
	"github.com/rhymeswithjazz/installer-archive/app/extract"
)

// BackfillTitlesTask revisits recommendations whose stored title looks like
// a placeholder, fetches the target page and extracts a proper title — and,
// when the record has no description yet, a readable excerpt.
type BackfillTitlesTask struct {
	Task
	fetcher Fetcher
	recRepo database.RecommendationRepository
	limit   int
}

func NewBackfillTitlesTask(fetcher Fetcher, recRepo database.RecommendationRepository, limit int) *BackfillTitlesTask {
	return &BackfillTitlesTask{
		Task:    NewTask(TaskTypeBackfillTitles),
		fetcher: fetcher,
		recRepo: recRepo,
		limit:   limit,
	}
}

func (t *BackfillTitlesTask) Execute(ctx context.Context) error {
	recs, err := t.recRepo.GetWeakTitleRecommendations(t.limit)
	if err != nil {
		return fmt.Errorf("failed to get weak-title recommendations: %w", err)
	}

	t.Result.Found = len(recs)

	for _, rec := range recs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		html, err := t.fetcher.Get(ctx, rec.URL)
		if err != nil {
			t.Result.addError("recommendation %d (%s): %v", rec.ID, rec.URL, err)
			continue
		}
		t.Result.Processed++

		title := extract.ExtractPageTitle(html)
		if title == "" || extract.IsJunkTitle(title) {
			continue
		}

		description := ""
		if rec.Description == "" {
			description = extract.ExtractExcerpt(html)
		}

		if err := t.recRepo.UpdateTitleAndDescription(rec.ID, title, description); err != nil {
			t.Result.addError("recommendation %d: %v", rec.ID, err)
			continue
		}
		t.Result.Added++
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"duration", t.GetDuration(),
		"found", t.Result.Found,
		"titles_updated", t.Result.Added,
		"errors", len(t.Result.Errors))

	return nil
}
