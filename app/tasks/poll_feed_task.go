package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/rhymeswithjazz/installer-archive/app/database"
	"github.com/rhymeswithjazz/installer-archive/app/source"
)

// PollFeedTask discovers new issues from the newsletter's RSS feed. It
// produces the same stubs as the archive harvester, so either discovery path
// can run first without stepping on the other.
type PollFeedTask struct {
	Task
	profile   *source.Profile
	fetcher   Fetcher
	issueRepo database.IssueRepository
}

func NewPollFeedTask(profile *source.Profile, fetcher Fetcher, issueRepo database.IssueRepository) *PollFeedTask {
	return &PollFeedTask{
		Task:      NewTask(TaskTypePollFeed),
		profile:   profile,
		fetcher:   fetcher,
		issueRepo: issueRepo,
	}
}

func (t *PollFeedTask) Execute(ctx context.Context) error {
	if t.profile.FeedURL == "" {
		slog.Debug("No feed URL configured for source, skipping", "source", t.profile.Name)
		return nil
	}

	body, err := t.fetcher.Get(ctx, t.profile.FeedURL)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	feed, err := gofeed.NewParser().Parse(strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to parse feed: %w", err)
	}

	t.Result.Found = len(feed.Items)

	for _, item := range feed.Items {
		if item.Link == "" || !t.profile.IsIssueURL(item.Link) {
			continue
		}

		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = item.Link
		}

		publishedAt := item.PublishedParsed
		if publishedAt == nil {
			publishedAt = t.profile.IssueDateFromURL(item.Link)
		}

		_, created, err := t.issueRepo.UpsertStub(title, item.Link, publishedAt)
		if err != nil {
			t.Result.addError("failed to record issue %s: %v", item.Link, err)
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
