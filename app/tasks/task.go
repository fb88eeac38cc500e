package tasks

import (
	"fmt"
	"math/rand"
	"time"
)

type TaskType string

const (
	TaskTypeScrapeArchive  TaskType = "scrape_archive"
	TaskTypeScrapeIssues   TaskType = "scrape_issues"
	TaskTypeScrapeIssue    TaskType = "scrape_issue"
	TaskTypeBackfillDates  TaskType = "backfill_dates"
	TaskTypeBackfillTitles TaskType = "backfill_titles"
	TaskTypePollFeed       TaskType = "poll_feed"
)

const (
	DefaultMaxRetries = 3
)

// Result summarizes one batch operation. Per-item failures are soft: they
// are recorded here and never abort the rest of the batch.
type Result struct {
	Found     int      `json:"found"`
	Processed int      `json:"processed"`
	Added     int      `json:"added"`
	Errors    []string `json:"errors,omitempty"`
}

func (r *Result) addError(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

type Task struct {
	ID         string
	Type       TaskType
	RetryCount int
	MaxRetries int
	StartedAt  *time.Time
	Result     Result
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) GetRetryCount() int {
	return t.RetryCount
}

func (t *Task) GetMaxRetries() int {
	return t.MaxRetries
}

func (t *Task) IncrementRetryCount() {
	t.RetryCount++
}

func (t *Task) CanRetry() bool {
	return t.RetryCount < t.MaxRetries
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

func (t *Task) GetResult() *Result {
	return &t.Result
}

func NewTask(taskType TaskType) Task {
	uniqueID := fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Intn(10000))

	return Task{
		ID:         uniqueID,
		Type:       taskType,
		RetryCount: 0,
		MaxRetries: DefaultMaxRetries,
	}
}
