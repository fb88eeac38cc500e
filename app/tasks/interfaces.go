package tasks

import (
	"context"
	"time"

	"github.com/rhymeswithjazz/installer-archive/app/fetch"
)

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetRetryCount() int
	GetMaxRetries() int
	IncrementRetryCount()
	CanRetry() bool
	Start()
	GetDuration() time.Duration
	GetResult() *Result
}

// Fetcher retrieves one remote page. The production implementation is
// fetch.Client, which serializes requests and enforces the politeness delay.
type Fetcher interface {
	Get(ctx context.Context, url string) (string, error)
}

var _ Fetcher = (*fetch.Client)(nil)

// TaskSchedulerInterface manages background task processing. Trigger-surface
// tasks run synchronously in the API handler instead so their Result can be
// returned to the caller; the scheduler handles periodic discovery.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
