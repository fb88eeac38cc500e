package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rhymeswithjazz/installer-archive/app/cfg"
	"github.com/rhymeswithjazz/installer-archive/app/database"
	"github.com/rhymeswithjazz/installer-archive/app/source"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler runs background discovery on a fixed interval. It deliberately
// uses a single worker: the source site is fetched one page at a time with a
// politeness delay, and that rate-limiting policy would be defeated by
// parallel task execution.
type Scheduler struct {
	profile    *source.Profile
	fetcher    Fetcher
	issueRepo  database.IssueRepository
	recRepo    database.RecommendationRepository
	interval   time.Duration
	batchLimit int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	taskQueue  chan TaskInterface
}

func NewScheduler(profile *source.Profile, fetcher Fetcher,
	issueRepo database.IssueRepository, recRepo database.RecommendationRepository) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		profile:    profile,
		fetcher:    fetcher,
		issueRepo:  issueRepo,
		recRepo:    recRepo,
		interval:   time.Duration(cfg.SchedulerInterval) * time.Second,
		batchLimit: cfg.BatchLimit,
		ctx:        ctx,
		cancel:     cancel,
		taskQueue:  make(chan TaskInterface, 50),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.worker()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueDiscoveryTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueDiscoveryTasks()
			}
		}
	}()
}

// Stop cancels the scheduler context and waits for the worker and ticker
// goroutines. The queue is deliberately never closed: a retry goroutine can
// outlive Stop, and its enqueue must land in a live (if abandoned) channel
// rather than panic on a closed one.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// enqueueDiscoveryTasks queues one feed poll and one pass over unscraped
// issues. The trigger surface runs its tasks synchronously and does not go
// through this queue.
func (s *Scheduler) enqueueDiscoveryTasks() {
	pollTask := NewPollFeedTask(s.profile, s.fetcher, s.issueRepo)
	if err := s.EnqueueTask(pollTask); err != nil {
		slog.Warn("Failed to enqueue PollFeedTask", "error", err)
	}

	scrapeTask := NewScrapeIssuesTask(s.profile, s.fetcher, s.issueRepo, s.recRepo, s.batchLimit)
	if err := s.EnqueueTask(scrapeTask); err != nil {
		slog.Warn("Failed to enqueue ScrapeIssuesTask", "error", err)
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 30*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
