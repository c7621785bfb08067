package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lysyi3m/rss-push/app/push"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler owns the periodic push trigger. A single worker drains the task
// queue, so tasks execute one at a time; the cycle in-flight flag on top of
// that keeps a slow cycle from stacking up behind queued ticks.
type Scheduler struct {
	pusher        *push.Pusher
	seedFile      string
	interval      time.Duration
	started       atomic.Bool
	cycleInFlight atomic.Bool
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	taskQueue     chan TaskInterface
	makeSyncTask  func() TaskInterface
}

func NewScheduler(pusher *push.Pusher, interval time.Duration, seedFile string,
	makeSyncTask func() TaskInterface) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		pusher:       pusher,
		seedFile:     seedFile,
		interval:     interval,
		ctx:          ctx,
		cancel:       cancel,
		taskQueue:    make(chan TaskInterface, 16),
		makeSyncTask: makeSyncTask,
	}
}

// Start registers the periodic job and launches the worker. Idempotent:
// calling it again is a no-op.
func (s *Scheduler) Start() {
	if !s.started.CompareAndSwap(false, true) {
		slog.Debug("Scheduler already started")
		return
	}

	s.wg.Add(1)
	go s.worker()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueCycle()
			}
		}
	}()

	slog.Info("Scheduler started", "interval", s.interval.String())
}

func (s *Scheduler) Stop() {
	if !s.started.Load() {
		return
	}
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
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

func (s *Scheduler) enqueueStartupTasks() {
	if s.seedFile != "" && s.makeSyncTask != nil {
		if err := s.EnqueueTask(s.makeSyncTask()); err != nil {
			slog.Warn("Failed to enqueue SyncSubscriptionsTask", "error", err)
		}
	}

	s.enqueueCycle()
}

func (s *Scheduler) enqueueCycle() {
	task := NewPushCycleTask(s.pusher, &s.cycleInFlight)
	if err := s.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue PushCycleTask", "error", err)
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 10*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(),
		"retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()),
			"id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries())
		return
	}

	task.IncrementRetryCount()
	retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
	if retryDelay > 30*time.Second {
		retryDelay = 30 * time.Second
	}

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "id", task.GetID(),
		"retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	go func() {
		time.Sleep(retryDelay)
		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
		default:
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()),
					"id", task.GetID(), "error", retryErr)
			}
		}
	}()
}
