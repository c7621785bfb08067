package tasks

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/lysyi3m/rss-push/app/push"
)

// PushCycleTask runs one delivery pass over all subscriptions. The shared
// inFlight flag guarantees a new cycle never starts while a prior one is
// still running, even if a cycle outlasts the tick interval.
type PushCycleTask struct {
	Task
	pusher   *push.Pusher
	inFlight *atomic.Bool
}

func NewPushCycleTask(pusher *push.Pusher, inFlight *atomic.Bool) *PushCycleTask {
	task := NewTask(TaskTypePushCycle)
	// A skipped or failed cycle is covered by the next tick, not retried
	task.MaxRetries = 0

	return &PushCycleTask{
		Task:     task,
		pusher:   pusher,
		inFlight: inFlight,
	}
}

func (t *PushCycleTask) Execute(ctx context.Context) error {
	if !t.inFlight.CompareAndSwap(false, true) {
		slog.Warn("Previous push cycle still running, skipping this tick", "id", t.ID)
		return nil
	}
	defer t.inFlight.Store(false)

	t.pusher.RunCycle(ctx)
	return nil
}
