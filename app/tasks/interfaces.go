package tasks

// TaskSchedulerInterface is the scheduling surface exposed to the rest of
// the application. Start is idempotent: the periodic job is registered at
// most once per process lifetime.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
