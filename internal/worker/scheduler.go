package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/martinsuchenak/snmpinfo/internal/log"
)

// Scheduler runs registered tasks on cron schedules. A task whose previous run
// is still in progress skips its turn.
type Scheduler struct {
	mu     sync.RWMutex
	tasks  map[string]*Task
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

// Task represents a scheduled task
type Task struct {
	ID       string
	Schedule string
	LastRun  *time.Time
	Status   string // "pending", "running", "completed", "failed"
	Handler  TaskHandler

	entry cron.EntryID
}

// TaskHandler is the function executed by a task
type TaskHandler func(ctx context.Context, taskID string) error

// NewScheduler creates a scheduler whose tasks run under ctx
func NewScheduler(ctx context.Context) *Scheduler {
	ctx, cancel := context.WithCancel(ctx)
	logger := cronLogger{}
	return &Scheduler{
		tasks: make(map[string]*Task),
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		ctx:    ctx,
		cancel: cancel,
	}
}

// RegisterTask adds a task on a standard five-field cron spec or a descriptor
// such as "@every 5m".
func (s *Scheduler) RegisterTask(id, spec string, handler TaskHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; ok {
		return fmt.Errorf("task %s already registered", id)
	}

	task := &Task{ID: id, Schedule: spec, Status: "pending", Handler: handler}
	entry, err := s.cron.AddFunc(spec, func() { s.runTask(task) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	task.entry = entry

	s.tasks[id] = task
	log.Info("Task registered", "task_id", id, "schedule", spec)
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	log.Info("Starting scheduler")
	s.cron.Start()
}

// Stop stops scheduling, cancels running tasks and waits for them to return.
func (s *Scheduler) Stop() {
	log.Info("Stopping scheduler")
	done := s.cron.Stop()
	s.cancel()
	<-done.Done()
}

// Task returns a copy of a registered task's state.
func (s *Scheduler) Task(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

// NextRun returns when a task runs next.
func (s *Scheduler) NextRun(id string) (time.Time, bool) {
	s.mu.RLock()
	t, ok := s.tasks[id]
	s.mu.RUnlock()
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(t.entry).Next, true
}

// runTask executes a task and records its outcome
func (s *Scheduler) runTask(task *Task) {
	now := time.Now()
	s.mu.Lock()
	task.Status = "running"
	task.LastRun = &now
	s.mu.Unlock()

	log.Info("Running task", "task_id", task.ID)

	err := task.Handler(s.ctx, task.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		task.Status = "failed"
		log.Error("Task failed", "task_id", task.ID, "duration", time.Since(now), "error", err)
	} else {
		task.Status = "completed"
		log.Info("Task completed", "task_id", task.ID, "duration", time.Since(now))
	}
}

// cronLogger routes cron's own messages to the process logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
