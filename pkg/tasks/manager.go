package tasks

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Task is a cancellable unit of background work. It must return
// promptly once its context is cancelled.
type Task func(ctx context.Context) error

type runningTask struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// TaskManager runs background tasks keyed by ID. Submitting a task
// under an ID that is already running cancels and supersedes the old
// task. Only currently running tasks are tracked; completed and failed
// tasks drop out of Running immediately.
type TaskManager struct {
	mu       sync.Mutex
	running  map[string]*runningTask
	wg       sync.WaitGroup
	logger   *zap.Logger
	disposed bool
}

func NewTaskManager(logger *zap.Logger) *TaskManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskManager{
		running: make(map[string]*runningTask),
		logger:  logger,
	}
}

// Execute starts task in the background under taskID, cancelling any
// task already running under that ID. An empty taskID gets a generated
// one. Returns the effective ID, or an error after Dispose.
func (m *TaskManager) Execute(ctx context.Context, taskID string, task Task) (string, error) {
	if taskID == "" {
		taskID = uuid.NewString()
	}

	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return "", ErrDisposed
	}
	if prev, ok := m.running[taskID]; ok {
		prev.cancel()
	}

	tctx, cancel := context.WithCancel(ctx)
	rt := &runningTask{cancel: cancel, done: make(chan struct{})}
	m.running[taskID] = rt
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		defer close(rt.done)
		defer cancel()

		err := task(tctx)

		m.mu.Lock()
		if m.running[taskID] == rt {
			delete(m.running, taskID)
		}
		m.mu.Unlock()

		switch {
		case err == nil:
		case errors.Is(err, context.Canceled):
			m.logger.Debug("background task superseded or cancelled",
				zap.String("task_id", taskID))
		default:
			m.logger.Warn("background task failed",
				zap.String("task_id", taskID),
				zap.Error(err))
		}
	}()

	return taskID, nil
}

// Cancel stops the running task with the given ID and waits for it to
// finish. Returns false when no such task is running.
func (m *TaskManager) Cancel(taskID string) bool {
	m.mu.Lock()
	rt, ok := m.running[taskID]
	m.mu.Unlock()
	if !ok {
		return false
	}
	rt.cancel()
	<-rt.done
	return true
}

// CancelAll stops every running task and waits for them. Returns the
// number of tasks cancelled.
func (m *TaskManager) CancelAll() int {
	m.mu.Lock()
	tasks := make([]*runningTask, 0, len(m.running))
	for _, rt := range m.running {
		tasks = append(tasks, rt)
	}
	m.mu.Unlock()

	for _, rt := range tasks {
		rt.cancel()
	}
	for _, rt := range tasks {
		<-rt.done
	}
	return len(tasks)
}

// Running lists the IDs of currently running tasks, sorted.
func (m *TaskManager) Running() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.running))
	for id := range m.running {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dispose cancels everything, waits for completion and rejects further
// Execute calls.
func (m *TaskManager) Dispose() {
	m.mu.Lock()
	m.disposed = true
	m.mu.Unlock()

	m.CancelAll()
	m.wg.Wait()
}
