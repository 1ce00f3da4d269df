package queue

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/ovokpus/PostAssist/pkg/apperr"
	"github.com/ovokpus/PostAssist/pkg/models"
	"github.com/ovokpus/PostAssist/pkg/store"
)

// Service is the task-facing API over the store and the worker pool:
// submission, lookup, cancellation, and deletion.
type Service struct {
	store    store.Store
	ttl      time.Duration
	pool     *Pool
	executor *Executor
	logger   *slog.Logger
}

// NewService wires the service.
func NewService(s store.Store, ttl time.Duration, pool *Pool, executor *Executor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: s, ttl: ttl, pool: pool, executor: executor, logger: logger}
}

// Submit persists a PENDING task and enqueues its generation job. A
// concurrent submit for the same id is AlreadyExists; a full queue rolls
// the record back so the client can retry.
func (s *Service) Submit(ctx context.Context, task *models.Task) error {
	if err := s.store.Create(ctx, task, s.ttl); err != nil {
		return err
	}

	job := Job{
		TaskID: task.TaskID,
		Run: func(jobCtx context.Context) {
			s.executor.Execute(jobCtx, task)
		},
	}
	if err := s.pool.Enqueue(job); err != nil {
		if delErr := s.store.Delete(ctx, task.TaskID); delErr != nil {
			s.logger.Warn("rollback of rejected task failed",
				"task_id", task.TaskID, "error", delErr)
		}
		return err
	}

	s.logger.Info("task submitted", "task_id", task.TaskID)
	return nil
}

// Get returns the stored task snapshot.
func (s *Service) Get(ctx context.Context, taskID string) (*models.Task, error) {
	return s.store.Get(ctx, taskID)
}

// List returns all live tasks, newest first.
func (s *Service) List(ctx context.Context) ([]*models.Task, error) {
	tasks, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// Cancel aborts the running job for a task. Tasks that are queued but not
// yet executing, or already terminal, cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, taskID string) error {
	if s.pool.CancelTask(taskID) {
		s.logger.Info("task cancelled", "task_id", taskID)
		return nil
	}

	task, err := s.store.Get(ctx, taskID)
	if err != nil {
		return err
	}
	return apperr.New(apperr.KindValidation,
		"task %s is not running (status %s)", taskID, task.Status)
}

// Delete removes the task record, cancelling its job first if one is
// running.
func (s *Service) Delete(ctx context.Context, taskID string) error {
	if _, err := s.store.Get(ctx, taskID); err != nil {
		return err
	}
	s.pool.CancelTask(taskID)
	return s.store.Delete(ctx, taskID)
}
