package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tasktrack/task-api/internal/core/domain"
	"github.com/tasktrack/task-api/internal/core/ports"
	"github.com/tasktrack/task-api/internal/infrastructure/metrics"
)

// TaskService implements the task use cases. Every operation is scoped to
// the owner passed in by the caller; the repository enforces the same filter
// in its queries.
type TaskService struct {
	repo   ports.TaskRepository
	idem   ports.IdempotencyStore
	logger zerolog.Logger
	now    func() time.Time
}

// NewTaskService builds a TaskService. idem may be nil, in which case
// Idempotency-Key values are ignored.
func NewTaskService(repo ports.TaskRepository, idem ports.IdempotencyStore, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, idem: idem, logger: logger, now: time.Now}
}

func (s *TaskService) today() domain.Date {
	return domain.DateOf(s.now().UTC())
}

// List returns every task owned by ownerID, oldest first.
func (s *TaskService) List(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	tasks, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		observe("list", err)
		return nil, err
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	observe("list", nil)
	return tasks, nil
}

// Get returns the task if ownerID owns it, domain.ErrTaskNotFound otherwise.
func (s *TaskService) Get(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, ownerID, id)
	observe("get", err)
	return task, err
}

// Create validates and stores a new task owned by ownerID. When an
// idempotency key is given and already maps to one of the owner's tasks,
// that task is returned and nothing is written.
func (s *TaskService) Create(ctx context.Context, ownerID string, input ports.CreateTaskInput) (*domain.Task, error) {
	if existing := s.replay(ctx, ownerID, input.IdempotencyKey); existing != nil {
		metrics.TaskOperationsTotal.WithLabelValues("create", "replayed").Inc()
		return existing, nil
	}

	now := s.now().UTC()
	task := &domain.Task{
		UserID:      ownerID,
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.TaskStatus(input.Status),
		DueDate:     input.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := task.ValidateInput(s.today(), input.DueDateInvalid); err != nil {
		observe("create", err)
		return nil, err
	}

	if err := s.repo.Create(ctx, task); err != nil {
		s.logger.Error().Err(err).Str("user_id", ownerID).Msg("failed to create task")
		observe("create", err)
		return nil, err
	}

	if input.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.Remember(ctx, ownerID, input.IdempotencyKey, task.ID); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", input.IdempotencyKey).Msg("failed to remember idempotency key")
		}
	}

	observe("create", nil)
	s.logger.Info().Str("task_id", task.ID).Str("user_id", ownerID).Msg("task created")
	return task, nil
}

func (s *TaskService) replay(ctx context.Context, ownerID, key string) *domain.Task {
	if key == "" || s.idem == nil {
		return nil
	}

	taskID, found, err := s.idem.Lookup(ctx, ownerID, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed")
		return nil
	}
	if !found {
		return nil
	}

	task, err := s.repo.FindByID(ctx, ownerID, taskID)
	if err != nil {
		// The remembered task is gone; treat the request as new.
		return nil
	}
	s.logger.Info().Str("idempotency_key", key).Str("task_id", task.ID).Msg("idempotent replay")
	return task
}

// Update merges input into the owner's task and re-validates the result.
// The owner can never be changed.
func (s *TaskService) Update(ctx context.Context, ownerID, id string, input ports.UpdateTaskInput) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		observe("update", err)
		return nil, err
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = domain.TaskStatus(*input.Status)
	}
	if input.DueDateSet {
		task.DueDate = input.DueDate
	}

	if err := task.ValidateInput(s.today(), input.DueDateInvalid); err != nil {
		observe("update", err)
		return nil, err
	}

	task.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, task); err != nil {
		observe("update", err)
		return nil, err
	}

	observe("update", nil)
	s.logger.Info().Str("task_id", task.ID).Str("user_id", ownerID).Msg("task updated")
	return task, nil
}

// Delete removes the owner's task.
func (s *TaskService) Delete(ctx context.Context, ownerID, id string) error {
	err := s.repo.Delete(ctx, ownerID, id)
	observe("delete", err)
	if err == nil {
		s.logger.Info().Str("task_id", id).Str("user_id", ownerID).Msg("task deleted")
	}
	return err
}

func observe(operation string, err error) {
	var ve *domain.ValidationError
	result := "success"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrTaskNotFound):
		result = "not_found"
	case errors.As(err, &ve):
		result = "invalid"
	default:
		result = "error"
	}
	metrics.TaskOperationsTotal.WithLabelValues(operation, result).Inc()
}
