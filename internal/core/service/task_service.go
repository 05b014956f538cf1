package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tasktrack/task-api/internal/core/domain"
	"github.com/tasktrack/task-api/internal/core/ports"
)

type TaskService struct {
	repo   ports.TaskRepository
	logger zerolog.Logger
}

func NewTaskService(repo ports.TaskRepository, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, logger: logger}
}

// GetTasks lists the user's tasks matching filter.
func (s *TaskService) GetTasks(ctx context.Context, filter ports.TaskFilter, user *domain.User) ([]*domain.Task, error) {
	return s.repo.List(ctx, user.ID, filter)
}

// GetTaskByID returns domain.ErrTaskNotFound when the task is missing or owned
// by someone else.
func (s *TaskService) GetTaskByID(ctx context.Context, id string, user *domain.User) (*domain.Task, error) {
	task, err := s.repo.FindOne(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("%w: task with id %q", domain.ErrTaskNotFound, id)
	}
	return task, nil
}

// CreateTask always starts the task as OPEN.
func (s *TaskService) CreateTask(ctx context.Context, input ports.CreateTaskInput, user *domain.User) (*domain.Task, error) {
	task := &domain.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.StatusOpen,
		OwnerID:     user.ID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info().Str("task_id", task.ID).Str("user_id", user.ID).Msg("task created")
	return task, nil
}

func (s *TaskService) UpdateTaskStatus(ctx context.Context, id string, status domain.TaskStatus, user *domain.User) (*domain.Task, error) {
	task, err := s.GetTaskByID(ctx, id, user)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, task, status)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("task_id", id).Str("status", string(status)).Msg("task status updated")
	return updated, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id string, user *domain.User) error {
	affected, err := s.repo.Delete(ctx, user.ID, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: task with id %q", domain.ErrTaskNotFound, id)
	}

	s.logger.Info().Str("task_id", id).Str("user_id", user.ID).Msg("task deleted")
	return nil
}
