package ports

import (
	"context"

	"github.com/tasktrack/task-api/internal/core/domain"
)

// CreateTaskInput is the DTO passed from the transport layer to TaskService.
type CreateTaskInput struct {
	Title       string
	Description string
}

// TaskService defines use-case operations for tasks of an authenticated user.
type TaskService interface {
	GetTasks(ctx context.Context, filter TaskFilter, user *domain.User) ([]*domain.Task, error)
	GetTaskByID(ctx context.Context, id string, user *domain.User) (*domain.Task, error)
	CreateTask(ctx context.Context, input CreateTaskInput, user *domain.User) (*domain.Task, error)
	UpdateTaskStatus(ctx context.Context, id string, status domain.TaskStatus, user *domain.User) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string, user *domain.User) error
}
