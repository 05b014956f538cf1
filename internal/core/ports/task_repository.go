package ports

import (
	"context"

	"github.com/tasktrack/task-api/internal/core/domain"
)

// TaskFilter carries the optional list filters. Both are combined with AND.
type TaskFilter struct {
	Status domain.TaskStatus // empty = any status
	Search string            // substring of title or description
}

// TaskRepository defines persistence operations for tasks. Every operation is
// scoped to the owning user.
type TaskRepository interface {
	List(ctx context.Context, ownerID string, filter TaskFilter) ([]*domain.Task, error)
	// Create persists task with status OPEN and assigns its ID.
	Create(ctx context.Context, task *domain.Task) error
	// FindOne returns (nil, nil) when the task does not exist or belongs to
	// another user.
	FindOne(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
	// Delete returns the number of removed rows (0 or 1).
	Delete(ctx context.Context, ownerID, taskID string) (int64, error)
	UpdateStatus(ctx context.Context, task *domain.Task, status domain.TaskStatus) (*domain.Task, error)
}
