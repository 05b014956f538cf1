package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/samber/oops"

	"github.com/tasktrack/task-api/internal/core/domain"
	"github.com/tasktrack/task-api/internal/core/ports"
)

const taskColumns = `id, title, description, status, owner_id, created_at`

// TaskRepository persists tasks in the tasks table. Every query is scoped to
// the owning user.
type TaskRepository struct {
	pool   pgxPool
	logger zerolog.Logger
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

// NewTaskRepository creates a TaskRepository backed by pool.
func NewTaskRepository(pool pgxPool, logger zerolog.Logger) *TaskRepository {
	return &TaskRepository{pool: pool, logger: logger}
}

// listQuery builds the owner-scoped select with the optional status and
// search conditions. The search term matches title or description as a
// case-sensitive substring.
func listQuery(ownerID string, filter ports.TaskFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1`)
	args := []any{ownerID}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		fmt.Fprintf(&sb, ` AND status = $%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, filter.Search)
		n := len(args)
		fmt.Fprintf(&sb, ` AND (strpos(title, $%d) > 0 OR strpos(description, $%d) > 0)`, n, n)
	}
	sb.WriteString(` ORDER BY created_at, id`)
	return sb.String(), args
}

// List returns the owner's tasks matching filter.
func (r *TaskRepository) List(ctx context.Context, ownerID string, filter ports.TaskFilter) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query, args := listQuery(ownerID, filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, r.listFailed(err, ownerID, filter)
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, r.listFailed(err, ownerID, filter)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, r.listFailed(err, ownerID, filter)
	}
	return tasks, nil
}

func (r *TaskRepository) listFailed(err error, ownerID string, filter ports.TaskFilter) error {
	r.logger.Error().Err(err).
		Str("owner_id", ownerID).
		Str("status", string(filter.Status)).
		Str("search", filter.Search).
		Msg("failed to get tasks")
	return oops.Code("TASK_LIST_FAILED").With("owner_id", ownerID).
		Wrap(fmt.Errorf("list tasks: %w: %w", domain.ErrInternal, err))
}

// Create inserts task with a new ID. New tasks are always OPEN.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	id := ulid.Make().String()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, task.Title, task.Description, string(domain.StatusOpen), task.OwnerID, task.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("owner_id", task.OwnerID).Str("title", task.Title).Msg("failed to create task")
		return oops.Code("TASK_CREATE_FAILED").With("owner_id", task.OwnerID).
			Wrap(fmt.Errorf("create task: %w: %w", domain.ErrInternal, err))
	}

	task.ID = id
	task.Status = domain.StatusOpen
	return nil
}

// FindOne returns the task with taskID owned by ownerID, or nil when no such
// task exists.
func (r *TaskRepository) FindOne(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND owner_id = $2`, taskID, ownerID)
	task, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Str("owner_id", ownerID).Str("task_id", taskID).Msg("failed to find task")
		return nil, oops.Code("TASK_QUERY_FAILED").With("task_id", taskID).
			Wrap(fmt.Errorf("find task: %w: %w", domain.ErrInternal, err))
	}
	return task, nil
}

// Delete removes the owner's task and reports how many rows were affected.
func (r *TaskRepository) Delete(ctx context.Context, ownerID, taskID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, taskID, ownerID)
	if err != nil {
		r.logger.Error().Err(err).Str("owner_id", ownerID).Str("task_id", taskID).Msg("failed to delete task")
		return 0, oops.Code("TASK_DELETE_FAILED").With("task_id", taskID).
			Wrap(fmt.Errorf("delete task: %w: %w", domain.ErrInternal, err))
	}
	return tag.RowsAffected(), nil
}

// UpdateStatus stores status on task and returns the updated task.
func (r *TaskRepository) UpdateStatus(ctx context.Context, task *domain.Task, status domain.TaskStatus) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx,
		`UPDATE tasks SET status = $1 WHERE id = $2 AND owner_id = $3`, string(status), task.ID, task.OwnerID)
	if err != nil {
		r.logger.Error().Err(err).Str("task_id", task.ID).Str("status", string(status)).Msg("failed to update task status")
		return nil, oops.Code("TASK_UPDATE_FAILED").With("task_id", task.ID).
			Wrap(fmt.Errorf("update task status: %w: %w", domain.ErrInternal, err))
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: task with id %q", domain.ErrTaskNotFound, task.ID)
	}

	task.Status = status
	return task, nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		task   domain.Task
		status string
	)
	if err := row.Scan(&task.ID, &task.Title, &task.Description, &status, &task.OwnerID, &task.CreatedAt); err != nil {
		return nil, err
	}
	task.Status = domain.TaskStatus(status)
	return &task, nil
}
