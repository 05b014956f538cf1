package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrack/task-api/internal/core/domain"
	"github.com/tasktrack/task-api/internal/core/ports"
)

var taskRowColumns = []string{"id", "title", "description", "status", "owner_id", "created_at"}

func TestListQuery(t *testing.T) {
	tests := []struct {
		name     string
		filter   ports.TaskFilter
		contains []string
		args     []any
	}{
		{
			name:     "owner only",
			filter:   ports.TaskFilter{},
			contains: []string{"WHERE owner_id = $1 ORDER BY"},
			args:     []any{"u1"},
		},
		{
			name:     "status",
			filter:   ports.TaskFilter{Status: domain.StatusDone},
			contains: []string{"AND status = $2"},
			args:     []any{"u1", "DONE"},
		},
		{
			name:     "status and search",
			filter:   ports.TaskFilter{Status: domain.StatusOpen, Search: "milk"},
			contains: []string{"AND status = $2", "strpos(title, $3) > 0 OR strpos(description, $3) > 0"},
			args:     []any{"u1", "OPEN", "milk"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := listQuery("u1", tt.filter)
			for _, fragment := range tt.contains {
				assert.Contains(t, query, fragment)
			}
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestTaskRepository_List(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTaskRepository(mock, zerolog.Nop())
	now := time.Now().UTC()

	rows := pgxmock.NewRows(taskRowColumns).
		AddRow("t1", "Buy milk", "2 litres", "OPEN", "u1", now).
		AddRow("t2", "Call mom", "milk question", "OPEN", "u1", now)
	mock.ExpectQuery(`SELECT .* FROM tasks WHERE owner_id = \$1 AND status = \$2 AND \(strpos`).
		WithArgs("u1", "OPEN", "milk").
		WillReturnRows(rows)

	tasks, err := repo.List(context.Background(), "u1", ports.TaskFilter{Status: domain.StatusOpen, Search: "milk"})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, domain.StatusOpen, tasks[0].Status)
	assert.Equal(t, "u1", tasks[1].OwnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ListEmpty(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTaskRepository(mock, zerolog.Nop())

	mock.ExpectQuery(`FROM tasks WHERE owner_id`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows(taskRowColumns))

	tasks, err := repo.List(context.Background(), "u1", ports.TaskFilter{})
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestTaskRepository_ListFailure(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTaskRepository(mock, zerolog.Nop())

	mock.ExpectQuery(`FROM tasks WHERE owner_id`).
		WithArgs("u1").
		WillReturnError(errors.New("boom"))

	_, err := repo.List(context.Background(), "u1", ports.TaskFilter{})
	assert.ErrorIs(t, err, domain.ErrInternal)
}

func TestTaskRepository_Create(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTaskRepository(mock, zerolog.Nop())
	now := time.Now().UTC()

	mock.ExpectExec(`INSERT INTO tasks`).
		WithArgs(pgxmock.AnyArg(), "Buy milk", "2 litres", "OPEN", "u1", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	task := &domain.Task{Title: "Buy milk", Description: "2 litres", Status: domain.StatusOpen, OwnerID: "u1", CreatedAt: now}
	require.NoError(t, repo.Create(context.Background(), task))
	assert.NotEmpty(t, task.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_CreateStoresOpen(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTaskRepository(mock, zerolog.Nop())

	mock.ExpectExec(`INSERT INTO tasks`).
		WithArgs(pgxmock.AnyArg(), "Buy milk", "", "OPEN", "u1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	task := &domain.Task{Title: "Buy milk", Status: domain.StatusDone, OwnerID: "u1"}
	require.NoError(t, repo.Create(context.Background(), task))
	assert.Equal(t, domain.StatusOpen, task.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_CreateFailure(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTaskRepository(mock, zerolog.Nop())

	mock.ExpectExec(`INSERT INTO tasks`).
		WithArgs(pgxmock.AnyArg(), "Buy milk", "", "OPEN", "u1", pgxmock.AnyArg()).
		WillReturnError(errors.New("fk violation"))

	task := &domain.Task{Title: "Buy milk", Status: domain.StatusOpen, OwnerID: "u1"}
	err := repo.Create(context.Background(), task)
	assert.ErrorIs(t, err, domain.ErrInternal)
	assert.Empty(t, task.ID)
}

func TestTaskRepository_FindOne(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTaskRepository(mock, zerolog.Nop())
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM tasks WHERE id = \$1 AND owner_id = \$2`).
		WithArgs("t1", "u1").
		WillReturnRows(pgxmock.NewRows(taskRowColumns).AddRow("t1", "Buy milk", "", "DONE", "u1", now))

	task, err := repo.FindOne(context.Background(), "u1", "t1")
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, domain.StatusDone, task.Status)
}

func TestTaskRepository_FindOneMissing(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTaskRepository(mock, zerolog.Nop())

	mock.ExpectQuery(`FROM tasks WHERE id = \$1 AND owner_id = \$2`).
		WithArgs("t1", "u2").
		WillReturnRows(pgxmock.NewRows(taskRowColumns))

	task, err := repo.FindOne(context.Background(), "u2", "t1")
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestTaskRepository_Delete(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTaskRepository(mock, zerolog.Nop())

	mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1 AND owner_id = \$2`).
		WithArgs("t1", "u1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM tasks`).
		WithArgs("t1", "u1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	n, err := repo.Delete(context.Background(), "u1", "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.Delete(context.Background(), "u1", "t1")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_UpdateStatus(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTaskRepository(mock, zerolog.Nop())

	mock.ExpectExec(`UPDATE tasks SET status = \$1 WHERE id = \$2 AND owner_id = \$3`).
		WithArgs("IN_PROGRESS", "t1", "u1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	task := &domain.Task{ID: "t1", OwnerID: "u1", Status: domain.StatusOpen}
	updated, err := repo.UpdateStatus(context.Background(), task, domain.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
}

func TestTaskRepository_UpdateStatusVanished(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTaskRepository(mock, zerolog.Nop())

	mock.ExpectExec(`UPDATE tasks SET status`).
		WithArgs("DONE", "t1", "u1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	task := &domain.Task{ID: "t1", OwnerID: "u1", Status: domain.StatusOpen}
	_, err := repo.UpdateStatus(context.Background(), task, domain.StatusDone)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.Equal(t, domain.StatusOpen, task.Status)
}
