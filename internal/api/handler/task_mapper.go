package handler

import (
	"github.com/tasktrack/task-api/internal/core/domain"
	"github.com/tasktrack/task-api/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req createTaskRequest) ports.CreateTaskInput {
	return ports.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	}
}

// --- Service result → HTTP response ---

// toTaskResponse omits the owner so no user data leaks into task payloads.
func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt.UTC(),
	}
}

func toTaskListResponse(tasks []*domain.Task) []taskResponse {
	out := make([]taskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = toTaskResponse(t)
	}
	return out
}
