package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TaskStatus represents the progress state of a task.
type TaskStatus string

const (
	StatusOpen       TaskStatus = "OPEN"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
)

var allowedStatuses = []TaskStatus{StatusOpen, StatusInProgress, StatusDone}

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrInvalidStatus = errors.New("invalid status")
)

// ParseTaskStatus canonicalises user input into a TaskStatus. The value is
// upper-cased before the membership check, so "done" yields StatusDone.
// Any transition between statuses is allowed; this only restricts input.
func ParseTaskStatus(value string) (TaskStatus, error) {
	candidate := TaskStatus(strings.ToUpper(value))
	for _, s := range allowedStatuses {
		if s == candidate {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidStatus, candidate)
}

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	OwnerID     string     `json:"owner_id"`
	CreatedAt   time.Time  `json:"created_at"`
}
