package tasks

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("task not found")

// Status filter values accepted by List.
const (
	StatusAll       = "all"
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

type Task struct {
	ID          int        `json:"id"`
	UserID      int        `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Store is the owner-scoped task storage. Every read and write filters by
// (task id, user id) together; a task belonging to another user behaves
// exactly like a missing task.
type Store interface {
	Create(ctx context.Context, userID int, title, description string) (Task, error)
	List(ctx context.Context, userID int, status string) ([]Task, error)
	Get(ctx context.Context, userID, taskID int) (Task, error)
	SetCompleted(ctx context.Context, userID, taskID int) (Task, error)
	Delete(ctx context.Context, userID, taskID int) (Task, error)
	Update(ctx context.Context, userID, taskID int, title, description *string) (Task, error)
}
