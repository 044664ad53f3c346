package tasks

import (
	"errors"
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

var (
	// ErrNotFound indicates the task id does not exist.
	ErrNotFound = errors.New("tasks: task not found")
	// ErrForbidden indicates the task exists but policy denies access.
	ErrForbidden = errors.New("tasks: access denied")
)

// Task is a unit of work owned, transitively, by the organization of its
// creator. CreatorOrgID is resolved through the creator's user row at read
// time and never stored on the task itself.
type Task struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Status       Status     `json:"status"`
	Priority     int        `json:"priority"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	AssignedToID *int64     `json:"assignedToId,omitempty"`
	CreatedByID  int64      `json:"createdById"`
	CreatorOrgID *int64     `json:"creatorOrgId,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// CreateInput carries the fields a caller may set on a new task.
type CreateInput struct {
	Title        string
	Description  string
	Status       Status
	Priority     int
	DueDate      *time.Time
	AssignedToID *int64
}

// Patch enumerates the mutable task fields. A nil field is left unchanged;
// there is no free-form merge.
type Patch struct {
	Title        *string
	Description  *string
	Status       *Status
	Priority     *int
	DueDate      *time.Time
	AssignedToID *int64
}

func (p Patch) apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
	if p.AssignedToID != nil {
		t.AssignedToID = p.AssignedToID
	}
}
