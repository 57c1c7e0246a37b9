package models

import "time"

// TaskStatus represents the progress of a task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	return s == TaskStatusPending || s == TaskStatusCompleted
}

// TaskCategory groups tasks for display and filtering.
type TaskCategory string

const (
	CategoryWork     TaskCategory = "work"
	CategoryPersonal TaskCategory = "personal"
	CategoryShopping TaskCategory = "shopping"
	CategoryOthers   TaskCategory = "others"
)

// Valid reports whether c is a known category.
func (c TaskCategory) Valid() bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryShopping, CategoryOthers:
		return true
	default:
		return false
	}
}

// Task is a unit of work assigned to exactly one user.
// CreatedBy is set once at creation; Version increments on every write and
// backs the optimistic concurrency check in the repository.
type Task struct {
	ID          string       `db:"id" json:"id"`
	Title       string       `db:"title" json:"title"`
	Description string       `db:"description" json:"description"`
	Category    TaskCategory `db:"category" json:"category"`
	Status      TaskStatus   `db:"status" json:"status"`
	AssignedTo  string       `db:"assigned_to" json:"assignedTo"`
	CreatedBy   string       `db:"created_by" json:"createdBy"`
	DueDate     time.Time    `db:"due_date" json:"dueDate"`
	Tags        []string     `db:"-" json:"tags"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
	Version     int64        `db:"version" json:"version"`
}

// Clone returns a copy of t that shares no slices with it.
func (t Task) Clone() Task {
	c := t
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	return c
}
