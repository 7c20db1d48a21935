package store

import "time"

// Priority is the task priority level. Values map to the priority column.
type Priority int

const (
	PriorityNone Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
)

// Valid reports whether p is one of the defined priority levels.
func (p Priority) Valid() bool {
	return p >= PriorityNone && p <= PriorityHigh
}

func (p Priority) String() string {
	switch p {
	case PriorityNone:
		return "none"
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	}
	return "unknown"
}

// Todo is a row in the tasks table.
type Todo struct {
	ID          string
	UserID      string
	Title       string
	Description *string
	Priority    Priority
	Reminder    *time.Time
	Deadline    *time.Time
	Done        bool
	CreatedAt   time.Time
}

// Note is a row in the notes table. A note is only reachable through its
// owning task; authorization is always derived from the parent task's user_id.
type Note struct {
	ID        string
	TaskID    string
	Title     string
	Content   *string
	CreatedAt time.Time
}

// TodoDetail is a task with its notes merged in, in SQL row order.
type TodoDetail struct {
	Todo
	Notes []Note
}
