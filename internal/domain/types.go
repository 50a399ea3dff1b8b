package domain

import "fmt"

// TodoStatus is the lifecycle state of a todo list.
type TodoStatus string

const (
	TodoStatusActive   TodoStatus = "active"
	TodoStatusInactive TodoStatus = "inactive"
)

// Valid reports whether s is a known todo status.
func (s TodoStatus) Valid() bool {
	return s == TodoStatusActive || s == TodoStatusInactive
}

// ParseTodoStatus converts a stored string into a TodoStatus.
func ParseTodoStatus(s string) (TodoStatus, error) {
	v := TodoStatus(s)
	if !v.Valid() {
		return "", fmt.Errorf("unknown todo status %q", s)
	}
	return v, nil
}

// TaskStatus is the progress state of a single task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusComplete  TaskStatus = "complete"
	TaskStatusPostponed TaskStatus = "postponed"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusComplete, TaskStatusPostponed:
		return true
	}
	return false
}

// ParseTaskStatus converts a stored string into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	v := TaskStatus(s)
	if !v.Valid() {
		return "", fmt.Errorf("unknown task status %q", s)
	}
	return v, nil
}

// TaskPriority is the urgency level of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is a known task priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// ParseTaskPriority converts a stored string into a TaskPriority.
func ParseTaskPriority(s string) (TaskPriority, error) {
	v := TaskPriority(s)
	if !v.Valid() {
		return "", fmt.Errorf("unknown task priority %q", s)
	}
	return v, nil
}
