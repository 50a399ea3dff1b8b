package domain

import (
	"errors"
	"fmt"
	"time"
)

// Column width limits from the schema; validation rejects oversized input
// before it reaches the database.
const (
	maxOwnerLen    = 120
	maxNameLen     = 60
	maxBriefLen    = 300
	maxCategoryLen = 100
)

// DefaultTodoName is assigned when a create payload carries no name.
const DefaultTodoName = "Universal Todo"

// DefaultTaskDueDelta is how far in the future a task is due when the create
// payload carries no due time.
const DefaultTaskDueDelta = 24 * time.Hour

// ErrNoFields is returned by update payload validation when every optional
// field is unset.
var ErrNoFields = errors.New("at least one field must be set")

// Todo is one owner's task list.
type Todo struct {
	ID        int64
	Owner     string
	Name      string
	Status    TodoStatus
	CreatedAt time.Time
	UpdatedAt time.Time

	// Tasks is populated only when the caller asked for a prefetch.
	Tasks []Task
}

// Task is a single unit of work on a todo list.
type Task struct {
	ID        int64
	Brief     string
	TodoID    int64
	Contents  *string
	Status    TaskStatus
	Priority  TaskPriority
	Category  string
	Due       time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateTodo is the payload for inserting a new todo. Normalize fills
// defaults; Validate rejects payloads the schema would refuse.
type CreateTodo struct {
	Owner  string
	Name   string
	Status TodoStatus
}

// Normalize fills unset fields with their defaults.
func (c *CreateTodo) Normalize() {
	if c.Status == "" {
		c.Status = TodoStatusActive
	}
	if c.Name == "" {
		c.Name = DefaultTodoName
	}
}

// Validate checks the payload after Normalize.
func (c CreateTodo) Validate() error {
	if c.Owner == "" {
		return errors.New("owner is required")
	}
	if len(c.Owner) > maxOwnerLen {
		return fmt.Errorf("owner exceeds %d characters", maxOwnerLen)
	}
	if len(c.Name) > maxNameLen {
		return fmt.Errorf("name exceeds %d characters", maxNameLen)
	}
	if !c.Status.Valid() {
		return fmt.Errorf("unknown todo status %q", c.Status)
	}
	return nil
}

// UpdateTodo is a partial update payload; nil fields are left unchanged.
type UpdateTodo struct {
	Owner  *string
	Name   *string
	Status *TodoStatus
}

// Validate requires at least one set field and checks each set field.
func (u UpdateTodo) Validate() error {
	if u.Owner == nil && u.Name == nil && u.Status == nil {
		return ErrNoFields
	}
	if u.Owner != nil {
		if *u.Owner == "" {
			return errors.New("owner cannot be empty")
		}
		if len(*u.Owner) > maxOwnerLen {
			return fmt.Errorf("owner exceeds %d characters", maxOwnerLen)
		}
	}
	if u.Name != nil {
		if *u.Name == "" {
			return errors.New("name cannot be empty")
		}
		if len(*u.Name) > maxNameLen {
			return fmt.Errorf("name exceeds %d characters", maxNameLen)
		}
	}
	if u.Status != nil && !u.Status.Valid() {
		return fmt.Errorf("unknown todo status %q", *u.Status)
	}
	return nil
}

// CreateTask is the payload for inserting a new task.
type CreateTask struct {
	Brief    string
	TodoID   int64
	Contents *string
	Status   TaskStatus
	Priority TaskPriority
	Category string
	Due      time.Time
}

// Normalize fills unset fields with their defaults: pending status, low
// priority, due one day out.
func (c *CreateTask) Normalize() {
	if c.Status == "" {
		c.Status = TaskStatusPending
	}
	if c.Priority == "" {
		c.Priority = TaskPriorityLow
	}
	if c.Due.IsZero() {
		c.Due = time.Now().UTC().Add(DefaultTaskDueDelta)
	}
}

// Validate checks the payload after Normalize.
func (c CreateTask) Validate() error {
	if c.Brief == "" {
		return errors.New("brief is required")
	}
	if len(c.Brief) > maxBriefLen {
		return fmt.Errorf("brief exceeds %d characters", maxBriefLen)
	}
	if c.TodoID <= 0 {
		return errors.New("todo_id must be positive")
	}
	if c.Category == "" {
		return errors.New("category is required")
	}
	if len(c.Category) > maxCategoryLen {
		return fmt.Errorf("category exceeds %d characters", maxCategoryLen)
	}
	if !c.Status.Valid() {
		return fmt.Errorf("unknown task status %q", c.Status)
	}
	if !c.Priority.Valid() {
		return fmt.Errorf("unknown task priority %q", c.Priority)
	}
	return nil
}

// UpdateTask is a partial update payload; nil fields are left unchanged.
type UpdateTask struct {
	Brief    *string
	TodoID   *int64
	Contents *string
	Status   *TaskStatus
	Priority *TaskPriority
	Category *string
	Due      *time.Time
}

// Validate requires at least one set field and checks each set field.
func (u UpdateTask) Validate() error {
	if u.Brief == nil && u.TodoID == nil && u.Contents == nil &&
		u.Status == nil && u.Priority == nil && u.Category == nil && u.Due == nil {
		return ErrNoFields
	}
	if u.Brief != nil {
		if *u.Brief == "" {
			return errors.New("brief cannot be empty")
		}
		if len(*u.Brief) > maxBriefLen {
			return fmt.Errorf("brief exceeds %d characters", maxBriefLen)
		}
	}
	if u.TodoID != nil && *u.TodoID <= 0 {
		return errors.New("todo_id must be positive")
	}
	if u.Category != nil {
		if *u.Category == "" {
			return errors.New("category cannot be empty")
		}
		if len(*u.Category) > maxCategoryLen {
			return fmt.Errorf("category exceeds %d characters", maxCategoryLen)
		}
	}
	if u.Status != nil && !u.Status.Valid() {
		return fmt.Errorf("unknown task status %q", *u.Status)
	}
	if u.Priority != nil && !u.Priority.Valid() {
		return fmt.Errorf("unknown task priority %q", *u.Priority)
	}
	return nil
}
