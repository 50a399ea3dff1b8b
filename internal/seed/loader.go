// Package seed loads sample todos and tasks for development and demo
// databases. Data is deterministic: owners and briefs are numbered and enum
// values cycle, so repeated runs against a clean database produce the same
// rows.
package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/taskdeck/taskdeck/internal/database"
	"github.com/taskdeck/taskdeck/internal/domain"
	"github.com/taskdeck/taskdeck/internal/repository"
)

var (
	todoStatuses = []domain.TodoStatus{
		domain.TodoStatusActive,
		domain.TodoStatusInactive,
	}
	taskStatuses = []domain.TaskStatus{
		domain.TaskStatusPending,
		domain.TaskStatusComplete,
		domain.TaskStatusPostponed,
	}
	taskPriorities = []domain.TaskPriority{
		domain.TaskPriorityLow,
		domain.TaskPriorityMedium,
		domain.TaskPriorityHigh,
	}
)

// Loader writes sample data through the repositories, so seeded rows pass the
// same validation as API writes.
type Loader struct {
	exec   *database.Executor
	todos  *repository.TodoRepository
	tasks  *repository.TaskRepository
	logger *zap.Logger
}

// NewLoader creates a loader over the given executor.
func NewLoader(exec *database.Executor, logger *zap.Logger) *Loader {
	return &Loader{
		exec:   exec,
		todos:  repository.NewTodoRepository(exec, logger),
		tasks:  repository.NewTaskRepository(exec, logger),
		logger: logger.With(zap.String("component", "seed_loader")),
	}
}

// LoadTodos inserts n numbered todos concurrently. The first failure cancels
// the remaining inserts.
func (l *Loader) LoadTodos(ctx context.Context, n int) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 1; i <= n; i++ {
		i := i
		g.Go(func() error {
			_, err := l.todos.Create(ctx, domain.CreateTodo{
				Owner:  fmt.Sprintf("todo%d", i),
				Name:   fmt.Sprintf("Todo list %d", i),
				Status: todoStatuses[(i-1)%len(todoStatuses)],
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("seed todos: %w", err)
	}

	l.logger.Info("sample todos loaded", zap.Int("count", n))
	return nil
}

// LoadTasks inserts n numbered tasks onto one todo.
func (l *Loader) LoadTasks(ctx context.Context, todoID int64, n int) error {
	for i := 1; i <= n; i++ {
		contents := fmt.Sprintf("contents%d", i)
		_, err := l.tasks.Create(ctx, domain.CreateTask{
			Brief:    fmt.Sprintf("brief%d", i),
			TodoID:   todoID,
			Contents: &contents,
			Status:   taskStatuses[(i-1)%len(taskStatuses)],
			Priority: taskPriorities[(i-1)%len(taskPriorities)],
			Category: fmt.Sprintf("category%d", i),
		})
		if err != nil {
			return fmt.Errorf("seed tasks: %w", err)
		}
	}

	l.logger.Info("sample tasks loaded",
		zap.Int64("todo_id", todoID),
		zap.Int("count", n),
	)
	return nil
}

// LoadAll seeds todoCount todos, then taskCount tasks attached to the lowest
// numbered todo.
func (l *Loader) LoadAll(ctx context.Context, todoCount, taskCount int) error {
	if err := l.LoadTodos(ctx, todoCount); err != nil {
		return err
	}
	if taskCount <= 0 {
		return nil
	}

	first, err := l.todos.List(ctx, 0, 1)
	if err != nil {
		return fmt.Errorf("seed tasks: %w", err)
	}
	if len(first) == 0 {
		return fmt.Errorf("seed tasks: no todo to attach tasks to")
	}
	return l.LoadTasks(ctx, first[0].ID, taskCount)
}

// Cleanup deletes all seeded rows, tasks before todos to respect the foreign
// key.
func (l *Loader) Cleanup(ctx context.Context) error {
	if _, err := l.exec.Execute(ctx, "DELETE FROM tasks"); err != nil {
		return fmt.Errorf("cleanup tasks: %w", err)
	}
	if _, err := l.exec.Execute(ctx, "DELETE FROM todos"); err != nil {
		return fmt.Errorf("cleanup todos: %w", err)
	}
	l.logger.Info("sample data removed")
	return nil
}
