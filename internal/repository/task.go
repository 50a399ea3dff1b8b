package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/taskdeck/taskdeck/internal/database"
	"github.com/taskdeck/taskdeck/internal/domain"
)

const (
	taskTable = "tasks"
	taskPK    = "task_id"
)

// TaskRepository persists domain.Task values through the executor.
type TaskRepository struct {
	exec   *database.Executor
	logger *zap.Logger
}

// NewTaskRepository creates a task repository over the given executor.
func NewTaskRepository(exec *database.Executor, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{
		exec:   exec,
		logger: logger.With(zap.String("component", "task_repository")),
	}
}

func taskFromRow(row *database.Row) (*domain.Task, error) {
	id, err := rowInt64("task", row, "task_id")
	if err != nil {
		return nil, err
	}
	brief, err := rowString("task", row, "brief")
	if err != nil {
		return nil, err
	}
	todoID, err := rowInt64("task", row, "todo_id")
	if err != nil {
		return nil, err
	}
	contents, err := rowNullString("task", row, "contents")
	if err != nil {
		return nil, err
	}
	rawStatus, err := rowString("task", row, "status")
	if err != nil {
		return nil, err
	}
	status, err := domain.ParseTaskStatus(rawStatus)
	if err != nil {
		return nil, newMappingError("task", "status", "%v", err)
	}
	rawPriority, err := rowString("task", row, "priority")
	if err != nil {
		return nil, err
	}
	priority, err := domain.ParseTaskPriority(rawPriority)
	if err != nil {
		return nil, newMappingError("task", "priority", "%v", err)
	}
	category, err := rowString("task", row, "category")
	if err != nil {
		return nil, err
	}
	due, err := rowTime("task", row, "due")
	if err != nil {
		return nil, err
	}
	createdAt, err := rowTime("task", row, "created_at")
	if err != nil {
		return nil, err
	}
	updatedAt, err := rowTime("task", row, "updated_at")
	if err != nil {
		return nil, err
	}

	return &domain.Task{
		ID:        id,
		Brief:     brief,
		TodoID:    todoID,
		Contents:  contents,
		Status:    status,
		Priority:  priority,
		Category:  category,
		Due:       due,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// Get fetches one task by id; (nil, nil) when absent.
func (r *TaskRepository) Get(ctx context.Context, id int64) (*domain.Task, error) {
	row, err := r.exec.FetchOne(ctx, selectByPK(taskTable, taskPK), id)
	if err != nil || row == nil {
		return nil, err
	}
	return taskFromRow(row)
}

// List returns tasks with ids greater than after, ascending, at most limit.
// A non-positive limit falls back to DefaultListLimit.
func (r *TaskRepository) List(ctx context.Context, after int64, limit int) ([]domain.Task, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.exec.FetchMany(ctx, listAfter(taskTable, taskPK), after, limit)
	if err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(rows))
	for i := range rows {
		task, err := taskFromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, nil
}

// ListByTodo returns up to limit tasks belonging to one todo, ascending by id.
func (r *TaskRepository) ListByTodo(ctx context.Context, todoID int64, limit int) ([]domain.Task, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.exec.FetchMany(ctx, prefetchTasksQuery, todoID, limit)
	if err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(rows))
	for i := range rows {
		task, err := taskFromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, nil
}

// Create inserts a new task and returns the stored record.
func (r *TaskRepository) Create(ctx context.Context, payload domain.CreateTask) (*domain.Task, error) {
	payload.Normalize()
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	var contents any
	if payload.Contents != nil {
		contents = *payload.Contents
	}

	row, err := r.exec.FetchOne(ctx,
		insertReturning(taskTable, []string{
			"brief", "todo_id", "contents", "status", "priority", "category", "due",
		}),
		payload.Brief, payload.TodoID, contents,
		string(payload.Status), string(payload.Priority),
		payload.Category, payload.Due)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("task created",
		zap.Int64("todo_id", payload.TodoID),
		zap.String("category", payload.Category),
	)
	return taskFromRow(row)
}

// Update applies the set fields of payload to one task and returns the stored
// record; (nil, nil) when the id does not exist.
func (r *TaskRepository) Update(ctx context.Context, id int64, payload domain.UpdateTask) (*domain.Task, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	var columns []string
	var args []any
	if payload.Brief != nil {
		columns = append(columns, "brief")
		args = append(args, *payload.Brief)
	}
	if payload.TodoID != nil {
		columns = append(columns, "todo_id")
		args = append(args, *payload.TodoID)
	}
	if payload.Contents != nil {
		columns = append(columns, "contents")
		args = append(args, *payload.Contents)
	}
	if payload.Status != nil {
		columns = append(columns, "status")
		args = append(args, string(*payload.Status))
	}
	if payload.Priority != nil {
		columns = append(columns, "priority")
		args = append(args, string(*payload.Priority))
	}
	if payload.Category != nil {
		columns = append(columns, "category")
		args = append(args, *payload.Category)
	}
	if payload.Due != nil {
		columns = append(columns, "due")
		args = append(args, *payload.Due)
	}
	columns = append(columns, "updated_at")
	args = append(args, time.Now().UTC())
	args = append(args, id)

	row, err := r.exec.FetchOne(ctx, updateReturning(taskTable, taskPK, columns), args...)
	if err != nil || row == nil {
		return nil, err
	}
	return taskFromRow(row)
}

// Delete removes one task by id, reporting whether a record existed.
func (r *TaskRepository) Delete(ctx context.Context, id int64) (bool, error) {
	row, err := r.exec.FetchOne(ctx, deleteReturning(taskTable, taskPK), id)
	if err != nil {
		return false, err
	}
	return row != nil, nil
}

// Estimate returns the planner's row-count estimate for the tasks table.
func (r *TaskRepository) Estimate(ctx context.Context) (int64, error) {
	return estimateRows(ctx, r.exec, taskTable)
}
