package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/taskdeck/taskdeck/internal/database"
	"github.com/taskdeck/taskdeck/internal/domain"
)

// DefaultListLimit caps list reads when the caller passes no limit.
const DefaultListLimit = 25

const (
	todoTable = "todos"
	todoPK    = "todo_id"
)

// TodoRepository persists domain.Todo values through the executor. Absence is
// a value: lookups on missing ids return (nil, nil).
type TodoRepository struct {
	exec   *database.Executor
	logger *zap.Logger
}

// NewTodoRepository creates a todo repository over the given executor.
func NewTodoRepository(exec *database.Executor, logger *zap.Logger) *TodoRepository {
	return &TodoRepository{
		exec:   exec,
		logger: logger.With(zap.String("component", "todo_repository")),
	}
}

func todoFromRow(row *database.Row) (*domain.Todo, error) {
	id, err := rowInt64("todo", row, "todo_id")
	if err != nil {
		return nil, err
	}
	owner, err := rowString("todo", row, "owner")
	if err != nil {
		return nil, err
	}
	name, err := rowString("todo", row, "name")
	if err != nil {
		return nil, err
	}
	rawStatus, err := rowString("todo", row, "status")
	if err != nil {
		return nil, err
	}
	status, err := domain.ParseTodoStatus(rawStatus)
	if err != nil {
		return nil, newMappingError("todo", "status", "%v", err)
	}
	createdAt, err := rowTime("todo", row, "created_at")
	if err != nil {
		return nil, err
	}
	updatedAt, err := rowTime("todo", row, "updated_at")
	if err != nil {
		return nil, err
	}

	return &domain.Todo{
		ID:        id,
		Owner:     owner,
		Name:      name,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// Get fetches one todo by id; (nil, nil) when absent. A positive
// prefetchTasks additionally loads up to that many of the todo's tasks on the
// same connection.
func (r *TodoRepository) Get(ctx context.Context, id int64, prefetchTasks int) (*domain.Todo, error) {
	if prefetchTasks <= 0 {
		row, err := r.exec.FetchOne(ctx, selectByPK(todoTable, todoPK), id)
		if err != nil || row == nil {
			return nil, err
		}
		return todoFromRow(row)
	}

	var todo *domain.Todo
	err := r.exec.WithConn(ctx, func(ctx context.Context, conn *database.Conn) error {
		row, err := conn.FetchOne(ctx, selectByPK(todoTable, todoPK), id)
		if err != nil || row == nil {
			return err
		}
		todo, err = todoFromRow(row)
		if err != nil {
			return err
		}

		taskRows, err := conn.FetchMany(ctx, prefetchTasksQuery, id, prefetchTasks)
		if err != nil {
			return err
		}
		for i := range taskRows {
			task, err := taskFromRow(&taskRows[i])
			if err != nil {
				return err
			}
			todo.Tasks = append(todo.Tasks, *task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return todo, nil
}

// List returns todos with ids greater than after, ascending, at most limit.
// A non-positive limit falls back to DefaultListLimit.
func (r *TodoRepository) List(ctx context.Context, after int64, limit int) ([]domain.Todo, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.exec.FetchMany(ctx, listAfter(todoTable, todoPK), after, limit)
	if err != nil {
		return nil, err
	}

	todos := make([]domain.Todo, 0, len(rows))
	for i := range rows {
		todo, err := todoFromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		todos = append(todos, *todo)
	}
	return todos, nil
}

// Create inserts a new todo and returns the stored record.
func (r *TodoRepository) Create(ctx context.Context, payload domain.CreateTodo) (*domain.Todo, error) {
	payload.Normalize()
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	row, err := r.exec.FetchOne(ctx,
		insertReturning(todoTable, []string{"owner", "name", "status"}),
		payload.Owner, payload.Name, string(payload.Status))
	if err != nil {
		return nil, err
	}
	r.logger.Debug("todo created", zap.String("owner", payload.Owner))
	return todoFromRow(row)
}

// Update applies the set fields of payload to one todo and returns the stored
// record; (nil, nil) when the id does not exist.
func (r *TodoRepository) Update(ctx context.Context, id int64, payload domain.UpdateTodo) (*domain.Todo, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	var columns []string
	var args []any
	if payload.Owner != nil {
		columns = append(columns, "owner")
		args = append(args, *payload.Owner)
	}
	if payload.Name != nil {
		columns = append(columns, "name")
		args = append(args, *payload.Name)
	}
	if payload.Status != nil {
		columns = append(columns, "status")
		args = append(args, string(*payload.Status))
	}
	columns = append(columns, "updated_at")
	args = append(args, time.Now().UTC())
	args = append(args, id)

	row, err := r.exec.FetchOne(ctx, updateReturning(todoTable, todoPK, columns), args...)
	if err != nil || row == nil {
		return nil, err
	}
	return todoFromRow(row)
}

// Delete removes one todo by id, reporting whether a record existed. Tasks go
// with it via the FK cascade.
func (r *TodoRepository) Delete(ctx context.Context, id int64) (bool, error) {
	row, err := r.exec.FetchOne(ctx, deleteReturning(todoTable, todoPK), id)
	if err != nil {
		return false, err
	}
	return row != nil, nil
}

// Estimate returns the planner's row-count estimate for the todos table,
// running ANALYZE once if the table has never been analyzed.
func (r *TodoRepository) Estimate(ctx context.Context) (int64, error) {
	return estimateRows(ctx, r.exec, todoTable)
}

// estimateRows reads pg_class.reltuples; a fresh table reports -1, in which
// case one ANALYZE pass refreshes the estimate on the same connection.
func estimateRows(ctx context.Context, exec *database.Executor, table string) (int64, error) {
	var estimate int64
	err := exec.WithConn(ctx, func(ctx context.Context, conn *database.Conn) error {
		read := func() error {
			row, err := conn.FetchOne(ctx, estimateCount(table))
			if err != nil {
				return err
			}
			if row == nil {
				return newMappingError(table, "estimate", "no estimate row returned")
			}
			estimate, err = rowInt64(table, row, "estimate")
			return err
		}

		if err := read(); err != nil {
			return err
		}
		if estimate < 0 {
			if _, err := conn.Execute(ctx, "ANALYZE "+table); err != nil {
				return err
			}
			return read()
		}
		return nil
	})
	return estimate, err
}
