package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectByPK(t *testing.T) {
	assert.Equal(t,
		"SELECT * FROM todos WHERE todo_id = $1",
		selectByPK("todos", "todo_id"))
}

func TestListAfter(t *testing.T) {
	assert.Equal(t,
		"SELECT * FROM tasks WHERE task_id > $1 ORDER BY task_id LIMIT $2",
		listAfter("tasks", "task_id"))
}

func TestInsertReturning(t *testing.T) {
	assert.Equal(t,
		"INSERT INTO todos (owner, name, status) VALUES ($1, $2, $3) RETURNING *",
		insertReturning("todos", []string{"owner", "name", "status"}))
}

func TestUpdateReturning(t *testing.T) {
	// The primary key binds last so placeholders stay ascending.
	assert.Equal(t,
		"UPDATE todos SET owner = $1, status = $2 WHERE todo_id = $3 RETURNING *",
		updateReturning("todos", "todo_id", []string{"owner", "status"}))

	assert.Equal(t,
		"UPDATE tasks SET due = $1 WHERE task_id = $2 RETURNING *",
		updateReturning("tasks", "task_id", []string{"due"}))
}

func TestDeleteReturning(t *testing.T) {
	assert.Equal(t,
		"DELETE FROM tasks WHERE task_id = $1 RETURNING task_id",
		deleteReturning("tasks", "task_id"))
}

func TestEstimateCount(t *testing.T) {
	assert.Equal(t,
		"SELECT reltuples::bigint AS estimate FROM pg_class WHERE oid = 'public.todos'::regclass",
		estimateCount("todos"))
}
