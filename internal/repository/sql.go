package repository

import (
	"fmt"
	"strings"
)

// Query builders. Placeholders are numbered in the order the arguments are
// bound, ascending left to right, so the generated text works identically
// under pgx and the SQLite test driver.

func selectByPK(table, pk string) string {
	return fmt.Sprintf("SELECT * FROM %s WHERE %s = $1", table, pk)
}

// listAfter implements keyset offsets: the caller passes the last seen
// primary key instead of an OFFSET count.
func listAfter(table, pk string) string {
	return fmt.Sprintf(
		"SELECT * FROM %s WHERE %s > $1 ORDER BY %s LIMIT $2",
		table, pk, pk,
	)
}

func insertReturning(table string, columns []string) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)
}

// updateReturning binds the SET values first and the primary key last, so the
// placeholder sequence stays ascending.
func updateReturning(table, pk string, columns []string) string {
	assignments := make([]string, len(columns))
	for i, col := range columns {
		assignments[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	return fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s = $%d RETURNING *",
		table,
		strings.Join(assignments, ", "),
		pk,
		len(columns)+1,
	)
}

func deleteReturning(table, pk string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s = $1 RETURNING %s", table, pk, pk)
}

// estimateCount reads the planner's row estimate instead of counting;
// PostgreSQL only.
func estimateCount(table string) string {
	return fmt.Sprintf(
		"SELECT reltuples::bigint AS estimate FROM pg_class WHERE oid = 'public.%s'::regclass",
		table,
	)
}

const prefetchTasksQuery = "SELECT * FROM tasks WHERE todo_id = $1 ORDER BY task_id LIMIT $2"
