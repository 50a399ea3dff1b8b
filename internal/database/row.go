package database

// Row is one result tuple, an ordered mapping from column name to scalar or
// nil. Rows are immutable once constructed: accessors return copies, and the
// executor never retains a reference after handing one out. A Row carries no
// persistent identity; it is discarded once the caller has consumed it.
type Row struct {
	columns []string
	values  []any
	index   map[string]int
}

// newRow builds a Row from parallel column and value slices. Both slices are
// copied. Column names are unique within a result set; the executor relies on
// the driver for that.
func newRow(columns []string, values []any) Row {
	cols := make([]string, len(columns))
	copy(cols, columns)

	vals := make([]any, len(values))
	copy(vals, values)

	index := make(map[string]int, len(cols))
	for i, name := range cols {
		index[name] = i
	}

	return Row{columns: cols, values: vals, index: index}
}

// Len returns the number of columns.
func (r Row) Len() int { return len(r.columns) }

// Columns returns the column names in result order.
func (r Row) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Value returns the value for the named column and whether the column exists.
// A present column holding SQL NULL yields (nil, true).
func (r Row) Value(name string) (any, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// At returns the column name and value at position i.
func (r Row) At(i int) (string, any) {
	return r.columns[i], r.values[i]
}
