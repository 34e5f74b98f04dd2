package dataset

import (
	"fmt"
	"strings"
)

// Table is an ordered collection of homogeneous-width rows. Every row has
// exactly one cell per column, in column order.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// NewTable creates an empty table with the given column set
func NewTable(columns []string) (*Table, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("table requires at least one column")
	}

	index := make(map[string]int, len(columns))
	cols := make([]string, len(columns))
	for i, name := range columns {
		if name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", name)
		}
		index[name] = i
		cols[i] = name
	}

	return &Table{columns: cols, index: index}, nil
}

// Columns returns the column names in schema order
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// NumColumns returns the width of the table
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// NumRows returns the number of rows
func (t *Table) NumRows() int {
	return len(t.rows)
}

// HasColumn reports whether the table has the named column
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// ColumnIndex returns the position of the named column
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// AppendRow adds a row; it must be exactly one cell per column
func (t *Table) AppendRow(values []Value) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(values), len(t.columns))
	}
	row := make([]Value, len(values))
	copy(row, values)
	t.rows = append(t.rows, row)
	return nil
}

// Value returns the cell at (row, column). Absent columns read as missing,
// which lets every scan treat a column it needs but does not find as "not
// applicable" instead of failing.
func (t *Table) Value(row int, column string) Value {
	col, ok := t.index[column]
	if !ok {
		return Missing()
	}
	return t.rows[row][col]
}

// ValueAt returns the cell at a known (row, column) position
func (t *Table) ValueAt(row, col int) Value {
	return t.rows[row][col]
}

// SetValueAt rewrites the cell at a known (row, column) position
func (t *Table) SetValueAt(row, col int, v Value) {
	t.rows[row][col] = v
}

// Row returns a copy of row i in column order
func (t *Table) Row(i int) []Value {
	out := make([]Value, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	clone := &Table{
		columns: t.columns,
		index:   t.index,
		rows:    make([][]Value, len(t.rows)),
	}
	for i, row := range t.rows {
		cloned := make([]Value, len(row))
		copy(cloned, row)
		clone.rows[i] = cloned
	}
	return clone
}

// Filter returns a new table holding copies of the rows keep selects,
// preserving their order. keep is invoked once per row, in row order, so
// stateful predicates such as first-occurrence checks behave predictably.
func (t *Table) Filter(keep func(row int) bool) *Table {
	out := &Table{columns: t.columns, index: t.index}
	for i := range t.rows {
		if !keep(i) {
			continue
		}
		row := make([]Value, len(t.rows[i]))
		copy(row, t.rows[i])
		out.rows = append(out.rows, row)
	}
	return out
}

// RowKey returns a collision-free identity key over all cells of row i.
// Two rows are exact duplicates iff their keys are equal.
func (t *Table) RowKey(i int) string {
	var b strings.Builder
	for _, v := range t.rows[i] {
		v.appendKey(&b)
	}
	return b.String()
}
