// pkg/model/table.go
package model

import (
	"fmt"
	"maps"
)

// State tags a table (or a session) with how far through cleaning it has gone
type State int

const (
	// StateRaw marks tables as loaded, before any cleaning
	StateRaw State = iota
	// StateCleaned marks tables produced by the reconciliation pipeline
	StateCleaned
)

// String returns a string representation of the state
func (s State) String() string {
	switch s {
	case StateRaw:
		return "raw"
	case StateCleaned:
		return "cleaned"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ParseState converts a stored state name back into a State
func ParseState(s string) (State, error) {
	switch s {
	case "raw", "":
		return StateRaw, nil
	case "cleaned":
		return StateCleaned, nil
	default:
		return StateRaw, fmt.Errorf("unknown table state %q", s)
	}
}

// Row is a single record keyed by column name. Missing keys and nil values both mean absent.
type Row map[string]interface{}

// Table is an in-memory batch of rows with an ordered column set
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
	State   State
}

// NewTable creates a raw table with the given columns and rows
func NewTable(name string, columns []string, rows ...Row) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	if rows == nil {
		rows = []Row{}
	}
	return &Table{
		Name:    name,
		Columns: cols,
		Rows:    rows,
		State:   StateRaw,
	}
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether the column is part of the table's schema
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// ColumnIndex returns the position of a column or -1
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Require returns a MissingColumnError for the first absent column
func (t *Table) Require(columns ...string) error {
	for _, col := range columns {
		if !t.HasColumn(col) {
			return &MissingColumnError{Table: t.Name, Column: col}
		}
	}
	return nil
}

// Values returns the column as a slice in row order
func (t *Table) Values(column string) []interface{} {
	values := make([]interface{}, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[column]
	}
	return values
}

// WithRows returns a table sharing this table's schema and state but holding rows.
// The rows are used as given; callers pass rows they own.
func (t *Table) WithRows(rows []Row) *Table {
	cols := make([]string, len(t.Columns))
	copy(cols, t.Columns)
	if rows == nil {
		rows = []Row{}
	}
	return &Table{
		Name:    t.Name,
		Columns: cols,
		Rows:    rows,
		State:   t.State,
	}
}

// WithState returns a shallow copy of the table carrying a different state tag
func (t *Table) WithState(state State) *Table {
	out := t.WithRows(t.Rows)
	out.State = state
	return out
}

// Filter returns the rows for which keep returns true, preserving order.
// Rows are shared with the receiver; neither side writes to them afterwards.
func (t *Table) Filter(keep func(Row) bool) *Table {
	rows := make([]Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		if keep(row) {
			rows = append(rows, row)
		}
	}
	return t.WithRows(rows)
}

// DropColumns returns a copy without the named columns and the list actually removed.
// Names that are not present are ignored.
func (t *Table) DropColumns(names ...string) (*Table, []string) {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}

	var dropped []string
	cols := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		if _, ok := drop[col]; ok {
			dropped = append(dropped, col)
			continue
		}
		cols = append(cols, col)
	}

	rows := make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		r := make(Row, len(cols))
		for _, col := range cols {
			if v, ok := row[col]; ok {
				r[col] = v
			}
		}
		rows[i] = r
	}

	out := t.WithRows(rows)
	out.Columns = cols
	return out, dropped
}

// Clone deep-copies the row maps so the result can be written freely
func (t *Table) Clone() *Table {
	rows := make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = maps.Clone(row)
	}
	return t.WithRows(rows)
}

// AddColumn appends a column to the schema if it is not already there
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}
