// pkg/table/table.go
package table

import (
	"errors"
	"fmt"
)

// Kind identifies the representational type a column currently carries.
// Cells are stored as interface values; a nil cell is the missing marker,
// which is distinct from any domain value including "" and "N/A".
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindFloat
	KindDateTime
)

// String returns a human-readable name for the kind
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDateTime:
		return "datetime"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Column is a named sequence of cells sharing a representational kind
type Column struct {
	Name   string
	Kind   Kind
	Values []any
}

// Table is an ordered collection of named, equal-length columns.
// Positional index i across all columns describes one logical record.
type Table struct {
	cols []Column
}

// ColumnNotFoundError reports a reference to a column name that does not
// exist in the table. This is the only structural failure the cleaning
// operations can raise.
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column not found: %s", e.Column)
}

// IsColumnNotFound reports whether err wraps a ColumnNotFoundError
func IsColumnNotFound(err error) bool {
	var cnf *ColumnNotFoundError
	return errors.As(err, &cnf)
}

// New creates a table from the given columns, validating row alignment
// and column name uniqueness
func New(cols ...Column) (*Table, error) {
	t := &Table{}
	for _, col := range cols {
		if err := t.AddColumn(col); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// NumRows returns the number of logical records
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0].Values)
}

// NumCols returns the number of columns
func (t *Table) NumCols() int {
	return len(t.cols)
}

// Columns returns the column names in table order
func (t *Table) Columns() []string {
	names := make([]string, len(t.cols))
	for i, col := range t.cols {
		names[i] = col.Name
	}
	return names
}

// HasColumn reports whether a column with the given name exists
func (t *Table) HasColumn(name string) bool {
	return t.index(name) >= 0
}

// Column returns the named column, or ColumnNotFoundError if absent.
// The returned pointer aliases table storage; mutations are visible.
func (t *Table) Column(name string) (*Column, error) {
	i := t.index(name)
	if i < 0 {
		return nil, &ColumnNotFoundError{Column: name}
	}
	return &t.cols[i], nil
}

// AddColumn appends a column, enforcing alignment and name uniqueness
func (t *Table) AddColumn(col Column) error {
	if col.Name == "" {
		return errors.New("column name cannot be empty")
	}
	if t.HasColumn(col.Name) {
		return fmt.Errorf("duplicate column name: %s", col.Name)
	}
	if len(t.cols) > 0 && len(col.Values) != t.NumRows() {
		return fmt.Errorf("column %s has %d values, table has %d rows",
			col.Name, len(col.Values), t.NumRows())
	}
	t.cols = append(t.cols, col)
	return nil
}

// SetColumn replaces the named column's kind and values in place, or
// appends the column when no column with that name exists yet
func (t *Table) SetColumn(col Column) error {
	i := t.index(col.Name)
	if i < 0 {
		return t.AddColumn(col)
	}
	if len(col.Values) != t.NumRows() {
		return fmt.Errorf("column %s has %d values, table has %d rows",
			col.Name, len(col.Values), t.NumRows())
	}
	t.cols[i] = col
	return nil
}

// Rename changes a column's name in place, preserving order and values
func (t *Table) Rename(oldName, newName string) error {
	i := t.index(oldName)
	if i < 0 {
		return &ColumnNotFoundError{Column: oldName}
	}
	if newName == "" {
		return errors.New("column name cannot be empty")
	}
	if newName != oldName && t.HasColumn(newName) {
		return fmt.Errorf("duplicate column name: %s", newName)
	}
	t.cols[i].Name = newName
	return nil
}

// Row returns the cell values at index i in column order
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.cols))
	for c, col := range t.cols {
		row[c] = col.Values[i]
	}
	return row
}

// AppendRow adds one record; values must match the column count
func (t *Table) AppendRow(values []any) error {
	if len(values) != len(t.cols) {
		return fmt.Errorf("row has %d values, table has %d columns",
			len(values), len(t.cols))
	}
	for c := range t.cols {
		t.cols[c].Values = append(t.cols[c].Values, values[c])
	}
	return nil
}

// Filter keeps only the rows for which keep returns true, preserving
// relative order. All columns are filtered together so alignment holds.
func (t *Table) Filter(keep func(i int) bool) {
	n := t.NumRows()
	kept := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if keep(i) {
			kept = append(kept, i)
		}
	}
	if len(kept) == n {
		return
	}
	for c := range t.cols {
		values := make([]any, len(kept))
		for j, i := range kept {
			values[j] = t.cols[c].Values[i]
		}
		t.cols[c].Values = values
	}
}

// Clone returns a deep copy of the table structure and cell slices.
// Cell values themselves are immutable scalars and are shared.
func (t *Table) Clone() *Table {
	clone := &Table{cols: make([]Column, len(t.cols))}
	for i, col := range t.cols {
		values := make([]any, len(col.Values))
		copy(values, col.Values)
		clone.cols[i] = Column{Name: col.Name, Kind: col.Kind, Values: values}
	}
	return clone
}

// MissingCount returns the total number of missing cells in the table
func (t *Table) MissingCount() int {
	count := 0
	for _, col := range t.cols {
		for _, v := range col.Values {
			if v == nil {
				count++
			}
		}
	}
	return count
}

// RowHasMissing reports whether any column is missing a value at row i
func (t *Table) RowHasMissing(i int) bool {
	for _, col := range t.cols {
		if col.Values[i] == nil {
			return true
		}
	}
	return false
}

func (t *Table) index(name string) int {
	for i := range t.cols {
		if t.cols[i].Name == name {
			return i
		}
	}
	return -1
}
