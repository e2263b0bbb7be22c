package models

import "sort"

// Row maps column names to cell values. Cells are scalars or opaque JSONArrays.
type Row map[string]JSONValue

// Table is a flat, ordered result of a conversion.
// Every row's keys are a subset of Columns; a missing key is an empty cell.
type Table struct {
	Columns []string
	Rows    []Row

	index map[string]int
}

// NewTable creates a table with the given columns and no rows.
func NewTable(columns ...string) *Table {
	t := &Table{
		Columns: make([]string, 0, len(columns)),
		Rows:    make([]Row, 0),
		index:   make(map[string]int, len(columns)),
	}
	for _, c := range columns {
		t.AddColumn(c)
	}
	return t
}

// AddColumn appends a column and reports whether it was new.
func (t *Table) AddColumn(name string) bool {
	t.ensureIndex()
	if _, ok := t.index[name]; ok {
		return false
	}
	t.index[name] = len(t.Columns)
	t.Columns = append(t.Columns, name)
	return true
}

// HasColumn reports whether name is a declared column.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// ColumnIndex returns the position of name in Columns, or -1.
func (t *Table) ColumnIndex(name string) int {
	t.ensureIndex()
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Append adds a row, declaring any of its keys not yet present as columns.
// New keys are added in sorted order since a Row carries no key order.
func (t *Table) Append(row Row) {
	t.AppendOrdered(sortedRowKeys(row), row)
}

// AppendOrdered adds a row, declaring unseen keys as columns in the order given.
// This gives first-insertion column order across all appended rows.
func (t *Table) AppendOrdered(keys []string, row Row) {
	for _, k := range keys {
		if _, ok := row[k]; ok {
			t.AddColumn(k)
		}
	}
	for _, k := range sortedRowKeys(row) {
		t.AddColumn(k)
	}
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Cell returns the value at row i for column col, or nil when absent.
func (t *Table) Cell(i int, col string) JSONValue {
	if i < 0 || i >= len(t.Rows) {
		return nil
	}
	return t.Rows[i][col]
}

// Project reindexes the table onto columns: unlisted columns are dropped and
// listed columns absent from the data become empty cells.
func (t *Table) Project(columns []string) *Table {
	out := NewTable(columns...)
	for _, row := range t.Rows {
		projected := make(Row, len(columns))
		for _, c := range columns {
			if v, ok := row[c]; ok {
				projected[c] = v
			}
		}
		out.Rows = append(out.Rows, projected)
	}
	return out
}

// Clone returns a copy whose rows and columns can be mutated independently.
// Cell values are shared.
func (t *Table) Clone() *Table {
	out := NewTable(t.Columns...)
	for _, row := range t.Rows {
		cp := make(Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out.Rows = append(out.Rows, cp)
	}
	return out
}

// ReplaceColumn swaps the column old for the given replacements at the same position.
// When keep is true, old stays in place ahead of the replacements.
func (t *Table) ReplaceColumn(old string, keep bool, replacements []string) {
	pos := t.ColumnIndex(old)
	if pos < 0 {
		return
	}
	next := make([]string, 0, len(t.Columns)+len(replacements))
	next = append(next, t.Columns[:pos]...)
	if keep {
		next = append(next, old)
	}
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		seen[c] = true
	}
	for _, r := range replacements {
		if !seen[r] {
			next = append(next, r)
			seen[r] = true
		}
	}
	next = append(next, t.Columns[pos+1:]...)
	t.Columns = next
	t.reindex()
}

func (t *Table) ensureIndex() {
	if t.index == nil || len(t.index) != len(t.Columns) {
		t.reindex()
	}
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		t.index[c] = i
	}
}

func sortedRowKeys(row Row) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
