// Package table provides the small column-ordered table the ranking pipeline passes between stages.
//
// A Table is immutable by convention: every transformation returns a new Table and leaves
// its receiver untouched, so each stage can be tested on its own snapshot.
package table

import (
	"math"
	"strconv"
	"strings"
)

// Table holds ordered columns and rows of string cells. A missing cell is the empty string.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New builds a table from columns and rows. Rows shorter than the header are padded.
func New(columns []string, rows [][]string) *Table {
	cols := append([]string(nil), columns...)
	out := make([][]string, len(rows))
	for i, row := range rows {
		r := make([]string, len(cols))
		copy(r, row)
		out[i] = r
	}
	return build(cols, out)
}

// Empty returns a table with no columns and no rows.
func Empty() *Table {
	return build(nil, nil)
}

func build(columns []string, rows [][]string) *Table {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[c] = i
	}
	return &Table{columns: columns, index: idx, rows: rows}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// HasColumn reports whether name is an exact column name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Find resolves name case-insensitively and returns the stored column name.
func (t *Table) Find(name string) (string, bool) {
	if t.HasColumn(name) {
		return name, true
	}
	for _, c := range t.columns {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}

// FindPrefix returns the first column whose lowercased name starts with prefix.
func (t *Table) FindPrefix(prefix string) (string, bool) {
	prefix = strings.ToLower(prefix)
	for _, c := range t.columns {
		if strings.HasPrefix(strings.ToLower(c), prefix) {
			return c, true
		}
	}
	return "", false
}

// ColumnIndex returns the position of column name, or -1.
func (t *Table) ColumnIndex(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Cell returns the cell at row i in column name, or "" when the column is absent.
func (t *Table) Cell(i int, name string) string {
	c, ok := t.index[name]
	if !ok {
		return ""
	}
	return t.rows[i][c]
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []string {
	return append([]string(nil), t.rows[i]...)
}

// Record returns row i as a column-to-cell map.
func (t *Table) Record(i int) map[string]string {
	rec := make(map[string]string, len(t.columns))
	for c, name := range t.columns {
		rec[name] = t.rows[i][c]
	}
	return rec
}

// Float coerces the cell at row i in column name. Missing or unparsable cells are NaN.
func (t *Table) Float(i int, name string) float64 {
	v, _ := ParseFloat(t.Cell(i, name))
	return v
}

// Floats coerces a whole column and reports how many non-empty cells failed to parse.
func (t *Table) Floats(name string) ([]float64, int) {
	out := make([]float64, len(t.rows))
	failed := 0
	for i := range t.rows {
		v, ok := ParseFloat(t.Cell(i, name))
		if !ok {
			failed++
		}
		out[i] = v
	}
	return out, failed
}

// Strings returns a copy of a column's cells.
func (t *Table) Strings(name string) []string {
	out := make([]string, len(t.rows))
	for i := range t.rows {
		out[i] = t.Cell(i, name)
	}
	return out
}

// ParseFloat parses a numeric cell. The bool is false only when a non-empty cell is not a number.
func ParseFloat(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return math.NaN(), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), false
	}
	return v, true
}

// FormatFloat renders a float cell. NaN renders as a missing cell.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WithColumn inserts a column at position at (clamped), or replaces it in place when it already exists.
func (t *Table) WithColumn(name string, values []string, at int) *Table {
	if c, ok := t.index[name]; ok {
		rows := t.cloneRows()
		for i := range rows {
			rows[i][c] = valueAt(values, i)
		}
		return build(t.Columns(), rows)
	}
	if at < 0 || at > len(t.columns) {
		at = len(t.columns)
	}
	cols := make([]string, 0, len(t.columns)+1)
	cols = append(cols, t.columns[:at]...)
	cols = append(cols, name)
	cols = append(cols, t.columns[at:]...)
	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		r := make([]string, 0, len(cols))
		r = append(r, row[:at]...)
		r = append(r, valueAt(values, i))
		r = append(r, row[at:]...)
		rows[i] = r
	}
	return build(cols, rows)
}

// WithFloatColumn appends (or replaces) a numeric column.
func (t *Table) WithFloatColumn(name string, values []float64) *Table {
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = FormatFloat(v)
	}
	return t.WithColumn(name, cells, len(t.columns))
}

// Fill returns a column of n copies of value.
func Fill(value string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = value
	}
	return out
}

// Select returns the rows at indices, in the order given.
func (t *Table) Select(indices []int) *Table {
	rows := make([][]string, len(indices))
	for i, idx := range indices {
		rows[i] = append([]string(nil), t.rows[idx]...)
	}
	return build(t.Columns(), rows)
}

// Where keeps rows for which keep returns true, preserving order.
func (t *Table) Where(keep func(i int) bool) *Table {
	var indices []int
	for i := range t.rows {
		if keep(i) {
			indices = append(indices, i)
		}
	}
	return t.Select(indices)
}

// MoveColumn moves an existing column to position at. Absent columns leave the table unchanged.
func (t *Table) MoveColumn(name string, at int) *Table {
	from, ok := t.index[name]
	if !ok || from == at {
		return t.Select(t.allRows())
	}
	order := make([]int, 0, len(t.columns))
	for i := range t.columns {
		if i != from {
			order = append(order, i)
		}
	}
	if at < 0 || at > len(order) {
		at = len(order)
	}
	order = append(order[:at], append([]int{from}, order[at:]...)...)
	return t.reorder(order)
}

// DropColumns removes the named columns when present.
func (t *Table) DropColumns(names ...string) *Table {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	var order []int
	for i, c := range t.columns {
		if !drop[c] {
			order = append(order, i)
		}
	}
	return t.reorder(order)
}

// RenameColumns applies fn to every column name. Later duplicates get pandas-style ".N" suffixes.
func (t *Table) RenameColumns(fn func(string) string) *Table {
	cols := make([]string, len(t.columns))
	for i, c := range t.columns {
		cols[i] = fn(c)
	}
	return build(dedupe(cols), t.cloneRows())
}

// Concat stacks tables with a union of their columns in first-seen order.
func Concat(tables ...*Table) *Table {
	var cols []string
	seen := map[string]bool{}
	total := 0
	for _, tb := range tables {
		for _, c := range tb.columns {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
		total += len(tb.rows)
	}
	rows := make([][]string, 0, total)
	for _, tb := range tables {
		for i := range tb.rows {
			r := make([]string, len(cols))
			for c, name := range cols {
				r[c] = tb.Cell(i, name)
			}
			rows = append(rows, r)
		}
	}
	return build(cols, rows)
}

func (t *Table) reorder(order []int) *Table {
	cols := make([]string, len(order))
	for i, o := range order {
		cols[i] = t.columns[o]
	}
	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		r := make([]string, len(order))
		for j, o := range order {
			r[j] = row[o]
		}
		rows[i] = r
	}
	return build(cols, rows)
}

func (t *Table) allRows() []int {
	out := make([]int, len(t.rows))
	for i := range out {
		out[i] = i
	}
	return out
}

func (t *Table) cloneRows() [][]string {
	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		rows[i] = append([]string(nil), row...)
	}
	return rows
}

func valueAt(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

func dedupe(cols []string) []string {
	seen := make(map[string]int, len(cols))
	out := make([]string, len(cols))
	for i, c := range cols {
		n, dup := seen[c]
		seen[c] = n + 1
		if !dup {
			out[i] = c
			continue
		}
		name := c + "." + strconv.Itoa(n)
		for seen[name] > 0 {
			n++
			name = c + "." + strconv.Itoa(n)
		}
		seen[name] = 1
		out[i] = name
	}
	return out
}
