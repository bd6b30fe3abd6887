// Package tabular holds a loosely-typed table loaded from delimited text.
package tabular

import (
	"sync"

	"github.com/futig/dash-chat/internal/entity"
)

// Row maps a column name to its raw, unparsed value.
type Row map[string]string

// Table is a rectangular in-memory table. Every row has a value for every
// declared column. Load replaces the whole table.
type Table struct {
	mu      sync.RWMutex
	columns []string
	rows    []Row
}

func NewTable() *Table {
	return &Table{}
}

// Load parses raw CSV text and replaces the current contents.
func (t *Table) Load(raw string) entity.TableInfo {
	columns, rows := parse(raw)

	t.mu.Lock()
	t.columns = columns
	t.rows = rows
	t.mu.Unlock()

	return entity.TableInfo{Columns: append([]string(nil), columns...), RowCount: len(rows)}
}

// Columns returns a copy of the column names in file order.
func (t *Table) Columns() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.columns...)
}

func (t *Table) RowCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Value returns the raw value of column in row, or "" when out of range.
func (t *Table) Value(row int, column string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if row < 0 || row >= len(t.rows) {
		return ""
	}
	return t.rows[row][column]
}

// NumericColumns returns, in column order, every column where at least one
// value parses as a number. One numeric value among many non-numeric ones
// is enough.
func (t *Table) NumericColumns() []string {
	return t.Snapshot().NumericColumns()
}

// Snapshot returns an immutable view of the current contents.
func (t *Table) Snapshot() *Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return &Snapshot{columns: t.columns, rows: t.rows}
}

func parse(raw string) ([]string, []Row) {
	lines := SplitLines(raw)
	if len(lines) == 0 {
		return []string{}, []Row{}
	}

	header := SplitLine(lines[0])
	rows := make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		parts := SplitLine(line)
		r := make(Row, len(header))
		for i, h := range header {
			if i < len(parts) {
				r[h] = parts[i]
			} else {
				r[h] = ""
			}
		}
		rows = append(rows, r)
	}
	return header, rows
}
