package tabular

// Snapshot is a read-only view of a table at one point in time. A later
// Load on the table does not affect it, so a ranking never mixes two files.
type Snapshot struct {
	columns []string
	rows    []Row
}

func (s *Snapshot) Columns() []string {
	return append([]string(nil), s.columns...)
}

func (s *Snapshot) RowCount() int {
	return len(s.rows)
}

func (s *Snapshot) NumericColumns() []string {
	var numeric []string
	if len(s.rows) == 0 {
		return numeric
	}
	for _, col := range s.columns {
		for _, r := range s.rows {
			if IsNumericCell(r[col]) {
				numeric = append(numeric, col)
				break
			}
		}
	}
	return numeric
}

// Label returns the raw value used as a ranking label.
func (s *Snapshot) Label(row int, column string) string {
	return s.rows[row][column]
}

// Measure parses the raw value, yielding 0 when it is not a number.
func (s *Snapshot) Measure(row int, column string) float64 {
	return NumberOrZero(s.rows[row][column])
}
