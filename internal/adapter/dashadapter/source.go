package dashadapter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/futig/dash-chat/internal/entity"
	"github.com/futig/dash-chat/internal/pkg/tabular"
)

// numericTypes are the declared field types treated as measures.
var numericTypes = map[string]bool{
	"int":     true,
	"integer": true,
	"float":   true,
	"double":  true,
	"number":  true,
	"decimal": true,
	"real":    true,
}

// worksheetSource exposes a worksheet's summary data to the ranking.
type worksheetSource struct {
	table *entity.DataTable
	index map[string]int
}

func newWorksheetSource(table *entity.DataTable) *worksheetSource {
	index := make(map[string]int, len(table.Columns))
	for i, c := range table.Columns {
		if _, dup := index[c.FieldName]; !dup {
			index[c.FieldName] = i
		}
	}
	return &worksheetSource{table: table, index: index}
}

func (s *worksheetSource) Columns() []string {
	cols := make([]string, len(s.table.Columns))
	for i, c := range s.table.Columns {
		cols[i] = c.FieldName
	}
	return cols
}

func (s *worksheetSource) NumericColumns() []string {
	var numeric []string
	for _, c := range s.table.Columns {
		if numericTypes[strings.ToLower(c.DataType)] {
			numeric = append(numeric, c.FieldName)
		}
	}
	return numeric
}

func (s *worksheetSource) RowCount() int {
	return len(s.table.Data)
}

func (s *worksheetSource) Label(row int, column string) string {
	cell, ok := s.cell(row, column)
	if !ok {
		return ""
	}
	if cell.FormattedValue != "" {
		return cell.FormattedValue
	}
	if cell.Value == nil {
		return ""
	}
	return fmt.Sprint(cell.Value)
}

func (s *worksheetSource) Measure(row int, column string) float64 {
	cell, ok := s.cell(row, column)
	if !ok {
		return 0
	}
	return toNumber(cell.Value)
}

func (s *worksheetSource) cell(row int, column string) (entity.DataValue, bool) {
	col, ok := s.index[column]
	if !ok || row < 0 || row >= len(s.table.Data) || col >= len(s.table.Data[row]) {
		return entity.DataValue{}, false
	}
	return s.table.Data[row][col], true
}

// toNumber converts a raw cell value; anything non-numeric counts as zero.
func toNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	case json.Number:
		return tabular.NumberOrZero(n.String())
	case string:
		return tabular.NumberOrZero(n)
	default:
		return 0
	}
}
