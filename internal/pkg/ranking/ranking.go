// Package ranking resolves measure and dimension columns against a tabular
// source and ranks its rows by the measure.
package ranking

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/futig/dash-chat/internal/entity"
)

// BlankLabel replaces empty dimension values.
const BlankLabel = "(blank)"

// Source is the minimal capability both the local table and a remote
// worksheet expose to the ranking.
type Source interface {
	Columns() []string
	NumericColumns() []string
	RowCount() int
	Label(row int, column string) string
	Measure(row int, column string) float64
}

// Selection is the outcome of column resolution.
type Selection struct {
	Measure   string
	Dimension string
}

// ResolveColumns picks the measure and dimension columns for a measure keyword.
func ResolveColumns(src Source, measureKeyword string) (Selection, error) {
	numeric := src.NumericColumns()
	if len(numeric) == 0 {
		return Selection{}, entity.ErrNoMeasure
	}

	keyword := strings.ToLower(measureKeyword)
	measure := numeric[0]
	for _, c := range numeric {
		if strings.Contains(strings.ToLower(c), keyword) {
			measure = c
			break
		}
	}

	columns := src.Columns()
	dimension := measure
	if len(columns) > 0 {
		dimension = columns[0]
	}
	for _, c := range columns {
		if c != measure {
			dimension = c
			break
		}
	}

	return Selection{Measure: measure, Dimension: dimension}, nil
}

// RankTopN ranks the rows of src by the intent's measure, highest first,
// and keeps intent.Count of them. Callers apply their default measure
// keyword to the intent beforehand.
func RankTopN(intent entity.QueryIntent, src Source) (*entity.QueryResult, error) {
	n := src.RowCount()
	if n == 0 {
		return nil, entity.ErrNoData
	}

	sel, err := ResolveColumns(src, intent.Measure)
	if err != nil {
		return nil, err
	}

	rows := make([]entity.RankedRow, n)
	for i := 0; i < n; i++ {
		label := src.Label(i, sel.Dimension)
		if label == "" {
			label = BlankLabel
		}
		rows[i] = entity.RankedRow{Label: label, Value: src.Measure(i, sel.Measure)}
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Value > rows[b].Value
	})

	limit := max(intent.Count, 0)
	if limit < len(rows) {
		rows = rows[:limit]
	}
	if len(rows) == 0 {
		return nil, entity.ErrNoRows
	}

	result := &entity.QueryResult{
		Reply:   FormatReply(intent.Count, sel.Measure, rows),
		Labels:  make([]string, len(rows)),
		Values:  make([]float64, len(rows)),
		Measure: sel.Measure,
		Chart:   entity.ChartBar,
		Color:   entity.ChartColor(sel.Measure),
	}
	for i, r := range rows {
		result.Labels[i] = r.Label
		result.Values[i] = r.Value
	}
	return result, nil
}

// FormatReply renders the numbered list shown in the chat bubble.
func FormatReply(count int, measure string, rows []entity.RankedRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Top %d by %s:\n", count, measure)
	for i, r := range rows {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, r.Label, FormatValue(r.Value))
	}
	return b.String()
}

// FormatValue prints a value in its shortest decimal form.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
