package entity

// QueryIntent is the structured form of a free-text analytics question.
// Measure and Dimension are empty when no vocabulary keyword matched.
type QueryIntent struct {
	Count     int    `json:"count"`
	Measure   string `json:"measure,omitempty"`
	Dimension string `json:"dimension,omitempty"`
}

// MeasureOr returns the detected measure keyword or def when none was detected.
func (q QueryIntent) MeasureOr(def string) string {
	if q.Measure == "" {
		return def
	}
	return q.Measure
}

// HasDimension reports whether a dimension keyword was detected.
func (q QueryIntent) HasDimension() bool {
	return q.Dimension != ""
}

// RankedRow is a single (label, value) pair of a ranking.
type RankedRow struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// QueryResult is the normalized answer every adapter returns to the renderer.
type QueryResult struct {
	Reply   string    `json:"reply,omitempty"`
	Labels  []string  `json:"labels,omitempty"`
	Values  []float64 `json:"values,omitempty"`
	Measure string    `json:"measure,omitempty"`
	Chart   string    `json:"chart,omitempty"`
	Color   string    `json:"color,omitempty"`
}

// Advisory builds a reply-only result.
func Advisory(reply string) *QueryResult {
	return &QueryResult{Reply: reply}
}

// HasChart reports whether the renderer should draw a chart for the result.
func (r *QueryResult) HasChart() bool {
	return r != nil && len(r.Labels) > 0 && len(r.Values) > 0
}

// IsEmpty reports whether the result carries neither a reply nor chart labels.
// Empty results are forwarded to the language-model fallback.
func (r *QueryResult) IsEmpty() bool {
	return r == nil || (r.Reply == "" && len(r.Labels) == 0)
}

// Rows zips labels and values back into ranked rows.
func (r *QueryResult) Rows() []RankedRow {
	if r == nil {
		return nil
	}
	n := min(len(r.Labels), len(r.Values))
	rows := make([]RankedRow, n)
	for i := 0; i < n; i++ {
		rows[i] = RankedRow{Label: r.Labels[i], Value: r.Values[i]}
	}
	return rows
}

// TableInfo describes a loaded CSV table.
type TableInfo struct {
	Columns  []string `json:"columns"`
	RowCount int      `json:"row_count"`
}
