package entity

import "strings"

const (
	ChartBar  = "bar"
	ChartLine = "line"
)

const defaultChartColor = "#38bdf8"

var measureColors = map[string]string{
	"sales":    "#4ade80",
	"revenue":  "#60a5fa",
	"profit":   "#f59e0b",
	"quantity": "#c084fc",
	"trips":    "#34d399",
}

// ChartColor returns the palette colour for a measure name.
func ChartColor(measure string) string {
	if c, ok := measureColors[strings.ToLower(measure)]; ok {
		return c
	}
	return defaultChartColor
}
