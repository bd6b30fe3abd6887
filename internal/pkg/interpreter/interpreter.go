// Package interpreter extracts a top-N intent from free-text analytics questions.
package interpreter

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/futig/dash-chat/internal/entity"
)

const (
	// DefaultCount is used when the query has no "top N" phrase.
	DefaultCount = 5
	// DefaultMeasure is the conventional measure when no keyword matched.
	DefaultMeasure = "sales"
)

// Vocabularies are matched in declared order; the first hit wins.
var (
	MeasureKeywords   = []string{"sales", "revenue", "profit", "trips", "rides", "amount", "fare", "count", "quantity"}
	DimensionKeywords = []string{"category", "region", "segment", "product", "country", "city", "state", "market", "driver", "date"}
)

var topPattern = regexp.MustCompile(`(?i)top\s+(\d+)`)

// Analyze turns a query into a QueryIntent. It is a pure function.
func Analyze(query string) entity.QueryIntent {
	lower := strings.ToLower(query)
	return entity.QueryIntent{
		Count:     extractCount(query),
		Measure:   firstKeyword(lower, MeasureKeywords),
		Dimension: firstKeyword(lower, DimensionKeywords),
	}
}

// IsTopQuery reports whether the query asks for a top-N ranking.
func IsTopQuery(query string) bool {
	return strings.Contains(strings.ToLower(query), "top")
}

func extractCount(query string) int {
	m := topPattern.FindStringSubmatch(query)
	if m == nil {
		return DefaultCount
	}
	n, err := strconv.Atoi(m[1])
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt
	}
	if err != nil || n <= 0 {
		return DefaultCount
	}
	return n
}

func firstKeyword(lower string, vocabulary []string) string {
	for _, kw := range vocabulary {
		if strings.Contains(lower, kw) {
			return kw
		}
	}
	return ""
}
