package tabular

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var lineSeparator = regexp.MustCompile(`\r?\n`)

const byteOrderMark = "\ufeff"

// SplitLines splits raw text on \n or \r\n and drops blank lines. A leading
// byte order mark is removed.
func SplitLines(raw string) []string {
	raw = strings.TrimPrefix(raw, byteOrderMark)
	parts := lineSeparator.Split(raw, -1)
	lines := make([]string, 0, len(parts))
	for _, l := range parts {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// SplitLine splits a single CSV line on commas. A field may be wrapped in
// double quotes to carry commas; "" inside quotes is a literal quote.
// Every field is trimmed after unquoting.
func SplitLine(line string) []string {
	var (
		fields   []string
		cur      strings.Builder
		inQuotes bool
	)
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				cur.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	return append(fields, strings.TrimSpace(cur.String()))
}

// ParseNumber strips thousands-separator commas and parses the rest as a
// finite float. Empty and non-finite values do not parse.
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// IsNumericCell reports whether a cell counts towards numeric column
// detection. Blank cells count, the same as a zero.
func IsNumericCell(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return true
	}
	_, ok := ParseNumber(raw)
	return ok
}

// NumberOrZero is ParseNumber with 0 for anything that does not parse.
func NumberOrZero(raw string) float64 {
	f, _ := ParseNumber(raw)
	return f
}
