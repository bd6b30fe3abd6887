package formatter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/futig/dash-chat/internal/pkg/ranking"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", "")

func (mf *MarkdownFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", report.Title())
	if report.Query != "" {
		fmt.Fprintf(&buf, "Query: `%s`\n\n", strings.ReplaceAll(report.Query, "`", "'"))
	}

	fmt.Fprintf(&buf, "| # | Label | %s |\n", cellEscaper.Replace(report.Result.Measure))
	buf.WriteString("|---|---|---:|\n")
	for i, r := range report.rows() {
		fmt.Fprintf(&buf, "| %d | %s | %s |\n", i+1, cellEscaper.Replace(r.Label), ranking.FormatValue(r.Value))
	}

	if !report.GeneratedAt.IsZero() {
		fmt.Fprintf(&buf, "\n_Generated %s_\n", report.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
