// Package formatter renders a ranked query result as a downloadable document.
package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/futig/dash-chat/internal/entity"
)

// Report is what gets exported: the last chart-worthy result of a session.
type Report struct {
	Query       string
	Result      *entity.QueryResult
	GeneratedAt time.Time
}

// Title names the report after the ranking it holds.
func (r *Report) Title() string {
	return fmt.Sprintf("Top %d by %s", len(r.Result.Labels), r.Result.Measure)
}

func (r *Report) rows() []entity.RankedRow {
	return r.Result.Rows()
}

type Formatter interface {
	Format(report *Report) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ExportFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedFormat, format)
	}
}

// Filename builds a download name such as "top-5-sales.pdf".
func Filename(report *Report, f Formatter) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, strings.ToLower(report.Result.Measure))
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "result"
	}
	return "top-" + strconv.Itoa(len(report.Result.Labels)) + "-" + slug + f.FileExtension()
}
