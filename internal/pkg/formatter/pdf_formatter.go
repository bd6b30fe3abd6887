package formatter

import (
	"bytes"
	"os"
	"strconv"
	"strings"

	"github.com/futig/dash-chat/internal/pkg/ranking"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the internal name used by gofpdf
	// for the UTF-8 capable font.
	pdfFontName = "DejaVuSans"

	// In Docker runtime fonts are copied to /app/ttf.
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"
	pdfFontSourcePath  = "internal/pkg/formatter/ttf/DejaVuSans.ttf"
)

// Chart geometry in millimetres.
const (
	chartLabelWidth = 50.0
	chartBarMax     = 110.0
	chartBarHeight  = 6.0
	chartGap        = 2.0
)

type PDFFormatter struct {
	fontPath string
}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{fontPath: resolveFontPath()}
}

// resolveFontPath looks for DejaVuSans in the runtime layout first, then
// in the source tree.
func resolveFontPath() string {
	if _, err := os.Stat(pdfFontRuntimePath); err == nil {
		return pdfFontRuntimePath
	}
	if _, err := os.Stat(pdfFontSourcePath); err == nil {
		return pdfFontSourcePath
	}
	return ""
}

func (pf *PDFFormatter) Format(report *Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	fontName := "Arial"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if pf.fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", pf.fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", pf.fontPath)
		fontName = pdfFontName
		tr = func(s string) string { return s }
	}

	pdf.SetFont(fontName, "B", 18)
	pdf.Cell(0, 10, tr(report.Title()))
	pdf.Ln(12)

	if report.Query != "" {
		pdf.SetFont(fontName, "", 11)
		pdf.Cell(0, 6, tr("Query: "+report.Query))
		pdf.Ln(10)
	}

	rows := report.rows()
	maxValue := 0.0
	for _, r := range rows {
		maxValue = max(maxValue, r.Value)
	}

	red, green, blue := hexToRGB(report.Result.Color)
	pdf.SetFont(fontName, "", 10)
	for _, r := range rows {
		x, y := pdf.GetXY()
		pdf.CellFormat(chartLabelWidth, chartBarHeight, tr(truncate(r.Label, 28)), "", 0, "R", false, 0, "")

		width := 0.0
		if maxValue > 0 && r.Value > 0 {
			width = chartBarMax * r.Value / maxValue
		}
		if width > 0 {
			pdf.SetFillColor(red, green, blue)
			pdf.Rect(x+chartLabelWidth+2, y, width, chartBarHeight, "F")
		}

		pdf.SetXY(x+chartLabelWidth+4+width, y)
		pdf.CellFormat(0, chartBarHeight, ranking.FormatValue(r.Value), "", 0, "L", false, 0, "")
		pdf.SetXY(x, y+chartBarHeight+chartGap)
	}

	if !report.GeneratedAt.IsZero() {
		pdf.Ln(6)
		pdf.SetFont(fontName, "", 8)
		pdf.Cell(0, 5, "Generated "+report.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (pf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (pf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}

// hexToRGB parses "#rrggbb". Anything else yields a neutral grey.
func hexToRGB(hex string) (int, int, int) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 128, 128, 128
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 128, 128, 128
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
