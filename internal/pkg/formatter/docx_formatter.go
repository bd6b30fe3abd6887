package formatter

import (
	"bytes"
	"strconv"

	"github.com/futig/dash-chat/internal/pkg/ranking"
	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (df *DOCXFormatter) Format(report *Report) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Heading1")
	titlePar.AddRun().AddText(report.Title())

	if report.Query != "" {
		doc.AddParagraph().AddRun().AddText("Query: " + report.Query)
	}

	table := doc.AddTable()
	header := table.AddRow()
	for _, h := range []string{"#", "Label", report.Result.Measure} {
		run := header.AddCell().AddParagraph().AddRun()
		run.Properties().SetBold(true)
		run.AddText(h)
	}
	for i, r := range report.rows() {
		row := table.AddRow()
		row.AddCell().AddParagraph().AddRun().AddText(strconv.Itoa(i + 1))
		row.AddCell().AddParagraph().AddRun().AddText(r.Label)
		row.AddCell().AddParagraph().AddRun().AddText(ranking.FormatValue(r.Value))
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (df *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (df *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
