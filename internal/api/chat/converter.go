package chat

import (
	"fmt"
	"strings"

	"github.com/futig/dash-chat/internal/entity"
)

// toExportFormat reads the format query parameter; empty means Markdown.
func toExportFormat(raw string) (entity.ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "md", "markdown":
		return entity.FormatMarkdown, nil
	case "pdf":
		return entity.FormatPDF, nil
	case "docx":
		return entity.FormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: %s", entity.ErrUnsupportedFormat, raw)
	}
}

func emptyIfNil(msgs []*entity.Message) []*entity.Message {
	if msgs == nil {
		return []*entity.Message{}
	}
	return msgs
}
