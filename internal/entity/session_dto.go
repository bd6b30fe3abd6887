package entity

import "time"

type SubmitQueryRequest struct {
	Text string `json:"text"`
}

type SetAPIKeyRequest struct {
	APIKey string `json:"api_key"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SessionDTO struct {
	ID          string      `json:"session_id"`
	Adapter     string      `json:"adapter"`
	Ready       bool        `json:"ready"`
	Status      string      `json:"status"`
	HasAPIKey   bool        `json:"has_api_key"`
	File        *LoadedFile `json:"file,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	LastQueryAt *time.Time  `json:"last_query_at,omitempty"`
}

type CreateSessionResponse struct {
	Session  *SessionDTO `json:"session"`
	Messages []*Message  `json:"messages"`
}

// ChatReply is returned for every submitted query
type ChatReply struct {
	Messages []*Message   `json:"messages"`
	Result   *QueryResult `json:"result,omitempty"`
	Source   ReplySource  `json:"source"`
}

type LoadCSVResponse struct {
	FileName string     `json:"file_name"`
	Columns  []string   `json:"columns"`
	RowCount int        `json:"row_count"`
	Messages []*Message `json:"messages"`
}

type SetAPIKeyResponse struct {
	Messages []*Message `json:"messages"`
}

type ListMessagesResponse struct {
	Messages []*Message `json:"messages"`
}

type DeleteSessionResponse struct {
	Status string `json:"status"`
}

// ExportFormat is an output format of the result export
type ExportFormat string

const (
	FormatMarkdown ExportFormat = "md"
	FormatPDF      ExportFormat = "pdf"
	FormatDOCX     ExportFormat = "docx"
)

// ExportedFile is a rendered export of the last chart result
type ExportedFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
