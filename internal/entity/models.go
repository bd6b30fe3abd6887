package entity

import (
	"fmt"
	"time"
)

type MessageRole string

const (
	MessageRoleUser MessageRole = "user"
	MessageRoleBot  MessageRole = "bot"
)

func (r MessageRole) Validate() error {
	switch r {
	case MessageRoleUser, MessageRoleBot:
		return nil
	default:
		return fmt.Errorf("unknown message role: %s", r)
	}
}

// ReplySource tells which collaborator produced a chat reply
type ReplySource string

const (
	ReplySourceAdapter ReplySource = "adapter"
	ReplySourceLLM     ReplySource = "llm"
	ReplySourceError   ReplySource = "error"
)

// Message is one chat bubble of a session transcript
type Message struct {
	ID        string      `json:"id"`
	SessionID string      `json:"session_id"`
	Role      MessageRole `json:"role"`
	Text      string      `json:"text"`
	CreatedAt time.Time   `json:"created_at"`
}

// LoadedFile describes the CSV file currently held by a session
type LoadedFile struct {
	Name     string    `json:"name"`
	Columns  int       `json:"columns"`
	RowCount int       `json:"row_count"`
	LoadedAt time.Time `json:"loaded_at"`
}
