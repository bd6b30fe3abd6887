package render

import (
	"strings"

	"github.com/futig/dash-chat/internal/entity"
)

const (
	MsgHelp = `🤖 Dash Chat

Ask about your data in plain words, for example "Top 5 sales by region".

/start - start a new chat
/key <value> - save your language model API key
/export [md|pdf|docx] - download the last chart
/help - show this help

Send a .csv file to load it into the chat.`

	MsgNoSession     = "No active chat. Use /start"
	MsgKeyUsage      = "Usage: /key <value>"
	MsgSendCSV       = "Send the CSV file as a document."
	MsgUnknownCmd    = "❌ Unknown command. Use /help"
	MsgNoResult      = "Nothing to export yet. Ask a Top-N question first."
	MsgBusy          = "⏳ Still working on your previous question."
	MsgBadFormat     = "Unknown format. Use /export md, /export pdf or /export docx"
	MsgFileTooLarge  = "❌ The file is too large."
	MsgInvalidFile   = "❌ Only .csv and .txt files can be loaded."
	MsgExportCaption = "📎 Export"
)

const (
	ErrGeneric = "❌ Something went wrong. Try again or use /start"
)

// Transcript joins the bot messages of a reply into one Telegram message.
func Transcript(msgs []*entity.Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m == nil || m.Role != entity.MessageRoleBot || m.Text == "" {
			continue
		}
		parts = append(parts, m.Text)
	}
	return strings.Join(parts, "\n\n")
}
