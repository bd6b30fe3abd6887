package bot

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Command(t *testing.T) {
	update := tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 3,
		Chat:      &tgbotapi.Chat{ID: 9},
		From:      &tgbotapi.User{ID: 4},
		Text:      "/export pdf",
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 7}},
	}}

	msg := normalize(update)
	require.NotNil(t, msg)
	assert.Equal(t, "export", msg.Command)
	assert.Equal(t, "pdf", msg.Args)
	assert.Empty(t, msg.Text)
	assert.Equal(t, int64(9), msg.ChatID)
	assert.Equal(t, int64(4), msg.UserID)
}

func TestNormalize_TextAndCallback(t *testing.T) {
	msg := normalize(tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: 9},
		Text: "top 5 sales",
	}})
	require.NotNil(t, msg)
	assert.Equal(t, "top 5 sales", msg.Text)
	assert.Empty(t, msg.Command)

	msg = normalize(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: 4},
		Data:    "export:md",
		Message: &tgbotapi.Message{MessageID: 2, Chat: &tgbotapi.Chat{ID: 9}},
	}})
	require.NotNil(t, msg)
	assert.Equal(t, "export:md", msg.CallbackData)
	assert.Equal(t, "cb", msg.CallbackID)

	assert.Nil(t, normalize(tgbotapi.Update{}))
}
