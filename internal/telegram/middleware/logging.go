package middleware

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// LoggingMiddleware logs all incoming updates
type LoggingMiddleware struct {
	logger *zap.Logger
}

// NewLoggingMiddleware creates a new logging middleware
func NewLoggingMiddleware(logger *zap.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{
		logger: logger,
	}
}

// Handle logs the update before and after next runs
func (m *LoggingMiddleware) Handle(update tgbotapi.Update, next func(tgbotapi.Update)) {
	start := time.Now()
	chatID, kind := describe(update)

	m.logger.Info("telegram update received",
		zap.Int64("chat_id", chatID),
		zap.String("type", kind),
		zap.Int("update_id", update.UpdateID),
	)

	next(update)

	m.logger.Info("telegram update processed",
		zap.Int64("chat_id", chatID),
		zap.String("type", kind),
		zap.Duration("duration", time.Since(start)),
	)
}

// describe returns the chat of an update and a short label of its kind.
func describe(update tgbotapi.Update) (int64, string) {
	switch {
	case update.Message != nil:
		msg := update.Message
		switch {
		case msg.IsCommand():
			return msg.Chat.ID, "command"
		case msg.Document != nil:
			return msg.Chat.ID, "document"
		case msg.Text != "":
			return msg.Chat.ID, "text"
		default:
			return msg.Chat.ID, "other"
		}
	case update.CallbackQuery != nil:
		if update.CallbackQuery.Message != nil {
			return update.CallbackQuery.Message.Chat.ID, "callback"
		}
		return 0, "callback"
	default:
		return 0, "unsupported"
	}
}
