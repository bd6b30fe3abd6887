package handlers

import (
	"context"
	"io"

	"github.com/futig/dash-chat/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ChatUsecase is the part of the chat usecase the bot drives.
type ChatUsecase interface {
	CreateSession(ctx context.Context) (*entity.CreateSessionResponse, error)
	DeleteSession(ctx context.Context, sessionID string) error
	SubmitQuery(ctx context.Context, sessionID, text string) (*entity.ChatReply, error)
	LoadCSV(ctx context.Context, sessionID, filename string, r io.Reader) (*entity.LoadCSVResponse, error)
	SetAPIKey(ctx context.Context, sessionID, key string) (*entity.SetAPIKeyResponse, error)
	ExportResult(ctx context.Context, sessionID string, format entity.ExportFormat) (*entity.ExportedFile, error)
}

// BotAPI is satisfied by *tgbotapi.BotAPI.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}
