package chat

import (
	"context"
	"io"

	"github.com/futig/dash-chat/internal/entity"
)

type ChatUsecase interface {
	CreateSession(ctx context.Context) (*entity.CreateSessionResponse, error)
	GetSession(ctx context.Context, sessionID string) (*entity.SessionDTO, error)
	DeleteSession(ctx context.Context, sessionID string) error
	SubmitQuery(ctx context.Context, sessionID, text string) (*entity.ChatReply, error)
	LoadCSV(ctx context.Context, sessionID, filename string, r io.Reader) (*entity.LoadCSVResponse, error)
	SetAPIKey(ctx context.Context, sessionID, key string) (*entity.SetAPIKeyResponse, error)
	ListMessages(ctx context.Context, sessionID string) ([]*entity.Message, error)
	ExportResult(ctx context.Context, sessionID string, format entity.ExportFormat) (*entity.ExportedFile, error)
}
