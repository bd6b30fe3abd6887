package repository

import (
	"context"

	"github.com/futig/dash-chat/internal/entity"
)

// MessageRepository defines the interface for chat transcript persistence
type MessageRepository interface {
	Create(ctx context.Context, sessionID string, role entity.MessageRole, text string) (*entity.Message, error)
	ListBySession(ctx context.Context, sessionID string) ([]*entity.Message, error)
	DeleteBySession(ctx context.Context, sessionID string) error
}
