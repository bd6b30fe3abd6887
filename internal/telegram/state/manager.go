package state

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Manager maps Telegram chats to chat sessions
type Manager struct {
	storage Storage
	now     func() time.Time
}

// NewManager creates a new state manager
func NewManager(storage Storage) *Manager {
	return &Manager{
		storage: storage,
		now:     time.Now,
	}
}

// SessionID returns the session bound to chatID, or ErrNoSession.
func (m *Manager) SessionID(ctx context.Context, chatID int64) (string, error) {
	b, err := m.storage.Get(ctx, chatID)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return "", err
		}
		return "", fmt.Errorf("get chat binding from storage: %w", err)
	}
	return b.SessionID, nil
}

// Bind points chatID at sessionID and returns the previously bound
// session, if any.
func (m *Manager) Bind(ctx context.Context, chatID int64, sessionID string) (string, error) {
	previous, err := m.SessionID(ctx, chatID)
	if err != nil && !errors.Is(err, ErrNoSession) {
		return "", err
	}

	now := m.now()
	binding := &ChatBinding{
		ChatID:    chatID,
		SessionID: sessionID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.storage.Set(ctx, binding); err != nil {
		return "", fmt.Errorf("save chat binding: %w", err)
	}
	return previous, nil
}

// Unbind drops the binding of chatID.
func (m *Manager) Unbind(ctx context.Context, chatID int64) error {
	if err := m.storage.Delete(ctx, chatID); err != nil {
		return fmt.Errorf("delete chat binding: %w", err)
	}
	return nil
}
