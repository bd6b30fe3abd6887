package repository

import (
	"context"
	"sync"
	"time"

	"github.com/futig/dash-chat/internal/entity"
	"github.com/google/uuid"
)

var _ MessageRepository = &MessageMemory{}

// MessageMemory keeps transcripts in process memory. Used when no database
// is configured.
type MessageMemory struct {
	mu       sync.RWMutex
	sessions map[string][]*entity.Message
	now      func() time.Time
}

func NewMessageMemory() *MessageMemory {
	return &MessageMemory{
		sessions: make(map[string][]*entity.Message),
		now:      time.Now,
	}
}

func (r *MessageMemory) Create(
	_ context.Context,
	sessionID string,
	role entity.MessageRole,
	text string,
) (*entity.Message, error) {
	if err := role.Validate(); err != nil {
		return nil, err
	}

	msg := &entity.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Text:      text,
		CreatedAt: r.now().UTC(),
	}

	r.mu.Lock()
	r.sessions[sessionID] = append(r.sessions[sessionID], msg)
	r.mu.Unlock()

	cp := *msg
	return &cp, nil
}

func (r *MessageMemory) ListBySession(_ context.Context, sessionID string) ([]*entity.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.sessions[sessionID]
	messages := make([]*entity.Message, len(stored))
	for i, m := range stored {
		cp := *m
		messages[i] = &cp
	}
	return messages, nil
}

func (r *MessageMemory) DeleteBySession(_ context.Context, sessionID string) error {
	r.mu.Lock()
	delete(r.sessions, sessionID)
	r.mu.Unlock()
	return nil
}
