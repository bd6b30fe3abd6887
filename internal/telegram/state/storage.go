package state

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

var ErrNoSession = errors.New("no chat session for this telegram chat")

// ChatBinding ties a Telegram chat to a chat session of the usecase.
type ChatBinding struct {
	ChatID    int64
	SessionID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Storage defines the interface for chat binding persistence
type Storage interface {
	Get(ctx context.Context, chatID int64) (*ChatBinding, error)
	Set(ctx context.Context, binding *ChatBinding) error
	Delete(ctx context.Context, chatID int64) error
}

// MemoryStorage keeps bindings in process memory. Entries expire with the
// same TTL as the chat sessions they point to.
type MemoryStorage struct {
	items *cache.Cache
}

func NewMemoryStorage(ttl, cleanupInterval time.Duration) *MemoryStorage {
	return &MemoryStorage{items: cache.New(ttl, cleanupInterval)}
}

func (s *MemoryStorage) Get(_ context.Context, chatID int64) (*ChatBinding, error) {
	v, ok := s.items.Get(key(chatID))
	if !ok {
		return nil, ErrNoSession
	}
	b := *v.(*ChatBinding)
	return &b, nil
}

func (s *MemoryStorage) Set(_ context.Context, binding *ChatBinding) error {
	b := *binding
	s.items.SetDefault(key(binding.ChatID), &b)
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, chatID int64) error {
	s.items.Delete(key(chatID))
	return nil
}

func key(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
