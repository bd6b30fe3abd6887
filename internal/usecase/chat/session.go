package chat

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/futig/dash-chat/internal/adapter"
	"github.com/futig/dash-chat/internal/adapter/csvadapter"
	"github.com/futig/dash-chat/internal/entity"
)

const noAdapterName = "none"

// Session is one chat conversation. It owns its adapters and remembers
// which one currently answers queries.
type Session struct {
	ID        string
	CreatedAt time.Time

	busy atomic.Bool

	mu          sync.Mutex
	csv         *csvadapter.Adapter
	active      adapter.Adapter
	ready       bool
	apiKey      string
	file        *entity.LoadedFile
	lastQuery   string
	lastResult  *entity.QueryResult
	lastQueryAt *time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		csv:       csvadapter.New(),
	}
}

func (s *Session) activate(a adapter.Adapter, ready bool) {
	s.mu.Lock()
	s.active = a
	s.ready = ready
	s.mu.Unlock()
}

func (s *Session) activeAdapter() adapter.Adapter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// StatusText mirrors the status line of the chat UI.
func (s *Session) StatusText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return statusText(s.adapterName(), s.ready)
}

func (s *Session) adapterName() string {
	if s.active == nil {
		return noAdapterName
	}
	return s.active.Name()
}

func statusText(name string, ready bool) string {
	state := "not ready"
	if ready {
		state = "ready"
	}
	return "Adapter: " + name + " (" + state + ")"
}

func (s *Session) toDTO() *entity.SessionDTO {
	s.mu.Lock()
	defer s.mu.Unlock()

	dto := &entity.SessionDTO{
		ID:        s.ID,
		Adapter:   s.adapterName(),
		Ready:     s.ready,
		Status:    statusText(s.adapterName(), s.ready),
		HasAPIKey: s.apiKey != "",
		CreatedAt: s.CreatedAt,
	}
	if s.file != nil {
		f := *s.file
		dto.File = &f
	}
	if s.lastQueryAt != nil {
		t := *s.lastQueryAt
		dto.LastQueryAt = &t
	}
	return dto
}
