package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/futig/dash-chat/internal/adapter"
	"github.com/futig/dash-chat/internal/adapter/csvadapter"
	"github.com/futig/dash-chat/internal/adapter/dashadapter"
	"github.com/futig/dash-chat/internal/config"
	"github.com/futig/dash-chat/internal/entity"
	"github.com/futig/dash-chat/internal/pkg/formatter"
	"github.com/futig/dash-chat/internal/pkg/validator"
	"github.com/futig/dash-chat/internal/repository"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Bot messages shown in the transcript.
const (
	msgDetecting       = "Detecting environment..."
	msgNoDashboard     = "No dashboard detected — upload a CSV to use the CSV adapter."
	msgNoAdapter       = "No adapter available."
	msgCSVLoadFailed   = "Failed to load CSV file."
	msgAPIKeySaved     = "✅ API key saved!"
	msgSetAPIKey       = adapter.AdvisoryPrefix + "Please set your API key first."
	msgLLMFailed       = adapter.AdvisoryPrefix + "Failed to connect to the language model API."
	msgLLMEmptyAnswer  = "No response from AI."
	errorReplyPrefix   = "Error: "
	readinessTemplate  = `Adapter ready — %s. Try: "Top 5 sales"`
	unavailableMessage = "Adapter %s not available."
)

type Options struct {
	// Adapters probed at session start, in order.
	Adapters []string

	// DefaultAPIKey is used when a session has not set its own.
	DefaultAPIKey string

	SessionTTL      time.Duration
	CleanupInterval time.Duration

	// PurgeOnExpiry drops the transcript when a session expires.
	PurgeOnExpiry bool

	Dashboard dashadapter.Options
}

// ChatUsecase implements the chat session business logic
type ChatUsecase struct {
	opts          Options
	sessions      *cache.Cache
	messageRepo   repository.MessageRepository
	validator     *validator.Validator
	formatters    *formatter.Factory
	dashboardConn dashadapter.Connector
	llmConnector  LLMConnector
	logger        *zap.Logger
	now           func() time.Time
}

// NewUsecase creates a new chat use case. dashboardConn may be nil when no
// dashboard bridge is configured.
func NewUsecase(
	opts Options,
	messageRepo repository.MessageRepository,
	validator *validator.Validator,
	formatters *formatter.Factory,
	dashboardConn dashadapter.Connector,
	llmConnector LLMConnector,
	logger *zap.Logger,
) *ChatUsecase {
	sessions := cache.New(opts.SessionTTL, opts.CleanupInterval)
	uc := &ChatUsecase{
		opts:          opts,
		sessions:      sessions,
		messageRepo:   messageRepo,
		validator:     validator,
		formatters:    formatters,
		dashboardConn: dashboardConn,
		llmConnector:  llmConnector,
		logger:        logger,
		now:           time.Now,
	}

	if opts.PurgeOnExpiry {
		sessions.OnEvicted(func(id string, _ any) {
			if err := messageRepo.DeleteBySession(context.Background(), id); err != nil {
				logger.Warn("failed to purge transcript of expired session", zap.String("session_id", id), zap.Error(err))
			}
		})
	}

	return uc
}

// CreateSession starts a conversation and probes the configured adapters in
// order. The first one that initializes becomes active.
func (uc *ChatUsecase) CreateSession(ctx context.Context) (*entity.CreateSessionResponse, error) {
	s := newSession(uuid.NewString(), uc.now().UTC())
	ctx = ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(zap.String("session_id", s.ID)))

	var msgs []*entity.Message
	say := func(text string) error {
		msg, err := uc.messageRepo.Create(ctx, s.ID, entity.MessageRoleBot, text)
		if err != nil {
			return fmt.Errorf("record message: %w", err)
		}
		msgs = append(msgs, msg)
		return nil
	}

	if err := say(msgDetecting); err != nil {
		return nil, err
	}

	detected := false
	for _, name := range uc.opts.Adapters {
		switch name {
		case config.AdapterDashboard:
			if uc.dashboardConn == nil {
				ctxzap.Debug(ctx, "dashboard adapter skipped, no connector configured")
				if err := say(fmt.Sprintf(unavailableMessage, dashadapter.Name)); err != nil {
					return nil, err
				}
				continue
			}
			dash := dashadapter.New(uc.dashboardConn, uc.opts.Dashboard)
			if !dash.Init(ctx) {
				if err := say(fmt.Sprintf(unavailableMessage, dashadapter.Name)); err != nil {
					return nil, err
				}
				continue
			}
			s.activate(dash, true)
			if err := say(fmt.Sprintf(readinessTemplate, dashadapter.Name)); err != nil {
				return nil, err
			}
			detected = true

		case config.AdapterCSV:
			s.activate(s.csv, s.csv.Init(ctx))
			if err := say(fmt.Sprintf(readinessTemplate, csvadapter.Name)); err != nil {
				return nil, err
			}
			if err := say(msgNoDashboard); err != nil {
				return nil, err
			}
			detected = true
		}
		if detected {
			break
		}
	}

	if !detected {
		if err := say(msgNoAdapter); err != nil {
			return nil, err
		}
	}

	uc.sessions.Set(s.ID, s, cache.DefaultExpiration)

	ctxzap.Info(ctx, "chat session created", zap.String("status", s.StatusText()))

	return &entity.CreateSessionResponse{
		Session:  s.toDTO(),
		Messages: msgs,
	}, nil
}

// GetSession returns the session state.
func (uc *ChatUsecase) GetSession(_ context.Context, sessionID string) (*entity.SessionDTO, error) {
	s, err := uc.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.toDTO(), nil
}

// LoadCSV replaces the session's table with the uploaded file and makes the
// CSV adapter active.
func (uc *ChatUsecase) LoadCSV(ctx context.Context, sessionID, filename string, r io.Reader) (*entity.LoadCSVResponse, error) {
	s, err := uc.session(sessionID)
	if err != nil {
		return nil, err
	}

	data, err := uc.readCSV(filename, r)
	if err != nil {
		ctxzap.Warn(ctx, "csv upload rejected", zap.String("filename", filename), zap.Error(err))
		if _, recErr := uc.messageRepo.Create(ctx, s.ID, entity.MessageRoleBot, msgCSVLoadFailed); recErr != nil {
			ctxzap.Error(ctx, "failed to record message", zap.Error(recErr))
		}
		return nil, err
	}

	s.mu.Lock()
	info := s.csv.LoadText(string(data))
	s.active = s.csv
	s.ready = s.csv.Init(ctx)
	s.file = &entity.LoadedFile{
		Name:     validator.SanitizeFilename(filename),
		Columns:  len(info.Columns),
		RowCount: info.RowCount,
		LoadedAt: uc.now().UTC(),
	}
	s.mu.Unlock()

	ctxzap.Info(ctx, "csv loaded",
		zap.String("filename", filename),
		zap.Int("columns", len(info.Columns)),
		zap.Int("rows", info.RowCount),
	)

	msg, err := uc.messageRepo.Create(ctx, s.ID, entity.MessageRoleBot, fmt.Sprintf(readinessTemplate, csvadapter.Name))
	if err != nil {
		return nil, fmt.Errorf("record message: %w", err)
	}

	return &entity.LoadCSVResponse{
		FileName: validator.SanitizeFilename(filename),
		Columns:  info.Columns,
		RowCount: info.RowCount,
		Messages: []*entity.Message{msg},
	}, nil
}

func (uc *ChatUsecase) readCSV(filename string, r io.Reader) ([]byte, error) {
	if err := uc.validator.ValidateCSVFilename(filename); err != nil {
		return nil, err
	}
	return uc.validator.ReadCSV(filename, r)
}

// SubmitQuery answers a chat message. One query per session runs at a time.
func (uc *ChatUsecase) SubmitQuery(ctx context.Context, sessionID, text string) (*entity.ChatReply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text", entity.ErrMissingField)
	}

	s, err := uc.session(sessionID)
	if err != nil {
		return nil, err
	}

	if !s.busy.CompareAndSwap(false, true) {
		return nil, entity.ErrSessionBusy
	}
	defer s.busy.Store(false)

	userMsg, err := uc.messageRepo.Create(ctx, s.ID, entity.MessageRoleUser, text)
	if err != nil {
		return nil, fmt.Errorf("record message: %w", err)
	}
	reply := &entity.ChatReply{Messages: []*entity.Message{userMsg}}

	now := uc.now().UTC()
	s.mu.Lock()
	s.lastQueryAt = &now
	s.mu.Unlock()

	var result *entity.QueryResult
	if active := s.activeAdapter(); active != nil {
		ctxzap.Debug(ctx, "running query", zap.String("adapter", active.Name()))
		result, err = active.RunQuery(ctx, text)
		if err != nil {
			ctxzap.Error(ctx, "adapter query failed", zap.String("adapter", active.Name()), zap.Error(err))
			return uc.finish(ctx, s, reply, entity.ReplySourceError, errorReplyPrefix+err.Error())
		}
	}

	if result.IsEmpty() {
		answer := uc.askLLM(ctx, s, text)
		return uc.finish(ctx, s, reply, entity.ReplySourceLLM, answer)
	}

	reply.Result = result
	if result.HasChart() {
		s.mu.Lock()
		s.lastQuery = text
		s.lastResult = result
		s.mu.Unlock()
	}
	return uc.finish(ctx, s, reply, entity.ReplySourceAdapter, result.Reply)
}

func (uc *ChatUsecase) finish(
	ctx context.Context,
	s *Session,
	reply *entity.ChatReply,
	source entity.ReplySource,
	text string,
) (*entity.ChatReply, error) {
	reply.Source = source
	if text == "" {
		return reply, nil
	}
	msg, err := uc.messageRepo.Create(ctx, s.ID, entity.MessageRoleBot, text)
	if err != nil {
		return nil, fmt.Errorf("record message: %w", err)
	}
	reply.Messages = append(reply.Messages, msg)
	return reply, nil
}

// askLLM forwards the raw text and turns every failure into advisory text.
func (uc *ChatUsecase) askLLM(ctx context.Context, s *Session, text string) string {
	s.mu.Lock()
	key := s.apiKey
	s.mu.Unlock()
	if key == "" {
		key = uc.opts.DefaultAPIKey
	}
	if key == "" || uc.llmConnector == nil {
		return msgSetAPIKey
	}

	answer, err := uc.llmConnector.Ask(ctx, &entity.LLMRequest{Prompt: text, APIKey: key})
	if err != nil {
		ctxzap.Error(ctx, "LLM fallback failed", zap.Error(err))
		return msgLLMFailed
	}
	if strings.TrimSpace(answer) == "" {
		return msgLLMEmptyAnswer
	}
	return answer
}

// SetAPIKey stores the session's language-model credential.
func (uc *ChatUsecase) SetAPIKey(ctx context.Context, sessionID, key string) (*entity.SetAPIKeyResponse, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: api_key", entity.ErrMissingField)
	}

	s, err := uc.session(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.apiKey = key
	s.mu.Unlock()

	msg, err := uc.messageRepo.Create(ctx, s.ID, entity.MessageRoleBot, msgAPIKeySaved)
	if err != nil {
		return nil, fmt.Errorf("record message: %w", err)
	}
	return &entity.SetAPIKeyResponse{Messages: []*entity.Message{msg}}, nil
}

func (uc *ChatUsecase) ListMessages(ctx context.Context, sessionID string) ([]*entity.Message, error) {
	if _, err := uc.session(sessionID); err != nil {
		return nil, err
	}
	msgs, err := uc.messageRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

func (uc *ChatUsecase) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := uc.session(sessionID); err != nil {
		return err
	}
	uc.sessions.Delete(sessionID)

	if err := uc.messageRepo.DeleteBySession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}

	ctxzap.Info(ctx, "chat session deleted")
	return nil
}

// ExportResult renders the last ranked result of the session.
func (uc *ChatUsecase) ExportResult(ctx context.Context, sessionID string, format entity.ExportFormat) (*entity.ExportedFile, error) {
	s, err := uc.session(sessionID)
	if err != nil {
		return nil, err
	}

	f, err := uc.formatters.Create(format)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	report := &formatter.Report{Query: s.lastQuery, Result: s.lastResult, GeneratedAt: uc.now()}
	s.mu.Unlock()

	if report.Result == nil {
		return nil, entity.ErrNoResult
	}

	content, err := f.Format(report)
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", format, err)
	}

	ctxzap.Info(ctx, "result exported", zap.String("format", string(format)), zap.Int("bytes", len(content)))

	return &entity.ExportedFile{
		Filename:    formatter.Filename(report, f),
		ContentType: f.ContentType(),
		Content:     content,
	}, nil
}

// session looks a session up and extends its lifetime.
func (uc *ChatUsecase) session(sessionID string) (*Session, error) {
	v, ok := uc.sessions.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrSessionNotFound, sessionID)
	}
	s, ok := v.(*Session)
	if !ok {
		return nil, errors.New("unexpected session type in store")
	}
	uc.sessions.Set(sessionID, s, cache.DefaultExpiration)
	return s, nil
}
