package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/futig/dash-chat/internal/entity"
	"github.com/futig/dash-chat/internal/pkg/logger"
	"github.com/futig/dash-chat/internal/telegram/keyboard"
	"github.com/futig/dash-chat/internal/telegram/render"
	"github.com/futig/dash-chat/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Message represents a normalized Telegram update
type Message struct {
	ChatID       int64
	UserID       int64
	MessageID    int
	Text         string
	Command      string
	Args         string
	Document     *tgbotapi.Document
	CallbackData string
	CallbackID   string
}

// Handler routes Telegram updates to the chat usecase. One Telegram chat
// owns at most one chat session.
type Handler struct {
	api         BotAPI
	chatUC      ChatUsecase
	states      *state.Manager
	sender      *MessageSender
	keyboard    *keyboard.Builder
	client      *http.Client
	maxFileSize int64
	logger      *zap.Logger
}

func NewHandler(
	api BotAPI,
	chatUC ChatUsecase,
	states *state.Manager,
	client *http.Client,
	maxFileSize int64,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		api:         api,
		chatUC:      chatUC,
		states:      states,
		sender:      NewMessageSender(api, logger),
		keyboard:    keyboard.NewBuilder(),
		client:      client,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// Handle processes one normalized update.
func (h *Handler) Handle(ctx context.Context, msg *Message) error {
	ctx = logger.AddFields(ctx, zap.Int64("chat_id", msg.ChatID))

	switch {
	case msg.CallbackData != "":
		return h.handleCallback(ctx, msg)
	case msg.Command != "":
		return h.handleCommand(ctx, msg)
	case msg.Document != nil:
		return h.handleDocument(ctx, msg)
	case strings.TrimSpace(msg.Text) != "":
		return h.handleQuery(ctx, msg)
	default:
		return nil
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg *Message) error {
	ctxzap.Info(ctx, "command received", zap.String("command", msg.Command))

	switch msg.Command {
	case "start":
		return h.handleStart(ctx, msg)
	case "help":
		return h.sender.Send(msg.ChatID, render.MsgHelp, nil)
	case "key":
		return h.handleKey(ctx, msg)
	case "export":
		return h.handleExport(ctx, msg.ChatID, msg.Args)
	default:
		return h.sender.Send(msg.ChatID, render.MsgUnknownCmd, nil)
	}
}

// handleStart opens a new chat session and closes the one it replaces.
func (h *Handler) handleStart(ctx context.Context, msg *Message) error {
	resp, err := h.chatUC.CreateSession(ctx)
	if err != nil {
		h.handleError(ctx, msg.ChatID, err)
		return nil
	}

	previous, err := h.states.Bind(ctx, msg.ChatID, resp.Session.ID)
	if err != nil {
		return fmt.Errorf("bind chat session: %w", err)
	}

	if previous != "" && previous != resp.Session.ID {
		if err := h.chatUC.DeleteSession(ctx, previous); err != nil && !errors.Is(err, entity.ErrSessionNotFound) {
			ctxzap.Warn(ctx, "failed to close previous session",
				zap.String("session_id", previous),
				zap.Error(err),
			)
		}
	}

	ctxzap.Info(ctx, "telegram chat bound to session",
		zap.String("session_id", resp.Session.ID),
		zap.String("adapter", resp.Session.Adapter),
	)

	return h.sender.Send(msg.ChatID, render.Transcript(resp.Messages), nil)
}

func (h *Handler) handleQuery(ctx context.Context, msg *Message) error {
	sessionID, ok := h.sessionID(ctx, msg.ChatID)
	if !ok {
		return nil
	}

	typing := NewTypingNotifier(h.api, msg.ChatID, h.logger)
	typing.Start(ctx)
	reply, err := h.chatUC.SubmitQuery(ctx, sessionID, msg.Text)
	typing.Stop()
	if err != nil {
		h.handleError(ctx, msg.ChatID, err)
		return nil
	}

	var markup any
	if reply.Result.HasChart() {
		markup = h.keyboard.ExportKeyboard()
	}

	return h.sender.Send(msg.ChatID, render.Transcript(reply.Messages), markup)
}

// handleKey stores the API key and removes the message that carried it.
func (h *Handler) handleKey(ctx context.Context, msg *Message) error {
	key := strings.TrimSpace(msg.Args)
	if key == "" {
		return h.sender.Send(msg.ChatID, render.MsgKeyUsage, nil)
	}

	sessionID, ok := h.sessionID(ctx, msg.ChatID)
	if !ok {
		return nil
	}

	if _, err := h.api.Request(tgbotapi.NewDeleteMessage(msg.ChatID, msg.MessageID)); err != nil {
		ctxzap.Warn(ctx, "failed to delete message with api key", zap.Error(err))
	}

	resp, err := h.chatUC.SetAPIKey(ctx, sessionID, key)
	if err != nil {
		h.handleError(ctx, msg.ChatID, err)
		return nil
	}

	return h.sender.Send(msg.ChatID, render.Transcript(resp.Messages), nil)
}

func (h *Handler) handleExport(ctx context.Context, chatID int64, rawFormat string) error {
	format, err := parseFormat(rawFormat)
	if err != nil {
		return h.sender.Send(chatID, render.MsgBadFormat, nil)
	}

	sessionID, ok := h.sessionID(ctx, chatID)
	if !ok {
		return nil
	}

	file, err := h.chatUC.ExportResult(ctx, sessionID, format)
	if err != nil {
		h.handleError(ctx, chatID, err)
		return nil
	}

	ctxzap.Info(ctx, "result exported",
		zap.String("format", string(format)),
		zap.Int("size", len(file.Content)),
	)

	return h.sender.SendDocument(chatID, file.Filename, file.Content, render.MsgExportCaption)
}

func (h *Handler) handleDocument(ctx context.Context, msg *Message) error {
	sessionID, ok := h.sessionID(ctx, msg.ChatID)
	if !ok {
		return nil
	}

	doc := msg.Document
	if h.maxFileSize > 0 && int64(doc.FileSize) > h.maxFileSize {
		h.handleError(ctx, msg.ChatID, fmt.Errorf("%w: %s", entity.ErrFileTooLarge, doc.FileName))
		return nil
	}

	body, err := h.download(ctx, doc.FileID)
	if err != nil {
		ctxzap.Error(ctx, "failed to download document", zap.Error(err))
		return h.sender.Send(msg.ChatID, msgCSVLoadFailed, nil)
	}
	defer body.Close()

	resp, err := h.chatUC.LoadCSV(ctx, sessionID, doc.FileName, body)
	if err != nil {
		h.handleError(ctx, msg.ChatID, err)
		return nil
	}

	return h.sender.Send(msg.ChatID, render.Transcript(resp.Messages), nil)
}

func (h *Handler) handleCallback(ctx context.Context, msg *Message) error {
	if _, err := h.api.Request(tgbotapi.NewCallback(msg.CallbackID, "")); err != nil {
		ctxzap.Warn(ctx, "failed to answer callback", zap.Error(err))
	}

	cb, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil {
		ctxzap.Warn(ctx, "invalid callback data", zap.String("data", msg.CallbackData))
		return nil
	}

	switch cb.Action {
	case keyboard.ActionExport:
		return h.handleExport(ctx, msg.ChatID, cb.Value)
	default:
		ctxzap.Warn(ctx, "unknown callback action", zap.String("action", cb.Action))
		return nil
	}
}

// sessionID looks up the chat's session and tells the user to /start when
// there is none.
func (h *Handler) sessionID(ctx context.Context, chatID int64) (string, bool) {
	id, err := h.states.SessionID(ctx, chatID)
	if err != nil {
		if !errors.Is(err, state.ErrNoSession) {
			ctxzap.Error(ctx, "failed to read chat binding", zap.Error(err))
		}
		_ = h.sender.Send(chatID, render.MsgNoSession, nil)
		return "", false
	}
	return id, true
}

func (h *Handler) download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	url, err := h.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download file: unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func parseFormat(raw string) (entity.ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "md", "markdown":
		return entity.FormatMarkdown, nil
	case "pdf":
		return entity.FormatPDF, nil
	case "docx":
		return entity.FormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: %s", entity.ErrUnsupportedFormat, raw)
	}
}
