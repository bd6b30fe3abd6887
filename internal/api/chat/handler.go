package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/futig/dash-chat/internal/entity"
	"github.com/futig/dash-chat/internal/pkg/logger"
	"github.com/futig/dash-chat/internal/pkg/response"
	"github.com/futig/dash-chat/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   ChatUsecase
	validator *validator.Validator
}

func NewHandler(usecase ChatUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// CreateSession handles POST /sessions - start a chat and detect the adapter
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateSession")

	resp, err := h.usecase.CreateSession(ctx)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "session created",
		zap.String("session_id", resp.Session.ID),
		zap.String("adapter", resp.Session.Adapter),
	)

	resp.Messages = emptyIfNil(resp.Messages)
	response.Created(w, resp)
}

// GetSession handles GET /sessions/{session_id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "GetSession")

	session, err := h.usecase.GetSession(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, session)
}

// DeleteSession handles DELETE /sessions/{session_id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "DeleteSession")

	if err := h.usecase.DeleteSession(ctx, sessionID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, entity.DeleteSessionResponse{Status: "deleted"})
}

// SubmitQuery handles POST /sessions/{session_id}/query
func (h *Handler) SubmitQuery(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "SubmitQuery")

	var req entity.SubmitQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateSubmitQuery(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	ctxzap.Info(ctx, "submitting query", zap.Int("text_len", len(req.Text)))

	reply, err := h.usecase.SubmitQuery(ctx, sessionID, req.Text)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "query answered", zap.String("source", string(reply.Source)))

	response.Success(w, reply)
}

// LoadCSV handles POST /sessions/{session_id}/csv with multipart field "file"
func (h *Handler) LoadCSV(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "LoadCSV")

	r.Body = http.MaxBytesReader(w, r.Body, h.validator.MaxUploadSize())
	if err := r.ParseMultipartForm(h.validator.MaxUploadSize()); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.respondError(ctx, w, http.StatusRequestEntityTooLarge, "upload too large", err)
			return
		}
		h.respondError(ctx, w, http.StatusBadRequest, "invalid multipart form", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "missing file", err)
		return
	}
	defer file.Close()

	ctxzap.Info(ctx, "loading csv",
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size),
	)

	resp, err := h.usecase.LoadCSV(ctx, sessionID, header.Filename, file)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, resp)
}

// SetAPIKey handles PUT /sessions/{session_id}/api-key
func (h *Handler) SetAPIKey(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "SetAPIKey")

	var req entity.SetAPIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateSetAPIKey(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	resp, err := h.usecase.SetAPIKey(ctx, sessionID, req.APIKey)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, resp)
}

// ListMessages handles GET /sessions/{session_id}/messages
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "ListMessages")

	msgs, err := h.usecase.ListMessages(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, entity.ListMessagesResponse{Messages: emptyIfNil(msgs)})
}

// ExportResult handles GET /sessions/{session_id}/export?format=md|pdf|docx
func (h *Handler) ExportResult(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "ExportResult")

	format, err := toExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "unsupported format", err)
		return
	}

	file, err := h.usecase.ExportResult(ctx, sessionID, format)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "result exported",
		zap.String("format", string(format)),
		zap.String("filename", file.Filename),
	)

	response.File(w, validator.SanitizeFilename(file.Filename), file.ContentType, file.Content)
}

func (h *Handler) sessionContext(r *http.Request, action string) (context.Context, string) {
	sessionID := chi.URLParam(r, "session_id")
	ctx := logger.WithSession(logger.WithAction(r.Context(), action), sessionID)
	return ctx, sessionID
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Warn(ctx, message, zap.Error(err))
	}
	response.Error(w, status, message)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrSessionNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "session not found", err)
	case errors.Is(err, entity.ErrSessionBusy):
		h.respondError(ctx, w, http.StatusConflict, "a query is already running for this session", err)
	case errors.Is(err, entity.ErrNoResult):
		h.respondError(ctx, w, http.StatusConflict, "no result to export yet", err)
	case errors.Is(err, entity.ErrMissingField), errors.Is(err, entity.ErrInvalidParameter), errors.Is(err, entity.ErrUnsupportedFormat):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	case errors.Is(err, entity.ErrInvalidExtension), errors.Is(err, entity.ErrFileTooLarge), errors.Is(err, entity.ErrInvalidFile):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid file", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
