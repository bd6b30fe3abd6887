package handlers

import (
	"context"
	"errors"

	"github.com/futig/dash-chat/internal/entity"
	"github.com/futig/dash-chat/internal/telegram/render"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const msgCSVLoadFailed = "Failed to load CSV file."

// userMessage turns a usecase error into chat text. The second result is
// false for errors the user cannot fix.
func userMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, entity.ErrSessionNotFound):
		return render.MsgNoSession, true
	case errors.Is(err, entity.ErrSessionBusy):
		return render.MsgBusy, true
	case errors.Is(err, entity.ErrNoResult):
		return render.MsgNoResult, true
	case errors.Is(err, entity.ErrUnsupportedFormat):
		return render.MsgBadFormat, true
	case errors.Is(err, entity.ErrFileTooLarge):
		return render.MsgFileTooLarge, true
	case errors.Is(err, entity.ErrInvalidExtension):
		return render.MsgInvalidFile, true
	case errors.Is(err, entity.ErrInvalidFile):
		return msgCSVLoadFailed, true
	default:
		return render.ErrGeneric, false
	}
}

// handleError logs err and tells the user what went wrong.
func (h *Handler) handleError(ctx context.Context, chatID int64, err error) {
	text, expected := userMessage(err)
	if expected {
		ctxzap.Warn(ctx, "telegram request rejected", zap.Error(err))
	} else {
		ctxzap.Error(ctx, "telegram request failed", zap.Error(err))
	}

	if errors.Is(err, entity.ErrSessionNotFound) {
		if uerr := h.states.Unbind(ctx, chatID); uerr != nil {
			ctxzap.Warn(ctx, "failed to drop stale chat binding", zap.Error(uerr))
		}
	}

	_ = h.sender.Send(chatID, text, nil)
}
