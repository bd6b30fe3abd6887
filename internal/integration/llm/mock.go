package llm

import (
	"context"
	"fmt"

	"github.com/futig/dash-chat/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector answers without calling any provider.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

func (m *MockConnector) Ask(ctx context.Context, req *entity.LLMRequest) (string, error) {
	if req.APIKey == "" {
		return "", ErrEmptyAPIKey
	}

	ctxzap.Info(ctx, "[MOCK] asking LLM", zap.Int("prompt_len", len(req.Prompt)))

	return fmt.Sprintf("(mock) I can only rank data for now. You asked: %q", req.Prompt), nil
}
