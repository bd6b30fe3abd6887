package chat

import (
	"context"

	"github.com/futig/dash-chat/internal/entity"
)

type LLMConnector interface {
	Ask(ctx context.Context, req *entity.LLMRequest) (string, error)
}
