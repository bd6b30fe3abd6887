package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/futig/dash-chat/internal/config"
	"github.com/futig/dash-chat/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

type AnthropicConnector struct {
	cfg    clientConfig
	logger *zap.Logger
}

func NewAnthropicConnector(cfg config.LLMConfig, logger *zap.Logger) *AnthropicConnector {
	return &AnthropicConnector{
		cfg:    newClientConfig(cfg),
		logger: logger.Named("llm"),
	}
}

func (c *AnthropicConnector) Ask(ctx context.Context, req *entity.LLMRequest) (string, error) {
	if req.APIKey == "" {
		return "", ErrEmptyAPIKey
	}

	opts := []anthropic.ClientOption{
		anthropic.WithHTTPClient(&http.Client{Timeout: c.cfg.timeout}),
	}
	if c.cfg.baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimSuffix(c.cfg.baseURL, "/")))
	}
	client := anthropic.NewClient(req.APIKey, opts...)

	ctxzap.Debug(ctx, "LLM request",
		zap.String("provider", config.ProviderAnthropic),
		zap.String("model", c.cfg.model),
		zap.Int("prompt_len", len(req.Prompt)),
	)
	start := time.Now()

	prompt := req.Prompt
	resp, err := client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(c.cfg.model),
		System:    c.cfg.systemPrompt,
		MaxTokens: c.cfg.maxTokens,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create messages: %w", err)
	}

	ctxzap.Info(ctx, "LLM request completed",
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)),
	)

	return strings.TrimSpace(firstText(resp)), nil
}

func firstText(resp anthropic.MessagesResponse) string {
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			return *block.Text
		}
	}
	return ""
}
