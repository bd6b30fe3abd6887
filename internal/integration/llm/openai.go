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
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIConnector calls the chat completions endpoint of an OpenAI-compatible API.
type OpenAIConnector struct {
	cfg    clientConfig
	logger *zap.Logger
}

func NewOpenAIConnector(cfg config.LLMConfig, logger *zap.Logger) *OpenAIConnector {
	return &OpenAIConnector{
		cfg:    newClientConfig(cfg),
		logger: logger.Named("llm"),
	}
}

// Ask sends a single-turn completion. The credential comes with each request
// since every chat session supplies its own.
func (c *OpenAIConnector) Ask(ctx context.Context, req *entity.LLMRequest) (string, error) {
	if req.APIKey == "" {
		return "", ErrEmptyAPIKey
	}

	clientConfig := openai.DefaultConfig(req.APIKey)
	if c.cfg.baseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(c.cfg.baseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{Timeout: c.cfg.timeout}
	client := openai.NewClientWithConfig(clientConfig)

	ctxzap.Debug(ctx, "LLM request",
		zap.String("provider", config.ProviderOpenAI),
		zap.String("model", c.cfg.model),
		zap.Int("prompt_len", len(req.Prompt)),
	)
	start := time.Now()

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.cfg.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens: c.cfg.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}

	ctxzap.Info(ctx, "LLM request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)),
	)

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
