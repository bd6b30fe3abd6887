// Package llm forwards free-text questions to a hosted language model when
// no adapter can answer them.
package llm

import (
	"errors"
	"time"

	"github.com/futig/dash-chat/internal/config"
)

// ErrEmptyAPIKey is returned when neither the session nor the configuration
// carries a credential.
var ErrEmptyAPIKey = errors.New("empty api key")

type clientConfig struct {
	model        string
	maxTokens    int
	baseURL      string
	systemPrompt string
	timeout      time.Duration
}

func newClientConfig(cfg config.LLMConfig) clientConfig {
	return clientConfig{
		model:        cfg.Model,
		maxTokens:    cfg.MaxTokens,
		baseURL:      cfg.BaseURL,
		systemPrompt: cfg.SystemPrompt,
		timeout:      cfg.Timeout,
	}
}
