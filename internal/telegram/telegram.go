package telegram

import (
	"context"
	"fmt"
	"net/http"

	"github.com/futig/dash-chat/internal/config"
	"github.com/futig/dash-chat/internal/telegram/bot"
	"github.com/futig/dash-chat/internal/telegram/handlers"
	"github.com/futig/dash-chat/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot initializes the telegram bot with all dependencies
func NewBot(
	cfg *config.Config,
	chatUC handlers.ChatUsecase,
	logger *zap.Logger,
) (Bot, error) {
	states := state.NewManager(state.NewMemoryStorage(cfg.SessionCfg.TTL, cfg.SessionCfg.CleanupInterval))
	client := &http.Client{Timeout: cfg.TelegramCfg.DownloadTimeout}

	b, err := bot.New(&cfg.TelegramCfg, func(api *tgbotapi.BotAPI) *handlers.Handler {
		return handlers.NewHandler(api, chatUC, states, client, cfg.FileUploadCfg.MaxFileSize, logger)
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	logger.Info("telegram bot initialized successfully")

	return b, nil
}
