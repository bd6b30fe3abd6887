package builder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/dash-chat/internal/adapter/dashadapter"
	"github.com/futig/dash-chat/internal/api"
	chatapi "github.com/futig/dash-chat/internal/api/chat"
	"github.com/futig/dash-chat/internal/config"
	"github.com/futig/dash-chat/internal/integration/dashboard"
	"github.com/futig/dash-chat/internal/integration/llm"
	"github.com/futig/dash-chat/internal/pkg/formatter"
	"github.com/futig/dash-chat/internal/pkg/validator"
	"github.com/futig/dash-chat/internal/telegram"
	"github.com/futig/dash-chat/internal/usecase/chat"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	chatUC, fileValidator, db, err := buildChatUsecase(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	chatHandler := chatapi.NewHandler(chatUC, fileValidator)
	logger.Info("API handlers initialized")

	router := api.SetupRouter(chatHandler, logger)
	logger.Info("HTTP router configured")

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		db:     db,
		logger: logger,
	}, nil
}

// BuildTelegramBot creates and initializes the Telegram bot
func BuildTelegramBot() (telegram.Bot, *zap.Logger, func(), error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.TelegramCfg.BotToken == "" {
		return nil, nil, nil, errors.New("TELEGRAM_BOT_TOKEN is required")
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building Telegram bot",
		zap.String("environment", cfg.Environment),
	)

	chatUC, _, db, err := buildChatUsecase(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	closeDB := func() {
		if db != nil {
			db.Close()
		}
	}

	bot, err := telegram.NewBot(cfg, chatUC, logger)
	if err != nil {
		closeDB()
		return nil, nil, nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	logger.Info("Telegram bot built successfully",
		zap.String("environment", cfg.Environment),
	)

	return bot, logger, closeDB, nil
}

// buildChatUsecase wires the transcript store, the connectors and the chat
// usecase shared by the HTTP API and the Telegram bot. The returned pool is
// nil when transcripts are kept in memory.
func buildChatUsecase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*chat.ChatUsecase, *validator.Validator, *pgxpool.Pool, error) {
	messageRepo, db, err := setupMessageRepository(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.Info("Repositories initialized")

	var dashboardConn dashadapter.Connector
	var llmConnector chat.LLMConnector

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")

		if hasAdapter(cfg.Adapters, config.AdapterDashboard) {
			mock, err := dashboard.NewMockConnector(cfg.DashboardCfg.MockFixture, logger)
			if err != nil {
				if db != nil {
					db.Close()
				}
				return nil, nil, nil, fmt.Errorf("setup dashboard mock: %w", err)
			}
			dashboardConn = mock
		}
		llmConnector = llm.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external services")

		if hasAdapter(cfg.Adapters, config.AdapterDashboard) {
			dashboardConn = dashboard.NewConnector(cfg.DashboardCfg, logger)
		}
		llmConnector = newLLMConnector(cfg.LLMCfg, logger)
	}

	fileValidator := validator.NewFileValidator(cfg.FileUploadCfg)
	logger.Info("Validators initialized")

	chatUC := chat.NewUsecase(
		chat.Options{
			Adapters:        cfg.Adapters,
			DefaultAPIKey:   cfg.LLMCfg.APIKey,
			SessionTTL:      cfg.SessionCfg.TTL,
			CleanupInterval: cfg.SessionCfg.CleanupInterval,
			PurgeOnExpiry:   cfg.SessionCfg.PurgeOnExpiry,
			Dashboard: dashadapter.Options{
				ProbeTimeout: cfg.DashboardCfg.ProbeTimeout,
				ProbeMaxRows: cfg.DashboardCfg.ProbeMaxRows,
				DataMaxRows:  cfg.DashboardCfg.DataMaxRows,
				Retry:        &cfg.DashboardCfg.Retry,
			},
		},
		messageRepo,
		fileValidator,
		formatter.NewFactory(),
		dashboardConn,
		llmConnector,
		logger,
	)
	logger.Info("Use cases initialized",
		zap.Strings("adapters", cfg.Adapters),
		zap.String("llm_provider", cfg.LLMCfg.Provider),
	)

	return chatUC, fileValidator, db, nil
}

func newLLMConnector(cfg config.LLMConfig, logger *zap.Logger) chat.LLMConnector {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return llm.NewAnthropicConnector(cfg, logger)
	default:
		return llm.NewOpenAIConnector(cfg, logger)
	}
}

func hasAdapter(adapters []string, name string) bool {
	for _, a := range adapters {
		if a == name {
			return true
		}
	}
	return false
}
