package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/dash-chat/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Adapter names accepted in ADAPTERS.
const (
	AdapterDashboard = "dashboard"
	AdapterCSV       = "csv"
)

// LLM providers accepted in LLM_PROVIDER.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Default models per provider. LLM_MODEL keeps the OpenAI one unless set.
const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	// Adapters probed at session start, in order
	Adapters []string `env:"ADAPTERS" envSeparator:"," envDefault:"dashboard,csv"`

	// Database configuration. The transcript is kept in memory when DATABASE_URL is empty.
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// External service configurations
	DashboardCfg DashboardConnectorConfig `envPrefix:"DASHBOARD_"`
	LLMCfg       LLMConfig                `envPrefix:"LLM_"`

	SessionCfg SessionConfig `envPrefix:"SESSION_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	FileUploadCfg FileUploadConfig `envPrefix:"FILE_UPLOAD_"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Telegram bot configuration (optional)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken        string        `env:"BOT_TOKEN"`
	UpdateTimeout   int           `env:"UPDATE_TIMEOUT" envDefault:"60"`
	ShutdownTimeout int           `env:"SHUTDOWN_TIMEOUT" envDefault:"10"` // seconds
	DownloadTimeout time.Duration `env:"DOWNLOAD_TIMEOUT" envDefault:"30s"`
}

type DashboardConnectorConfig struct {
	HTTPClientConfig
	InitEndpoint       string               `env:"INIT_ENDPOINT" envDefault:"/api/dashboard"`
	WorksheetsEndpoint string               `env:"WORKSHEETS_ENDPOINT" envDefault:"/api/worksheets"`
	DataEndpoint       string               `env:"DATA_ENDPOINT" envDefault:"/api/worksheets/{worksheet}/summary"`
	ProbeTimeout       time.Duration        `env:"PROBE_TIMEOUT" envDefault:"400ms"`
	ProbeMaxRows       int                  `env:"PROBE_MAX_ROWS" envDefault:"1"`
	DataMaxRows        int                  `env:"DATA_MAX_ROWS" envDefault:"5000"`
	MockFixture        string               `env:"MOCK_FIXTURE"`
	Retry              pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type LLMConfig struct {
	Provider     string        `env:"PROVIDER" envDefault:"openai"`
	APIKey       string        `env:"API_KEY"`
	Model        string        `env:"MODEL" envDefault:"gpt-4o-mini"`
	MaxTokens    int           `env:"MAX_TOKENS" envDefault:"300"`
	BaseURL      string        `env:"BASE_URL"`
	SystemPrompt string        `env:"SYSTEM_PROMPT" envDefault:"You are an AI assistant for analytics dashboards. Keep answers concise and relevant."`
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

type SessionConfig struct {
	TTL             time.Duration `env:"TTL" envDefault:"2h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
	PurgeOnExpiry   bool          `env:"PURGE_ON_EXPIRY" envDefault:"false"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"10s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"5s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"10s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxFileSize   int64 `env:"MAX_FILE_SIZE" envDefault:"5242880"`    // 5 MiB
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10 MiB
}

// LoadConfig reads the -env flag and loads the matching configuration.
func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	return Load(*envFlag)
}

// Load reads .env.<environment> when present and parses the process environment.
func Load(environment string) (*Config, error) {
	envFile := getEnvFile(environment)
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = environment
	for i, a := range cfg.Adapters {
		cfg.Adapters[i] = strings.ToLower(strings.TrimSpace(a))
	}
	cfg.LLMCfg.Provider = strings.ToLower(cfg.LLMCfg.Provider)
	if cfg.LLMCfg.Provider == ProviderAnthropic && cfg.LLMCfg.Model == DefaultOpenAIModel {
		cfg.LLMCfg.Model = DefaultAnthropicModel
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if len(cfg.Adapters) == 0 {
		errors = append(errors, "ADAPTERS must list at least one adapter")
	}
	for _, a := range cfg.Adapters {
		if a != AdapterDashboard && a != AdapterCSV {
			errors = append(errors, fmt.Sprintf("ADAPTERS contains unknown adapter %q", a))
		}
	}

	if !cfg.EnableMocks && hasAdapter(cfg.Adapters, AdapterDashboard) && cfg.DashboardCfg.Url == "" {
		errors = append(errors, "DASHBOARD_SERVICE_URL is required when the dashboard adapter is enabled")
	}

	if cfg.DashboardCfg.ProbeTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("DASHBOARD_PROBE_TIMEOUT must be positive, got %s", cfg.DashboardCfg.ProbeTimeout))
	}

	if cfg.DashboardCfg.DataMaxRows < 1 {
		errors = append(errors, fmt.Sprintf("DASHBOARD_DATA_MAX_ROWS must be positive, got %d", cfg.DashboardCfg.DataMaxRows))
	}

	if cfg.LLMCfg.Provider != ProviderOpenAI && cfg.LLMCfg.Provider != ProviderAnthropic {
		errors = append(errors, fmt.Sprintf("LLM_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderAnthropic, cfg.LLMCfg.Provider))
	}

	if cfg.LLMCfg.MaxTokens < 1 {
		errors = append(errors, fmt.Sprintf("LLM_MAX_TOKENS must be positive, got %d", cfg.LLMCfg.MaxTokens))
	}

	if cfg.SessionCfg.TTL <= 0 {
		errors = append(errors, fmt.Sprintf("SESSION_TTL must be positive, got %s", cfg.SessionCfg.TTL))
	}

	if cfg.FileUploadCfg.MaxFileSize < 1 || cfg.FileUploadCfg.MaxFileSize > cfg.FileUploadCfg.MaxUploadSize {
		errors = append(errors, fmt.Sprintf("FILE_UPLOAD_MAX_FILE_SIZE must be between 1 and FILE_UPLOAD_MAX_UPLOAD_SIZE(%d), got %d", cfg.FileUploadCfg.MaxUploadSize, cfg.FileUploadCfg.MaxFileSize))
	}

	if cfg.DatabaseURL != "" {
		if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
			errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
		}

		if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
			errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func hasAdapter(adapters []string, name string) bool {
	for _, a := range adapters {
		if a == name {
			return true
		}
	}
	return false
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
