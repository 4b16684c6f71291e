package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	pkgRetry "github.com/launchpad-labs/copilot-backend/internal/pkg/retry"
)

const (
	StoreDriverFirestore = "firestore"
	StoreDriverPostgres  = "postgres"
	StoreDriverSQLite    = "sqlite"

	ScoringModeRandom = "random"
	ScoringModeFixed  = "fixed"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr      string        `env:"SERVER_ADDR,notEmpty"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	SwaggerSpecPath string        `env:"SWAGGER_SPEC_PATH" envDefault:"docs/swagger.yaml"`
	MaxFieldLength  int           `env:"MAX_FIELD_LENGTH" envDefault:"2000"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	StoreCfg      StoreConfig               `envPrefix:"STORE_"`
	DatabaseCfg   DatabaseConfig            `envPrefix:"DB_"`
	FirebaseCfg   FirebaseConfig            `envPrefix:"FIREBASE_"`
	RedisCfg      RedisConfig               `envPrefix:"REDIS_"`
	GenerationCfg GenerationConnectorConfig `envPrefix:"GENERATION_"`
	PipelineCfg   PipelineConfig            `envPrefix:"PIPELINE_"`
	ScoringCfg    ScoringConfig             `envPrefix:"SCORING_"`
	WorkspaceCfg  WorkspaceConfig           `envPrefix:"WORKSPACE_"`
	TelegramCfg   TelegramConfig            `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// StoreConfig selects the profile/project store.
type StoreConfig struct {
	Driver     string               `env:"DRIVER" envDefault:"sqlite"`
	SQLitePath string               `env:"SQLITE_PATH" envDefault:"copilot.db"`
	InitRetry  pkgRetry.RetryConfig `envPrefix:"INIT_RETRY_"`
}

type DatabaseConfig struct {
	URL               string        `env:"URL"`
	MaxConns          int           `env:"MAX_CONNS" envDefault:"25"`
	MinConns          int           `env:"MIN_CONNS" envDefault:"5"`
	MaxConnLifetime   time.Duration `env:"MAX_CONN_LIFETIME" envDefault:"1h"`
	MaxConnIdleTime   time.Duration `env:"MAX_CONN_IDLE_TIME" envDefault:"30m"`
	HealthCheckPeriod time.Duration `env:"HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

type FirebaseConfig struct {
	ProjectID       string `env:"PROJECT_ID"`
	CredentialsPath string `env:"CREDENTIALS_PATH"`
}

// RedisConfig is optional. Without a URL change notifications stay in-process
// and drafts are kept in memory.
type RedisConfig struct {
	URL     string `env:"URL"`
	Channel string `env:"CHANNEL_PREFIX" envDefault:"copilot:store:"`
}

type GenerationConnectorConfig struct {
	HTTPClientConfig
	ValidateEndpoint     string `env:"VALIDATE_ENDPOINT" envDefault:"/validate"`
	RoadmapEndpoint      string `env:"ROADMAP_ENDPOINT" envDefault:"/roadmap"`
	CopyEndpoint         string `env:"COPY_ENDPOINT" envDefault:"/copy"`
	SuggestIdeasEndpoint string `env:"SUGGEST_IDEAS_ENDPOINT" envDefault:"/suggest-ideas"`
	HealthEndpoint       string `env:"HEALTH_ENDPOINT" envDefault:"/health"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"90s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL" envDefault:"http://localhost:8000"`
}

// PipelineConfig controls results pacing and the fixed roadmap/copy inputs.
type PipelineConfig struct {
	ValidatePause time.Duration `env:"VALIDATE_PAUSE" envDefault:"2s"`
	RoadmapPause  time.Duration `env:"ROADMAP_PAUSE" envDefault:"2s"`
	CopyPause     time.Duration `env:"COPY_PAUSE" envDefault:"1s"`
	Focus         string        `env:"ROADMAP_FOCUS" envDefault:"saas"`
	Tone          string        `env:"COPY_TONE" envDefault:"bold"`
}

// ScoringConfig controls the scores written into a new project.
// In random mode a score is base + [0, spread).
type ScoringConfig struct {
	Mode             string `env:"MODE" envDefault:"random"`
	ValidationBase   int    `env:"VALIDATION_BASE" envDefault:"70"`
	ValidationSpread int    `env:"VALIDATION_SPREAD" envDefault:"20"`
	ExecutionBase    int    `env:"EXECUTION_BASE" envDefault:"75"`
	ExecutionSpread  int    `env:"EXECUTION_SPREAD" envDefault:"15"`
}

type WorkspaceConfig struct {
	IdleTTL         time.Duration `env:"IDLE_TTL" envDefault:"30m"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"5m"`
	ListenerBuffer  int           `env:"LISTENER_BUFFER" envDefault:"32"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string               `env:"BOT_TOKEN"`
	UpdateTimeout      int                  `env:"UPDATE_TIMEOUT" envDefault:"60"`
	RateLimitPerMinute int                  `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	RateLimitBurst     int                  `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int                  `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
	SendRetry          pkgRetry.RetryConfig `envPrefix:"SEND_RETRY_"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	cfg.Environment = *envFlag

	return cfg, nil
}

// Parse reads the configuration from the process environment and validates it.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	switch cfg.StoreCfg.Driver {
	case StoreDriverFirestore:
		if cfg.FirebaseCfg.CredentialsPath == "" && cfg.FirebaseCfg.ProjectID == "" {
			errors = append(errors, "FIREBASE_CREDENTIALS_PATH or FIREBASE_PROJECT_ID is required for the firestore store")
		}
	case StoreDriverPostgres:
		if cfg.DatabaseCfg.URL == "" {
			errors = append(errors, "DB_URL is required for the postgres store")
		}
		if cfg.DatabaseCfg.MaxConns < 1 || cfg.DatabaseCfg.MaxConns > 200 {
			errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DatabaseCfg.MaxConns))
		}
		if cfg.DatabaseCfg.MinConns < 0 || cfg.DatabaseCfg.MinConns > cfg.DatabaseCfg.MaxConns {
			errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DatabaseCfg.MaxConns, cfg.DatabaseCfg.MinConns))
		}
	case StoreDriverSQLite:
		if cfg.StoreCfg.SQLitePath == "" {
			errors = append(errors, "STORE_SQLITE_PATH must not be empty")
		}
	default:
		errors = append(errors, fmt.Sprintf("STORE_DRIVER must be one of firestore, postgres, sqlite, got %q", cfg.StoreCfg.Driver))
	}

	if !cfg.EnableMocks && cfg.FirebaseCfg.CredentialsPath == "" && cfg.FirebaseCfg.ProjectID == "" {
		errors = append(errors, "FIREBASE_CREDENTIALS_PATH or FIREBASE_PROJECT_ID is required to verify ID tokens when mocks are disabled")
	}

	for name, d := range map[string]time.Duration{
		"PIPELINE_VALIDATE_PAUSE": cfg.PipelineCfg.ValidatePause,
		"PIPELINE_ROADMAP_PAUSE":  cfg.PipelineCfg.RoadmapPause,
		"PIPELINE_COPY_PAUSE":     cfg.PipelineCfg.CopyPause,
	} {
		if d < 0 || d > time.Minute {
			errors = append(errors, fmt.Sprintf("%s must be between 0 and 1m, got %s", name, d))
		}
	}

	switch cfg.PipelineCfg.Focus {
	case "web", "mobile", "saas":
	default:
		errors = append(errors, fmt.Sprintf("PIPELINE_ROADMAP_FOCUS must be web, mobile or saas, got %q", cfg.PipelineCfg.Focus))
	}

	switch cfg.PipelineCfg.Tone {
	case "professional", "bold", "playful":
	default:
		errors = append(errors, fmt.Sprintf("PIPELINE_COPY_TONE must be professional, bold or playful, got %q", cfg.PipelineCfg.Tone))
	}

	switch cfg.ScoringCfg.Mode {
	case ScoringModeRandom:
		if cfg.ScoringCfg.ValidationSpread < 1 || cfg.ScoringCfg.ExecutionSpread < 1 {
			errors = append(errors, "SCORING_*_SPREAD must be positive in random mode")
		}
	case ScoringModeFixed:
	default:
		errors = append(errors, fmt.Sprintf("SCORING_MODE must be random or fixed, got %q", cfg.ScoringCfg.Mode))
	}

	if cfg.ScoringCfg.ValidationBase+cfg.ScoringCfg.ValidationSpread > 101 || cfg.ScoringCfg.ExecutionBase+cfg.ScoringCfg.ExecutionSpread > 101 {
		errors = append(errors, "SCORING base plus spread must stay within 0-100")
	}

	if cfg.MaxFieldLength < 1 || cfg.MaxFieldLength > 20000 {
		errors = append(errors, fmt.Sprintf("MAX_FIELD_LENGTH must be between 1 and 20000, got %d", cfg.MaxFieldLength))
	}

	if cfg.WorkspaceCfg.IdleTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("WORKSPACE_IDLE_TTL must be at least 1m, got %s", cfg.WorkspaceCfg.IdleTTL))
	}

	if cfg.TelegramCfg.BotToken != "" {
		if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
			errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
		}
		if cfg.TelegramCfg.RateLimitBurst < 1 || cfg.TelegramCfg.RateLimitBurst > 20 {
			errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", cfg.TelegramCfg.RateLimitBurst))
		}
		if cfg.TelegramCfg.ShutdownTimeout < 1 || cfg.TelegramCfg.ShutdownTimeout > 300 {
			errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", cfg.TelegramCfg.ShutdownTimeout))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
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
