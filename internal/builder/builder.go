package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/launchpad-labs/copilot-backend/internal/api"
	dashboardapi "github.com/launchpad-labs/copilot-backend/internal/api/dashboard"
	"github.com/launchpad-labs/copilot-backend/internal/api/middleware"
	onboardingapi "github.com/launchpad-labs/copilot-backend/internal/api/onboarding"
	resultsapi "github.com/launchpad-labs/copilot-backend/internal/api/results"
	streamapi "github.com/launchpad-labs/copilot-backend/internal/api/stream"
	"github.com/launchpad-labs/copilot-backend/internal/config"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/identity"
	"github.com/launchpad-labs/copilot-backend/internal/integration/generation"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/formatter"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/pubsub"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/validator"
	"github.com/launchpad-labs/copilot-backend/internal/repository"
	"github.com/launchpad-labs/copilot-backend/internal/telegram"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/pipeline"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/project"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/workspace"
	"go.uber.org/zap"
)

// generator is everything the services need from the generation backend.
type generator interface {
	pipeline.Generator
	SuggestIdeas(ctx context.Context, req *entity.SuggestIdeasRequest) (*entity.SuggestIdeasResponse, error)
	Health(ctx context.Context) error
}

// stack holds the pieces shared by the API server and the Telegram bot.
type stack struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    repository.Store
	gen      generator
	verifier middleware.TokenVerifier
	registry *workspace.Registry
	closers  []func() error
}

func (s *stack) close() {
	if s.registry != nil {
		s.registry.Close()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Warn("failed to release resource", zap.Error(err))
		}
	}
}

func Build() (*App, error) {
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
		zap.String("store_driver", cfg.StoreCfg.Driver),
	)

	s, err := buildStack(context.Background(), cfg, logger)
	if err != nil {
		return nil, err
	}

	requestValidator := validator.NewValidator(cfg.MaxFieldLength)
	handlers := api.Handlers{
		Dashboard:  dashboardapi.NewHandler(s.registry, requestValidator),
		Onboarding: onboardingapi.NewHandler(s.registry, requestValidator),
		Results:    resultsapi.NewHandler(s.registry, formatter.NewFactory()),
		Stream:     streamapi.NewHandler(s.registry, cfg.AllowedOrigins),
	}
	logger.Info("API handlers initialized")

	checks := map[string]api.HealthCheck{
		"store":      s.store.Ping,
		"generation": s.gen.Health,
	}

	router := api.SetupRouter(cfg, handlers, s.verifier, checks, logger)
	logger.Info("HTTP router configured")

	// WriteTimeout is left unset for the websocket stream.
	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		stack:  s,
		logger: logger,
	}, nil
}

// BuildTelegramBot creates and initializes the Telegram bot
func BuildTelegramBot() (telegram.Bot, func(), *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.TelegramCfg.BotToken == "" {
		return nil, nil, nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building Telegram bot",
		zap.String("environment", cfg.Environment),
		zap.String("store_driver", cfg.StoreCfg.Driver),
	)

	s, err := buildStack(context.Background(), cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	bot, err := telegram.NewBot(&cfg.TelegramCfg, s.registry, formatter.NewFactory(), validator.NewValidator(cfg.MaxFieldLength), logger)
	if err != nil {
		s.close()
		return nil, nil, nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	logger.Info("Telegram bot built successfully",
		zap.String("environment", cfg.Environment),
	)

	return bot, s.close, logger, nil
}

func buildStack(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stack, error) {
	s := &stack{cfg: cfg, logger: logger}

	var fbApp *firebase.App
	if cfg.StoreCfg.Driver == config.StoreDriverFirestore || !cfg.EnableMocks {
		app, err := setupFirebase(ctx, cfg.FirebaseCfg)
		if err != nil {
			return nil, fmt.Errorf("setup firebase: %w", err)
		}
		fbApp = app
	}

	var (
		notifier pubsub.Notifier
		drafts   repository.DraftStore
	)
	if cfg.RedisCfg.URL != "" {
		rdb, err := setupRedis(ctx, cfg.RedisCfg)
		if err != nil {
			return nil, fmt.Errorf("setup redis: %w", err)
		}
		notifier = pubsub.NewRedisNotifier(rdb, cfg.RedisCfg.Channel)
		drafts = repository.NewDraftRedis(rdb)
		s.closers = append(s.closers, rdb.Close, notifier.Close)
		logger.Info("Using redis for change notifications and drafts")
	} else {
		notifier = pubsub.NewMemoryNotifier()
		drafts = repository.NewDraftMemory()
		s.closers = append(s.closers, notifier.Close)
		logger.Info("Using in-process change notifications and drafts")
	}

	store, closers := setupStore(ctx, cfg, fbApp, notifier, logger)
	s.store = store
	s.closers = append(s.closers, closers...)

	if cfg.EnableMocks {
		logger.Info("Using mock generation connector and token verifier")
		s.gen = generation.NewMockConnector()
		s.verifier = identity.NewMockVerifier()
	} else {
		logger.Info("Using real generation connector and firebase token verifier")
		s.gen = generation.NewConnector(cfg.GenerationCfg)

		authClient, err := fbApp.Auth(ctx)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("create firebase auth client: %w", err)
		}
		s.verifier = identity.NewFirebaseVerifier(authClient)
	}

	projectUC := project.NewUsecase(store, drafts, project.NewScorer(cfg.ScoringCfg))
	runner := pipeline.NewRunner(s.gen, pipeline.Config{
		ValidatePause: cfg.PipelineCfg.ValidatePause,
		RoadmapPause:  cfg.PipelineCfg.RoadmapPause,
		CopyPause:     cfg.PipelineCfg.CopyPause,
		Focus:         entity.FocusType(cfg.PipelineCfg.Focus),
		Tone:          entity.ToneType(cfg.PipelineCfg.Tone),
	})
	logger.Info("Use cases initialized")

	s.registry = workspace.NewRegistry(workspace.Deps{
		Store:     store,
		Drafts:    drafts,
		Projects:  projectUC,
		Suggester: s.gen,
		Runner:    runner,
	}, cfg.WorkspaceCfg)

	return s, nil
}
