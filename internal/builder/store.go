package builder

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"github.com/launchpad-labs/copilot-backend/internal/config"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/pubsub"
	"github.com/launchpad-labs/copilot-backend/internal/repository"
	"go.uber.org/zap"
)

// setupStore opens the store selected by STORE_DRIVER, retrying transient
// failures. When the store stays unreachable an UnavailableStore is returned
// so the API still starts and reports the outage per user; a later reload
// opens the real store through it.
func setupStore(
	ctx context.Context,
	cfg *config.Config,
	fbApp *firebase.App,
	notifier pubsub.Notifier,
	logger *zap.Logger,
) (repository.Store, []func() error) {
	var (
		store   repository.Store
		closers []func() error
	)

	err := cfg.StoreCfg.InitRetry.Do(ctx, func(ctx context.Context) error {
		s, c, err := openStore(ctx, cfg, fbApp, notifier, logger)
		if err != nil {
			logger.Warn("store initialisation attempt failed",
				zap.String("driver", cfg.StoreCfg.Driver),
				zap.Error(err),
			)
			return err
		}
		store, closers = s, c
		return nil
	})
	if err != nil {
		logger.Error("store unavailable, serving the error view",
			zap.String("driver", cfg.StoreCfg.Driver),
			zap.Error(err),
		)
		reopen := func(ctx context.Context) (repository.Store, []func() error, error) {
			return openStore(ctx, cfg, fbApp, notifier, logger)
		}
		degraded := repository.NewUnavailableStore(err, reopen)
		return degraded, []func() error{degraded.Close}
	}

	logger.Info("store initialised", zap.String("driver", cfg.StoreCfg.Driver))
	return store, closers
}

func openStore(
	ctx context.Context,
	cfg *config.Config,
	fbApp *firebase.App,
	notifier pubsub.Notifier,
	logger *zap.Logger,
) (repository.Store, []func() error, error) {
	switch cfg.StoreCfg.Driver {
	case config.StoreDriverFirestore:
		if fbApp == nil {
			return nil, nil, fmt.Errorf("firestore store requires a firebase app")
		}
		client, err := fbApp.Firestore(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("create firestore client: %w", err)
		}
		store := repository.NewFirestoreStore(client)
		return store, []func() error{store.Close}, nil

	case config.StoreDriverPostgres:
		pool, err := setupDatabase(ctx, cfg.DatabaseCfg, logger)
		if err != nil {
			return nil, nil, err
		}

		logger.Info("Running database migrations")
		if err := repository.RunPostgresMigrations(cfg.DatabaseCfg.URL); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("Database migrations completed successfully")

		closePool := func() error {
			pool.Close()
			return nil
		}
		return repository.NewPostgresStore(pool, notifier), []func() error{closePool}, nil

	case config.StoreDriverSQLite:
		db, err := repository.OpenSQLite(ctx, cfg.StoreCfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		store := repository.NewSQLiteStore(db, notifier)
		return store, []func() error{store.Close}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreCfg.Driver)
	}
}
