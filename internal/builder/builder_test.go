package builder

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/launchpad-labs/copilot-backend/internal/config"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/integration/generation"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/pubsub"
	pkgRetry "github.com/launchpad-labs/copilot-backend/internal/pkg/retry"
	"github.com/launchpad-labs/copilot-backend/internal/repository"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/dashboard"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/pipeline"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/project"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestSetupLogger(t *testing.T) {
	logger, err := setupLogger("debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = setupLogger("warn")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	_, err = setupLogger("loud")
	assert.Error(t, err)
}

func storeConfig(driver, path string) *config.Config {
	return &config.Config{
		StoreCfg: config.StoreConfig{
			Driver:     driver,
			SQLitePath: path,
			InitRetry:  pkgRetry.RetryConfig{Attempts: 2, Delay: time.Millisecond, MaxDelay: time.Millisecond},
		},
	}
}

func TestSetupStoreOpensSQLite(t *testing.T) {
	notifier := pubsub.NewMemoryNotifier()
	t.Cleanup(func() { _ = notifier.Close() })

	cfg := storeConfig(config.StoreDriverSQLite, filepath.Join(t.TempDir(), "copilot.db"))
	store, closers := setupStore(context.Background(), cfg, nil, notifier, zap.NewNop())
	require.Len(t, closers, 1)
	t.Cleanup(func() { _ = closers[0]() })

	require.NoError(t, store.Ping(context.Background()))
	_, isUnavailable := store.(*repository.UnavailableStore)
	assert.False(t, isUnavailable)
}

func TestSetupStoreDegradesWhenUnreachable(t *testing.T) {
	cfg := storeConfig(config.StoreDriverFirestore, "")

	store, closers := setupStore(context.Background(), cfg, nil, pubsub.NewMemoryNotifier(), zap.NewNop())
	assert.Len(t, closers, 1)
	assert.ErrorIs(t, store.Ping(context.Background()), entity.ErrServicesUnavailable)
}

func TestReloadReachesStoreThatCameUpAfterStart(t *testing.T) {
	ctx := context.Background()
	notifier := pubsub.NewMemoryNotifier()
	t.Cleanup(func() { _ = notifier.Close() })

	// The database directory does not exist yet, so the first open fails.
	dir := filepath.Join(t.TempDir(), "data")
	cfg := storeConfig(config.StoreDriverSQLite, filepath.Join(dir, "copilot.db"))

	store, closers := setupStore(ctx, cfg, nil, notifier, zap.NewNop())
	require.Len(t, closers, 1)
	t.Cleanup(func() { _ = closers[0]() })
	_, degraded := store.(*repository.UnavailableStore)
	require.True(t, degraded)

	drafts := repository.NewDraftMemory()
	gen := generation.NewMockConnector()
	ws := workspace.Open(ctx, entity.Identity{UserID: "u1"}, workspace.Deps{
		Store:     store,
		Drafts:    drafts,
		Projects:  project.NewUsecase(store, drafts, &project.FixedScorer{Validation: 80, Execution: 85}),
		Suggester: gen,
		Runner:    pipeline.NewRunner(gen, pipeline.Config{Focus: entity.FocusSaaS, Tone: entity.ToneBold}),
	}, 4)
	t.Cleanup(ws.Close)
	assert.Equal(t, entity.ViewError, ws.State().View)

	_, err := ws.Dispatch(ctx, dashboard.EventReload, "")
	assert.ErrorIs(t, err, entity.ErrServicesUnavailable)
	assert.Equal(t, entity.ViewError, ws.State().View)

	require.NoError(t, os.MkdirAll(dir, 0o755))

	state, err := ws.Dispatch(ctx, dashboard.EventReload, "")
	require.NoError(t, err)
	assert.Equal(t, entity.ViewOnboarding, state.View)
}

func TestSetupRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := setupRedis(context.Background(), config.RedisConfig{URL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	_, err = setupRedis(context.Background(), config.RedisConfig{URL: "not a url"})
	assert.Error(t, err)
}
