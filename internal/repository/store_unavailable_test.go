package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnavailableStoreFailsEveryCall(t *testing.T) {
	store := NewUnavailableStore(errors.New("connection refused"), nil)
	ctx := context.Background()

	_, err := store.Watch(ctx, "u1")
	assert.ErrorIs(t, err, entity.ErrServicesUnavailable)
	assert.Contains(t, err.Error(), "connection refused")

	assert.ErrorIs(t, store.Ping(ctx), entity.ErrServicesUnavailable)

	_, err = store.CreateProject(ctx, "u1", entity.Project{Name: "x"})
	assert.ErrorIs(t, err, entity.ErrServicesUnavailable)

	assert.NoError(t, store.Close())
}

func TestUnavailableStoreRecoversOnPing(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "copilot.db")
	notifier := memoryNotifier(t)

	reachable := false
	attempts := 0
	open := func(ctx context.Context) (Store, []func() error, error) {
		attempts++
		if !reachable {
			return nil, nil, errors.New("still down")
		}
		db, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		s := NewSQLiteStore(db, notifier)
		return s, []func() error{s.Close}, nil
	}

	store := NewUnavailableStore(errors.New("connection refused"), open)

	err := store.Ping(ctx)
	assert.ErrorIs(t, err, entity.ErrServicesUnavailable)
	assert.Contains(t, err.Error(), "still down")

	_, err = store.ListProjects(ctx, "u1")
	assert.ErrorIs(t, err, entity.ErrServicesUnavailable)

	reachable = true
	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Ping(ctx))
	assert.Equal(t, 2, attempts)

	_, err = store.CreateProject(ctx, "u1", entity.Project{Name: "x", Idea: "x idea", Audience: "y", ValidationScore: 70, ExecutionConfidence: 75})
	require.NoError(t, err)
	projects, err := store.ListProjects(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, projects, 1)

	assert.NoError(t, store.Close())
}

func memoryNotifier(t *testing.T) pubsub.Notifier {
	t.Helper()

	n := pubsub.NewMemoryNotifier()
	t.Cleanup(func() { _ = n.Close() })
	return n
}
