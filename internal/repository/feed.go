package repository

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/pubsub"
	"go.uber.org/zap"
)

type snapshotLoader func(ctx context.Context, userID string) (entity.StoreSnapshot, error)

// watchNotified backs Watch for the SQL stores: it reads a snapshot up front
// and re-reads it whenever the notifier reports a write for the user.
func watchNotified(ctx context.Context, notifier pubsub.Notifier, userID string, load snapshotLoader) (<-chan entity.StoreSnapshot, error) {
	changes, stop, err := notifier.Subscribe(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("subscribe to store changes: %w", err)
	}

	first, err := load(ctx, userID)
	if err != nil {
		stop()
		return nil, err
	}

	out := make(chan entity.StoreSnapshot, 1)
	out <- first

	go func() {
		defer close(out)
		defer stop()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				snap, err := load(ctx, userID)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					ctxzap.Warn(ctx, "reload snapshot after change", zap.Error(err))
					continue
				}
				select {
				case out <- snap:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func loadSnapshot(ps interface {
	ProfileRepository
	ProjectRepository
}) snapshotLoader {
	return func(ctx context.Context, userID string) (entity.StoreSnapshot, error) {
		profile, err := ps.EnsureProfile(ctx, userID)
		if err != nil {
			return entity.StoreSnapshot{}, err
		}
		projects, err := ps.ListProjects(ctx, userID)
		if err != nil {
			return entity.StoreSnapshot{}, err
		}
		return entity.StoreSnapshot{Profile: profile, Projects: projects}, nil
	}
}
