package workspace

import (
	"context"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/launchpad-labs/copilot-backend/internal/config"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Registry keeps one workspace per user and closes workspaces that have not
// been used for the configured idle TTL.
type Registry struct {
	deps  Deps
	cfg   config.WorkspaceConfig
	cache *cache.Cache
}

func NewRegistry(deps Deps, cfg config.WorkspaceConfig) *Registry {
	c := cache.New(cfg.IdleTTL, cfg.CleanupInterval)
	c.OnEvicted(func(_ string, v any) {
		if ws, ok := v.(*Workspace); ok {
			ws.Close()
		}
	})

	return &Registry{
		deps:  deps,
		cfg:   cfg,
		cache: c,
	}
}

// Get returns the user's workspace, opening it on first use. Every call
// extends the idle deadline.
func (r *Registry) Get(ctx context.Context, identity entity.Identity) *Workspace {
	if v, ok := r.cache.Get(identity.UserID); ok {
		ws := v.(*Workspace)
		// Replace fails once the entry has expired or been evicted.
		if r.cache.Replace(identity.UserID, ws, cache.DefaultExpiration) == nil {
			return ws
		}
	}

	// An expired entry stays in the cache until the janitor runs and Add
	// overwrites it without calling OnEvicted. Evict now so it gets closed.
	r.cache.DeleteExpired()

	opened := Open(ctx, identity, r.deps, r.cfg.ListenerBuffer)
	if err := r.cache.Add(identity.UserID, opened, cache.DefaultExpiration); err != nil {
		// Opened concurrently by another request.
		opened.Close()
		return r.Get(ctx, identity)
	}

	ctxzap.Info(ctx, "workspace opened", zap.Int("open_workspaces", r.cache.ItemCount()))
	return opened
}

// Touch extends the idle deadline of an open workspace.
func (r *Registry) Touch(userID string) {
	if v, ok := r.cache.Get(userID); ok {
		_ = r.cache.Replace(userID, v, cache.DefaultExpiration)
	}
}

// KeepAlive touches the user's workspace until ctx is done. Long-lived
// listeners use it so an otherwise idle workspace is not evicted under them.
func (r *Registry) KeepAlive(ctx context.Context, userID string) {
	interval := r.cfg.IdleTTL / 2
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Touch(userID)
		}
	}
}

// Drop closes and forgets the user's workspace.
func (r *Registry) Drop(userID string) {
	r.cache.Delete(userID)
}

func (r *Registry) Len() int {
	return r.cache.ItemCount()
}

// Close closes every open workspace.
func (r *Registry) Close() {
	r.cache.DeleteExpired()
	for userID := range r.cache.Items() {
		r.cache.Delete(userID)
	}
}
