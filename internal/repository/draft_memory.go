package repository

import (
	"context"
	"sync"
	"time"

	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/patrickmn/go-cache"
)

var _ DraftStore = &DraftMemory{}

// DraftMemory keeps draft markers in process memory. Used when Redis is not
// configured; markers are lost on restart. Markers never expire: only
// ClearDraft removes them.
type DraftMemory struct {
	mu    sync.Mutex
	cache *cache.Cache
	now   func() time.Time
}

func NewDraftMemory() *DraftMemory {
	return &DraftMemory{
		cache: cache.New(cache.NoExpiration, 0),
		now:   time.Now,
	}
}

func (r *DraftMemory) GetDraft(_ context.Context, userID string) (*entity.Draft, error) {
	if v, ok := r.cache.Get(userID); ok {
		draft := v.(entity.Draft)
		return &draft, nil
	}
	return nil, nil
}

func (r *DraftMemory) TouchDraft(_ context.Context, userID string) (*entity.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var draft entity.Draft
	if v, ok := r.cache.Get(userID); ok {
		draft = v.(entity.Draft)
	}
	draft.Touch(r.now().UTC())
	r.cache.Set(userID, draft, cache.NoExpiration)

	return &draft, nil
}

func (r *DraftMemory) ClearDraft(_ context.Context, userID string) error {
	r.cache.Delete(userID)
	return nil
}
