package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/redis/go-redis/v9"
)

const draftKeyPrefix = "copilot:draft:"

var _ DraftStore = &DraftRedis{}

// DraftRedis keeps draft markers in Redis. Keys carry no TTL; a marker lives
// until ClearDraft.
type DraftRedis struct {
	rdb *redis.Client
	now func() time.Time
}

func NewDraftRedis(rdb *redis.Client) *DraftRedis {
	return &DraftRedis{rdb: rdb, now: time.Now}
}

func (r *DraftRedis) GetDraft(ctx context.Context, userID string) (*entity.Draft, error) {
	raw, err := r.rdb.Get(ctx, draftKeyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}

	var draft entity.Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &draft, nil
}

func (r *DraftRedis) TouchDraft(ctx context.Context, userID string) (*entity.Draft, error) {
	draft, err := r.GetDraft(ctx, userID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		draft = &entity.Draft{}
	}
	draft.Touch(r.now().UTC())

	raw, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("encode draft: %w", err)
	}
	if err := r.rdb.Set(ctx, draftKeyPrefix+userID, raw, 0).Err(); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}

	return draft, nil
}

func (r *DraftRedis) ClearDraft(ctx context.Context, userID string) error {
	if err := r.rdb.Del(ctx, draftKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}
