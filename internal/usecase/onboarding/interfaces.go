package onboarding

import (
	"context"

	"github.com/launchpad-labs/copilot-backend/internal/entity"
)

type IdeaSuggester interface {
	SuggestIdeas(ctx context.Context, req *entity.SuggestIdeasRequest) (*entity.SuggestIdeasResponse, error)
}
