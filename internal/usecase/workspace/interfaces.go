package workspace

import (
	"context"

	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/onboarding"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/pipeline"
)

type Store interface {
	Watch(ctx context.Context, userID string) (<-chan entity.StoreSnapshot, error)
	Ping(ctx context.Context) error
}

type DraftStore interface {
	GetDraft(ctx context.Context, userID string) (*entity.Draft, error)
	TouchDraft(ctx context.Context, userID string) (*entity.Draft, error)
}

type ProjectService interface {
	CreateFromOnboarding(ctx context.Context, userID string, completion *entity.Completion) (*entity.Project, error)
	GetProject(ctx context.Context, userID, projectID string) (*entity.Project, error)
}

type PipelineRunner interface {
	Start(ctx context.Context, projectID string, in entity.PipelineInput, observer pipeline.Observer) *pipeline.Run
}

// Deps are shared by every workspace of a registry.
type Deps struct {
	Store     Store
	Drafts    DraftStore
	Projects  ProjectService
	Suggester onboarding.IdeaSuggester
	Runner    PipelineRunner
}
