package project

import (
	"context"

	"github.com/launchpad-labs/copilot-backend/internal/entity"
)

type Store interface {
	EnsureProfile(ctx context.Context, userID string) (*entity.UserProfile, error)
	MarkOnboardingComplete(ctx context.Context, userID, projectID string) error
	CreateProject(ctx context.Context, userID string, project entity.Project) (*entity.Project, error)
	GetProject(ctx context.Context, userID, projectID string) (*entity.Project, error)
	ListProjects(ctx context.Context, userID string) ([]*entity.Project, error)
}

type DraftStore interface {
	ClearDraft(ctx context.Context, userID string) error
}

// Scorer produces the scores stored on a new project.
type Scorer interface {
	Score(completion *entity.Completion) (validation, execution int)
}
