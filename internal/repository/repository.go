package repository

import (
	"context"

	"github.com/launchpad-labs/copilot-backend/internal/entity"
)

// ProfileRepository defines the interface for per-user profile persistence
type ProfileRepository interface {
	// EnsureProfile returns the profile, creating one with defaults on first access.
	EnsureProfile(ctx context.Context, userID string) (*entity.UserProfile, error)
	GetProfile(ctx context.Context, userID string) (*entity.UserProfile, error)
	MarkOnboardingComplete(ctx context.Context, userID, projectID string) error
}

// ProjectRepository defines the interface for project persistence
type ProjectRepository interface {
	CreateProject(ctx context.Context, userID string, project entity.Project) (*entity.Project, error)
	GetProject(ctx context.Context, userID, projectID string) (*entity.Project, error)
	// ListProjects returns projects ordered by LastUpdated descending.
	ListProjects(ctx context.Context, userID string) ([]*entity.Project, error)
}

// ChangeFeed streams consistent snapshots of a user's profile and projects.
// The first snapshot is sent as soon as it is read; the channel is closed
// when ctx is done.
type ChangeFeed interface {
	Watch(ctx context.Context, userID string) (<-chan entity.StoreSnapshot, error)
}

// DraftStore keeps the onboarding draft marker.
type DraftStore interface {
	GetDraft(ctx context.Context, userID string) (*entity.Draft, error)
	TouchDraft(ctx context.Context, userID string) (*entity.Draft, error)
	ClearDraft(ctx context.Context, userID string) error
}

// Store is one profile/project backend selected by STORE_DRIVER.
type Store interface {
	ProfileRepository
	ProjectRepository
	ChangeFeed
	Ping(ctx context.Context) error
	Close() error
}
