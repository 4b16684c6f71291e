package project

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"go.uber.org/zap"
)

// ProjectUsecase implements project business logic
type ProjectUsecase struct {
	store  Store
	drafts DraftStore
	scorer Scorer
	now    func() time.Time
}

// NewUsecase creates a new project use case
func NewUsecase(store Store, drafts DraftStore, scorer Scorer) *ProjectUsecase {
	return &ProjectUsecase{
		store:  store,
		drafts: drafts,
		scorer: scorer,
		now:    time.Now,
	}
}

// CreateFromOnboarding persists the project a finished wizard describes,
// marks onboarding complete and clears the draft marker.
func (uc *ProjectUsecase) CreateFromOnboarding(ctx context.Context, userID string, completion *entity.Completion) (*entity.Project, error) {
	validation, execution := uc.scorer.Score(completion)

	project := entity.Project{
		ID:                  uuid.NewString(),
		Name:                DeriveName(completion.Idea),
		Idea:                completion.Idea,
		Audience:            completion.Audience,
		Competitors:         completion.Competitors,
		ValidationScore:     validation,
		ExecutionConfidence: execution,
		LastUpdated:         uc.now().UTC(),
	}

	created, err := uc.store.CreateProject(ctx, userID, project)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	ctxzap.Info(ctx, "project created",
		zap.String("project_id", created.ID),
		zap.String("name", created.Name),
		zap.String("flow", string(completion.Flow)),
	)

	if err := uc.store.MarkOnboardingComplete(ctx, userID, created.ID); err != nil {
		return nil, fmt.Errorf("mark onboarding complete: %w", err)
	}

	if err := uc.drafts.ClearDraft(ctx, userID); err != nil {
		ctxzap.Warn(ctx, "failed to clear onboarding draft", zap.Error(err))
	}

	return created, nil
}

func (uc *ProjectUsecase) GetProject(ctx context.Context, userID, projectID string) (*entity.Project, error) {
	project, err := uc.store.GetProject(ctx, userID, projectID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return project, nil
}

func (uc *ProjectUsecase) ListProjects(ctx context.Context, userID string) ([]*entity.Project, error) {
	projects, err := uc.store.ListProjects(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (uc *ProjectUsecase) EnsureProfile(ctx context.Context, userID string) (*entity.UserProfile, error) {
	profile, err := uc.store.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}
	return profile, nil
}
