package dashboard

import (
	"context"

	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/workspace"
)

type Workspaces interface {
	Get(ctx context.Context, identity entity.Identity) *workspace.Workspace
	Drop(userID string)
}
