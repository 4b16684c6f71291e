package pipeline

import (
	"context"

	"github.com/launchpad-labs/copilot-backend/internal/entity"
)

type Generator interface {
	Validate(ctx context.Context, req *entity.ValidateRequest) (*entity.ValidationResponse, error)
	Roadmap(ctx context.Context, req *entity.RoadmapRequest) (*entity.RoadmapResponse, error)
	Copy(ctx context.Context, req *entity.CopyRequest) (*entity.CopyResponse, error)
}

// Observer receives every stage event together with the cumulative snapshot.
// It is called from the run goroutine and must not block or call back into
// the Run.
type Observer func(event entity.StageEvent, snap *entity.RunSnapshot)
