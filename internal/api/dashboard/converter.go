package dashboard

import (
	"time"

	"github.com/launchpad-labs/copilot-backend/internal/entity"
)

func toProjectSummary(p *entity.Project) *entity.ProjectSummary {
	return &entity.ProjectSummary{
		ID:                  p.ID,
		Name:                p.Name,
		ValidationScore:     p.ValidationScore,
		ExecutionConfidence: p.ExecutionConfidence,
		LastUpdated:         p.LastUpdated.Format(time.RFC3339),
	}
}
