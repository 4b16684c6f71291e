package dashboard

import "github.com/launchpad-labs/copilot-backend/internal/entity"

// RouteInput is everything the view rule looks at.
type RouteInput struct {
	ServicesReady bool
	Profile       *entity.UserProfile
	ProjectCount  int
	DraftStarted  bool
}

// Route selects the view for the given data. Precedence:
// error > welcome (projects) > welcome (onboarding complete) > continue_draft > onboarding.
// A missing profile means the first snapshot has not arrived yet.
func Route(in RouteInput) entity.View {
	switch {
	case !in.ServicesReady:
		return entity.ViewError
	case in.ProjectCount > 0:
		return entity.ViewWelcome
	case in.Profile == nil:
		return entity.ViewRouting
	case in.Profile.OnboardingComplete:
		return entity.ViewWelcome
	case in.DraftStarted:
		return entity.ViewContinueDraft
	default:
		return entity.ViewOnboarding
	}
}

// BestProject returns the project with the highest combined score.
// The first one encountered wins a tie.
func BestProject(projects []*entity.Project) *entity.Project {
	var best *entity.Project
	for _, p := range projects {
		if p == nil {
			continue
		}
		if best == nil || p.Score() > best.Score() {
			best = p
		}
	}
	return best
}

// IsBestProject reports whether the welcome card should be labelled as the
// best of several projects.
func IsBestProject(projectCount int) bool {
	return projectCount > 1
}
