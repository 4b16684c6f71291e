package onboarding

import (
	"strings"
	"unicode/utf8"

	"github.com/launchpad-labs/copilot-backend/internal/entity"
)

const (
	minIdeaLength     = 6
	minAudienceLength = 4
	minProblemLength  = 6
)

func longEnough(s string, min int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= min
}

// canAdvance is the guard for leaving step with the given fields.
func canAdvance(step entity.OnboardingStep, f *entity.OnboardingFields) bool {
	switch step {
	case entity.StepIdea1:
		return longEnough(f.Idea, minIdeaLength)
	case entity.StepIdea2:
		return longEnough(f.Audience, minAudienceLength)
	case entity.StepIdea3:
		return true
	case entity.StepCreate1:
		return longEnough(f.Problem, minProblemLength)
	case entity.StepCreate2:
		return f.Industry.IsValid()
	case entity.StepCreate3:
		return longEnough(f.Problem, minProblemLength) && f.Industry.IsValid() && f.ProductType.IsValid()
	default:
		return false
	}
}

var nextStep = map[entity.OnboardingStep]entity.OnboardingStep{
	entity.StepIdea1:   entity.StepIdea2,
	entity.StepIdea2:   entity.StepIdea3,
	entity.StepCreate1: entity.StepCreate2,
	entity.StepCreate2: entity.StepCreate3,
}

var prevStep = map[entity.OnboardingStep]entity.OnboardingStep{
	entity.StepIdea1:    entity.StepWelcome,
	entity.StepIdea2:    entity.StepIdea1,
	entity.StepIdea3:    entity.StepIdea2,
	entity.StepCreate1:  entity.StepWelcome,
	entity.StepCreate2:  entity.StepCreate1,
	entity.StepCreate3:  entity.StepCreate2,
	entity.StepPickIdea: entity.StepCreate3,
}

func isFirstStep(step entity.OnboardingStep) bool {
	return step == entity.StepIdea1 || step == entity.StepCreate1
}
