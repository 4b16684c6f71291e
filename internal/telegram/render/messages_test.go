package render

import (
	"testing"

	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestStateRendersEachView(t *testing.T) {
	tests := []struct {
		name  string
		state *entity.DashboardState
		want  string
	}{
		{"routing", &entity.DashboardState{View: entity.ViewRouting}, MsgLoading},
		{"error", &entity.DashboardState{View: entity.ViewError}, MsgServicesDown},
		{"welcome", &entity.DashboardState{
			View:        entity.ViewWelcome,
			Greeting:    "Ada",
			Projects:    []*entity.Project{{Name: "Ledger"}},
			BestProject: &entity.Project{Name: "Ledger", ValidationScore: 88, ExecutionConfidence: 71},
		}, "Your strongest idea: Ledger"},
		{"continue draft", &entity.DashboardState{View: entity.ViewContinueDraft, Greeting: "Ada"}, "Hi Ada! You have an unfinished idea"},
		{"empty history", &entity.DashboardState{View: entity.ViewHistory}, "No projects yet"},
		{"wizard", &entity.DashboardState{
			View:   entity.ViewOnboarding,
			Wizard: &entity.WizardSnapshot{Step: entity.StepIdea2, Fields: entity.OnboardingFields{Audience: "cafes"}},
		}, "So far: cafes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, State(tt.state), tt.want)
		})
	}
}

func TestWizardHidesEmptyAnswer(t *testing.T) {
	text := Wizard(&entity.WizardSnapshot{Step: entity.StepIdea1, Fields: entity.OnboardingFields{Idea: "   "}})
	assert.NotContains(t, text, "So far")

	assert.Equal(t, MsgGenerating, Wizard(&entity.WizardSnapshot{Step: entity.StepCreate3, Generating: true}))
}

func TestSuggestionsAreNumbered(t *testing.T) {
	text := Wizard(&entity.WizardSnapshot{
		Step: entity.StepPickIdea,
		Suggestions: []entity.IdeaSuggestion{
			{Title: "Ledger", Description: "Books for cafes", Audience: "cafe owners"},
			{Title: "Shiftly", Description: "Rotas", Audience: "managers"},
		},
	})

	assert.Contains(t, text, "1. Ledger")
	assert.Contains(t, text, "2. Shiftly")
	assert.Contains(t, text, "👥 cafe owners")
}

func TestStageMessages(t *testing.T) {
	assert.Equal(t, "⏳ Planning the roadmap...", Stage(&entity.StageEvent{Type: entity.StageEventStarted, Stage: entity.StageRoadmap}))
	assert.Equal(t, "✅ Validating the idea: done", Stage(&entity.StageEvent{Type: entity.StageEventCompleted, Stage: entity.StageValidate}))
	assert.Equal(t, "❌ Writing launch copy failed: timeout", Stage(&entity.StageEvent{Type: entity.StageEventFailed, Stage: entity.StageCopy, Error: "timeout"}))
	assert.Equal(t, "🎉 All done!", Stage(&entity.StageEvent{Type: entity.StageEventFinished}))
}

func TestResultsShowProgressAndPayloads(t *testing.T) {
	project := &entity.Project{Name: "Ledger"}

	assert.Contains(t, Results(project, nil), MsgProcessing)

	running := Results(project, &entity.RunSnapshot{
		Status:       entity.RunStatusRunning,
		CurrentStage: entity.StageRoadmap,
		Validation: &entity.ValidationResponse{
			InvestabilityScore: 81,
			Summary:            "Promising",
			SWOT:               entity.SWOT{Strengths: []string{"Clear pain"}},
		},
	})
	assert.Contains(t, running, "✅ Validating the idea")
	assert.Contains(t, running, "⏳ Planning the roadmap")
	assert.Contains(t, running, "▫️ Writing launch copy")
	assert.Contains(t, running, "Investability: 81/100")
	assert.Contains(t, running, "• Clear pain")

	failed := Results(project, &entity.RunSnapshot{
		Status:       entity.RunStatusFailed,
		CurrentStage: entity.StageValidate,
		Error:        "backend down",
	})
	assert.Contains(t, failed, "❌ Validating the idea")
	assert.Contains(t, failed, "❌ backend down")
}

func TestGuardHint(t *testing.T) {
	assert.Contains(t, GuardHint(entity.StepIdea2), "4 characters")
	assert.Equal(t, "✏️ Please complete this step first.", GuardHint(entity.StepCreate2))
}
