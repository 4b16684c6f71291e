package keyboard

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callbacks(markup *tgbotapi.InlineKeyboardMarkup) []string {
	if markup == nil {
		return nil
	}
	var out []string
	for _, row := range markup.InlineKeyboard {
		for _, b := range row {
			out = append(out, *b.CallbackData)
		}
	}
	return out
}

func TestParseCallback(t *testing.T) {
	data, err := ParseCallback("proj:abc:def")
	require.NoError(t, err)
	assert.Equal(t, ActionProject, data.Action)
	assert.Equal(t, "abc:def", data.Value)

	data, err = ParseCallback(EncodeCallback(ActionRestart, ""))
	require.NoError(t, err)
	assert.Equal(t, "", data.Value)

	for _, bad := range []string{"", "noseparator", ":value"} {
		_, err := ParseCallback(bad)
		assert.Error(t, err, bad)
	}
}

func TestWelcomeKeyboard(t *testing.T) {
	b := NewBuilder()

	state := &entity.DashboardState{
		View:        entity.ViewWelcome,
		BestProject: &entity.Project{ID: "p2", Name: "Ledger"},
	}
	assert.Equal(t,
		[]string{"proj:p2", "ev:start_new", "ev:explore", "ev:view_all"},
		callbacks(b.ForState(state)))

	state.BestProject = nil
	assert.Equal(t, []string{"ev:start_new", "ev:explore", "ev:view_all"}, callbacks(b.ForState(state)))
}

func TestResultsKeyboardDependsOnRun(t *testing.T) {
	b := NewBuilder()

	running := &entity.DashboardState{
		View: entity.ViewResults,
		Run:  &entity.RunSnapshot{Status: entity.RunStatusRunning},
	}
	assert.Equal(t, []string{"ev:back"}, callbacks(b.ForState(running)))

	failed := &entity.DashboardState{
		View: entity.ViewResults,
		Run:  &entity.RunSnapshot{Status: entity.RunStatusFailed},
	}
	assert.Equal(t, []string{"restart:run", "ev:back"}, callbacks(b.ForState(failed)))

	done := &entity.DashboardState{
		View: entity.ViewResults,
		Run:  &entity.RunSnapshot{Status: entity.RunStatusCompleted},
	}
	assert.Equal(t,
		[]string{"export:markdown", "export:pdf", "export:docx", "restart:run", "ev:back"},
		callbacks(b.ForState(done)))
}

func TestHistoryKeyboardIsCapped(t *testing.T) {
	var projects []*entity.Project
	for i := 0; i < 12; i++ {
		projects = append(projects, &entity.Project{ID: string(rune('a' + i)), Name: "P"})
	}

	got := callbacks(NewBuilder().ForState(&entity.DashboardState{View: entity.ViewHistory, Projects: projects}))
	require.Len(t, got, maxProjectButtons+1)
	assert.Equal(t, "proj:a", got[0])
	assert.Equal(t, "ev:back", got[len(got)-1])
}

func TestWizardKeyboards(t *testing.T) {
	b := NewBuilder()
	wizard := func(step entity.OnboardingStep) *entity.DashboardState {
		return &entity.DashboardState{View: entity.ViewOnboarding, Wizard: &entity.WizardSnapshot{Step: step}}
	}

	assert.Equal(t, []string{"wiz:back"}, callbacks(b.ForState(wizard(entity.StepIdea1))))
	assert.Equal(t, []string{"wiz:next", "wiz:back"}, callbacks(b.ForState(wizard(entity.StepIdea3))))

	industries := callbacks(b.ForState(wizard(entity.StepCreate2)))
	assert.Len(t, industries, len(entity.Industries)+1)
	assert.Contains(t, industries, "ind:fintech")

	products := callbacks(b.ForState(wizard(entity.StepCreate3)))
	assert.Contains(t, products, "prod:marketplace")

	pick := wizard(entity.StepPickIdea)
	pick.Wizard.Suggestions = []entity.IdeaSuggestion{{Title: "A"}, {Title: "B"}}
	assert.Equal(t, []string{"idea:0", "idea:1", "wiz:back"}, callbacks(b.ForState(pick)))

	generating := wizard(entity.StepCreate3)
	generating.Wizard.Generating = true
	assert.Nil(t, b.ForState(generating))
}

func TestErrorKeyboardOffersReload(t *testing.T) {
	assert.Equal(t, []string{"ev:reload"}, callbacks(NewBuilder().ForState(&entity.DashboardState{View: entity.ViewError})))
	assert.Nil(t, NewBuilder().ForState(&entity.DashboardState{View: entity.ViewRouting}))
}

func TestCallbackDataFitsTelegramLimit(t *testing.T) {
	id := "0123456789abcdef0123456789abcdef01234567"
	assert.LessOrEqual(t, len(EncodeCallback(ActionProject, id)), 64)
}
