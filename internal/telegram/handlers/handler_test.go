package handlers

import (
	"context"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/launchpad-labs/copilot-backend/internal/api/apitest"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/formatter"
	pkgRetry "github.com/launchpad-labs/copilot-backend/internal/pkg/retry"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/validator"
	"github.com/launchpad-labs/copilot-backend/internal/telegram/render"
	"github.com/launchpad-labs/copilot-backend/internal/telegram/telegramtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testChat = int64(100)
	testUser = int64(42)
)

type testEnv struct {
	*apitest.Env
	api     *telegramtest.API
	handler *Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := apitest.NewEnv(t)
	api := telegramtest.NewAPI()
	retry := pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: time.Millisecond}

	h := NewHandler(api, env.Registry, formatter.NewFactory(), validator.NewValidator(200), retry)
	t.Cleanup(h.Close)

	return &testEnv{Env: env, api: api, handler: h}
}

func (e *testEnv) command(cmd string) {
	e.handler.HandleCommand(context.Background(), &Message{ChatID: testChat, UserID: testUser, FirstName: "Ada", Command: cmd})
}

func (e *testEnv) text(text string) {
	e.handler.HandleText(context.Background(), &Message{ChatID: testChat, UserID: testUser, FirstName: "Ada", Text: text})
}

func (e *testEnv) press(data string) {
	e.handler.HandleCallback(context.Background(), &Message{ChatID: testChat, UserID: testUser, FirstName: "Ada", CallbackData: data, CallbackID: "cb"})
}

func (e *testEnv) state(t *testing.T) *entity.DashboardState {
	t.Helper()
	return e.Registry.Get(context.Background(), entity.Identity{UserID: "telegram:42", DisplayName: "Ada"}).State()
}

func (e *testEnv) sawText(substr string) bool {
	for _, text := range e.api.Texts() {
		if strings.Contains(text, substr) {
			return true
		}
	}
	return false
}

func TestStartShowsOnboardingForNewUser(t *testing.T) {
	env := newTestEnv(t)

	env.command("start")

	last := env.api.Last()
	assert.Equal(t, testChat, last.ChatID)
	assert.Contains(t, last.Text, "Do you already have an idea")
	assert.Equal(t, []string{"flow:have_idea", "flow:help_create", "ev:back_to_dashboard"}, telegramtest.Buttons(last))
	assert.Equal(t, entity.StepWelcome, env.state(t).Wizard.Step)
}

func TestHaveIdeaFlowProducesResults(t *testing.T) {
	env := newTestEnv(t)

	env.command("start")
	env.press("flow:have_idea")
	assert.Contains(t, env.api.Last().Text, "Describe your idea")

	env.text("Acme: invoicing for agencies")
	assert.Contains(t, env.api.Last().Text, "target audience")

	env.text("agencies")
	assert.Contains(t, env.api.Last().Text, "competitors")
	assert.Contains(t, telegramtest.Buttons(env.api.Last()), "wiz:next")

	env.press("wiz:next")

	require.Eventually(t, func() bool {
		run := env.state(t).Run
		return run != nil && run.Status == entity.RunStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	state := env.state(t)
	assert.Equal(t, entity.ViewResults, state.View)
	assert.Equal(t, "Acme", state.Selected.Name)
	assert.Equal(t, "Ada", state.Greeting)
	assert.Equal(t, []string{"", ""}, env.api.CallbackAnswers())

	require.Eventually(t, func() bool {
		return env.sawText("Stop guessing. Start shipping.")
	}, 2*time.Second, 10*time.Millisecond)

	env.press("export:markdown")
	docs := env.api.Documents()
	require.Len(t, docs, 1)
	file, ok := docs[0].File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "Acme.md", file.Name)
	assert.Contains(t, string(file.Bytes), "Acme")
}

func TestShortAnswerShowsHint(t *testing.T) {
	env := newTestEnv(t)

	env.command("start")
	env.press("flow:have_idea")
	env.text("hi")

	assert.Equal(t, render.GuardHint(entity.StepIdea1), env.api.Last().Text)
	assert.Equal(t, entity.StepIdea1, env.state(t).Wizard.Step)
}

func TestOverlongAnswerIsRejected(t *testing.T) {
	env := newTestEnv(t)

	env.command("start")
	env.press("flow:have_idea")
	env.text(strings.Repeat("a", 201))

	assert.Equal(t, render.MsgTooLong, env.api.Last().Text)
	assert.Empty(t, env.state(t).Wizard.Fields.Idea)
}

func TestHelpCreateFlowPicksSuggestedIdea(t *testing.T) {
	env := newTestEnv(t)

	env.command("start")
	env.press("flow:help_create")
	env.text("Freelancers lose track of invoices")
	assert.Contains(t, telegramtest.Buttons(env.api.Last()), "ind:ai")

	env.press("ind:ai")
	assert.Contains(t, telegramtest.Buttons(env.api.Last()), "prod:agent")

	env.press("prod:agent")
	assert.True(t, env.sawText(render.MsgGenerating))

	state := env.state(t)
	require.NotNil(t, state.Wizard)
	assert.Equal(t, entity.StepPickIdea, state.Wizard.Step)
	require.NotEmpty(t, state.Wizard.Suggestions)
	assert.Contains(t, telegramtest.Buttons(env.api.Last()), "idea:0")

	env.press("idea:0")
	assert.Equal(t, entity.ViewResults, env.state(t).View)
}

func TestTextOutsideOnboardingPointsAtButtons(t *testing.T) {
	env := newTestEnv(t)
	env.SeedProject(t, "telegram:42", entity.Project{ID: "p1", Name: "Ledger", Idea: "Ledger: books for cafes", Audience: "cafes", ValidationScore: 80, ExecutionConfidence: 70})

	env.command("start")
	assert.Contains(t, env.api.Last().Text, "Welcome back, Ada")
	assert.Contains(t, telegramtest.Buttons(env.api.Last()), "proj:p1")

	env.text("hello?")
	texts := env.api.Texts()
	require.GreaterOrEqual(t, len(texts), 2)
	assert.Equal(t, render.MsgUseButtons, texts[len(texts)-2])
	assert.Contains(t, texts[len(texts)-1], "Welcome back")
}

func TestStaleButtonShowsCurrentState(t *testing.T) {
	env := newTestEnv(t)

	env.command("start")
	env.press("ev:view_all")

	texts := env.api.Texts()
	require.GreaterOrEqual(t, len(texts), 2)
	assert.Equal(t, render.MsgStaleButton, texts[len(texts)-2])
	assert.Equal(t, entity.ViewOnboarding, env.state(t).View)
}

func TestInvalidCallbackIsAnswered(t *testing.T) {
	env := newTestEnv(t)

	env.press("garbage")

	assert.Equal(t, []string{render.ErrInvalidButton}, env.api.CallbackAnswers())
	assert.Empty(t, env.api.Texts())
}

func TestMissingProjectIsReported(t *testing.T) {
	env := newTestEnv(t)
	env.SeedProject(t, "telegram:42", entity.Project{ID: "p1", Name: "Ledger", Idea: "Ledger: books for cafes", Audience: "cafes"})

	env.command("start")
	env.press("proj:gone")

	assert.True(t, env.sawText(render.MsgNotFound))
	assert.Equal(t, entity.ViewWelcome, env.state(t).View)
}

func TestCommands(t *testing.T) {
	env := newTestEnv(t)

	env.command("help")
	assert.Equal(t, render.MsgHelp, env.api.Last().Text)

	env.command("nope")
	assert.Equal(t, render.MsgUnknown, env.api.Last().Text)

	env.command("start")
	require.Equal(t, 1, env.Registry.Len())

	env.command("signout")
	assert.Equal(t, render.MsgSignedOut, env.api.Last().Text)
	assert.Equal(t, 0, env.Registry.Len())
}

func TestReloadAfterServicesRecover(t *testing.T) {
	env := newTestEnv(t)

	env.command("start")
	env.command("reload")

	assert.Contains(t, env.api.Last().Text, "Do you already have an idea")
}

func TestFieldPatchMapsStepsToFields(t *testing.T) {
	tests := []struct {
		step  entity.OnboardingStep
		check func(entity.FieldsPatch) *string
	}{
		{entity.StepIdea1, func(p entity.FieldsPatch) *string { return p.Idea }},
		{entity.StepIdea2, func(p entity.FieldsPatch) *string { return p.Audience }},
		{entity.StepIdea3, func(p entity.FieldsPatch) *string { return p.Competitors }},
		{entity.StepCreate1, func(p entity.FieldsPatch) *string { return p.Problem }},
	}

	for _, tt := range tests {
		t.Run(string(tt.step), func(t *testing.T) {
			patch, ok := fieldPatch(tt.step, "text")
			require.True(t, ok)
			require.NotNil(t, tt.check(patch))
			assert.Equal(t, "text", *tt.check(patch))
		})
	}

	_, ok := fieldPatch(entity.StepCreate2, "fintech")
	assert.False(t, ok)
}
