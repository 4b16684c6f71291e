package render

import (
	"fmt"
	"strings"

	"github.com/launchpad-labs/copilot-backend/internal/entity"
)

const (
	MsgHelp = `🤖 Commands:

/start - Open your dashboard
/reload - Retry after a connection problem
/signout - Forget this chat's session
/help - Show this help

How it works:
1. Describe your idea, or let me suggest one
2. I validate it, plan a roadmap and write launch copy
3. Export the results as Markdown, PDF or DOCX`

	MsgLoading       = "⏳ Loading your workspace..."
	MsgServicesDown  = "⚠️ We can't reach our servers right now. Press Reload to try again."
	MsgSignedOut     = "👋 Signed out. Send /start to come back."
	MsgUnknown       = "❌ Unknown command. Use /start"
	MsgUseButtons    = "👆 Please use the buttons above."
	MsgGenerating    = "🧠 Looking for ideas that fit... this can take a minute."
	MsgExporting     = "📦 Preparing your file..."
	MsgRunNotReady   = "⏳ The results are not ready yet."
	MsgStaleButton   = "⌛ That button is no longer valid. Here is where you are now:"
	MsgNotFound      = "🔍 That project no longer exists."
	MsgProcessing    = "⏳ Working on it..."
	MsgTooLong       = "✂️ That's a bit long. Please keep it shorter."
	MsgRateLimited   = "⚠️ Too many requests. Please wait a moment."
	ErrGeneric       = "❌ Something went wrong. Try again or send /start"
	ErrInvalidButton = "❌ Invalid button"
)

var guardHints = map[entity.OnboardingStep]string{
	entity.StepIdea1:   "✏️ Tell me a bit more: the idea needs at least 6 characters.",
	entity.StepIdea2:   "✏️ Who is it for? The audience needs at least 4 characters.",
	entity.StepCreate1: "✏️ Describe the problem in at least 6 characters.",
}

// GuardHint explains why the wizard did not advance from step.
func GuardHint(step entity.OnboardingStep) string {
	if hint, ok := guardHints[step]; ok {
		return hint
	}
	return "✏️ Please complete this step first."
}

// GenerationFailed wraps the message surfaced by the generation backend.
func GenerationFailed(message string) string {
	return "❌ Generation failed: " + message
}

// State renders the current view.
func State(state *entity.DashboardState) string {
	switch state.View {
	case entity.ViewRouting:
		return MsgLoading
	case entity.ViewWelcome:
		return welcome(state)
	case entity.ViewContinueDraft:
		return continueDraft(state)
	case entity.ViewOnboarding:
		return Wizard(state.Wizard)
	case entity.ViewResults:
		return Results(state.Selected, state.Run)
	case entity.ViewHistory:
		return history(state.Projects)
	case entity.ViewError:
		return MsgServicesDown
	default:
		return MsgLoading
	}
}

func welcome(state *entity.DashboardState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👋 Welcome back, %s!\n", state.Greeting)

	if p := state.BestProject; p != nil {
		fmt.Fprintf(&b, "\n🏆 Your strongest idea: %s\n", p.Name)
		fmt.Fprintf(&b, "Validation %d · Execution %d\n", p.ValidationScore, p.ExecutionConfidence)
	}
	fmt.Fprintf(&b, "\nYou have %d project(s). What's next?", len(state.Projects))
	return b.String()
}

func continueDraft(state *entity.DashboardState) string {
	msg := fmt.Sprintf("👋 Hi %s! You have an unfinished idea", state.Greeting)
	if state.Draft != nil && !state.Draft.StartedAt.IsZero() {
		msg += " from " + state.Draft.StartedAt.Format("Jan 2, 15:04")
	}
	return msg + ". Pick up where you left off?"
}

func history(projects []*entity.Project) string {
	if len(projects) == 0 {
		return "📚 No projects yet."
	}

	var b strings.Builder
	b.WriteString("📚 Your projects:\n")
	for i, p := range projects {
		fmt.Fprintf(&b, "\n%d. %s (%d/%d), updated %s", i+1, p.Name, p.ValidationScore, p.ExecutionConfidence, p.LastUpdated.Format("Jan 2"))
	}
	return b.String()
}

// Wizard renders the prompt for the current onboarding step.
func Wizard(wiz *entity.WizardSnapshot) string {
	if wiz == nil {
		return MsgLoading
	}
	if wiz.Generating {
		return MsgGenerating
	}

	switch wiz.Step {
	case entity.StepWelcome:
		return "🚀 Let's shape your startup.\n\nDo you already have an idea, or should I help you find one?"
	case entity.StepIdea1:
		return "💡 Step 1 of 3\n\nDescribe your idea in a sentence or two." + current(wiz.Fields.Idea)
	case entity.StepIdea2:
		return "🎯 Step 2 of 3\n\nWho is it for? Describe your target audience." + current(wiz.Fields.Audience)
	case entity.StepIdea3:
		return "🥊 Step 3 of 3\n\nWho are your competitors? Send their names, or press Skip." + current(wiz.Fields.Competitors)
	case entity.StepCreate1:
		return "🧩 Step 1 of 3\n\nWhat problem do you want to solve?" + current(wiz.Fields.Problem)
	case entity.StepCreate2:
		return "🏭 Step 2 of 3\n\nPick an industry."
	case entity.StepCreate3:
		return "📦 Step 3 of 3\n\nWhat kind of product do you want to build?"
	case entity.StepPickIdea:
		return suggestions(wiz.Suggestions)
	default:
		return MsgLoading
	}
}

func current(value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return "\n\nSo far: " + value
}

func suggestions(ideas []entity.IdeaSuggestion) string {
	var b strings.Builder
	b.WriteString("✨ Here are some ideas for you. Pick one:\n")
	for i, idea := range ideas {
		fmt.Fprintf(&b, "\n%d. %s\n%s\n👥 %s\n", i+1, idea.Title, idea.Description, idea.Audience)
	}
	return b.String()
}

var stageNames = map[entity.Stage]string{
	entity.StageValidate: "Validating the idea",
	entity.StageRoadmap:  "Planning the roadmap",
	entity.StageCopy:     "Writing launch copy",
}

// Stage renders one pipeline event.
func Stage(ev *entity.StageEvent) string {
	switch ev.Type {
	case entity.StageEventStarted:
		return "⏳ " + stageNames[ev.Stage] + "..."
	case entity.StageEventCompleted:
		return "✅ " + stageNames[ev.Stage] + ": done"
	case entity.StageEventFailed:
		return "❌ " + stageNames[ev.Stage] + " failed: " + ev.Error
	case entity.StageEventFinished:
		return "🎉 All done!"
	default:
		return ""
	}
}

// Results renders the results view for project.
func Results(project *entity.Project, run *entity.RunSnapshot) string {
	var b strings.Builder
	if project != nil {
		fmt.Fprintf(&b, "📊 %s\n", project.Name)
	}
	if run == nil {
		b.WriteString("\n" + MsgProcessing)
		return b.String()
	}

	for _, stage := range entity.Stages {
		fmt.Fprintf(&b, "\n%s %s", stageMark(run, stage), stageNames[stage])
	}

	if v := run.Validation; v != nil {
		fmt.Fprintf(&b, "\n\n🧮 Investability: %d/100\n%s", v.InvestabilityScore, v.Summary)
		list(&b, "💪 Strengths", v.SWOT.Strengths)
		list(&b, "⚠️ Risks", v.Risks)
	}
	if r := run.Roadmap; r != nil {
		if r.StrategicSummary != nil {
			fmt.Fprintf(&b, "\n\n🧭 %s", *r.StrategicSummary)
		}
		list(&b, "🗓 Week 1", r.Week1.Goals)
		list(&b, "📅 Month 1", r.Month1.Goals)
		list(&b, "🛠 Tech stack", r.SuggestedTechStack)
	}
	if c := run.Copy; c != nil {
		fmt.Fprintf(&b, "\n\n📣 %s\n%s\n👉 %s", c.HeroHeadline, c.Subheadline, c.CTA)
	}
	if run.Status == entity.RunStatusFailed {
		fmt.Fprintf(&b, "\n\n❌ %s", run.Error)
	}
	return b.String()
}

func stageMark(run *entity.RunSnapshot, stage entity.Stage) string {
	switch {
	case stage == entity.StageValidate && run.Validation != nil,
		stage == entity.StageRoadmap && run.Roadmap != nil,
		stage == entity.StageCopy && run.Copy != nil:
		return "✅"
	case run.CurrentStage == stage && run.Status == entity.RunStatusRunning:
		return "⏳"
	case run.CurrentStage == stage && run.Status == entity.RunStatusFailed:
		return "❌"
	default:
		return "▫️"
	}
}

func list(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n\n%s:", title)
	for _, item := range items {
		fmt.Fprintf(b, "\n• %s", item)
	}
}
