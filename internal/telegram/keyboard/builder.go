package keyboard

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/dashboard"
)

const maxProjectButtons = 10

var industryLabels = map[entity.Industry]string{
	entity.IndustryFintech:   "💳 Fintech",
	entity.IndustryEdtech:    "🎓 Edtech",
	entity.IndustryHealth:    "🩺 Health",
	entity.IndustryAI:        "🤖 AI",
	entity.IndustryEcommerce: "🛒 E-commerce",
	entity.IndustrySaaS:      "☁️ SaaS",
}

var productLabels = map[entity.ProductType]string{
	entity.ProductSaaS:        "☁️ SaaS",
	entity.ProductMarketplace: "🏪 Marketplace",
	entity.ProductMobile:      "📱 Mobile app",
	entity.ProductAgent:       "🤖 AI agent",
}

var exportLabels = []struct {
	format entity.ResultFormat
	label  string
}{
	{entity.FormatMarkdown, "📝 Markdown"},
	{entity.FormatPDF, "📄 PDF"},
	{entity.FormatDOCX, "📃 DOCX"},
}

// Builder creates inline keyboards
type Builder struct{}

// NewBuilder creates a keyboard builder
func NewBuilder() *Builder {
	return &Builder{}
}

// ForState returns the buttons for the current view, or nil when the view
// takes no input.
func (b *Builder) ForState(state *entity.DashboardState) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	switch state.View {
	case entity.ViewWelcome:
		if state.BestProject != nil {
			rows = append(rows, row(button("▶️ Continue "+state.BestProject.Name, ActionProject, state.BestProject.ID)))
		}
		rows = append(rows,
			row(eventButton("🚀 New idea", dashboard.EventStartNew), eventButton("🧭 Explore", dashboard.EventExplore)),
			row(eventButton("📚 All projects", dashboard.EventViewAll)),
		)

	case entity.ViewContinueDraft:
		rows = append(rows,
			row(eventButton("✏️ Continue draft", dashboard.EventContinueDraft)),
			row(eventButton("🚀 Start over", dashboard.EventStartNew), eventButton("🧭 Explore", dashboard.EventExplore)),
		)

	case entity.ViewOnboarding:
		rows = b.wizardRows(state.Wizard)

	case entity.ViewResults:
		if state.Run != nil && state.Run.Status.Terminal() {
			if state.Run.Status == entity.RunStatusCompleted {
				exports := make([]tgbotapi.InlineKeyboardButton, 0, len(exportLabels))
				for _, e := range exportLabels {
					exports = append(exports, button(e.label, ActionExport, string(e.format)))
				}
				rows = append(rows, exports)
			}
			rows = append(rows, row(button("🔁 Run again", ActionRestart, "run")))
		}
		rows = append(rows, row(eventButton("⬅️ Dashboard", dashboard.EventBack)))

	case entity.ViewHistory:
		for i, p := range state.Projects {
			if i == maxProjectButtons {
				break
			}
			label := fmt.Sprintf("%s · %d/%d", p.Name, p.ValidationScore, p.ExecutionConfidence)
			rows = append(rows, row(button(label, ActionProject, p.ID)))
		}
		rows = append(rows, row(eventButton("⬅️ Back", dashboard.EventBack)))

	case entity.ViewError:
		rows = append(rows, row(eventButton("🔄 Reload", dashboard.EventReload)))
	}

	if len(rows) == 0 {
		return nil
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

func (b *Builder) wizardRows(wiz *entity.WizardSnapshot) [][]tgbotapi.InlineKeyboardButton {
	if wiz == nil || wiz.Generating {
		return nil
	}

	back := button("⬅️ Back", ActionWizard, WizardBack)

	switch wiz.Step {
	case entity.StepWelcome:
		return [][]tgbotapi.InlineKeyboardButton{
			row(button("💡 I have an idea", ActionFlow, string(entity.FlowHaveIdea))),
			row(button("🧪 Help me find one", ActionFlow, string(entity.FlowHelpCreate))),
			row(eventButton("🏠 Dashboard", dashboard.EventBackToDashboard)),
		}

	case entity.StepIdea3:
		return [][]tgbotapi.InlineKeyboardButton{
			row(button("⏭ Skip", ActionWizard, WizardNext)),
			row(back),
		}

	case entity.StepCreate2:
		rows := grid(len(entity.Industries), 2, func(i int) tgbotapi.InlineKeyboardButton {
			ind := entity.Industries[i]
			return button(industryLabels[ind], ActionIndustry, string(ind))
		})
		return append(rows, row(back))

	case entity.StepCreate3:
		rows := grid(len(entity.ProductTypes), 2, func(i int) tgbotapi.InlineKeyboardButton {
			pt := entity.ProductTypes[i]
			return button(productLabels[pt], ActionProduct, string(pt))
		})
		return append(rows, row(back))

	case entity.StepPickIdea:
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(wiz.Suggestions)+1)
		for i, s := range wiz.Suggestions {
			rows = append(rows, row(button(fmt.Sprintf("%d. %s", i+1, s.Title), ActionIdea, strconv.Itoa(i))))
		}
		return append(rows, row(back))

	default:
		return [][]tgbotapi.InlineKeyboardButton{row(back)}
	}
}

func button(label, action, value string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(label, EncodeCallback(action, value))
}

func eventButton(label string, ev dashboard.Event) tgbotapi.InlineKeyboardButton {
	return button(label, ActionEvent, string(ev))
}

func row(buttons ...tgbotapi.InlineKeyboardButton) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(buttons...)
}

func grid(n, perRow int, at func(i int) tgbotapi.InlineKeyboardButton) [][]tgbotapi.InlineKeyboardButton {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < n; i += perRow {
		var r []tgbotapi.InlineKeyboardButton
		for j := i; j < i+perRow && j < n; j++ {
			r = append(r, at(j))
		}
		rows = append(rows, r)
	}
	return rows
}
