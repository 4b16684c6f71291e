package onboarding

import (
	"context"
	"fmt"
	"sync"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"go.uber.org/zap"
)

type Options struct {
	// OnDraftStarted runs after a non-empty idea, audience, problem or
	// industry has been entered.
	OnDraftStarted func(ctx context.Context)
	// OnBackToDashboard, when set, replaces the step back to welcome from the
	// first step of either branch.
	OnBackToDashboard func()
}

// Wizard is the onboarding flow state machine. All methods are safe for
// concurrent use. The suggestion call runs without holding the lock; a
// generation token makes sure a late answer for an abandoned request is dropped.
type Wizard struct {
	mu          sync.Mutex
	step        entity.OnboardingStep
	flow        entity.OnboardingFlow
	fields      entity.OnboardingFields
	suggestions []entity.IdeaSuggestion
	generating  bool
	token       uint64
	cancelGen   context.CancelFunc
	closed      bool

	suggester IdeaSuggester
	opts      Options
}

// NewWizard starts at step with flow preselected. Pass StepWelcome and an
// empty flow for a fresh start.
func NewWizard(suggester IdeaSuggester, step entity.OnboardingStep, flow entity.OnboardingFlow, opts Options) *Wizard {
	return &Wizard{
		step:      step,
		flow:      flow,
		suggester: suggester,
		opts:      opts,
	}
}

// ChooseFlow picks a branch on the welcome step.
func (w *Wizard) ChooseFlow(flow entity.OnboardingFlow) error {
	if err := flow.Validate(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return entity.ErrWizardClosed
	}
	if w.step != entity.StepWelcome {
		return fmt.Errorf("%w: choose flow on %s", entity.ErrWrongStep, w.step)
	}

	w.flow = flow
	w.step = flow.FirstStep()
	return nil
}

// Update applies the non-nil fields of patch.
func (w *Wizard) Update(ctx context.Context, patch entity.FieldsPatch) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return entity.ErrWizardClosed
	}

	started := false
	if patch.Idea != nil {
		w.fields.Idea = *patch.Idea
		started = started || *patch.Idea != ""
	}
	if patch.Audience != nil {
		w.fields.Audience = *patch.Audience
		started = started || *patch.Audience != ""
	}
	if patch.Competitors != nil {
		w.fields.Competitors = *patch.Competitors
	}
	if patch.Problem != nil {
		w.fields.Problem = *patch.Problem
		started = started || *patch.Problem != ""
	}
	if patch.Industry != nil {
		w.fields.Industry = *patch.Industry
		started = started || *patch.Industry != ""
	}
	if patch.ProductType != nil {
		w.fields.ProductType = *patch.ProductType
	}
	w.mu.Unlock()

	if started && w.opts.OnDraftStarted != nil {
		w.opts.OnDraftStarted(ctx)
	}
	return nil
}

// CanNext reports whether Next would advance. It has no side effects.
func (w *Wizard) CanNext() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return !w.closed && !w.generating && canAdvance(w.step, &w.fields)
}

// Next advances one step. On idea_step3 it completes the wizard; on
// create_step3 it requests idea suggestions and moves to pick_idea.
// A failing guard returns ErrGuardFailed and changes nothing.
func (w *Wizard) Next(ctx context.Context) (*entity.Completion, error) {
	w.mu.Lock()

	if err := w.checkActive(); err != nil {
		w.mu.Unlock()
		return nil, err
	}

	switch w.step {
	case entity.StepWelcome, entity.StepPickIdea:
		step := w.step
		w.mu.Unlock()
		return nil, fmt.Errorf("%w: next on %s", entity.ErrWrongStep, step)
	}

	if !canAdvance(w.step, &w.fields) {
		step := w.step
		w.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", entity.ErrGuardFailed, step)
	}

	switch w.step {
	case entity.StepIdea3:
		completion := &entity.Completion{
			Idea:        w.fields.Idea,
			Audience:    w.fields.Audience,
			Competitors: w.fields.Competitors,
			Flow:        entity.FlowHaveIdea,
		}
		w.closed = true
		w.mu.Unlock()
		return completion, nil

	case entity.StepCreate3:
		// unlocks
		return nil, w.generate(ctx)

	default:
		w.step = nextStep[w.step]
		w.mu.Unlock()
		return nil, nil
	}
}

// generate must be called with w.mu held; it releases it.
func (w *Wizard) generate(ctx context.Context) error {
	req := &entity.SuggestIdeasRequest{
		Problem:     w.fields.Problem,
		Industry:    w.fields.Industry,
		ProductType: w.fields.ProductType,
	}

	genCtx, cancel := context.WithCancel(ctx)
	w.token++
	token := w.token
	w.generating = true
	w.cancelGen = cancel
	w.mu.Unlock()

	defer cancel()

	resp, err := w.suggester.SuggestIdeas(genCtx, req)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.token != token {
		// Abandoned by Back, Reset or Close while in flight.
		ctxzap.Debug(ctx, "dropping stale idea suggestions")
		return context.Canceled
	}
	w.generating = false
	w.cancelGen = nil

	if err != nil {
		ctxzap.Warn(ctx, "idea suggestion failed, staying on step", zap.Error(err))
		return err
	}

	w.suggestions = resp.Ideas
	w.step = entity.StepPickIdea
	return nil
}

// Back steps back. From the first step of a branch it fires
// OnBackToDashboard when set (and reports exited), otherwise returns to welcome.
func (w *Wizard) Back() (exited bool, err error) {
	w.mu.Lock()

	if w.closed {
		w.mu.Unlock()
		return false, entity.ErrWizardClosed
	}

	if isFirstStep(w.step) && w.opts.OnBackToDashboard != nil {
		w.mu.Unlock()
		w.opts.OnBackToDashboard()
		return true, nil
	}

	prev, ok := prevStep[w.step]
	if !ok {
		step := w.step
		w.mu.Unlock()
		return false, fmt.Errorf("%w: back on %s", entity.ErrWrongStep, step)
	}

	w.abandonGeneration()
	w.step = prev
	w.mu.Unlock()
	return false, nil
}

// SelectIdea completes the help-create branch with the chosen suggestion.
func (w *Wizard) SelectIdea(index int) (*entity.Completion, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkActive(); err != nil {
		return nil, err
	}
	if w.step != entity.StepPickIdea {
		return nil, fmt.Errorf("%w: select idea on %s", entity.ErrWrongStep, w.step)
	}
	if index < 0 || index >= len(w.suggestions) {
		return nil, fmt.Errorf("%w: %d of %d", entity.ErrSuggestionIndex, index, len(w.suggestions))
	}

	chosen := w.suggestions[index]
	w.closed = true

	return &entity.Completion{
		Idea:     chosen.Title + ": " + chosen.Description,
		Audience: chosen.Audience,
		Flow:     entity.FlowHelpCreate,
	}, nil
}

// Reset restarts the wizard at step with flow, dropping all fields.
func (w *Wizard) Reset(step entity.OnboardingStep, flow entity.OnboardingFlow) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return entity.ErrWizardClosed
	}

	w.abandonGeneration()
	w.step = step
	w.flow = flow
	w.fields = entity.OnboardingFields{}
	w.suggestions = nil
	return nil
}

func (w *Wizard) Snapshot() *entity.WizardSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := &entity.WizardSnapshot{
		Step:       w.step,
		Flow:       w.flow,
		Fields:     w.fields,
		CanNext:    !w.closed && !w.generating && canAdvance(w.step, &w.fields),
		Generating: w.generating,
	}
	if len(w.suggestions) > 0 {
		snap.Suggestions = append([]entity.IdeaSuggestion(nil), w.suggestions...)
	}
	return snap
}

// Close cancels an in-flight suggestion call. Further calls fail with
// ErrWizardClosed.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.abandonGeneration()
	w.closed = true
}

// Interrupt cancels an in-flight suggestion call and keeps the wizard usable.
func (w *Wizard) Interrupt() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.abandonGeneration()
}

// Reopen makes a completed wizard usable again, for when its completion could
// not be persisted.
func (w *Wizard) Reopen() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = false
}

func (w *Wizard) checkActive() error {
	if w.closed {
		return entity.ErrWizardClosed
	}
	if w.generating {
		return entity.ErrWizardBusy
	}
	return nil
}

func (w *Wizard) abandonGeneration() {
	if !w.generating {
		return
	}
	w.token++
	w.generating = false
	if w.cancelGen != nil {
		w.cancelGen()
		w.cancelGen = nil
	}
}
