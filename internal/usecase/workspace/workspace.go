package workspace

import (
	"context"
	"fmt"
	"sync"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/logger"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/dashboard"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/onboarding"
	"github.com/launchpad-labs/copilot-backend/internal/usecase/pipeline"
	"go.uber.org/zap"
)

// Workspace is one signed-in user's dashboard session. It follows the store
// feed, drives the view machine and owns the wizard and the results run.
//
// Wizard calls are made without holding mu because the wizard calls back into
// the workspace. Project creation and the move to results happen under mu so
// that the resulting store change is only seen once results is showing.
type Workspace struct {
	identity entity.Identity
	deps     Deps
	hub      *hub

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	machine  *dashboard.Machine
	ready    bool
	snapshot entity.StoreSnapshot
	draft    *entity.Draft
	wizard   *onboarding.Wizard
	selected *entity.Project
	run      *pipeline.Run
	watching bool
	closed   bool
}

// Open creates the workspace and waits for the first store snapshot or for
// ctx to end. The workspace outlives ctx; call Close to release it.
func Open(ctx context.Context, identity entity.Identity, deps Deps, listenerBuffer int) *Workspace {
	base := logger.WithUser(context.WithoutCancel(ctx), identity.UserID)
	wctx, cancel := context.WithCancel(base)

	w := &Workspace{
		identity: identity,
		deps:     deps,
		hub:      newHub(listenerBuffer),
		ctx:      wctx,
		cancel:   cancel,
		machine:  dashboard.NewMachine(),
		ready:    true,
	}

	draft, err := deps.Drafts.GetDraft(ctx, identity.UserID)
	if err != nil {
		ctxzap.Warn(ctx, "failed to load onboarding draft", zap.Error(err))
	}
	w.draft = draft

	select {
	case <-w.startWatch():
	case <-ctx.Done():
	}

	return w
}

func (w *Workspace) Identity() entity.Identity {
	return w.identity
}

// State returns everything a client needs to render the current view.
func (w *Workspace) State() *entity.DashboardState {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.stateLocked()
}

// Subscribe returns a channel of updates and a func that stops delivery.
// The channel is closed when the workspace closes.
func (w *Workspace) Subscribe() (<-chan entity.Update, func()) {
	return w.hub.subscribe()
}

// Dispatch applies a user event. projectID is required for continue_project.
func (w *Workspace) Dispatch(ctx context.Context, ev dashboard.Event, projectID string) (*entity.DashboardState, error) {
	ctx = logger.AddFields(ctx, zap.String("event", string(ev)))

	var project *entity.Project
	if ev == dashboard.EventContinueProject {
		if projectID == "" {
			return nil, fmt.Errorf("%w: project_id", entity.ErrMissingField)
		}
		p, err := w.deps.Projects.GetProject(ctx, w.identity.UserID, projectID)
		if err != nil {
			return nil, err
		}
		project = p
	}

	var pingErr error
	if ev == dashboard.EventReload {
		if pingErr = w.deps.Store.Ping(ctx); pingErr != nil {
			ctxzap.Warn(ctx, "store still unavailable", zap.Error(pingErr))
		}
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, entity.ErrWorkspaceClosed
	}

	if ev == dashboard.EventReload {
		w.ready = pingErr == nil
		w.machine.SetServicesReady(w.ready)
	}

	t, err := w.machine.Fire(ev)
	if err != nil {
		w.mu.Unlock()
		return nil, err
	}
	w.afterTransition(t, project)
	restartWatch := ev == dashboard.EventReload && !w.watching
	w.mu.Unlock()

	ctxzap.Info(ctx, "dashboard event applied", zap.String("from", string(t.From)), zap.String("to", string(t.To)))

	if restartWatch {
		select {
		case <-w.startWatch():
		case <-ctx.Done():
		}
	}

	return w.State(), nil
}

// ChooseFlow picks the onboarding branch on the wizard's welcome step.
func (w *Workspace) ChooseFlow(flow entity.OnboardingFlow) (*entity.WizardSnapshot, error) {
	wiz, err := w.currentWizard()
	if err != nil {
		return nil, err
	}
	if err := wiz.ChooseFlow(flow); err != nil {
		return nil, err
	}
	return w.wizardChanged(wiz), nil
}

// UpdateFields applies a patch to the wizard inputs.
func (w *Workspace) UpdateFields(ctx context.Context, patch entity.FieldsPatch) (*entity.WizardSnapshot, error) {
	wiz, err := w.currentWizard()
	if err != nil {
		return nil, err
	}
	if err := wiz.Update(ctx, patch); err != nil {
		return nil, err
	}
	return w.wizardChanged(wiz), nil
}

// Next advances the wizard. When the wizard completes, the project is
// created and the dashboard moves to results.
func (w *Workspace) Next(ctx context.Context) (*entity.NextStepResponse, error) {
	wiz, err := w.currentWizard()
	if err != nil {
		return nil, err
	}

	completion, err := wiz.Next(ctx)
	if err != nil {
		w.wizardChanged(wiz)
		return nil, err
	}
	if completion == nil {
		return &entity.NextStepResponse{Wizard: w.wizardChanged(wiz), View: entity.ViewOnboarding}, nil
	}

	return w.complete(ctx, wiz, completion)
}

// Back steps the wizard back. From the first step of a branch it returns to
// the dashboard.
func (w *Workspace) Back() (*entity.DashboardState, error) {
	wiz, err := w.currentWizard()
	if err != nil {
		return nil, err
	}

	exited, err := wiz.Back()
	if err != nil {
		return nil, err
	}
	if !exited {
		w.wizardChanged(wiz)
	}
	return w.State(), nil
}

// SelectIdea completes the wizard with one of the suggested ideas.
func (w *Workspace) SelectIdea(ctx context.Context, index int) (*entity.NextStepResponse, error) {
	wiz, err := w.currentWizard()
	if err != nil {
		return nil, err
	}

	completion, err := wiz.SelectIdea(index)
	if err != nil {
		return nil, err
	}
	return w.complete(ctx, wiz, completion)
}

// Results returns the run shown by the results view.
func (w *Workspace) Results() (*entity.RunSnapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.machine.View() != entity.ViewResults || w.run == nil {
		return nil, entity.ErrNoActiveRun
	}
	return w.run.Snapshot(), nil
}

// RestartRun starts the whole pipeline again for the selected project once
// the current run has finished.
func (w *Workspace) RestartRun() (*entity.RunSnapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.machine.View() != entity.ViewResults || w.run == nil || w.selected == nil {
		return nil, entity.ErrNoActiveRun
	}
	if !w.run.Snapshot().Status.Terminal() {
		return nil, fmt.Errorf("%w: run still in progress", entity.ErrInvalidTransition)
	}

	w.startRunLocked()
	return w.run.Snapshot(), nil
}

// Report returns the selected project and its completed run.
func (w *Workspace) Report() (*entity.Project, *entity.RunSnapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.machine.View() != entity.ViewResults || w.run == nil || w.selected == nil {
		return nil, nil, entity.ErrNoActiveRun
	}
	snap := w.run.Snapshot()
	if snap.Status != entity.RunStatusCompleted {
		return nil, nil, entity.ErrRunNotComplete
	}
	return w.selected, snap, nil
}

// Close stops the feed, the run and any suggestion call. Listeners' channels
// are closed.
func (w *Workspace) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.cancel()
	w.stopRunLocked()
	if w.wizard != nil {
		w.wizard.Close()
		w.wizard = nil
	}
	w.mu.Unlock()

	w.hub.close()
	ctxzap.Debug(w.ctx, "workspace closed")
}

func (w *Workspace) startWatch() <-chan struct{} {
	ready := make(chan struct{})

	feed, err := w.deps.Store.Watch(w.ctx, w.identity.UserID)
	if err != nil {
		ctxzap.Error(w.ctx, "failed to watch store", zap.Error(err))
		w.servicesFailed()
		close(ready)
		return ready
	}

	w.mu.Lock()
	w.watching = true
	w.mu.Unlock()

	go w.follow(feed, ready)
	return ready
}

func (w *Workspace) follow(feed <-chan entity.StoreSnapshot, ready chan struct{}) {
	var once sync.Once
	markReady := func() { once.Do(func() { close(ready) }) }
	defer markReady()

	for snap := range feed {
		w.applySnapshot(snap)
		markReady()
	}

	if w.ctx.Err() != nil {
		return
	}
	ctxzap.Warn(w.ctx, "store feed ended")
	w.servicesFailed()
}

func (w *Workspace) applySnapshot(snap entity.StoreSnapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.snapshot = snap
	w.hub.publish(entity.Update{Kind: entity.UpdateData, View: w.machine.View()})
	w.afterTransition(w.machine.Update(w.routeInput()), nil)
}

func (w *Workspace) servicesFailed() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.watching = false
	if w.closed {
		return
	}
	w.ready = false
	w.afterTransition(w.machine.Update(w.routeInput()), nil)
}

func (w *Workspace) routeInput() dashboard.RouteInput {
	return dashboard.RouteInput{
		ServicesReady: w.ready,
		Profile:       w.snapshot.Profile,
		ProjectCount:  len(w.snapshot.Projects),
		DraftStarted:  w.draft.Active(),
	}
}

// afterTransition applies the side effects of t. Must hold mu.
func (w *Workspace) afterTransition(t dashboard.Transition, project *entity.Project) {
	if t.From == entity.ViewResults && t.To != entity.ViewResults {
		w.stopRunLocked()
	}
	if t.From == entity.ViewOnboarding && t.To != entity.ViewOnboarding && w.wizard != nil {
		w.wizard.Interrupt()
	}

	switch t.Event {
	case dashboard.EventStartNew:
		w.replaceWizard(entity.StepWelcome, "")
	case dashboard.EventExplore:
		w.replaceWizard(entity.StepCreate1, entity.FlowHelpCreate)
	case dashboard.EventBackToDashboard:
		if t.To == entity.ViewOnboarding {
			w.replaceWizard(entity.StepWelcome, "")
		}
	case dashboard.EventContinueProject, dashboard.EventOnboardingCompleted:
		w.selected = project
		w.startRunLocked()
	}

	if t.To == entity.ViewOnboarding && w.wizard == nil {
		w.replaceWizard(entity.StepWelcome, "")
	}

	if t.Changed() {
		w.hub.publish(entity.Update{Kind: entity.UpdateView, View: t.To})
	}
}

func (w *Workspace) replaceWizard(step entity.OnboardingStep, flow entity.OnboardingFlow) {
	if w.wizard != nil {
		w.wizard.Close()
	}

	var wiz *onboarding.Wizard
	wiz = onboarding.NewWizard(w.deps.Suggester, step, flow, onboarding.Options{
		OnDraftStarted:    func(ctx context.Context) { w.draftStarted(ctx, wiz) },
		OnBackToDashboard: func() { w.backToDashboard(wiz) },
	})
	w.wizard = wiz
}

func (w *Workspace) draftStarted(ctx context.Context, wiz *onboarding.Wizard) {
	draft, err := w.deps.Drafts.TouchDraft(ctx, w.identity.UserID)
	if err != nil {
		ctxzap.Warn(ctx, "failed to record onboarding draft", zap.Error(err))
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.wizard != wiz {
		return
	}
	w.draft = draft
	w.afterTransition(w.machine.Update(w.routeInput()), nil)
}

func (w *Workspace) backToDashboard(wiz *onboarding.Wizard) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.wizard != wiz {
		return
	}
	t, err := w.machine.Fire(dashboard.EventBackToDashboard)
	if err != nil {
		ctxzap.Debug(w.ctx, "back to dashboard ignored", zap.Error(err))
		return
	}
	w.afterTransition(t, nil)
}

func (w *Workspace) currentWizard() (*onboarding.Wizard, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, entity.ErrWorkspaceClosed
	}
	if w.machine.View() != entity.ViewOnboarding || w.wizard == nil {
		return nil, fmt.Errorf("%w: onboarding is not open", entity.ErrInvalidTransition)
	}
	return w.wizard, nil
}

func (w *Workspace) wizardChanged(wiz *onboarding.Wizard) *entity.WizardSnapshot {
	w.hub.publish(entity.Update{Kind: entity.UpdateWizard, View: entity.ViewOnboarding})
	return wiz.Snapshot()
}

func (w *Workspace) complete(ctx context.Context, wiz *onboarding.Wizard, completion *entity.Completion) (*entity.NextStepResponse, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, entity.ErrWorkspaceClosed
	}
	if w.wizard != wiz || w.machine.View() != entity.ViewOnboarding {
		return nil, fmt.Errorf("%w: onboarding was left before completion", entity.ErrInvalidTransition)
	}

	project, err := w.deps.Projects.CreateFromOnboarding(ctx, w.identity.UserID, completion)
	if err != nil {
		wiz.Reopen()
		return nil, err
	}

	w.draft = nil
	t, err := w.machine.Fire(dashboard.EventOnboardingCompleted)
	if err != nil {
		return nil, err
	}
	w.wizard = nil
	w.afterTransition(t, project)

	ctxzap.Info(ctx, "onboarding completed", zap.String("project_id", project.ID))

	return &entity.NextStepResponse{Project: project, View: t.To}, nil
}

// startRunLocked replaces any run with a new one for the selected project.
func (w *Workspace) startRunLocked() {
	w.stopRunLocked()
	if w.selected == nil {
		return
	}

	in := entity.PipelineInput{
		Idea:        w.selected.Idea,
		Audience:    w.selected.Audience,
		Competitors: w.selected.Competitors,
	}
	w.run = w.deps.Runner.Start(w.ctx, w.selected.ID, in, w.observe)
}

func (w *Workspace) stopRunLocked() {
	if w.run != nil {
		w.run.Cancel()
		w.run = nil
	}
}

func (w *Workspace) observe(event entity.StageEvent, _ *entity.RunSnapshot) {
	w.hub.publish(entity.Update{Kind: entity.UpdateStage, View: entity.ViewResults, Stage: &event})
}

func (w *Workspace) stateLocked() *entity.DashboardState {
	projects := w.snapshot.Projects
	if projects == nil {
		projects = []*entity.Project{}
	}

	state := &entity.DashboardState{
		View:          w.machine.View(),
		Greeting:      w.identity.Greeting(),
		Projects:      projects,
		BestProject:   dashboard.BestProject(projects),
		IsBestProject: dashboard.IsBestProject(len(projects)),
		Selected:      w.selected,
	}
	if w.draft.Active() {
		d := *w.draft
		state.Draft = &d
	}
	if state.View == entity.ViewOnboarding && w.wizard != nil {
		state.Wizard = w.wizard.Snapshot()
	}
	if state.View == entity.ViewResults && w.run != nil {
		state.Run = w.run.Snapshot()
	}
	return state
}
