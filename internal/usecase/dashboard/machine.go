package dashboard

import (
	"fmt"

	"github.com/launchpad-labs/copilot-backend/internal/entity"
)

type Event string

const (
	EventDataChanged         Event = "data_changed"
	EventServicesFailed      Event = "services_failed"
	EventReload              Event = "reload"
	EventStartNew            Event = "start_new"
	EventExplore             Event = "explore"
	EventContinueDraft       Event = "continue_draft"
	EventContinueProject     Event = "continue_project"
	EventViewAll             Event = "view_all"
	EventBack                Event = "back"
	EventBackToDashboard     Event = "back_to_dashboard"
	EventOnboardingCompleted Event = "onboarding_completed"
)

// UserEvents are the events a client may send directly.
var UserEvents = []Event{
	EventStartNew,
	EventExplore,
	EventContinueDraft,
	EventContinueProject,
	EventViewAll,
	EventBack,
	EventBackToDashboard,
	EventReload,
}

func ParseUserEvent(s string) (Event, error) {
	for _, ev := range UserEvents {
		if string(ev) == s {
			return ev, nil
		}
	}
	return "", fmt.Errorf("%w: unknown event %q", entity.ErrInvalidParameter, s)
}

// Transition describes one applied event.
type Transition struct {
	Event Event
	From  entity.View
	To    entity.View
}

func (t Transition) Changed() bool {
	return t.From != t.To
}

// target computes the next view and whether that view was chosen by the
// routing rule. ok is false when the event is not accepted.
type target func(m *Machine) (view entity.View, ruleEntered bool, ok bool)

func toView(v entity.View) target {
	return func(*Machine) (entity.View, bool, bool) { return v, false, true }
}

func routed(m *Machine) (entity.View, bool, bool) {
	return Route(m.input), true, true
}

func toError(*Machine) (entity.View, bool, bool) {
	return entity.ViewError, true, true
}

// stay keeps a user-chosen view while still accepting the event.
func stay(m *Machine) (entity.View, bool, bool) {
	return m.view, m.ruleEntered, true
}

// onboardingData re-routes an onboarding view only when the rule put the user
// there, and only towards welcome or error so that the user's own draft does
// not push them out of the wizard.
func onboardingData(m *Machine) (entity.View, bool, bool) {
	if !m.ruleEntered {
		return stay(m)
	}
	next := Route(m.input)
	if next == entity.ViewWelcome || next == entity.ViewError {
		return next, true, true
	}
	return stay(m)
}

func backToDashboard(m *Machine) (entity.View, bool, bool) {
	if m.input.ProjectCount > 0 {
		return entity.ViewWelcome, false, true
	}
	return routed(m)
}

func reload(m *Machine) (entity.View, bool, bool) {
	if !m.input.ServicesReady {
		return "", false, false
	}
	return routed(m)
}

// transitions is the full table. Every view must have an entry.
var transitions = map[entity.View]map[Event]target{
	entity.ViewRouting: {
		EventDataChanged:    routed,
		EventServicesFailed: toError,
	},
	entity.ViewWelcome: {
		EventDataChanged:     routed,
		EventServicesFailed:  toError,
		EventStartNew:        toView(entity.ViewOnboarding),
		EventExplore:         toView(entity.ViewOnboarding),
		EventContinueDraft:   toView(entity.ViewOnboarding),
		EventContinueProject: toView(entity.ViewResults),
		EventViewAll:         toView(entity.ViewHistory),
	},
	entity.ViewContinueDraft: {
		EventDataChanged:    routed,
		EventServicesFailed: toError,
		EventStartNew:       toView(entity.ViewOnboarding),
		EventExplore:        toView(entity.ViewOnboarding),
		EventContinueDraft:  toView(entity.ViewOnboarding),
	},
	entity.ViewOnboarding: {
		EventDataChanged:         onboardingData,
		EventServicesFailed:      toError,
		EventBackToDashboard:     backToDashboard,
		EventOnboardingCompleted: toView(entity.ViewResults),
	},
	entity.ViewResults: {
		EventDataChanged:    stay,
		EventServicesFailed: toError,
		EventBack:           toView(entity.ViewWelcome),
	},
	entity.ViewHistory: {
		EventDataChanged:     stay,
		EventServicesFailed:  toError,
		EventBack:            toView(entity.ViewWelcome),
		EventContinueProject: toView(entity.ViewResults),
	},
	entity.ViewError: {
		EventDataChanged:    stay,
		EventServicesFailed: stay,
		EventReload:         reload,
	},
}

// Machine is the dashboard view-state machine. It is not safe for concurrent
// use; the owning workspace serialises access.
type Machine struct {
	view        entity.View
	ruleEntered bool
	input       RouteInput
}

func NewMachine() *Machine {
	return &Machine{
		view:        entity.ViewRouting,
		ruleEntered: true,
		input:       RouteInput{ServicesReady: true},
	}
}

func (m *Machine) View() entity.View {
	return m.view
}

func (m *Machine) Input() RouteInput {
	return m.input
}

// RuleEntered reports whether the current view was chosen by Route rather
// than by a user action.
func (m *Machine) RuleEntered() bool {
	return m.ruleEntered
}

// Update records new data and applies EventDataChanged, or
// EventServicesFailed when the services are no longer ready.
func (m *Machine) Update(in RouteInput) Transition {
	m.input = in
	ev := EventDataChanged
	if !in.ServicesReady {
		ev = EventServicesFailed
	}

	t, err := m.Fire(ev)
	if err != nil {
		// Both events are accepted in every view.
		return Transition{Event: ev, From: m.view, To: m.view}
	}
	return t
}

// SetServicesReady changes readiness without firing an event. Used before
// EventReload.
func (m *Machine) SetServicesReady(ready bool) {
	m.input.ServicesReady = ready
}

// Fire applies ev. Events not listed for the current view return
// ErrInvalidTransition and leave the machine unchanged.
func (m *Machine) Fire(ev Event) (Transition, error) {
	from := m.view

	targets, ok := transitions[from]
	if !ok {
		return Transition{}, fmt.Errorf("%w: no transitions from %s", entity.ErrInvalidTransition, from)
	}
	next, ok := targets[ev]
	if !ok {
		return Transition{}, fmt.Errorf("%w: %s is not allowed in %s", entity.ErrInvalidTransition, ev, from)
	}

	to, ruleEntered, ok := next(m)
	if !ok {
		if ev == EventReload {
			return Transition{}, entity.ErrServicesUnavailable
		}
		return Transition{}, fmt.Errorf("%w: %s rejected in %s", entity.ErrInvalidTransition, ev, from)
	}

	m.view = to
	m.ruleEntered = ruleEntered
	return Transition{Event: ev, From: from, To: to}, nil
}
