package dashboard

import (
	"testing"

	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fresh    = RouteInput{ServicesReady: true, Profile: &entity.UserProfile{}}
	drafting = RouteInput{ServicesReady: true, Profile: &entity.UserProfile{}, DraftStarted: true}
	founder  = RouteInput{ServicesReady: true, Profile: &entity.UserProfile{OnboardingComplete: true}, ProjectCount: 2}
)

func TestEveryViewHasTransitions(t *testing.T) {
	for _, v := range entity.AllViews {
		targets, ok := transitions[v]
		require.True(t, ok, "missing transitions for %s", v)
		assert.Contains(t, targets, EventDataChanged, "view %s must handle data changes", v)
		assert.Contains(t, targets, EventServicesFailed, "view %s must handle service failure", v)
	}
	assert.Len(t, transitions, len(entity.AllViews))
}

func TestMachineStartsRouting(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, entity.ViewRouting, m.View())

	tr := m.Update(RouteInput{ServicesReady: true})
	assert.False(t, tr.Changed())
	assert.Equal(t, entity.ViewRouting, m.View())

	tr = m.Update(fresh)
	assert.True(t, tr.Changed())
	assert.Equal(t, entity.ViewOnboarding, m.View())
	assert.True(t, m.RuleEntered())
}

func TestRuleEnteredOnboardingIgnoresOwnDraft(t *testing.T) {
	m := NewMachine()
	m.Update(fresh)
	require.Equal(t, entity.ViewOnboarding, m.View())

	m.Update(drafting)
	assert.Equal(t, entity.ViewOnboarding, m.View())

	m.Update(founder)
	assert.Equal(t, entity.ViewWelcome, m.View())
}

func TestUserEnteredViewsAreSticky(t *testing.T) {
	m := NewMachine()
	m.Update(founder)
	require.Equal(t, entity.ViewWelcome, m.View())

	_, err := m.Fire(EventStartNew)
	require.NoError(t, err)
	assert.False(t, m.RuleEntered())

	m.Update(RouteInput{ServicesReady: true, Profile: &entity.UserProfile{OnboardingComplete: true}, ProjectCount: 3})
	assert.Equal(t, entity.ViewOnboarding, m.View())

	_, err = m.Fire(EventOnboardingCompleted)
	require.NoError(t, err)
	m.Update(founder)
	assert.Equal(t, entity.ViewResults, m.View())

	_, err = m.Fire(EventBack)
	require.NoError(t, err)
	_, err = m.Fire(EventViewAll)
	require.NoError(t, err)
	m.Update(founder)
	assert.Equal(t, entity.ViewHistory, m.View())
}

func TestUserEvents(t *testing.T) {
	tests := []struct {
		name  string
		input RouteInput
		start []Event
		event Event
		want  entity.View
	}{
		{"start new from welcome", founder, nil, EventStartNew, entity.ViewOnboarding},
		{"explore from continue draft", drafting, nil, EventExplore, entity.ViewOnboarding},
		{"continue draft", drafting, nil, EventContinueDraft, entity.ViewOnboarding},
		{"continue project", founder, nil, EventContinueProject, entity.ViewResults},
		{"view all", founder, nil, EventViewAll, entity.ViewHistory},
		{"back from history", founder, []Event{EventViewAll}, EventBack, entity.ViewWelcome},
		{"back from results", founder, []Event{EventContinueProject}, EventBack, entity.ViewWelcome},
		{"open project from history", founder, []Event{EventViewAll}, EventContinueProject, entity.ViewResults},
		{"back to dashboard with projects", founder, []Event{EventStartNew}, EventBackToDashboard, entity.ViewWelcome},
		{"back to dashboard without projects re-routes", drafting, []Event{EventContinueDraft}, EventBackToDashboard, entity.ViewContinueDraft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine()
			m.Update(tt.input)
			for _, ev := range tt.start {
				_, err := m.Fire(ev)
				require.NoError(t, err)
			}

			tr, err := m.Fire(tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tr.To)
			assert.Equal(t, tt.want, m.View())
		})
	}
}

func TestInvalidTransitionLeavesStateUnchanged(t *testing.T) {
	m := NewMachine()
	m.Update(founder)

	for _, ev := range []Event{EventBack, EventBackToDashboard, EventOnboardingCompleted, EventReload} {
		_, err := m.Fire(ev)
		assert.ErrorIs(t, err, entity.ErrInvalidTransition, "event %s", ev)
		assert.Equal(t, entity.ViewWelcome, m.View())
	}

	_, err := m.Fire(EventContinueProject)
	require.NoError(t, err)
	_, err = m.Fire(EventViewAll)
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)
	assert.Equal(t, entity.ViewResults, m.View())
}

func TestErrorIsTerminalUntilReload(t *testing.T) {
	m := NewMachine()
	m.Update(RouteInput{ServicesReady: false})
	require.Equal(t, entity.ViewError, m.View())

	m.Update(founder)
	assert.Equal(t, entity.ViewError, m.View(), "data changes do not leave error")

	for _, ev := range []Event{EventStartNew, EventViewAll, EventBack} {
		_, err := m.Fire(ev)
		assert.ErrorIs(t, err, entity.ErrInvalidTransition)
	}

	m.SetServicesReady(false)
	_, err := m.Fire(EventReload)
	assert.ErrorIs(t, err, entity.ErrServicesUnavailable)
	assert.Equal(t, entity.ViewError, m.View())

	m.SetServicesReady(true)
	tr, err := m.Fire(EventReload)
	require.NoError(t, err)
	assert.Equal(t, entity.ViewWelcome, tr.To)
}

func TestServiceFailureFromStickyView(t *testing.T) {
	m := NewMachine()
	m.Update(founder)
	_, err := m.Fire(EventContinueProject)
	require.NoError(t, err)

	tr := m.Update(RouteInput{ServicesReady: false, Profile: founder.Profile, ProjectCount: 2})
	assert.Equal(t, EventServicesFailed, tr.Event)
	assert.Equal(t, entity.ViewError, m.View())
}

func TestParseUserEvent(t *testing.T) {
	ev, err := ParseUserEvent("view_all")
	require.NoError(t, err)
	assert.Equal(t, EventViewAll, ev)

	_, err = ParseUserEvent("data_changed")
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}
