package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	mu    sync.Mutex
	calls []entity.Stage
	fail  map[entity.Stage]error
	block map[entity.Stage]chan struct{}

	lastValidate *entity.ValidateRequest
	lastRoadmap  *entity.RoadmapRequest
	lastCopy     *entity.CopyRequest
}

func (f *fakeGenerator) record(ctx context.Context, stage entity.Stage) error {
	f.mu.Lock()
	f.calls = append(f.calls, stage)
	block := f.block[stage]
	err := f.fail[stage]
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeGenerator) Validate(ctx context.Context, req *entity.ValidateRequest) (*entity.ValidationResponse, error) {
	f.mu.Lock()
	f.lastValidate = req
	f.mu.Unlock()
	if err := f.record(ctx, entity.StageValidate); err != nil {
		return nil, err
	}
	return &entity.ValidationResponse{InvestabilityScore: 77, Summary: "solid"}, nil
}

func (f *fakeGenerator) Roadmap(ctx context.Context, req *entity.RoadmapRequest) (*entity.RoadmapResponse, error) {
	f.mu.Lock()
	f.lastRoadmap = req
	f.mu.Unlock()
	if err := f.record(ctx, entity.StageRoadmap); err != nil {
		return nil, err
	}
	return &entity.RoadmapResponse{SuggestedTechStack: []string{"Go"}}, nil
}

func (f *fakeGenerator) Copy(ctx context.Context, req *entity.CopyRequest) (*entity.CopyResponse, error) {
	f.mu.Lock()
	f.lastCopy = req
	f.mu.Unlock()
	if err := f.record(ctx, entity.StageCopy); err != nil {
		return nil, err
	}
	return &entity.CopyResponse{HeroHeadline: "Ship it"}, nil
}

func (f *fakeGenerator) stages() []entity.Stage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.Stage(nil), f.calls...)
}

type recorder struct {
	mu     sync.Mutex
	events []entity.StageEvent
	snaps  []*entity.RunSnapshot
}

func (r *recorder) observe(ev entity.StageEvent, snap *entity.RunSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	r.snaps = append(r.snaps, snap)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, string(ev.Type)+":"+string(ev.Stage))
	}
	return out
}

func testConfig() Config {
	return Config{Focus: entity.FocusSaaS, Tone: entity.ToneBold}
}

var input = entity.PipelineInput{Idea: "B2B invoicing tool: automates SMB invoicing", Audience: "small agencies"}

func TestRunCompletesInOrder(t *testing.T) {
	gen := &fakeGenerator{}
	rec := &recorder{}

	run := NewRunner(gen, testConfig()).Start(context.Background(), "p-1", input, rec.observe)
	final := run.Wait()

	assert.Equal(t, []entity.Stage{entity.StageValidate, entity.StageRoadmap, entity.StageCopy}, gen.stages())
	assert.Equal(t, []string{
		"stage_started:validate", "stage_completed:validate",
		"stage_started:roadmap", "stage_completed:roadmap",
		"stage_started:copy", "stage_completed:copy",
		"run_completed:",
	}, rec.types())

	assert.Equal(t, entity.RunStatusCompleted, final.Status)
	assert.Equal(t, "p-1", final.ProjectID)
	require.NotNil(t, final.Validation)
	require.NotNil(t, final.Roadmap)
	require.NotNil(t, final.Copy)
	require.NotNil(t, final.FinishedAt)

	assert.Nil(t, gen.lastValidate.Competitors, "empty competitors are omitted")
	assert.Equal(t, entity.FocusSaaS, gen.lastRoadmap.Focus)
	assert.Equal(t, entity.ToneBold, gen.lastCopy.Tone)
	assert.Equal(t, "small agencies", gen.lastCopy.Audience)
}

func TestResultsAccumulate(t *testing.T) {
	rec := &recorder{}
	NewRunner(&fakeGenerator{}, testConfig()).Start(context.Background(), "p-1", input, rec.observe).Wait()

	rec.mu.Lock()
	defer rec.mu.Unlock()

	// stage_completed:roadmap still shows the validation result
	roadmapDone := rec.snaps[3]
	assert.NotNil(t, roadmapDone.Validation)
	assert.NotNil(t, roadmapDone.Roadmap)
	assert.Nil(t, roadmapDone.Copy)
	assert.Equal(t, entity.StageRoadmap, roadmapDone.CurrentStage)
}

func TestRoadmapFailureStopsBeforeCopy(t *testing.T) {
	gen := &fakeGenerator{fail: map[entity.Stage]error{
		entity.StageRoadmap: &entity.GenerationError{StatusCode: 502, Detail: "Failed to parse AI response"},
	}}
	rec := &recorder{}

	final := NewRunner(gen, testConfig()).Start(context.Background(), "p-1", input, rec.observe).Wait()

	assert.Equal(t, []entity.Stage{entity.StageValidate, entity.StageRoadmap}, gen.stages())
	assert.Equal(t, entity.RunStatusFailed, final.Status)
	assert.Equal(t, "Failed to parse AI response", final.Error)
	assert.NotNil(t, final.Validation, "already rendered stages are kept")
	assert.Nil(t, final.Roadmap)
	assert.Nil(t, final.Copy)

	types := rec.types()
	assert.Equal(t, "run_failed:roadmap", types[len(types)-1])
}

func TestUnexpectedErrorUsesDefaultMessage(t *testing.T) {
	gen := &fakeGenerator{fail: map[entity.Stage]error{entity.StageValidate: assert.AnError}}

	final := NewRunner(gen, testConfig()).Start(context.Background(), "p-1", input, nil).Wait()

	assert.Equal(t, entity.RunStatusFailed, final.Status)
	assert.Equal(t, entity.DefaultGenerationMessage, final.Error)
}

func TestCompetitorsForwarded(t *testing.T) {
	gen := &fakeGenerator{}
	in := input
	in.Competitors = "FreshBooks"

	NewRunner(gen, testConfig()).Start(context.Background(), "p-1", in, nil).Wait()

	require.NotNil(t, gen.lastValidate.Competitors)
	assert.Equal(t, "FreshBooks", *gen.lastValidate.Competitors)
}

func TestCancelStopsEventsAndRemainingStages(t *testing.T) {
	gen := &fakeGenerator{block: map[entity.Stage]chan struct{}{entity.StageRoadmap: make(chan struct{})}}
	rec := &recorder{}

	run := NewRunner(gen, testConfig()).Start(context.Background(), "p-1", input, rec.observe)

	require.Eventually(t, func() bool {
		return len(gen.stages()) == 2
	}, 2*time.Second, 5*time.Millisecond)

	run.Cancel()
	eventsAtCancel := len(rec.types())

	select {
	case <-run.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop")
	}

	final := run.Snapshot()
	assert.Equal(t, entity.RunStatusCancelled, final.Status)
	assert.Equal(t, eventsAtCancel, len(rec.types()), "no events after cancel")
	assert.Equal(t, []entity.Stage{entity.StageValidate, entity.StageRoadmap}, gen.stages())
}

func TestCancelDuringPause(t *testing.T) {
	gen := &fakeGenerator{}
	cfg := testConfig()
	cfg.ValidatePause = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	run := NewRunner(gen, cfg).Start(ctx, "p-1", input, nil)

	require.Eventually(t, func() bool {
		snap := run.Snapshot()
		return snap.Validation != nil
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	final := run.Wait()

	assert.Equal(t, entity.RunStatusCancelled, final.Status)
	assert.Equal(t, []entity.Stage{entity.StageValidate}, gen.stages())
}
