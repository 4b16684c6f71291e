package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"github.com/launchpad-labs/copilot-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

type Config struct {
	ValidatePause time.Duration
	RoadmapPause  time.Duration
	CopyPause     time.Duration
	Focus         entity.FocusType
	Tone          entity.ToneType
}

// Runner executes the validate -> roadmap -> copy sequence. Stages never
// overlap: a stage's request is issued only after the previous stage's result
// has been stored and announced, followed by its pause.
type Runner struct {
	gen Generator
	cfg Config
	now func() time.Time
}

func NewRunner(gen Generator, cfg Config) *Runner {
	return &Runner{
		gen: gen,
		cfg: cfg,
		now: time.Now,
	}
}

// Run is one execution owned by the results view.
type Run struct {
	mu        sync.Mutex
	snap      *entity.RunSnapshot
	observer  Observer
	cancelled bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// Start launches a run in the background. ctx bounds the run; Cancel stops it
// early. Once Cancel returns the observer is not called again.
func (r *Runner) Start(ctx context.Context, projectID string, in entity.PipelineInput, observer Observer) *Run {
	ctx, cancel := context.WithCancel(ctx)

	run := &Run{
		snap: &entity.RunSnapshot{
			ID:        uuid.NewString(),
			ProjectID: projectID,
			Status:    entity.RunStatusRunning,
			StartedAt: r.now().UTC(),
		},
		observer: observer,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	ctx = logger.AddFields(ctx, zap.String("run_id", run.snap.ID), zap.String("project_id", projectID))

	go func() {
		defer close(run.done)
		defer cancel()
		r.execute(ctx, run, in)
	}()

	return run
}

func (r *Runner) execute(ctx context.Context, run *Run, in entity.PipelineInput) {
	ctxzap.Info(ctx, "results pipeline started")

	for _, stage := range entity.Stages {
		run.emit(r.now(), entity.StageEventStarted, stage, "", func(s *entity.RunSnapshot) {
			s.CurrentStage = stage
		})

		apply, err := r.callStage(ctx, stage, in)
		if err != nil {
			r.fail(ctx, run, stage, err)
			return
		}
		run.emit(r.now(), entity.StageEventCompleted, stage, "", apply)

		if err := sleep(ctx, r.pause(stage)); err != nil {
			r.stop(ctx, run)
			return
		}
	}

	finished := r.now().UTC()
	run.emit(finished, entity.StageEventFinished, "", "", func(s *entity.RunSnapshot) {
		s.Status = entity.RunStatusCompleted
		s.CurrentStage = ""
		s.FinishedAt = &finished
	})
	ctxzap.Info(ctx, "results pipeline completed")
}

func (r *Runner) callStage(ctx context.Context, stage entity.Stage, in entity.PipelineInput) (func(*entity.RunSnapshot), error) {
	switch stage {
	case entity.StageValidate:
		req := &entity.ValidateRequest{Idea: in.Idea, Audience: in.Audience}
		if in.Competitors != "" {
			competitors := in.Competitors
			req.Competitors = &competitors
		}
		resp, err := r.gen.Validate(ctx, req)
		if err != nil {
			return nil, err
		}
		return func(s *entity.RunSnapshot) { s.Validation = resp }, nil

	case entity.StageRoadmap:
		resp, err := r.gen.Roadmap(ctx, &entity.RoadmapRequest{Idea: in.Idea, Focus: r.cfg.Focus})
		if err != nil {
			return nil, err
		}
		return func(s *entity.RunSnapshot) { s.Roadmap = resp }, nil

	default:
		resp, err := r.gen.Copy(ctx, &entity.CopyRequest{Idea: in.Idea, Audience: in.Audience, Tone: r.cfg.Tone})
		if err != nil {
			return nil, err
		}
		return func(s *entity.RunSnapshot) { s.Copy = resp }, nil
	}
}

func (r *Runner) pause(stage entity.Stage) time.Duration {
	switch stage {
	case entity.StageValidate:
		return r.cfg.ValidatePause
	case entity.StageRoadmap:
		return r.cfg.RoadmapPause
	default:
		return r.cfg.CopyPause
	}
}

func (r *Runner) fail(ctx context.Context, run *Run, stage entity.Stage, err error) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		r.stop(ctx, run)
		return
	}

	message := entity.GenerationMessage(err)
	ctxzap.Warn(ctx, "results pipeline failed", zap.String("stage", string(stage)), zap.Error(err))

	finished := r.now().UTC()
	run.emit(finished, entity.StageEventFailed, stage, message, func(s *entity.RunSnapshot) {
		s.Status = entity.RunStatusFailed
		s.Error = message
		s.FinishedAt = &finished
	})
}

// stop records cancellation without notifying the observer.
func (r *Runner) stop(ctx context.Context, run *Run) {
	ctxzap.Info(ctx, "results pipeline cancelled")

	finished := r.now().UTC()
	run.mu.Lock()
	defer run.mu.Unlock()
	run.snap.Status = entity.RunStatusCancelled
	run.snap.FinishedAt = &finished
}

func (run *Run) emit(at time.Time, typ entity.StageEventType, stage entity.Stage, message string, apply func(*entity.RunSnapshot)) {
	run.mu.Lock()
	defer run.mu.Unlock()

	if run.cancelled {
		return
	}
	apply(run.snap)

	if run.observer != nil {
		run.observer(entity.StageEvent{
			RunID: run.snap.ID,
			Type:  typ,
			Stage: stage,
			Error: message,
			At:    at.UTC(),
		}, run.snap.Clone())
	}
}

// ID returns the run identifier.
func (run *Run) ID() string {
	return run.snap.ID
}

// Snapshot returns a copy of the accumulated results.
func (run *Run) Snapshot() *entity.RunSnapshot {
	run.mu.Lock()
	defer run.mu.Unlock()

	return run.snap.Clone()
}

// Cancel stops the run. It does not wait for the in-flight request to return.
func (run *Run) Cancel() {
	run.mu.Lock()
	run.cancelled = true
	run.mu.Unlock()

	run.cancel()
}

func (run *Run) Done() <-chan struct{} {
	return run.done
}

// Wait blocks until the run goroutine exits and returns the final snapshot.
func (run *Run) Wait() *entity.RunSnapshot {
	<-run.done
	return run.Snapshot()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
