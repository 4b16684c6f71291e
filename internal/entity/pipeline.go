package entity

import "time"

// Stage is one call of the results pipeline.
type Stage string

const (
	StageValidate Stage = "validate"
	StageRoadmap  Stage = "roadmap"
	StageCopy     Stage = "copy"
)

// Stages is the fixed execution order.
var Stages = []Stage{StageValidate, StageRoadmap, StageCopy}

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

func (s RunStatus) Terminal() bool {
	return s != RunStatusRunning
}

type StageEventType string

const (
	StageEventStarted   StageEventType = "stage_started"
	StageEventCompleted StageEventType = "stage_completed"
	StageEventFailed    StageEventType = "run_failed"
	StageEventFinished  StageEventType = "run_completed"
)

// StageEvent is emitted for every pipeline transition.
type StageEvent struct {
	RunID string         `json:"run_id"`
	Type  StageEventType `json:"type"`
	Stage Stage          `json:"stage,omitempty"`
	Error string         `json:"error,omitempty"`
	At    time.Time      `json:"at"`
}

// PipelineInput is what onboarding hands over to the results pipeline.
type PipelineInput struct {
	Idea        string `json:"idea"`
	Audience    string `json:"audience"`
	Competitors string `json:"competitors,omitempty"`
}

// RunSnapshot accumulates the stage results of one pipeline run.
type RunSnapshot struct {
	ID           string              `json:"run_id"`
	ProjectID    string              `json:"project_id"`
	Status       RunStatus           `json:"status"`
	CurrentStage Stage               `json:"current_stage,omitempty"`
	Validation   *ValidationResponse `json:"validation,omitempty"`
	Roadmap      *RoadmapResponse    `json:"roadmap,omitempty"`
	Copy         *CopyResponse       `json:"copy,omitempty"`
	Error        string              `json:"error,omitempty"`
	StartedAt    time.Time           `json:"started_at"`
	FinishedAt   *time.Time          `json:"finished_at,omitempty"`
}

// Clone returns a copy safe to hand to other goroutines.
// Stage payloads are never mutated after being stored, so they are shared.
func (r *RunSnapshot) Clone() *RunSnapshot {
	if r == nil {
		return nil
	}
	c := *r
	if r.FinishedAt != nil {
		t := *r.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}
