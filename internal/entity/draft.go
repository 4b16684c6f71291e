package entity

import "time"

type DraftStatus string

const (
	DraftStarted DraftStatus = "started"
	DraftCleared DraftStatus = "cleared"
)

// Draft marks an onboarding wizard that was started but not completed.
// Field values are not stored, only the lifecycle.
type Draft struct {
	Status    DraftStatus `json:"status"`
	StartedAt time.Time   `json:"started_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Active reports whether the draft should drive the continue_draft view.
func (d *Draft) Active() bool {
	return d != nil && d.Status == DraftStarted
}

// Touch moves the draft into started state, keeping the original start time.
func (d *Draft) Touch(now time.Time) {
	if d.Status != DraftStarted {
		d.Status = DraftStarted
		d.StartedAt = now
	}
	d.UpdatedAt = now
}
