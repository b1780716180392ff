package runlog

import "time"

// Status describes how a recorded sync run ended.
type Status string

const (
	// StatusCompleted marks a run where every bin reconciled cleanly.
	StatusCompleted Status = "completed"
	// StatusPartial marks a run that finished but left failed bins behind.
	StatusPartial Status = "partial"
	// StatusFailed marks a run aborted by a fatal error.
	StatusFailed Status = "failed"
)

// Run is one recorded sync pass.
type Run struct {
	ID            int64
	RunID         string
	StartedAt     time.Time
	FinishedAt    time.Time
	Mode          string
	DryRun        bool
	BinsTotal     int
	Created       int
	Updated       int
	Skipped       int
	Failed        int
	AssetsAdded   int
	AssetsRemoved int
	Status        Status
	ErrorMessage  string
}

// Duration returns the wall-clock time the run took.
func (r *Run) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
