// ABOUTME: Run identity and lifecycle state machine for analysis pipeline executions.
// ABOUTME: Defines RunStatus transitions; terminal runs are immutable except by supersession.
package model

// RunStatus is the lifecycle state of a Run.
type RunStatus string

const (
	StatusIdle      RunStatus = "idle"
	StatusPending   RunStatus = "pending"
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
	StatusCancelled RunStatus = "cancelled"
)

// Terminal reports whether the status is a final state. Terminal runs never
// transition again; they can only be superseded by a new Run with a fresh ID.
func (s RunStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether moving from one status to another is legal.
// pending is set optimistically on a successful start request before the server
// confirms running, so pending may jump straight to any terminal state.
func CanTransition(from, to RunStatus) bool {
	if from == to {
		return false
	}
	switch from {
	case StatusIdle:
		return to == StatusPending || to == StatusRunning
	case StatusPending:
		return to == StatusRunning || to.Terminal()
	case StatusRunning:
		return to.Terminal()
	default:
		// Terminal states accept nothing.
		return false
	}
}

// Run is one execution of the analysis pipeline. The server assigns run_id and
// drives all status transitions via pushed messages.
type Run struct {
	RunID           string    `json:"run_id"`
	Status          RunStatus `json:"status"`
	Query           string    `json:"query,omitempty"`
	Sources         string    `json:"sources,omitempty"`
	ParentRunID     string    `json:"parent_run_id,omitempty"`
	StartedAt       string    `json:"started_at,omitempty"`
	FinishedAt      string    `json:"finished_at,omitempty"`
	DurationSeconds int       `json:"duration_seconds,omitempty"`
	SignalCount     int       `json:"signal_count"`
	ReportPath      string    `json:"report_path,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
}
