// ABOUTME: History listing types: terminal run summaries and per-query run groupings.
// ABOUTME: QueryGroup runs are ordered most-recent first, as served by the backend.
package model

// HistoryItem summarizes a terminal Run for listing and grouping.
type HistoryItem struct {
	RunID           string    `json:"run_id"`
	Query           string    `json:"query,omitempty"`
	Status          RunStatus `json:"status"`
	StartedAt       string    `json:"started_at,omitempty"`
	FinishedAt      string    `json:"finished_at,omitempty"`
	SignalCount     int       `json:"signal_count"`
	DurationSeconds int       `json:"duration_seconds,omitempty"`
	ParentRunID     string    `json:"parent_run_id,omitempty"`
	ReportPath      string    `json:"report_path,omitempty"`
}

// QueryGroup collects every run of one query, most recent first.
type QueryGroup struct {
	Query     string        `json:"query"`
	RunCount  int           `json:"run_count"`
	Runs      []HistoryItem `json:"runs"`
	LastRunAt string        `json:"last_run_at,omitempty"`
}

// CompareTab references a historical run opened for side-by-side viewing.
type CompareTab struct {
	RunID string `json:"run_id"`
	Label string `json:"label"`
}
