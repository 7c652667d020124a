// ABOUTME: Step is one append-only log entry streamed from the pipeline agents.
// ABOUTME: Ordering is receipt order; wall-clock order is not guaranteed across reconnects.
package model

// StepType categorizes a log entry for display styling and filtering.
type StepType string

const (
	StepDefault  StepType = "default"
	StepError    StepType = "error"
	StepWarning  StepType = "warning"
	StepResult   StepType = "result"
	StepSignal   StepType = "signal"
	StepToolCall StepType = "tool_call"
	StepThought  StepType = "thought"
	StepPhase    StepType = "phase"
)

// NormalizeStepType maps unknown or legacy type strings to StepDefault so the
// log view always has a renderable category.
func NormalizeStepType(s string) StepType {
	switch StepType(s) {
	case StepError, StepWarning, StepResult, StepSignal, StepToolCall, StepThought, StepPhase:
		return StepType(s)
	}
	return StepDefault
}

// Step is a single pipeline log entry.
type Step struct {
	Timestamp string   `json:"timestamp"`
	Agent     string   `json:"agent"`
	StepType  StepType `json:"step_type"`
	Content   string   `json:"content"`
}
