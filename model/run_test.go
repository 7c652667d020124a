// ABOUTME: Tests for run status lifecycle transitions.
// ABOUTME: Verifies terminal states are absorbing and pending may jump to terminal.
package model

import "testing"

func TestTerminal(t *testing.T) {
	tests := []struct {
		status RunStatus
		want   bool
	}{
		{StatusIdle, false},
		{StatusPending, false},
		{StatusRunning, false},
		{StatusCompleted, true},
		{StatusFailed, true},
		{StatusCancelled, true},
	}

	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("Terminal(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from RunStatus
		to   RunStatus
		want bool
	}{
		{"idle to pending", StatusIdle, StatusPending, true},
		{"idle to running", StatusIdle, StatusRunning, true},
		{"idle to completed", StatusIdle, StatusCompleted, false},
		{"pending to running", StatusPending, StatusRunning, true},
		{"pending to completed", StatusPending, StatusCompleted, true},
		{"pending to failed", StatusPending, StatusFailed, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"pending to idle", StatusPending, StatusIdle, false},
		{"running to completed", StatusRunning, StatusCompleted, true},
		{"running to failed", StatusRunning, StatusFailed, true},
		{"running to cancelled", StatusRunning, StatusCancelled, true},
		{"running to pending", StatusRunning, StatusPending, false},
		{"completed to running", StatusCompleted, StatusRunning, false},
		{"failed to running", StatusFailed, StatusRunning, false},
		{"cancelled to completed", StatusCancelled, StatusCompleted, false},
		{"self transition", StatusRunning, StatusRunning, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestNormalizeStepType(t *testing.T) {
	tests := []struct {
		in   string
		want StepType
	}{
		{"error", StepError},
		{"tool_call", StepToolCall},
		{"phase", StepPhase},
		{"", StepDefault},
		{"bogus", StepDefault},
		{"ERROR", StepDefault},
	}

	for _, tt := range tests {
		if got := NormalizeStepType(tt.in); got != tt.want {
			t.Errorf("NormalizeStepType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
