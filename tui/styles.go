// ABOUTME: Lipgloss style constants for the run stream view and step-type coloring.
// ABOUTME: StyleForStep maps a step category to its display style.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/signalflux/fluxwatch/model"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	PhaseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	AgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")).
			Width(14)

	TimestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	DefaultStepStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	ErrorStepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	WarningStepStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	ResultStepStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	SignalStepStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	ToolCallStepStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("117"))
	ThoughtStepStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	PhaseStepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)

	StatusCompletedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	StatusFailedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	NoticeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("42")).
			Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// StyleForStep returns the display style for a step category.
func StyleForStep(st model.StepType) lipgloss.Style {
	switch st {
	case model.StepError:
		return ErrorStepStyle
	case model.StepWarning:
		return WarningStepStyle
	case model.StepResult:
		return ResultStepStyle
	case model.StepSignal:
		return SignalStepStyle
	case model.StepToolCall:
		return ToolCallStepStyle
	case model.StepThought:
		return ThoughtStepStyle
	case model.StepPhase:
		return PhaseStepStyle
	default:
		return DefaultStepStyle
	}
}
