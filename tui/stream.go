// ABOUTME: Bubble Tea model streaming live run progress from the state store.
// ABOUTME: A subscription channel feeds store updates into the tea event loop.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/signalflux/fluxwatch/model"
	"github.com/signalflux/fluxwatch/store"
)

const maxVisibleSteps = 18

// storeUpdateMsg carries one store notification into the tea loop.
type storeUpdateMsg store.Update

// updatesClosedMsg signals the subscription channel was closed.
type updatesClosedMsg struct{}

// Model renders the foreground run's live state. Watch mode stays alive after
// a run finishes; single-run mode quits when the run reaches a terminal
// status.
type Model struct {
	store   *store.Store
	updates <-chan store.Update

	spinner     spinner.Model
	width       int
	height      int
	exitOnDone  bool
	quitting    bool
	connectNote string
}

// Option configures the stream model.
type Option func(*Model)

// WithExitOnDone makes the model quit once the run reaches a terminal status.
func WithExitOnDone() Option {
	return func(m *Model) { m.exitOnDone = true }
}

// WithConnectNote sets a line shown while no run is active.
func WithConnectNote(note string) Option {
	return func(m *Model) { m.connectNote = note }
}

// NewModel creates a stream model subscribed to the store.
func NewModel(st *store.Store, opts ...Option) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	m := Model{
		store:   st,
		updates: st.Subscribe(),
		spinner: sp,
		width:   80,
		height:  24,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Run starts the tea program inline (no alt screen) and blocks until it
// exits.
func Run(st *store.Store, opts ...Option) error {
	p := tea.NewProgram(NewModel(st, opts...))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForUpdate())
}

// waitForUpdate blocks on the subscription channel and delivers the next
// store notification as a tea message.
func (m Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		u, ok := <-m.updates
		if !ok {
			return updatesClosedMsg{}
		}
		return storeUpdateMsg(u)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			m.store.Unsubscribe(m.updates)
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case storeUpdateMsg:
		if m.exitOnDone && msg.Kind == store.UpdateRun {
			if m.store.Run().Status.Terminal() {
				m.quitting = true
				m.store.Unsubscribe(m.updates)
				return m, tea.Quit
			}
		}
		return m, m.waitForUpdate()

	case updatesClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	run := m.store.Run()
	phase, progress := m.store.Phase()

	b.WriteString(m.headerLine(run))
	b.WriteString("\n")
	b.WriteString(m.phaseLine(run, phase, progress))
	b.WriteString("\n\n")

	steps := m.store.Steps()
	start := 0
	if len(steps) > maxVisibleSteps {
		start = len(steps) - maxVisibleSteps
	}
	for _, step := range steps[start:] {
		b.WriteString(m.stepLine(step))
		b.WriteString("\n")
	}

	if signals := m.store.TopSignals(3); len(signals) > 0 {
		b.WriteString("\n")
		for _, sig := range signals {
			b.WriteString(SignalStepStyle.Render("◆ "))
			b.WriteString(fmt.Sprintf("%s  (confidence %.2f, intensity %.1f)\n",
				sig.Title, sig.Confidence, sig.Intensity))
		}
	}

	for _, n := range m.store.Notices() {
		b.WriteString("\n")
		b.WriteString(NoticeStyle.Render(
			fmt.Sprintf("run %s finished with %d signals", n.RunID, n.SignalCount)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("q to quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) headerLine(run model.Run) string {
	title := "fluxwatch"
	if run.Query != "" {
		title = run.Query
	}
	return TitleStyle.Render(title)
}

func (m Model) phaseLine(run model.Run, phase string, progress int) string {
	switch run.Status {
	case model.StatusCompleted:
		return StatusCompletedStyle.Render(fmt.Sprintf("✓ completed  %d signals", run.SignalCount))
	case model.StatusFailed:
		msg := run.ErrorMessage
		if msg == "" {
			msg = "run failed"
		}
		return StatusFailedStyle.Render("✗ " + msg)
	case model.StatusCancelled:
		return TimestampStyle.Render("run cancelled")
	case model.StatusIdle:
		if m.connectNote != "" {
			return TimestampStyle.Render(m.connectNote)
		}
		return TimestampStyle.Render("waiting for a run")
	default:
		label := phase
		if label == "" {
			label = string(run.Status)
		}
		return fmt.Sprintf("%s %s %s", m.spinner.View(),
			PhaseStyle.Render(label), TimestampStyle.Render(fmt.Sprintf("%d%%", progress)))
	}
}

// stepLine renders one log line: timestamp, agent column, styled content.
func (m Model) stepLine(step model.Step) string {
	ts := step.Timestamp
	if len(ts) > 19 {
		ts = ts[11:19]
	}
	content := step.Content
	maxContent := m.width - 26
	if maxContent > 0 && len(content) > maxContent {
		content = content[:maxContent-1] + "…"
	}
	return fmt.Sprintf("%s %s %s",
		TimestampStyle.Render(ts),
		AgentStyle.Render(step.Agent),
		StyleForStep(step.StepType).Render(content))
}
