// ABOUTME: Inbound message dispatch: the single write path for accumulated run data.
// ABOUTME: Effects are keyed on run_id against the foreground run; stale frames are ignored.
package store

import (
	"fmt"
	"log"

	"github.com/signalflux/fluxwatch/model"
	"github.com/signalflux/fluxwatch/wire"
)

// Dispatch applies one inbound message to the store. It is called only from
// the connection manager's read loop, which preserves the single-writer
// discipline for accumulated run data. Unknown message types are ignored.
func (s *Store) Dispatch(msg wire.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch m := msg.(type) {
	case wire.InitMessage:
		s.applyInit(m)
	case wire.ProgressMessage:
		s.applyProgress(m)
	case wire.StepMessage:
		if s.staleFrame(m.RunID) {
			return
		}
		s.steps = append(s.steps, m.Step())
		s.notify(UpdateStep)
	case wire.SignalMessage:
		if s.staleFrame(m.RunID) {
			return
		}
		s.signals = append(s.signals, m.Signal)
		s.run.SignalCount = len(s.signals)
		s.notify(UpdateSignal)
	case wire.ChartMessage:
		if s.staleFrame(m.RunID) {
			return
		}
		s.upsertChart(m.Series)
		s.notify(UpdateChart)
	case wire.GraphMessage:
		s.graph = m.Graph
		s.notify(UpdateGraph)
	case wire.CompletedMessage:
		s.applyCompleted(m)
	case wire.ErrorMessage:
		s.applyError(m)
	case wire.HistoryMessage:
		s.history = m.Items
		s.notify(UpdateHistory)
	case wire.QueryGroupsMessage:
		s.queryGroups = m.Groups
		s.notify(UpdateQueryGroups)
	case wire.RunDetailsMessage:
		s.applyRunDetails(m)
	default:
		// Unknown or unhandled frame kinds are dropped for forward
		// compatibility.
	}
}

// staleFrame reports whether a frame tagged with a run_id belongs to a run
// other than the current foreground run. Untagged frames are accepted: the
// server only tags frames when multiple runs are active. Callers must hold
// s.mu.
func (s *Store) staleFrame(runID string) bool {
	return runID != "" && s.run.RunID != "" && runID != s.run.RunID
}

// applyInit reconciles state after a fresh connect. Only a mid-flight run is
// adopted; an idle init leaves current state untouched so a reconnect during
// result review does not wipe the display.
func (s *Store) applyInit(m wire.InitMessage) {
	if m.Status != model.StatusRunning || m.RunID == "" {
		return
	}

	s.run = model.Run{RunID: m.RunID, Status: model.StatusRunning, Query: m.Query}
	s.steps = nil
	for _, sd := range m.Steps {
		s.steps = append(s.steps, sd.Step())
	}
	s.signals = m.Signals
	s.run.SignalCount = len(s.signals)
	s.charts = make(map[string]model.ChartSeries, len(m.Charts))
	s.chartOrder = nil
	for ticker, cs := range m.Charts {
		if cs.Ticker == "" {
			cs.Ticker = ticker
		}
		s.upsertChart(cs)
	}
	s.graph = m.Graph
	s.notify(UpdateRun)
}

// applyProgress updates phase/progress and confirms an optimistic pending run
// as running.
func (s *Store) applyProgress(m wire.ProgressMessage) {
	if s.staleFrame(m.RunID) {
		return
	}
	s.phase = m.Phase
	s.progress = m.Progress
	if model.CanTransition(s.run.Status, model.StatusRunning) {
		s.run.Status = model.StatusRunning
	}
	s.notify(UpdateProgress)
}

// applyCompleted marks the foreground run terminal and requests one resync of
// the history listings. A completed frame for a superseded run_id, or for a
// run already terminal, is ignored, so the resync fires exactly once per
// completion event.
func (s *Store) applyCompleted(m wire.CompletedMessage) {
	if m.RunID != "" && m.RunID != s.run.RunID {
		log.Printf("store: ignoring stale completed frame run_id=%s current=%s", m.RunID, s.run.RunID)
		return
	}
	if !model.CanTransition(s.run.Status, model.StatusCompleted) {
		return
	}

	s.run.Status = model.StatusCompleted
	s.run.SignalCount = m.SignalCount
	s.phase = "completed"
	s.progress = 100
	s.notify(UpdateRun)

	if s.sender != nil {
		s.sender.SendCommand(wire.GetHistory())
		s.sender.SendCommand(wire.GetQueryGroups())
	}

	s.addNotice(Notice{
		RunID:       m.RunID,
		SignalCount: m.SignalCount,
		Message:     fmt.Sprintf("analysis completed with %d signals", m.SignalCount),
	})
}

// applyError marks the run failed and surfaces the message in the step log.
// Run-level failure never tears down the connection.
func (s *Store) applyError(m wire.ErrorMessage) {
	if m.RunID != "" && m.RunID != s.run.RunID {
		log.Printf("store: ignoring stale error frame run_id=%s current=%s", m.RunID, s.run.RunID)
		return
	}
	if !model.CanTransition(s.run.Status, model.StatusFailed) {
		return
	}

	s.run.Status = model.StatusFailed
	s.run.ErrorMessage = m.Message
	s.steps = append(s.steps, model.Step{
		Agent:    "System",
		StepType: model.StepError,
		Content:  m.Message,
	})
	s.notify(UpdateRun)
}

// applyRunDetails stores the answer to a get_run_details command, keyed by the
// historical run's id. Details never touch foreground run state.
func (s *Store) applyRunDetails(m wire.RunDetailsMessage) {
	if m.Run == nil || m.Run.RunID == "" {
		return
	}
	d := RunDetails{Run: *m.Run}
	for _, sd := range m.Steps {
		d.Steps = append(d.Steps, sd.Step())
	}
	s.runDetails[m.Run.RunID] = d
	s.notify(UpdateRunDetails)
}

// MarkCancelled applies a server-confirmed cancellation. Cancel requests are
// advisory: command handlers never call this on their own, only when the
// server confirms via a subsequent frame.
func (s *Store) MarkCancelled(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if runID != "" && runID != s.run.RunID {
		return
	}
	if !model.CanTransition(s.run.Status, model.StatusCancelled) {
		return
	}
	s.run.Status = model.StatusCancelled
	s.notify(UpdateRun)
}
