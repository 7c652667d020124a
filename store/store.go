// ABOUTME: Run State Store: the single in-memory container for the foreground run's state.
// ABOUTME: All mutation is serialized behind one mutex; selectors hand out copies, never aliases.
package store

import (
	"sync"

	"github.com/signalflux/fluxwatch/model"
	"github.com/signalflux/fluxwatch/wire"
)

// maxNotices bounds the retained user-facing notification log.
const maxNotices = 20

// CommandSender delivers fire-and-forget command frames over the realtime
// channel. The connection manager registers itself here so the store can
// request resyncs; a nil sender means the resync is skipped.
type CommandSender interface {
	SendCommand(cmd wire.Command)
}

// Notice is a user-facing notification record, e.g. run completion.
type Notice struct {
	RunID       string
	Message     string
	SignalCount int
}

// RunDetails is the stored record and step log of a historical run, fetched
// on demand for compare tabs.
type RunDetails struct {
	Run   model.Run
	Steps []model.Step
}

// Store holds the foreground run's accumulated state plus UI-scoped fields
// (compare tabs, history listings). It is an explicit, injectable container:
// construct one with New and pass it by reference to the connection manager
// and command handlers.
type Store struct {
	mu          sync.RWMutex
	subscribers []chan Update
	sender      CommandSender

	// Foreground run state. Accumulates monotonically within one run_id's
	// lifetime; cleared atomically when a new run starts.
	run        model.Run
	phase      string
	progress   int
	steps      []model.Step
	signals    []model.Signal
	charts     map[string]model.ChartSeries
	chartOrder []string
	graph      model.Graph

	// UI-scoped fields, disjoint from accumulated run data.
	history     []model.HistoryItem
	queryGroups []model.QueryGroup
	tabs        []model.CompareTab
	activeTab   int
	runDetails  map[string]RunDetails
	notices     []Notice
}

// New creates an empty store.
func New() *Store {
	return &Store{
		run:        model.Run{Status: model.StatusIdle},
		charts:     make(map[string]model.ChartSeries),
		activeTab:  -1,
		runDetails: make(map[string]RunDetails),
	}
}

// SetCommandSender registers the channel used for completion resyncs.
func (s *Store) SetCommandSender(sender CommandSender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sender = sender
}

// BeginRun clears all accumulated run data and optimistically marks the new
// run pending. Called by the start/rerun/update command handlers after a
// successful start request, before the server's first progress or init frame
// confirms running. The atomic clear guarantees no cross-contamination between
// consecutive runs' accumulated data.
func (s *Store) BeginRun(runID, query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.run = model.Run{RunID: runID, Status: model.StatusPending, Query: query}
	s.phase = ""
	s.progress = 0
	s.steps = nil
	s.signals = nil
	s.charts = make(map[string]model.ChartSeries)
	s.chartOrder = nil
	s.graph = model.Graph{}
	s.notify(UpdateRun)
}

// Run returns a copy of the foreground run.
func (s *Store) Run() model.Run {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.run
}

// Phase returns the current phase label and percent complete.
func (s *Store) Phase() (string, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase, s.progress
}

// Steps returns a copy of the accumulated step log in receipt order.
func (s *Store) Steps() []model.Step {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Step, len(s.steps))
	copy(out, s.steps)
	return out
}

// Signals returns a copy of the accumulated signals in receipt order.
func (s *Store) Signals() []model.Signal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Signal, len(s.signals))
	copy(out, s.signals)
	return out
}

// Chart returns the series for one ticker.
func (s *Store) Chart(ticker string) (model.ChartSeries, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cs, ok := s.charts[ticker]
	return cs, ok
}

// Charts returns all chart series in first-seen ticker order.
func (s *Store) Charts() []model.ChartSeries {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ChartSeries, 0, len(s.chartOrder))
	for _, ticker := range s.chartOrder {
		out = append(out, s.charts[ticker])
	}
	return out
}

// Graph returns the current transmission graph.
func (s *Store) Graph() model.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph
}

// History returns a copy of the history listing.
func (s *Store) History() []model.HistoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.HistoryItem, len(s.history))
	copy(out, s.history)
	return out
}

// QueryGroups returns a copy of the per-query run groupings.
func (s *Store) QueryGroups() []model.QueryGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.QueryGroup, len(s.queryGroups))
	copy(out, s.queryGroups)
	return out
}

// RunDetails returns the fetched record for a historical run, if present.
func (s *Store) RunDetails(runID string) (RunDetails, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.runDetails[runID]
	return d, ok
}

// Notices returns a copy of retained user-facing notifications, newest last.
func (s *Store) Notices() []Notice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Notice, len(s.notices))
	copy(out, s.notices)
	return out
}

// TopSignals returns up to n signals ranked by confidence then intensity.
func (s *Store) TopSignals(n int) []model.Signal {
	ranked := model.RankSignals(s.Signals())
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// addNotice appends a bounded notification record. Callers must hold s.mu.
func (s *Store) addNotice(n Notice) {
	s.notices = append(s.notices, n)
	if len(s.notices) > maxNotices {
		s.notices = s.notices[len(s.notices)-maxNotices:]
	}
	s.notify(UpdateNotice)
}

// upsertChart inserts or replaces a series keyed by ticker, preserving
// first-seen order. Callers must hold s.mu.
func (s *Store) upsertChart(cs model.ChartSeries) {
	if _, seen := s.charts[cs.Ticker]; !seen {
		s.chartOrder = append(s.chartOrder, cs.Ticker)
	}
	s.charts[cs.Ticker] = cs
}
