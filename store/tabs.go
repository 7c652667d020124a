// ABOUTME: Bounded compare-tab list referencing historical runs, with one active index.
// ABOUTME: Owned exclusively by the store; mutated only via explicit open/close/select ops.
package store

import (
	"github.com/signalflux/fluxwatch/model"
	"github.com/signalflux/fluxwatch/wire"
)

// maxCompareTabs bounds how many historical runs can be open at once. Opening
// another evicts the oldest tab.
const maxCompareTabs = 4

// OpenCompareTab adds a tab for a historical run and makes it active. Opening
// a run that is already open just selects its tab. Selecting a historical run
// never alters the foreground run's state.
func (s *Store) OpenCompareTab(runID, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, tab := range s.tabs {
		if tab.RunID == runID {
			s.activeTab = i
			s.notify(UpdateTabs)
			return
		}
	}

	if len(s.tabs) >= maxCompareTabs {
		s.tabs = s.tabs[1:]
	}
	s.tabs = append(s.tabs, model.CompareTab{RunID: runID, Label: label})
	s.activeTab = len(s.tabs) - 1
	s.notify(UpdateTabs)

	// Fetch the historical run's record once; the run_details answer lands
	// via Dispatch.
	if _, have := s.runDetails[runID]; !have && s.sender != nil {
		s.sender.SendCommand(wire.GetRunDetails(runID))
	}
}

// CloseCompareTab removes the tab for a run. If the active tab is removed,
// the nearest remaining tab becomes active; with no tabs left the active
// index resets to -1.
func (s *Store) CloseCompareTab(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, tab := range s.tabs {
		if tab.RunID != runID {
			continue
		}
		s.tabs = append(s.tabs[:i], s.tabs[i+1:]...)
		switch {
		case len(s.tabs) == 0:
			s.activeTab = -1
		case s.activeTab >= len(s.tabs):
			s.activeTab = len(s.tabs) - 1
		case s.activeTab > i:
			s.activeTab--
		}
		s.notify(UpdateTabs)
		return
	}
}

// SelectCompareTab makes the tab at index i active. Out-of-range indexes are
// ignored.
func (s *Store) SelectCompareTab(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.tabs) {
		return
	}
	s.activeTab = i
	s.notify(UpdateTabs)
}

// CompareTabs returns a copy of the open tabs and the active index (-1 when
// no tab is active).
func (s *Store) CompareTabs() ([]model.CompareTab, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.CompareTab, len(s.tabs))
	copy(out, s.tabs)
	return out, s.activeTab
}
