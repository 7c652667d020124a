// ABOUTME: Tests for compare tab open/close/select semantics.
// ABOUTME: Covers eviction at the tab bound and active index fixups on close.
package store

import "testing"

func TestOpenCompareTab(t *testing.T) {
	s := New()

	s.OpenCompareTab("r1", "run one")
	s.OpenCompareTab("r2", "run two")

	tabs, active := s.CompareTabs()
	if len(tabs) != 2 || active != 1 {
		t.Fatalf("tabs = %+v active = %d", tabs, active)
	}

	// Re-opening an open run selects it instead of duplicating.
	s.OpenCompareTab("r1", "run one")
	tabs, active = s.CompareTabs()
	if len(tabs) != 2 || active != 0 {
		t.Errorf("tabs = %+v active = %d", tabs, active)
	}
}

func TestOpenCompareTabEvictsOldest(t *testing.T) {
	s := New()
	for _, id := range []string{"r1", "r2", "r3", "r4", "r5"} {
		s.OpenCompareTab(id, id)
	}

	tabs, active := s.CompareTabs()
	if len(tabs) != 4 {
		t.Fatalf("tabs = %d, want 4", len(tabs))
	}
	if tabs[0].RunID != "r2" || tabs[3].RunID != "r5" {
		t.Errorf("tabs = %+v", tabs)
	}
	if active != 3 {
		t.Errorf("active = %d, want 3", active)
	}
}

func TestCloseCompareTab(t *testing.T) {
	s := New()
	s.OpenCompareTab("r1", "a")
	s.OpenCompareTab("r2", "b")
	s.OpenCompareTab("r3", "c")
	s.SelectCompareTab(2)

	// Closing a tab before the active one shifts the index down.
	s.CloseCompareTab("r1")
	tabs, active := s.CompareTabs()
	if len(tabs) != 2 || active != 1 || tabs[active].RunID != "r3" {
		t.Errorf("tabs = %+v active = %d", tabs, active)
	}

	// Closing the active last tab falls back to the previous one.
	s.CloseCompareTab("r3")
	tabs, active = s.CompareTabs()
	if len(tabs) != 1 || active != 0 || tabs[0].RunID != "r2" {
		t.Errorf("tabs = %+v active = %d", tabs, active)
	}

	s.CloseCompareTab("r2")
	tabs, active = s.CompareTabs()
	if len(tabs) != 0 || active != -1 {
		t.Errorf("tabs = %+v active = %d", tabs, active)
	}

	// Closing an unknown run is a no-op.
	s.CloseCompareTab("missing")
}

func TestSelectCompareTabBounds(t *testing.T) {
	s := New()
	s.OpenCompareTab("r1", "a")

	s.SelectCompareTab(5)
	s.SelectCompareTab(-1)

	_, active := s.CompareTabs()
	if active != 0 {
		t.Errorf("active = %d, want 0", active)
	}
}
