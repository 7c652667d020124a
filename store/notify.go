// ABOUTME: Subscription fan-out for store updates, modeled as buffered channels.
// ABOUTME: Notify is non-blocking: slow subscribers drop updates rather than stalling dispatch.
package store

// UpdateKind discriminates which part of the store changed.
type UpdateKind string

const (
	UpdateRun         UpdateKind = "run"
	UpdateProgress    UpdateKind = "progress"
	UpdateStep        UpdateKind = "step"
	UpdateSignal      UpdateKind = "signal"
	UpdateChart       UpdateKind = "chart"
	UpdateGraph       UpdateKind = "graph"
	UpdateHistory     UpdateKind = "history"
	UpdateQueryGroups UpdateKind = "query_groups"
	UpdateTabs        UpdateKind = "tabs"
	UpdateRunDetails  UpdateKind = "run_details"
	UpdateNotice      UpdateKind = "notice"
)

// Update tells subscribers which field group changed; readers pull the new
// value through the typed selectors.
type Update struct {
	Kind UpdateKind
}

// Subscribe registers a new subscriber channel and returns it. The channel is
// buffered so dispatch never blocks on a reader.
func (s *Store) Subscribe() <-chan Update {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Update, 256)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber channel and closes it.
func (s *Store) Unsubscribe(ch <-chan Update) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if (<-chan Update)(sub) == ch {
			close(sub)
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			return
		}
	}
}

// notify sends an update to all subscribers without blocking. Callers must
// hold s.mu.
func (s *Store) notify(kind UpdateKind) {
	for _, ch := range s.subscribers {
		select {
		case ch <- Update{Kind: kind}:
		default:
			// Drop for slow subscribers rather than blocking dispatch
		}
	}
}
