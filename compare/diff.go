// ABOUTME: Structural diff between a parent and child run's outputs for the comparison view.
// ABOUTME: Signals match by signal_id; chart coverage compares ticker sets.
package compare

import (
	"sort"

	"github.com/signalflux/fluxwatch/model"
)

// Diff summarizes what changed between a parent run and its child.
type Diff struct {
	AddedSignals   []model.Signal // present in child only
	RemovedSignals []model.Signal // present in parent only
	CommonSignals  []model.Signal // child's version of signals in both
	SharedTickers  []string
	ChildTickers   []string // charts only the child has
	ParentTickers  []string // charts only the parent has
}

// ComputeDiff diffs a comparable result. Returns nil when the result is not
// comparable, mirroring the resolver's never-half-populated contract.
func ComputeDiff(res *Result) *Diff {
	if res == nil || !res.Comparable {
		return nil
	}

	parentByID := make(map[string]model.Signal, len(res.Parent.Signals))
	for _, sig := range res.Parent.Signals {
		parentByID[sig.SignalID] = sig
	}
	childByID := make(map[string]model.Signal, len(res.Child.Signals))
	for _, sig := range res.Child.Signals {
		childByID[sig.SignalID] = sig
	}

	d := &Diff{}
	for _, sig := range res.Child.Signals {
		if _, ok := parentByID[sig.SignalID]; ok {
			d.CommonSignals = append(d.CommonSignals, sig)
		} else {
			d.AddedSignals = append(d.AddedSignals, sig)
		}
	}
	for _, sig := range res.Parent.Signals {
		if _, ok := childByID[sig.SignalID]; !ok {
			d.RemovedSignals = append(d.RemovedSignals, sig)
		}
	}

	d.SharedTickers, d.ChildTickers, d.ParentTickers = diffTickers(res.Child.Charts, res.Parent.Charts)
	return d
}

// diffTickers partitions chart tickers into shared, child-only, and
// parent-only sets, each sorted for deterministic display.
func diffTickers(child, parent map[string]model.ChartSeries) (shared, childOnly, parentOnly []string) {
	for t := range child {
		if _, ok := parent[t]; ok {
			shared = append(shared, t)
		} else {
			childOnly = append(childOnly, t)
		}
	}
	for t := range parent {
		if _, ok := child[t]; !ok {
			parentOnly = append(parentOnly, t)
		}
	}
	sort.Strings(shared)
	sort.Strings(childOnly)
	sort.Strings(parentOnly)
	return shared, childOnly, parentOnly
}
