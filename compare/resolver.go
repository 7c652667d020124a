// ABOUTME: Resolves a run and its declared parent into a matched pair for side-by-side comparison.
// ABOUTME: Fails closed on the child; a parent failure degrades to child-only with comparison disabled.
package compare

import (
	"context"
	"fmt"
	"log"

	"github.com/signalflux/fluxwatch/api"
)

// RunFetcher fetches the structured result payload of one run. *api.Client
// satisfies this.
type RunFetcher interface {
	RunData(ctx context.Context, runID string) (*api.RunData, error)
}

// RunCache is the optional read-through cache for fetched payloads. Terminal
// run payloads are immutable, so cached copies never go stale.
type RunCache interface {
	GetRunData(runID string) (*api.RunData, bool, error)
	PutRunData(data *api.RunData) error
}

// Result is a resolved comparison. The invariant is one-sided states never
// exist: Comparable is true exactly when both Child and Parent are populated,
// and Parent is nil whenever Comparable is false.
type Result struct {
	Child      *api.RunData
	Parent     *api.RunData
	Comparable bool
}

// Resolver resolves run payloads for the comparison view.
type Resolver struct {
	fetcher RunFetcher
	cache   RunCache
}

// NewResolver creates a resolver. The cache may be nil.
func NewResolver(fetcher RunFetcher, cache RunCache) *Resolver {
	return &Resolver{fetcher: fetcher, cache: cache}
}

// Resolve fetches the selected run's structured output and, when the run
// declares a parent, the parent's output by the same path. The two fetches
// fail independently: a child failure produces no comparison state at all,
// while a parent failure surfaces the child alone with comparison disabled.
func (r *Resolver) Resolve(ctx context.Context, runID string) (*Result, error) {
	child, err := r.fetch(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("resolve run %s: %w", runID, err)
	}

	result := &Result{Child: child}

	parentID := child.Run.ParentRunID
	if parentID == "" {
		return result, nil
	}

	parent, err := r.fetch(ctx, parentID)
	if err != nil {
		// The comparison view must never show one side only, so the
		// parent error degrades to a child-only result.
		log.Printf("compare: parent run %s unavailable: %v", parentID, err)
		return result, nil
	}

	result.Parent = parent
	result.Comparable = true
	return result, nil
}

// fetch reads through the cache: hit wins, miss goes to the network and
// populates the cache on success.
func (r *Resolver) fetch(ctx context.Context, runID string) (*api.RunData, error) {
	if r.cache != nil {
		if data, ok, err := r.cache.GetRunData(runID); err == nil && ok {
			return data, nil
		} else if err != nil {
			log.Printf("compare: cache read for run %s: %v", runID, err)
		}
	}

	data, err := r.fetcher.RunData(ctx, runID)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.PutRunData(data); err != nil {
			log.Printf("compare: cache write for run %s: %v", runID, err)
		}
	}
	return data, nil
}
