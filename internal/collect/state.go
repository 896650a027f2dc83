// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"slices"

	"github.com/pdiddy/weekly-radar/internal/search"
)

// RunState is the run-scoped record of throttled providers. A provider is
// flagged at most once and never cleared; every chain consulted after the
// flag is set skips that provider's adapters. One RunState belongs to
// exactly one run and is not safe for concurrent use.
type RunState struct {
	limited map[search.Provider]bool
	order   []search.Provider
}

// NewRunState returns an empty state.
func NewRunState() *RunState {
	return &RunState{limited: make(map[search.Provider]bool)}
}

// MarkRateLimited flags p for the remainder of the run. It reports whether
// the flag was newly set.
func (s *RunState) MarkRateLimited(p search.Provider) bool {
	if s.limited[p] {
		return false
	}
	s.limited[p] = true
	s.order = append(s.order, p)
	return true
}

// RateLimited reports whether p has been flagged.
func (s *RunState) RateLimited(p search.Provider) bool {
	return s.limited[p]
}

// Limited returns the flagged providers in the order they were flagged.
func (s *RunState) Limited() []search.Provider {
	return slices.Clone(s.order)
}

// exhausted reports whether every adapter of c belongs to a flagged provider.
func (s *RunState) exhausted(c Chain) bool {
	for _, a := range c.Adapters {
		if !s.limited[a.Provider()] {
			return false
		}
	}
	return true
}
