// Package cache replays memory access traces against cache organizations and
// counts the hits.
//
// Every policy of a Model builds its own table, replays the whole trace from a
// cold cache and discards the table before returning. Policies never share
// state, so they can run concurrently on the same Model.
package cache

import (
	"github.com/sarchlab/cachesim/mem/cache/internal/tagging"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/sim"
)

// A Model holds a trace and replays it against the cache policies.
type Model struct {
	*sim.HookableBase

	trace trace.Trace
}

// NewModel creates a model that replays t. The model does not modify t.
func NewModel(t trace.Trace) *Model {
	return &Model{
		HookableBase: sim.NewHookableBase(),
		trace:        t,
	}
}

// Trace returns the trace being replayed.
func (m *Model) Trace() trace.Trace {
	return m.trace
}

// Len returns the number of accesses in the trace.
func (m *Model) Len() int {
	return len(m.trace)
}

// Result is the outcome of replaying the trace with one policy.
type Result struct {
	RunID    string `json:"run_id"`
	Policy   Policy `json:"policy"`
	Param    int    `json:"param"`
	Hits     int    `json:"hits"`
	Accesses int    `json:"accesses"`
}

// Misses returns the number of accesses that missed.
func (r Result) Misses() int {
	return r.Accesses - r.Hits
}

// HitRate returns the fraction of accesses that hit.
func (r Result) HitRate() float64 {
	if r.Accesses == 0 {
		return 0
	}

	return float64(r.Hits) / float64(r.Accesses)
}

// occupyAll marks every block valid with tag 0, for the policies that have no
// notion of an empty way.
func occupyAll(tags tagging.TagArray) {
	for s := 0; s < tags.NumSets(); s++ {
		set := tags.GetSet(s)
		for w := range set.Blocks {
			set.Blocks[w].IsValid = true
		}
	}
}
