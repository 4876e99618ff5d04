package cache

import (
	"fmt"

	"github.com/sarchlab/cachesim/mem/cache/internal/tagging"
)

// FullyAssociativeHCR replays the trace against a single-set cache of the
// given number of ways, replaced with a hot/cold binary tree.
//
// The ways have no valid bit. Untouched ways hold tag 0, so the line at
// address 0 hits on a cold cache.
func (m *Model) FullyAssociativeHCR(entries int) (Result, error) {
	if err := mustBePowerOfTwo("number of ways", entries); err != nil {
		return Result{}, fmt.Errorf("hot/cold cache: %w", err)
	}

	tags := tagging.NewTagArray(1, entries)
	occupyAll(tags)

	tree := tagging.NewHotColdVictimFinder(entries)
	set := tags.GetSet(0)
	r := m.startReplay(FullyAssociativeHCR, entries)

	for step, record := range m.trace {
		tag := record.Address >> log2LineSize

		block, hit := tags.Lookup(0, tag)
		if hit {
			tree.Touch(block.WayID)
		} else {
			tree.FindVictim(set).Tag = tag
		}

		r.access(step, record, 0, tag, hit, !hit)
	}

	return r.finish(), nil
}
