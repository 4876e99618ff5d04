package cache

import (
	"fmt"

	"github.com/sarchlab/cachesim/mem/cache/internal/tagging"
)

// LFU replays the trace against a Capacity-line cache with the given
// associativity and least-frequently-used replacement.
//
// Frequencies are counted per tag over the whole replay. Every way starts out
// holding tag 0, so early misses evict those placeholders first.
func (m *Model) LFU(ways int) (Result, error) {
	numSets, err := setsForWays(ways)
	if err != nil {
		return Result{}, fmt.Errorf("lfu cache: %w", err)
	}

	addressing, err := NewAddressing(numSets)
	if err != nil {
		return Result{}, fmt.Errorf("lfu cache: %w", err)
	}

	tags := tagging.NewTagArray(numSets, ways)
	occupyAll(tags)

	lfu := tagging.NewLFUVictimFinder()
	r := m.startReplay(LFU, ways)

	for step, record := range m.trace {
		setID := addressing.SetIndex(record.Address)
		tag := addressing.Tag(record.Address)

		_, hit := tags.Lookup(setID, tag)
		if hit {
			lfu.OnHit(tag)
		} else {
			lfu.FindVictim(tags.GetSet(setID)).Tag = tag
			lfu.OnFill(tag)
		}

		r.access(step, record, setID, tag, hit, !hit)
	}

	return r.finish(), nil
}
