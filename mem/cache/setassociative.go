package cache

import (
	"fmt"

	"github.com/sarchlab/cachesim/mem/cache/internal/tagging"
)

// SetAssociative replays the trace against a Capacity-line cache with the
// given associativity and LRU replacement.
func (m *Model) SetAssociative(ways int) (Result, error) {
	return m.replayLRU(SetAssociative, ways, true)
}

// FullyAssociativeLRU replays the trace against a Capacity-line cache with a
// single set and LRU replacement. It is SetAssociative(Capacity).
func (m *Model) FullyAssociativeLRU() (Result, error) {
	return m.replayLRU(FullyAssociativeLRU, Capacity, true)
}

// NoWriteAllocate behaves like SetAssociative except that a store that misses
// bypasses the cache and leaves the table untouched.
func (m *Model) NoWriteAllocate(ways int) (Result, error) {
	return m.replayLRU(NoWriteAllocate, ways, false)
}

func (m *Model) replayLRU(
	p Policy,
	ways int,
	allocateOnStoreMiss bool,
) (Result, error) {
	numSets, err := setsForWays(ways)
	if err != nil {
		return Result{}, fmt.Errorf("%s cache: %w", p, err)
	}

	addressing, err := NewAddressing(numSets)
	if err != nil {
		return Result{}, fmt.Errorf("%s cache: %w", p, err)
	}

	tags := tagging.NewTagArray(numSets, ways)
	victimFinder := tagging.NewLRUVictimFinder()
	r := m.startReplay(p, ways)

	for step, record := range m.trace {
		now := int64(step)
		setID := addressing.SetIndex(record.Address)
		tag := addressing.Tag(record.Address)

		block, hit := tags.Lookup(setID, tag)
		if hit {
			tags.Visit(block, now)
			r.access(step, record, setID, tag, true, false)

			continue
		}

		if record.IsStore() && !allocateOnStoreMiss {
			r.access(step, record, setID, tag, false, false)
			continue
		}

		victim := victimFinder.FindVictim(tags.GetSet(setID))
		victim.Tag = tag
		victim.IsValid = true
		victim.LastUsed = now

		r.access(step, record, setID, tag, false, true)
	}

	return r.finish(), nil
}
