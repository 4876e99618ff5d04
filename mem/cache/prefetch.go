package cache

import (
	"fmt"

	"github.com/sarchlab/cachesim/mem/cache/internal/tagging"
	"github.com/sarchlab/cachesim/mem/trace"
)

// unseededTag fills the ways that the trace is too short to seed. No address
// produces it as a tag.
const unseededTag = ^uint64(0)

// NextLinePrefetch replays the trace against a set-associative LRU cache that
// also looks up, and installs on a miss, the line following every access.
// Only the accessed line counts toward the hits.
func (m *Model) NextLinePrefetch(ways int) (Result, error) {
	return m.replayPrefetch(NextLinePrefetch, ways, false)
}

// PrefetchOnMiss is NextLinePrefetch, except that the next line is only
// looked up when the accessed line misses.
func (m *Model) PrefetchOnMiss(ways int) (Result, error) {
	return m.replayPrefetch(PrefetchOnMiss, ways, true)
}

func (m *Model) replayPrefetch(
	p Policy,
	ways int,
	onMissOnly bool,
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
	m.seedPrefetchTable(tags)

	lru := tagging.NewLRUVictimFinder()
	r := m.startReplay(p, ways)

	for step, record := range m.trace {
		now := int64(step)
		setID := addressing.SetIndex(record.Address)
		tag := addressing.Tag(record.Address)

		nextLine := record.Address + LineSize
		pfSetID := addressing.SetIndex(nextLine)
		pfTag := addressing.Tag(nextLine)

		block, hit := tags.Lookup(setID, tag)
		if hit {
			tags.Visit(block, now)
		}

		doPrefetch := !onMissOnly || !hit

		pfHit := false
		if doPrefetch {
			var pfBlock tagging.Block

			pfBlock, pfHit = tags.Lookup(pfSetID, pfTag)
			if pfHit {
				tags.Visit(pfBlock, now)
			}
		}

		if !hit {
			fill(lru.FindVictim(tags.GetSet(setID)), tag, now)
		}

		if doPrefetch && !pfHit {
			fill(lru.FindVictim(tags.GetSet(pfSetID)), pfTag, now)
		}

		r.access(step, record, setID, tag, hit, !hit)

		if doPrefetch {
			r.prefetch(step,
				trace.AccessRecord{Kind: trace.Load, Address: nextLine},
				pfSetID, pfTag, pfHit)
		}
	}

	return r.finish(), nil
}

// seedPrefetchTable fills the ways set by set from the first records of the
// trace, before the replay starts over from the first record. A seeded way
// holds the raw address of its record in the tag field and is older than any
// replayed access. Ways left over when the trace runs out hold unseededTag.
func (m *Model) seedPrefetchTable(tags tagging.TagArray) {
	next := 0

	for s := 0; s < tags.NumSets(); s++ {
		set := tags.GetSet(s)

		for w := range set.Blocks {
			tag := unseededTag
			if next < len(m.trace) {
				tag = m.trace[next].Address
				next++
			}

			set.Blocks[w].Tag = tag
			set.Blocks[w].IsValid = true
			set.Blocks[w].LastUsed = -1
		}
	}
}

func fill(block *tagging.Block, tag uint64, now int64) {
	block.Tag = tag
	block.IsValid = true
	block.LastUsed = now
}
