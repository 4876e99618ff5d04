package cache

import (
	"fmt"

	"github.com/sarchlab/cachesim/mem/cache/internal/tagging"
)

// DirectMapped replays the trace against a direct-mapped cache with the given
// number of one-line sets. A mismatching tag always overwrites the line.
func (m *Model) DirectMapped(entries int) (Result, error) {
	addressing, err := NewAddressing(entries)
	if err != nil {
		return Result{}, fmt.Errorf("direct-mapped cache: %w", err)
	}

	tags := tagging.NewTagArray(entries, 1)
	r := m.startReplay(DirectMapped, entries)

	for step, record := range m.trace {
		setID := addressing.SetIndex(record.Address)
		tag := addressing.Tag(record.Address)

		_, hit := tags.Lookup(setID, tag)
		if !hit {
			tags.Update(tagging.Block{
				SetID:   setID,
				Tag:     tag,
				IsValid: true,
			})
		}

		r.access(step, record, setID, tag, hit, !hit)
	}

	return r.finish(), nil
}
