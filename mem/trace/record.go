// Package trace provides the memory access trace that the cache models replay,
// the loader that reads it from trace files, and a tracer that records the
// outcome of every replayed access.
package trace

import "fmt"

// Kind is the kind of a memory access.
type Kind uint8

// The kinds of accesses that can appear in a trace.
const (
	Load Kind = iota
	Store
)

func (k Kind) String() string {
	switch k {
	case Load:
		return "L"
	case Store:
		return "S"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind converts the kind character of a trace line into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "L", "l":
		return Load, nil
	case "S", "s":
		return Store, nil
	default:
		return 0, fmt.Errorf("unknown access kind %q", s)
	}
}

// An AccessRecord is one entry of a trace.
type AccessRecord struct {
	Kind    Kind
	Address uint64
}

// IsStore returns true if the access writes memory.
func (r AccessRecord) IsStore() bool {
	return r.Kind == Store
}

func (r AccessRecord) String() string {
	return fmt.Sprintf("%s %x", r.Kind, r.Address)
}

// A Trace is the ordered list of accesses. The order is the replay order.
// Cache models never modify a trace, so a single Trace can be shared by
// replays running at the same time.
type Trace []AccessRecord

// Len returns the number of accesses in the trace.
func (t Trace) Len() int {
	return len(t)
}

// Loads returns the number of load accesses.
func (t Trace) Loads() int {
	n := 0

	for _, r := range t {
		if r.Kind == Load {
			n++
		}
	}

	return n
}

// Stores returns the number of store accesses.
func (t Trace) Stores() int {
	return len(t) - t.Loads()
}
