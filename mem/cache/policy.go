package cache

import (
	"fmt"
	"strings"
)

// Policy identifies a cache organization and its replacement policy.
type Policy int

// The policies that a Model can replay.
const (
	DirectMapped Policy = iota
	SetAssociative
	FullyAssociativeLRU
	FullyAssociativeHCR
	NoWriteAllocate
	NextLinePrefetch
	PrefetchOnMiss
	LFU
)

var policyNames = []string{
	DirectMapped:        "direct-mapped",
	SetAssociative:      "set-associative",
	FullyAssociativeLRU: "fully-associative-lru",
	FullyAssociativeHCR: "fully-associative-hcr",
	NoWriteAllocate:     "no-write-allocate",
	NextLinePrefetch:    "next-line-prefetch",
	PrefetchOnMiss:      "prefetch-on-miss",
	LFU:                 "lfu",
}

var policyAliases = map[string]Policy{
	"dm":       DirectMapped,
	"sa":       SetAssociative,
	"lru":      SetAssociative,
	"fa":       FullyAssociativeLRU,
	"fa-lru":   FullyAssociativeLRU,
	"hcr":      FullyAssociativeHCR,
	"fa-hcr":   FullyAssociativeHCR,
	"no-alloc": NoWriteAllocate,
	"nwa":      NoWriteAllocate,
	"prefetch": NextLinePrefetch,
	"pom":      PrefetchOnMiss,
}

// Policies returns all the policies in report order.
func Policies() []Policy {
	return []Policy{
		DirectMapped,
		SetAssociative,
		FullyAssociativeLRU,
		FullyAssociativeHCR,
		NoWriteAllocate,
		NextLinePrefetch,
		PrefetchOnMiss,
		LFU,
	}
}

func (p Policy) String() string {
	if p < 0 || int(p) >= len(policyNames) {
		return fmt.Sprintf("Policy(%d)", int(p))
	}

	return policyNames[p]
}

// ParsePolicy accepts the full name of a policy or one of its short aliases.
func ParsePolicy(name string) (Policy, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	for p, n := range policyNames {
		if n == name {
			return Policy(p), nil
		}
	}

	if p, ok := policyAliases[name]; ok {
		return p, nil
	}

	return 0, fmt.Errorf("unknown policy %q", name)
}

// Run replays the trace with the given policy. The meaning of param depends
// on the policy: the number of entries for DirectMapped and
// FullyAssociativeHCR, the associativity for the set-associative policies.
// FullyAssociativeLRU ignores it.
func (m *Model) Run(p Policy, param int) (Result, error) {
	switch p {
	case DirectMapped:
		return m.DirectMapped(param)
	case SetAssociative:
		return m.SetAssociative(param)
	case FullyAssociativeLRU:
		return m.FullyAssociativeLRU()
	case FullyAssociativeHCR:
		return m.FullyAssociativeHCR(param)
	case NoWriteAllocate:
		return m.NoWriteAllocate(param)
	case NextLinePrefetch:
		return m.NextLinePrefetch(param)
	case PrefetchOnMiss:
		return m.PrefetchOnMiss(param)
	case LFU:
		return m.LFU(param)
	default:
		return Result{}, fmt.Errorf("%w: unknown policy %d",
			ErrInvalidConfiguration, int(p))
	}
}

// MarshalText encodes the policy by name.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a policy name or alias.
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}

	*p = parsed

	return nil
}
