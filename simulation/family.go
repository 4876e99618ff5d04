package simulation

import (
	"fmt"
	"strings"

	"github.com/sarchlab/cachesim/mem/cache"
)

// A Family is a policy and the parameters it is replayed with. It renders as
// one line of the report.
type Family struct {
	Policy cache.Policy
	Params []int
}

// Configuration sizes of the default report.
var (
	DirectMappedSizes = []int{32, 128, 512, 1024}
	Associativities   = []int{2, 4, 8, 16}
)

// DefaultFamilies returns every family of the report, in report order.
func DefaultFamilies() []Family {
	families := make([]Family, 0, len(cache.Policies()))
	for _, p := range cache.Policies() {
		families = append(families, DefaultFamily(p))
	}

	return families
}

// DefaultFamily returns the family the report uses for a policy.
func DefaultFamily(p cache.Policy) Family {
	switch p {
	case cache.DirectMapped:
		return Family{Policy: p, Params: DirectMappedSizes}
	case cache.FullyAssociativeLRU, cache.FullyAssociativeHCR:
		return Family{Policy: p, Params: []int{cache.Capacity}}
	default:
		return Family{Policy: p, Params: Associativities}
	}
}

// ParseFamilies selects default families by a comma-separated list of policy
// names. The families keep the order of the list.
func ParseFamilies(list string) ([]Family, error) {
	var families []Family

	for _, name := range strings.Split(list, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}

		p, err := cache.ParsePolicy(name)
		if err != nil {
			return nil, err
		}

		families = append(families, DefaultFamily(p))
	}

	if len(families) == 0 {
		return nil, fmt.Errorf("no policy in %q", list)
	}

	return families, nil
}

// FamilyResult holds the results of a family in parameter order.
type FamilyResult struct {
	Family  Family
	Results []cache.Result
}
