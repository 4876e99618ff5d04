package cache

import (
	"errors"
	"fmt"
	"math/bits"
)

// Fixed geometry of the simulated caches.
const (
	// LineSize is the number of bytes in a cache line.
	LineSize = 32
	// Capacity is the number of lines held by the associative caches.
	Capacity = 512

	log2LineSize = 5
)

// ErrInvalidConfiguration is returned when a cache cannot be built with the
// requested size.
var ErrInvalidConfiguration = errors.New("invalid cache configuration")

// Addressing splits addresses into set indices and tags for a table of
// numSets sets.
type Addressing struct {
	numSets int
	setBits int
}

// NewAddressing creates the address decomposition for numSets sets. numSets
// must be a positive power of two.
func NewAddressing(numSets int) (Addressing, error) {
	if err := mustBePowerOfTwo("number of sets", numSets); err != nil {
		return Addressing{}, err
	}

	return Addressing{
		numSets: numSets,
		setBits: bits.TrailingZeros(uint(numSets)),
	}, nil
}

// NumSets returns the number of sets.
func (a Addressing) NumSets() int {
	return a.numSets
}

// LineIndex returns the cache-line granular address.
func (a Addressing) LineIndex(addr uint64) uint64 {
	return addr >> log2LineSize
}

// SetIndex returns the set that the line holding addr maps to.
func (a Addressing) SetIndex(addr uint64) int {
	return int(a.LineIndex(addr) & uint64(a.numSets-1))
}

// Tag returns the bits of addr above the set index.
func (a Addressing) Tag(addr uint64) uint64 {
	return addr >> (a.setBits + log2LineSize)
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func mustBePowerOfTwo(what string, n int) error {
	if !isPowerOfTwo(n) {
		return fmt.Errorf("%w: %s %d is not a power of two",
			ErrInvalidConfiguration, what, n)
	}

	return nil
}

// setsForWays returns how many sets a Capacity-line cache with the given
// associativity has.
func setsForWays(ways int) (int, error) {
	if err := mustBePowerOfTwo("associativity", ways); err != nil {
		return 0, err
	}

	if ways > Capacity {
		return 0, fmt.Errorf("%w: associativity %d exceeds the capacity of %d lines",
			ErrInvalidConfiguration, ways, Capacity)
	}

	return Capacity / ways, nil
}
