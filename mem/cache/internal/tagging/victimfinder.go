package tagging

import (
	"fmt"
	"math/bits"
)

// A VictimFinder decides which block should be evicted
type VictimFinder interface {
	FindVictim(set *Set) *Block
}

// LRUVictimFinder evicts the least recently used block
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed lru evictor
func NewLRUVictimFinder() *LRUVictimFinder {
	e := new(LRUVictimFinder)
	return e
}

// FindVictim returns the first invalid block of the set. If all the blocks
// are valid, it returns the block with the smallest LastUsed, preferring the
// lower way on a tie.
func (e *LRUVictimFinder) FindVictim(set *Set) *Block {
	for i := range set.Blocks {
		if !set.Blocks[i].IsValid {
			return &set.Blocks[i]
		}
	}

	victim := &set.Blocks[0]
	for i := 1; i < len(set.Blocks); i++ {
		if set.Blocks[i].LastUsed < victim.LastUsed {
			victim = &set.Blocks[i]
		}
	}

	return victim
}

// LFUVictimFinder evicts the block whose tag has been hit the fewest times.
// Frequencies are kept per tag, not per block, so a tag keeps its count after
// being evicted and refilled.
type LFUVictimFinder struct {
	frequency map[uint64]int
}

// NewLFUVictimFinder returns a newly constructed lfu evictor.
func NewLFUVictimFinder() *LFUVictimFinder {
	return &LFUVictimFinder{frequency: make(map[uint64]int)}
}

// OnHit should be called by the cache when a tag is hit. Tags that have never
// been filled are not counted.
func (e *LFUVictimFinder) OnHit(tag uint64) {
	if _, ok := e.frequency[tag]; ok {
		e.frequency[tag]++
	}
}

// OnFill should be called by the cache when a tag is filled. A tag seen for the
// first time starts with a frequency of one.
func (e *LFUVictimFinder) OnFill(tag uint64) {
	if _, ok := e.frequency[tag]; !ok {
		e.frequency[tag] = 1
	}
}

// Frequency returns the recorded frequency of a tag.
func (e *LFUVictimFinder) Frequency(tag uint64) int {
	return e.frequency[tag]
}

// FindVictim returns the block with the lowest frequency, preferring the lower
// way on a tie.
func (e *LFUVictimFinder) FindVictim(set *Set) *Block {
	victim := &set.Blocks[0]
	minFreq := e.frequency[victim.Tag]

	for i := 1; i < len(set.Blocks); i++ {
		f := e.frequency[set.Blocks[i].Tag]
		if f < minFreq {
			minFreq = f
			victim = &set.Blocks[i]
		}
	}

	return victim
}

// HotColdVictimFinder implements tree pseudo-LRU over the ways of a single
// set. Each internal node of a complete binary tree keeps one bit, stored in
// heap order (children of i are 2i+1 and 2i+2). A zero bit points the next
// replacement to the left subtree, a one bit to the right subtree.
type HotColdVictimFinder struct {
	numWays int
	depth   int
	bits    []uint8
}

// NewHotColdVictimFinder creates a tree for numWays ways. numWays must be a
// power of two.
func NewHotColdVictimFinder(numWays int) *HotColdVictimFinder {
	if numWays <= 0 || numWays&(numWays-1) != 0 {
		panic(fmt.Sprintf("number of ways %d is not a power of two", numWays))
	}

	return &HotColdVictimFinder{
		numWays: numWays,
		depth:   bits.TrailingZeros(uint(numWays)),
		bits:    make([]uint8, numWays-1),
	}
}

// Touch points every node on the path to the way away from it.
func (e *HotColdVictimFinder) Touch(wayID int) {
	node := 0

	for level := 0; level < e.depth; level++ {
		goesRight := (wayID >> (e.depth - 1 - level)) & 1
		if goesRight == 0 {
			e.bits[node] = 1
			node = 2*node + 1
		} else {
			e.bits[node] = 0
			node = 2*node + 2
		}
	}
}

// FindVictim follows the bits from the root to a leaf, flipping every bit it
// passes, and returns the block of that leaf.
func (e *HotColdVictimFinder) FindVictim(set *Set) *Block {
	return &set.Blocks[e.nextVictimWay()]
}

func (e *HotColdVictimFinder) nextVictimWay() int {
	node := 0

	for level := 0; level < e.depth; level++ {
		if e.bits[node] == 0 {
			e.bits[node] = 1
			node = 2*node + 1
		} else {
			e.bits[node] = 0
			node = 2*node + 2
		}
	}

	return node - (e.numWays - 1)
}
