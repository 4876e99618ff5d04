package tagging

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func makeSet(numWays int) *Set {
	tags := NewTagArray(1, numWays)
	return tags.GetSet(0)
}

var _ = Describe("LRUVictimFinder", func() {
	var (
		set    *Set
		finder *LRUVictimFinder
	)

	BeforeEach(func() {
		set = makeSet(4)
		finder = NewLRUVictimFinder()
	})

	It("should prefer the first invalid block", func() {
		set.Blocks[0].IsValid = true
		set.Blocks[0].LastUsed = -5

		victim := finder.FindVictim(set)

		Expect(victim.WayID).To(Equal(1))
	})

	It("should evict the least recently used block", func() {
		for i, t := range []int64{7, 3, 9, 4} {
			set.Blocks[i].IsValid = true
			set.Blocks[i].LastUsed = t
		}

		victim := finder.FindVictim(set)

		Expect(victim.WayID).To(Equal(1))
	})

	It("should break ties in way order", func() {
		for i := range set.Blocks {
			set.Blocks[i].IsValid = true
			set.Blocks[i].LastUsed = 2
		}

		Expect(finder.FindVictim(set).WayID).To(Equal(0))
	})

	It("should return a block that can be written in place", func() {
		victim := finder.FindVictim(set)
		victim.Tag = 11

		Expect(set.Blocks[0].Tag).To(Equal(uint64(11)))
	})
})

var _ = Describe("LFUVictimFinder", func() {
	var (
		set    *Set
		finder *LFUVictimFinder
	)

	BeforeEach(func() {
		set = makeSet(3)
		finder = NewLFUVictimFinder()
	})

	It("should start filled tags at one", func() {
		finder.OnFill(4)
		finder.OnFill(4)

		Expect(finder.Frequency(4)).To(Equal(1))
	})

	It("should count hits only for known tags", func() {
		finder.OnHit(0)
		finder.OnFill(4)
		finder.OnHit(4)

		Expect(finder.Frequency(0)).To(Equal(0))
		Expect(finder.Frequency(4)).To(Equal(2))
	})

	It("should evict the least frequently used tag", func() {
		for i, tag := range []uint64{1, 2, 3} {
			set.Blocks[i].Tag = tag
			finder.OnFill(tag)
		}
		finder.OnHit(1)
		finder.OnHit(3)

		Expect(finder.FindVictim(set).WayID).To(Equal(1))
	})

	It("should break ties in way order", func() {
		for i, tag := range []uint64{1, 2, 3} {
			set.Blocks[i].Tag = tag
			finder.OnFill(tag)
		}

		Expect(finder.FindVictim(set).WayID).To(Equal(0))
	})
})

var _ = Describe("HotColdVictimFinder", func() {
	It("should reject sizes that are not a power of two", func() {
		Expect(func() { NewHotColdVictimFinder(6) }).To(Panic())
	})

	It("should always pick the only way of a single-way tree", func() {
		set := makeSet(1)
		finder := NewHotColdVictimFinder(1)

		Expect(finder.FindVictim(set).WayID).To(Equal(0))
		finder.Touch(0)
		Expect(finder.FindVictim(set).WayID).To(Equal(0))
	})

	It("should visit every way before repeating on a cold tree", func() {
		set := makeSet(4)
		finder := NewHotColdVictimFinder(4)

		var ways []int
		for i := 0; i < 4; i++ {
			ways = append(ways, finder.FindVictim(set).WayID)
		}

		Expect(ways).To(Equal([]int{0, 2, 1, 3}))
	})

	It("should point away from a touched way", func() {
		set := makeSet(4)
		finder := NewHotColdVictimFinder(4)

		finder.Touch(0)

		Expect(finder.FindVictim(set).WayID).To(Equal(2))
	})

	It("should point to the other half after touching the right side", func() {
		set := makeSet(8)
		finder := NewHotColdVictimFinder(8)

		finder.Touch(5)

		Expect(finder.FindVictim(set).WayID).To(Equal(0))
		Expect(finder.bits).To(Equal([]uint8{1, 1, 1, 1, 0, 0, 0}))
	})
})
