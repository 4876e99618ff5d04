package tagging

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Tags", func() {
	var (
		tags TagArray
	)

	BeforeEach(func() {
		tags = NewTagArray(16, 4)
	})

	It("should report its geometry", func() {
		Expect(tags.NumSets()).To(Equal(16))
		Expect(tags.NumWays()).To(Equal(4))
	})

	It("should start with invalid blocks that know their position", func() {
		set := tags.GetSet(3)

		Expect(set.Blocks).To(HaveLen(4))
		for i, b := range set.Blocks {
			Expect(b.IsValid).To(BeFalse())
			Expect(b.SetID).To(Equal(3))
			Expect(b.WayID).To(Equal(i))
		}
	})

	It("should lookup", func() {
		tags.Update(Block{SetID: 2, WayID: 1, Tag: 0x10, IsValid: true})

		block, ok := tags.Lookup(2, 0x10)

		Expect(ok).To(BeTrue())
		Expect(block.WayID).To(Equal(1))
	})

	It("should not find a tag in another set", func() {
		tags.Update(Block{SetID: 2, WayID: 1, Tag: 0x10, IsValid: true})

		_, ok := tags.Lookup(3, 0x10)

		Expect(ok).To(BeFalse())
	})

	It("should not find invalid blocks", func() {
		tags.Update(Block{SetID: 0, WayID: 0, Tag: 0x10})

		block, ok := tags.Lookup(0, 0x10)

		Expect(ok).To(BeFalse())
		Expect(block).To(BeZero())
	})

	It("should update the time when visiting a block", func() {
		tags.Update(Block{SetID: 1, WayID: 2, Tag: 5, IsValid: true})
		block, _ := tags.Lookup(1, 5)

		tags.Visit(block, 42)

		Expect(tags.GetSet(1).Blocks[2].LastUsed).To(Equal(int64(42)))
	})

	It("should keep sets independent", func() {
		tags.GetSet(0).Blocks[3].Tag = 9

		Expect(tags.GetSet(1).Blocks[0].Tag).To(BeZero())
	})

	It("should invalidate everything on reset", func() {
		tags.Update(Block{SetID: 1, WayID: 2, Tag: 5, IsValid: true})

		tags.Reset()

		_, ok := tags.Lookup(1, 5)
		Expect(ok).To(BeFalse())
	})
})
