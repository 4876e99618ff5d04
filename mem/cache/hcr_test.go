package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FullyAssociativeHCR", func() {
	It("should keep the most recently used line of two ways", func() {
		// A B A B fill both ways and hit. C replaces A, the colder way, so
		// the last B still hits.
		m := NewModel(loads(0x20, 0x40, 0x20, 0x40, 0x60, 0x40))

		r, err := m.FullyAssociativeHCR(2)

		Expect(err).NotTo(HaveOccurred())
		Expect(r.Hits).To(Equal(3))
		Expect(r.Param).To(Equal(2))
	})

	It("should evict the line the tree points at", func() {
		// After C replaced A, the tree points back at C's way, so A misses
		// and B stays.
		m := NewModel(loads(0x20, 0x40, 0x20, 0x40, 0x60, 0x40, 0x20, 0x40))

		r, _ := m.FullyAssociativeHCR(2)

		Expect(r.Hits).To(Equal(4))
	})

	It("should treat an untouched way as holding line 0", func() {
		m := NewModel(loads(0x0))

		r, _ := m.FullyAssociativeHCR(512)

		Expect(r.Hits).To(Equal(1))
	})

	It("should hold a working set that fits when it is streamed in once", func() {
		m := NewModel(repeat(loads(0x20, 0x40, 0x60, 0x80), 5))

		r, _ := m.FullyAssociativeHCR(4)

		Expect(r.Hits).To(Equal(16))
	})

	It("should use the whole line address as the tag", func() {
		// Same line, different offsets.
		m := NewModel(loads(0x1000, 0x101f))

		r, _ := m.FullyAssociativeHCR(8)

		Expect(r.Hits).To(Equal(1))
	})

	It("should reject a size that is not a power of two", func() {
		_, err := NewModel(loads(0)).FullyAssociativeHCR(6)

		Expect(err).To(MatchError(ErrInvalidConfiguration))
	})
})
