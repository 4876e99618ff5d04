package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LFU", func() {
	// With 2 ways there are 256 sets, so multiples of 0x2000 share set 0 and
	// have tags 1, 2, 3...
	const (
		a = 0x2000
		b = 0x4000
		c = 0x6000
	)

	It("should keep the frequently used line where LRU drops it", func() {
		m := NewModel(loads(a, a, b, c, a))

		lfu, err := m.LFU(2)
		Expect(err).NotTo(HaveOccurred())
		Expect(lfu.Hits).To(Equal(2))

		lru, _ := m.SetAssociative(2)
		Expect(lru.Hits).To(Equal(1))
	})

	It("should start every way with a tag 0 placeholder", func() {
		m := NewModel(loads(0x0))

		r, _ := m.LFU(2)

		Expect(r.Hits).To(Equal(1))
	})

	It("should keep a hot line while cold lines fight over a way", func() {
		m := NewModel(loads(a, a, a, b, c, b, c, a))

		r, _ := m.LFU(2)

		// a a a: 2 hits. b fills the placeholder, then b and c keep
		// evicting each other at frequency 1 while a stays at 3.
		Expect(r.Hits).To(Equal(3))
	})

	It("should reject an invalid associativity", func() {
		_, err := NewModel(loads(0)).LFU(5)

		Expect(err).To(MatchError(ErrInvalidConfiguration))
	})
})
