package broadcast

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/advertise/random"
)

var _ = Describe("NextInterval", func() {
	It("should stay within the window without prewarm", func() {
		rng := random.New(7)

		for i := 0; i < 1000; i++ {
			d := NextInterval(rng, 480, 600, false)

			Expect(d).To(BeNumerically(">=", 480))
			Expect(d).To(BeNumerically("<", 600))
		}
	})

	It("should start from zero with prewarm", func() {
		rng := random.New(7)
		sawEarly := false

		for i := 0; i < 1000; i++ {
			d := NextInterval(rng, 480, 600, true)

			Expect(d).To(BeNumerically(">=", 0))
			Expect(d).To(BeNumerically("<", 600))

			if d < 480 {
				sawEarly = true
			}
		}

		Expect(sawEarly).To(BeTrue())
	})

	It("should wait at least one second without prewarm", func() {
		rng := random.New(7)

		for i := 0; i < 100; i++ {
			Expect(NextInterval(rng, 0, 0, false)).To(Equal(1.0))
		}
	})

	It("should return the bound when the window is empty", func() {
		rng := random.New(7)

		Expect(NextInterval(rng, 5, 5, false)).To(Equal(5.0))
		Expect(NextInterval(rng, 0, 0, true)).To(Equal(0.0))
	})

	It("should raise the upper bound to the lower bound", func() {
		src := &scriptedSource{}

		NextInterval(src, 10, 3, false)
		NextInterval(src, 10, 3, true)

		Expect(src.ranges).To(Equal([][2]int{{10, 10}, {0, 3}}))
	})
})
