package broadcast

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RecordBuilder", func() {
	It("should use the defaults", func() {
		rec := MakeRecordBuilder().
			WithVoicelines("VendingMachineAds").
			Build("VendingMachine1")

		Expect(rec.Owner).To(Equal("VendingMachine1"))
		Expect(rec.MinimumWait).To(Equal(DefaultMinimumWait))
		Expect(rec.MaximumWait).To(Equal(DefaultMaximumWait))
		Expect(rec.Voicelines).To(Equal("VendingMachineAds"))
		Expect(rec.Prewarm).To(BeTrue())
		Expect(rec.SuppressLog).To(BeFalse())
	})

	It("should clamp the wait window", func() {
		rec := MakeRecordBuilder().
			WithWaitRange(-5, -10).
			Build("A")

		Expect(rec.MinimumWait).To(Equal(0))
		Expect(rec.MaximumWait).To(Equal(0))

		rec = MakeRecordBuilder().
			WithWaitRange(30, 20).
			WithoutPrewarm().
			WithSuppressLog().
			Build("B")

		Expect(rec.MinimumWait).To(Equal(30))
		Expect(rec.MaximumWait).To(Equal(30))
		Expect(rec.Prewarm).To(BeFalse())
		Expect(rec.SuppressLog).To(BeTrue())
	})
})
