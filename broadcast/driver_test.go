package broadcast

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/sarchlab/advertise/catalog"
	"github.com/sarchlab/advertise/random"
	"github.com/sarchlab/advertise/sim/timing"
)

type collectingPresenter struct {
	announcements []Announcement
}

func (p *collectingPresenter) Announce(a Announcement) {
	p.announcements = append(p.announcements, a)
}

var _ = Describe("Driver", func() {
	var (
		engine    *timing.SerialEngine
		presenter *collectingPresenter
		scheduler *Scheduler
		store     *catalog.Store
	)

	BeforeEach(func() {
		engine = timing.NewSerialEngine()
		presenter = &collectingPresenter{}

		store = catalog.NewStore()
		Expect(store.AddWeightedRandom(catalog.WeightedRandom{
			ID:      "Ads",
			Weights: map[string]float64{"AdvertCola": 1},
		})).To(Succeed())
		Expect(store.AddVoiceline(catalog.Voiceline{
			ID:      "AdvertCola",
			Message: "advertisement-cola-1",
		})).To(Succeed())

		scheduler = MakeBuilder().
			WithClock(engine).
			WithCatalog(store).
			WithPresenter(presenter).
			WithRandomSource(random.New(1)).
			Build()
	})

	It("should tick until the end time", func() {
		driver := NewDriver("Driver", engine, 1*timing.Hz, scheduler, 10,
			zerolog.Nop())
		driver.Start()

		Expect(engine.Run()).To(Succeed())
		Expect(driver.NumTicks()).To(Equal(uint64(11)))
		Expect(engine.Now()).To(Equal(10.0))
	})

	It("should fire emitters on the ticks after their fire time", func() {
		rec := MakeRecordBuilder().
			WithVoicelines("Ads").
			WithWaitRange(3, 3).
			WithoutPrewarm().
			Build("VendingMachine")
		Expect(scheduler.Attach(rec)).To(Succeed())

		driver := NewDriver("Driver", engine, 1*timing.Hz, scheduler, 10,
			zerolog.Nop())
		driver.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(presenter.announcements).To(HaveLen(2))
		Expect(presenter.announcements[0].Time).To(Equal(4.0))
		Expect(presenter.announcements[1].Time).To(Equal(8.0))
		Expect(rec.NextFireTime).To(Equal(11.0))
	})

	It("should keep ticking when content is broken", func() {
		rec := MakeRecordBuilder().
			WithVoicelines("Missing").
			WithWaitRange(1, 1).
			WithoutPrewarm().
			Build("VendingMachine")
		Expect(scheduler.Attach(rec)).To(Succeed())

		driver := NewDriver("Driver", engine, 1*timing.Hz, scheduler, 5,
			zerolog.Nop())
		driver.Start()

		Expect(engine.Run()).To(Succeed())
		Expect(driver.NumTicks()).To(Equal(uint64(6)))
		Expect(presenter.announcements).To(BeEmpty())
	})
})
