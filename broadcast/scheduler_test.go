package broadcast

import (
	"errors"
	"fmt"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/advertise/catalog"
	"github.com/sarchlab/advertise/random"
	"github.com/sarchlab/advertise/sim/hooking"
)

var _ = Describe("Scheduler", func() {
	var (
		mockCtrl  *gomock.Controller
		cat       *MockCatalog
		presenter *MockPresenter
		clock     *manualClock
		src       *scriptedSource
		scheduler *Scheduler
	)

	expectBroadcast := func(owner string, now float64) {
		cat.EXPECT().Pick("Ads", src).Return("AdvertCola", nil)
		cat.EXPECT().Resolve("AdvertCola").Return(catalog.Voiceline{
			ID:      "AdvertCola",
			Message: "advertisement-cola-1",
			Audio:   "/Audio/cola.ogg",
		}, nil)
		presenter.EXPECT().Announce(Announcement{
			Owner:   owner,
			Time:    now,
			TextKey: "advertisement-cola-1",
			Audio:   "/Audio/cola.ogg",
		})
	}

	attach := func(owner string, minWait, maxWait int, prewarm bool) *Record {
		b := MakeRecordBuilder().
			WithVoicelines("Ads").
			WithWaitRange(minWait, maxWait)
		if !prewarm {
			b = b.WithoutPrewarm()
		}

		rec := b.Build(owner)
		Expect(scheduler.Attach(rec)).To(Succeed())

		return rec
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		cat = NewMockCatalog(mockCtrl)
		presenter = NewMockPresenter(mockCtrl)
		clock = &manualClock{}
		src = &scriptedSource{}

		scheduler = MakeBuilder().
			WithClock(clock).
			WithCatalog(cat).
			WithPresenter(presenter).
			WithRandomSource(src).
			Build()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should panic when built without a presenter", func() {
		Expect(func() {
			MakeBuilder().WithClock(clock).WithCatalog(cat).Build()
		}).To(Panic())
	})

	It("should start with a wake time in the past", func() {
		Expect(scheduler.NextWakeTime()).To(Equal(math.Inf(-1)))
	})

	It("should wake after the max check period when empty", func() {
		Expect(scheduler.OnTick(0)).To(Succeed())
		Expect(scheduler.NextWakeTime()).To(Equal(15.0))

		Expect(scheduler.OnTick(14.9)).To(Succeed())
		Expect(scheduler.NextWakeTime()).To(Equal(15.0))

		Expect(scheduler.OnTick(15)).To(Succeed())
		Expect(scheduler.NextWakeTime()).To(Equal(30.0))
	})

	It("should not look at records before the wake time", func() {
		src.ints = []int{100}
		rec := attach("A", 100, 200, false)
		Expect(rec.NextFireTime).To(Equal(100.0))

		Expect(scheduler.OnTick(1)).To(Succeed())
		Expect(scheduler.NextWakeTime()).To(Equal(16.0))

		// Overdue, but hidden behind the cached wake time.
		rec.NextFireTime = 0
		Expect(scheduler.OnTick(10)).To(Succeed())
		Expect(rec.NextFireTime).To(Equal(0.0))
	})

	It("should fire strictly after the fire time", func() {
		src.ints = []int{100, 150}
		rec := attach("A", 100, 200, false)

		Expect(scheduler.OnTick(100)).To(Succeed())
		Expect(rec.NextFireTime).To(Equal(100.0))
		Expect(scheduler.NextWakeTime()).To(Equal(100.0))

		expectBroadcast("A", 100.5)
		Expect(scheduler.OnTick(100.5)).To(Succeed())
		Expect(rec.NextFireTime).To(Equal(250.5))
		Expect(scheduler.NextWakeTime()).To(Equal(115.5))
	})

	It("should not broadcast again when ticked twice at the same time", func() {
		rec := attach("A", 5, 5, false)
		Expect(rec.NextFireTime).To(Equal(5.0))

		expectBroadcast("A", 5.5)
		Expect(scheduler.OnTick(5.5)).To(Succeed())
		Expect(rec.NextFireTime).To(Equal(10.5))

		Expect(scheduler.OnTick(5.5)).To(Succeed())
		Expect(scheduler.OnTick(5.25)).To(Succeed())
		Expect(rec.NextFireTime).To(Equal(10.5))

		// Scans at the wake time, but the record is not overdue yet.
		Expect(scheduler.OnTick(10.5)).To(Succeed())
		Expect(scheduler.OnTick(10.5)).To(Succeed())
		Expect(rec.NextFireTime).To(Equal(10.5))
		Expect(scheduler.NextWakeTime()).To(Equal(10.5))
	})

	It("should re-arm with an exact interval when the window is empty", func() {
		rec := attach("A", 5, 5, false)
		rec.NextFireTime = 99

		expectBroadcast("A", 100)
		Expect(scheduler.OnTick(100)).To(Succeed())

		Expect(rec.NextFireTime).To(Equal(105.0))
		Expect(scheduler.NextWakeTime()).To(Equal(105.0))
	})

	It("should arm new records with prewarm", func() {
		clock.now = 50
		rec := MakeRecordBuilder().WithWaitRange(480, 600).Build("A")

		scheduler.OnRecordCreated(rec, true)
		Expect(src.ranges).To(Equal([][2]int{{0, 600}}))
		Expect(rec.NextFireTime).To(Equal(50.0))

		scheduler.OnRecordCreated(rec, false)
		Expect(src.ranges[1]).To(Equal([2]int{480, 600}))
		Expect(rec.NextFireTime).To(Equal(530.0))
	})

	It("should fold new records into the wake time", func() {
		Expect(scheduler.OnTick(0)).To(Succeed())
		Expect(scheduler.NextWakeTime()).To(Equal(15.0))

		clock.now = 2
		src.ints = []int{3}
		attach("A", 3, 10, false)

		Expect(scheduler.NextWakeTime()).To(Equal(5.0))
	})

	It("should re-arm due records with a jitter each time", func() {
		src.ints = []int{480, 510, 590}
		a := attach("A", 480, 600, false)
		b := attach("B", 480, 600, false)
		a.NextFireTime = 0
		b.NextFireTime = 0

		expectBroadcast("A", 1)
		expectBroadcast("B", 1)
		Expect(scheduler.OnTick(1)).To(Succeed())

		Expect(a.NextFireTime).To(BeNumerically(">", 1))
		Expect(b.NextFireTime).To(BeNumerically(">", 1))
		Expect(a.NextFireTime).NotTo(Equal(b.NextFireTime))
		Expect(src.ranges[2:]).To(Equal([][2]int{{480, 600}, {480, 600}}))
	})

	It("should not broadcast cancelled attempts", func() {
		rec := attach("A", 5, 5, false)
		rec.NextFireTime = 0

		scheduler.AcceptHook(NewVetoHook(func(owner string) bool {
			return owner == "A"
		}))

		Expect(scheduler.OnTick(10)).To(Succeed())
		Expect(rec.NextFireTime).To(Equal(15.0))
	})

	It("should keep going when content does not resolve", func() {
		a := attach("A", 5, 5, false)
		b := attach("B", 5, 5, false)
		b.Voicelines = "Broken"
		c := attach("C", 5, 5, false)
		for _, rec := range []*Record{a, b, c} {
			rec.NextFireTime = 0
		}

		lookupErr := &catalog.LookupError{
			ID:  "Broken",
			Err: catalog.ErrUnknownReference,
		}

		expectBroadcast("A", 1)
		cat.EXPECT().Pick("Broken", src).Return("", lookupErr)
		expectBroadcast("C", 1)

		err := scheduler.OnTick(1)

		Expect(errors.Is(err, catalog.ErrUnknownReference)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("broadcast B"))
		for _, rec := range []*Record{a, b, c} {
			Expect(rec.NextFireTime).To(Equal(6.0))
		}
	})

	It("should skip records detached during a scan", func() {
		a := attach("A", 5, 5, false)
		b := attach("B", 5, 5, false)
		a.NextFireTime = 0
		b.NextFireTime = 0

		scheduler.AcceptHook(NewVetoHook(func(owner string) bool {
			scheduler.Detach("B")
			return true
		}))

		Expect(scheduler.OnTick(1)).To(Succeed())
		Expect(a.NextFireTime).To(Equal(6.0))
		Expect(b.NextFireTime).To(Equal(0.0))
		Expect(scheduler.Snapshot()).To(HaveLen(1))
	})

	It("should raise hooks in order", func() {
		hook := &recordingHook{}
		scheduler.AcceptHook(hook)

		rec := attach("A", 5, 5, false)
		rec.NextFireTime = 0

		expectBroadcast("A", 1)
		Expect(scheduler.OnTick(1)).To(Succeed())

		Expect(hook.positions()).To(Equal([]string{
			"Rearm", "BeforeBroadcast", "AfterBroadcast", "Rearm",
		}))
		Expect(hook.ctxs[2].item).To(Equal(Broadcast{
			Owner:     "A",
			Time:      1,
			Reference: "Ads",
			TextKey:   "advertisement-cola-1",
			Audio:     "/Audio/cola.ogg",
		}))
		Expect(hook.ctxs[3].item).To(Equal(Rearm{
			Owner:        "A",
			Time:         1,
			NextFireTime: 6,
		}))
	})

	It("should raise a cancelled hook", func() {
		hook := &recordingHook{}
		scheduler.AcceptHook(NewVetoHook(func(string) bool { return true }))
		scheduler.AcceptHook(hook)

		rec := attach("A", 5, 5, false)
		rec.NextFireTime = 0
		Expect(scheduler.OnTick(1)).To(Succeed())

		Expect(hook.positions()).To(Equal([]string{
			"Rearm", "BeforeBroadcast", "BroadcastCancelled", "Rearm",
		}))
	})

	It("should reject a duplicated emitter", func() {
		attach("A", 5, 5, false)

		err := scheduler.Attach(MakeRecordBuilder().Build("A"))

		Expect(err).To(MatchError(ErrDuplicatedEmitter))
	})

	Context("when saying an advertisement on demand", func() {
		It("should fail for unknown emitters", func() {
			err := scheduler.SayAdvertisement("Nobody")

			Expect(err).To(MatchError(ErrEmitterNotFound))
		})

		It("should broadcast without re-arming", func() {
			rec := attach("A", 5, 5, false)
			clock.now = 3

			expectBroadcast("A", 3)
			Expect(scheduler.SayAdvertisement("A")).To(Succeed())
			Expect(rec.NextFireTime).To(Equal(5.0))
		})

		It("should respect vetoes", func() {
			attach("A", 5, 5, false)
			scheduler.AcceptHook(NewVetoHook(func(string) bool { return true }))

			Expect(scheduler.SayAdvertisement("A")).To(Succeed())
		})
	})

	It("should snapshot records", func() {
		src.ints = []int{7}
		attach("A", 5, 10, false)

		Expect(scheduler.Snapshot()).To(Equal([]RecordState{{
			Owner:        "A",
			Voicelines:   "Ads",
			MinimumWait:  5,
			MaximumWait:  10,
			NextFireTime: 7,
		}}))
	})
})

var _ = Describe("PowerSwitch", func() {
	It("should cancel attempts of unpowered emitters", func() {
		power := NewPowerSwitch()
		power.SetPowered("A", false)

		a := &AttemptBroadcast{Broadcaster: "A"}
		b := &AttemptBroadcast{Broadcaster: "B"}
		power.Func(hooking.HookCtx{Pos: HookPosBeforeBroadcast, Item: a})
		power.Func(hooking.HookCtx{Pos: HookPosBeforeBroadcast, Item: b})

		Expect(a.Cancelled).To(BeTrue())
		Expect(b.Cancelled).To(BeFalse())

		power.SetPowered("A", true)
		a.Cancelled = false
		power.Func(hooking.HookCtx{Pos: HookPosBeforeBroadcast, Item: a})
		Expect(a.Cancelled).To(BeFalse())
	})

	It("should ignore other positions", func() {
		power := NewPowerSwitch()
		power.SetPowered("A", false)

		a := &AttemptBroadcast{Broadcaster: "A"}
		power.Func(hooking.HookCtx{Pos: HookPosRearm, Item: a})

		Expect(a.Cancelled).To(BeFalse())
	})
})

var _ = Describe("Scheduler with a seeded random source", func() {
	It("should spread emitters created at the same time", func() {
		mockCtrl := gomock.NewController(GinkgoT())
		defer mockCtrl.Finish()

		clock := &manualClock{now: 30}
		scheduler := MakeBuilder().
			WithClock(clock).
			WithCatalog(NewMockCatalog(mockCtrl)).
			WithPresenter(NewMockPresenter(mockCtrl)).
			WithRandomSource(random.New(42)).
			Build()

		const numEmitters = 50

		fireTimes := make([]float64, 0, numEmitters)
		for i := 0; i < numEmitters; i++ {
			rec := MakeRecordBuilder().
				WithVoicelines("Ads").
				Build(fmt.Sprintf("VendingMachine%d", i))
			Expect(scheduler.Attach(rec)).To(Succeed())

			Expect(rec.NextFireTime).To(BeNumerically(">=", 30))
			Expect(rec.NextFireTime).To(BeNumerically("<", 630))
			fireTimes = append(fireTimes, rec.NextFireTime)
		}

		mean := 0.0
		for _, t := range fireTimes {
			mean += t
		}
		mean /= numEmitters

		variance := 0.0
		for _, t := range fireTimes {
			variance += (t - mean) * (t - mean)
		}
		variance /= numEmitters

		Expect(variance).To(BeNumerically(">", 0))
	})
})
