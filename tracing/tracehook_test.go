package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/advertise/broadcast"
	"github.com/sarchlab/advertise/sim/hooking"
)

var _ = Describe("CollectTrace", func() {
	var (
		domain *hooking.HookableBase
		tracer *CountTracer
	)

	BeforeEach(func() {
		domain = hooking.NewHookableBase()
		tracer = NewCountTracer()
		CollectTrace(domain, tracer)
	})

	It("should not attach the same tracer twice", func() {
		Expect(func() { CollectTrace(domain, tracer) }).To(Panic())
	})

	It("should forward hooks to the tracer", func() {
		domain.InvokeHook(hooking.HookCtx{
			Pos:  broadcast.HookPosAfterBroadcast,
			Item: broadcast.Broadcast{Owner: "A", Time: 1},
		})
		domain.InvokeHook(hooking.HookCtx{
			Pos:  broadcast.HookPosBroadcastCancelled,
			Item: &broadcast.AttemptBroadcast{Broadcaster: "A", Cancelled: true},
		})
		domain.InvokeHook(hooking.HookCtx{
			Pos:  broadcast.HookPosBeforeBroadcast,
			Item: &broadcast.AttemptBroadcast{Broadcaster: "A"},
		})

		counts := tracer.Counts()
		Expect(counts).To(HaveLen(1))
		Expect(counts[0].Broadcasts).To(Equal(uint64(1)))
		Expect(counts[0].Cancelled).To(Equal(uint64(1)))
	})
})
