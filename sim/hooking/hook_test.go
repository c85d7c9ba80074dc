package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type flagItem struct {
	flagged bool
	seen    int
}

type flaggingHook struct {
	flag bool
}

func (h *flaggingHook) Func(ctx HookCtx) {
	item := ctx.Item.(*flagItem)
	item.seen++

	if h.flag {
		item.flagged = true
	}
}

var _ = Describe("HookableBase", func() {
	var (
		base *HookableBase
	)

	BeforeEach(func() {
		base = NewHookableBase()
	})

	It("should start without hooks", func() {
		Expect(base.NumHooks()).To(Equal(0))
		Expect(base.Hooks()).To(BeEmpty())
	})

	It("should register hooks", func() {
		h1 := &flaggingHook{}
		h2 := &flaggingHook{}

		base.AcceptHook(h1)
		base.AcceptHook(h2)

		Expect(base.NumHooks()).To(Equal(2))
		Expect(base.Hooks()).To(Equal([]Hook{h1, h2}))
	})

	It("should panic on duplicated hooks", func() {
		h := &flaggingHook{}
		base.AcceptHook(h)

		Expect(func() { base.AcceptHook(h) }).To(Panic())
	})

	It("should run every hook before returning", func() {
		base.AcceptHook(&flaggingHook{flag: true})
		base.AcceptHook(&flaggingHook{})
		base.AcceptHook(&flaggingHook{})

		item := &flagItem{}
		base.InvokeHook(HookCtx{Domain: base, Item: item})

		Expect(item.seen).To(Equal(3))
		Expect(item.flagged).To(BeTrue())
	})
})
