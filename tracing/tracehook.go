package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/advertise/broadcast"
	"github.com/sarchlab/advertise/sim/hooking"
)

// CollectTrace lets the tracer collect traces from a domain. Attaching the
// same tracer twice panics.
func CollectTrace(domain hooking.Hookable, tracer Tracer) {
	for _, hook := range domain.Hooks() {
		hook, ok := hook.(*traceHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf("domain already has tracer %s",
				reflect.TypeOf(tracer)))
		}
	}

	domain.AcceptHook(&traceHook{t: tracer})
}

type traceHook struct {
	t Tracer
}

// Func forwards the hook to the tracer.
func (h *traceHook) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case broadcast.HookPosAfterBroadcast:
		h.t.Broadcasted(ctx.Item.(broadcast.Broadcast))
	case broadcast.HookPosBroadcastCancelled:
		h.t.Cancelled(*ctx.Item.(*broadcast.AttemptBroadcast))
	case broadcast.HookPosBroadcastFailed:
		h.t.Failed(ctx.Item.(broadcast.FailedBroadcast))
	case broadcast.HookPosRearm:
		h.t.Rearmed(ctx.Item.(broadcast.Rearm))
	}
}
