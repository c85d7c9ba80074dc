package broadcast

import (
	"sync"

	"github.com/sarchlab/advertise/sim/hooking"
	"github.com/sarchlab/advertise/sim/timing"
)

// Hook positions raised by the Scheduler.
var (
	// HookPosBeforeBroadcast fires before a due emitter runs its action. The
	// Item is an *AttemptBroadcast that hooks may cancel.
	HookPosBeforeBroadcast = &hooking.HookPos{Name: "BeforeBroadcast"}

	// HookPosAfterBroadcast fires after the presenter received the
	// announcement. The Item is a Broadcast.
	HookPosAfterBroadcast = &hooking.HookPos{Name: "AfterBroadcast"}

	// HookPosBroadcastCancelled fires when a hook cancelled an attempt. The
	// Item is the *AttemptBroadcast.
	HookPosBroadcastCancelled = &hooking.HookPos{Name: "BroadcastCancelled"}

	// HookPosBroadcastFailed fires when the catalog could not resolve the
	// content. The Item is a FailedBroadcast.
	HookPosBroadcastFailed = &hooking.HookPos{Name: "BroadcastFailed"}

	// HookPosRearm fires whenever a record receives a new fire time. The Item
	// is a Rearm.
	HookPosRearm = &hooking.HookPos{Name: "Rearm"}
)

// AttemptBroadcast is the cancellable notice that an emitter is about to say
// something.
type AttemptBroadcast struct {
	Broadcaster string
	Time        timing.VTimeInSec
	Cancelled   bool
}

// Broadcast describes a voiceline that was announced.
type Broadcast struct {
	Owner     string
	Time      timing.VTimeInSec
	Reference string
	TextKey   string
	Audio     string
}

// FailedBroadcast describes an emitter whose content did not resolve.
type FailedBroadcast struct {
	Owner     string
	Time      timing.VTimeInSec
	Reference string
	Err       error
}

// Rearm describes a record that received a new fire time.
type Rearm struct {
	Owner        string
	Time         timing.VTimeInSec
	NextFireTime timing.VTimeInSec
	Prewarm      bool
}

// VetoHook cancels attempts whose broadcaster matches a predicate.
type VetoHook struct {
	veto func(owner string) bool
}

// NewVetoHook creates a VetoHook. The predicate runs on the scheduling
// goroutine and must not call back into the Scheduler.
func NewVetoHook(veto func(owner string) bool) *VetoHook {
	return &VetoHook{veto: veto}
}

// Func cancels the attempt if the predicate says so.
func (h *VetoHook) Func(ctx hooking.HookCtx) {
	if ctx.Pos != HookPosBeforeBroadcast {
		return
	}

	attempt, ok := ctx.Item.(*AttemptBroadcast)
	if !ok || attempt.Cancelled {
		return
	}

	if h.veto(attempt.Broadcaster) {
		attempt.Cancelled = true
	}
}

// PowerSwitch is a VetoHook that silences unpowered emitters. Emitters are
// powered unless switched off.
type PowerSwitch struct {
	*VetoHook

	lock      sync.RWMutex
	unpowered map[string]bool
}

// NewPowerSwitch creates a PowerSwitch with every emitter powered.
func NewPowerSwitch() *PowerSwitch {
	s := &PowerSwitch{
		unpowered: make(map[string]bool),
	}
	s.VetoHook = NewVetoHook(func(owner string) bool {
		return !s.IsPowered(owner)
	})

	return s
}

// SetPowered turns the power of an emitter on or off.
func (s *PowerSwitch) SetPowered(owner string, powered bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if powered {
		delete(s.unpowered, owner)
		return
	}

	s.unpowered[owner] = true
}

// IsPowered tells if the emitter currently has power.
func (s *PowerSwitch) IsPowered(owner string) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return !s.unpowered[owner]
}
