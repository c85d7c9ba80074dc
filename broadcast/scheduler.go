package broadcast

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sarchlab/advertise/random"
	"github.com/sarchlab/advertise/sim/hooking"
	"github.com/sarchlab/advertise/sim/timing"
)

// DefaultMaxCheckPeriod bounds how long the Scheduler may skip scanning, in
// seconds.
const DefaultMaxCheckPeriod timing.VTimeInSec = 15

// RecordState is a point-in-time copy of a Record.
type RecordState struct {
	Owner        string            `json:"owner"`
	Voicelines   string            `json:"voicelines"`
	MinimumWait  int               `json:"minimum_wait"`
	MaximumWait  int               `json:"maximum_wait"`
	Prewarm      bool              `json:"prewarm"`
	SuppressLog  bool              `json:"suppress_log"`
	NextFireTime timing.VTimeInSec `json:"next_fire_time"`
}

// A Scheduler decides when each emitter speaks.
//
// All methods are safe for concurrent use. Hooks run while the Scheduler is
// locked, so they must not call back into it. Detach is the exception: it
// does not take the Scheduler lock, and a hook may detach any owner.
type Scheduler struct {
	*hooking.HookableBase

	lock           sync.Mutex
	registry       *Registry
	action         *Action
	rng            random.Source
	clock          timing.TimeTeller
	logger         zerolog.Logger
	maxCheckPeriod timing.VTimeInSec
	nextWakeTime   timing.VTimeInSec
}

// Registry returns the records the Scheduler scans.
func (s *Scheduler) Registry() *Registry {
	return s.registry
}

// MaxCheckPeriod returns the longest time between two scans.
func (s *Scheduler) MaxCheckPeriod() timing.VTimeInSec {
	return s.maxCheckPeriod
}

// NextWakeTime returns the time before which OnTick does nothing.
func (s *Scheduler) NextWakeTime() timing.VTimeInSec {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.nextWakeTime
}

// Attach registers the record and arms it according to its Prewarm flag.
func (s *Scheduler) Attach(rec *Record) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.registry.Add(rec); err != nil {
		return fmt.Errorf("attach %s: %w", rec.Owner, err)
	}

	s.arm(s.clock.Now(), rec, rec.Prewarm)

	return nil
}

// Detach removes the record of the owner. It can be called from a hook. A
// record detached in the middle of a scan is not visited again.
func (s *Scheduler) Detach(owner string) bool {
	return s.registry.Remove(owner)
}

// OnRecordCreated arms a freshly created record. With prewarm, the first fire
// may come any time from now on; without it, at least MinimumWait seconds
// pass.
func (s *Scheduler) OnRecordCreated(rec *Record, prewarm bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.arm(s.clock.Now(), rec, prewarm)
}

// OnTick fires every overdue emitter and re-arms it. Until the cached wake
// time passes, OnTick returns immediately. The returned error joins the
// content problems of all emitters that failed during this scan; those
// emitters were re-armed as well.
func (s *Scheduler) OnTick(now timing.VTimeInSec) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if now < s.nextWakeTime {
		return nil
	}

	s.nextWakeTime = now + s.maxCheckPeriod

	var errs []error

	s.registry.ForEachLive(func(owner string, rec *Record) {
		if now > rec.NextFireTime {
			if err := s.fire(now, owner, rec); err != nil {
				errs = append(errs, err)
			}

			s.arm(now, rec, false)

			return
		}

		s.nextWakeTime = math.Min(s.nextWakeTime, rec.NextFireTime)
	})

	return errors.Join(errs...)
}

// SayAdvertisement makes the owner speak right away, regardless of its
// timer. The record keeps its scheduled fire time.
func (s *Scheduler) SayAdvertisement(owner string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	rec, found := s.registry.Get(owner)
	if !found {
		return fmt.Errorf("say %s: %w", owner, ErrEmitterNotFound)
	}

	return s.fire(s.clock.Now(), owner, rec)
}

// Lookup copies the state of the record of the owner.
func (s *Scheduler) Lookup(owner string) (RecordState, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	rec, found := s.registry.Get(owner)
	if !found {
		return RecordState{}, false
	}

	return stateOf(rec), true
}

// Snapshot copies the state of all live records in registry order.
func (s *Scheduler) Snapshot() []RecordState {
	s.lock.Lock()
	defer s.lock.Unlock()

	states := make([]RecordState, 0, s.registry.Len())

	s.registry.ForEachLive(func(_ string, rec *Record) {
		states = append(states, stateOf(rec))
	})

	return states
}

func stateOf(rec *Record) RecordState {
	return RecordState{
		Owner:        rec.Owner,
		Voicelines:   rec.Voicelines,
		MinimumWait:  rec.MinimumWait,
		MaximumWait:  rec.MaximumWait,
		Prewarm:      rec.Prewarm,
		SuppressLog:  rec.SuppressLog,
		NextFireTime: rec.NextFireTime,
	}
}

func (s *Scheduler) arm(
	now timing.VTimeInSec,
	rec *Record,
	prewarm bool,
) {
	rec.NextFireTime = now +
		NextInterval(s.rng, rec.MinimumWait, rec.MaximumWait, prewarm)
	s.nextWakeTime = math.Min(s.nextWakeTime, rec.NextFireTime)

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosRearm,
		Item: Rearm{
			Owner:        rec.Owner,
			Time:         now,
			NextFireTime: rec.NextFireTime,
			Prewarm:      prewarm,
		},
	})
}

func (s *Scheduler) fire(
	now timing.VTimeInSec,
	owner string,
	rec *Record,
) error {
	attempt := &AttemptBroadcast{Broadcaster: owner, Time: now}
	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosBeforeBroadcast,
		Item:   attempt,
	})

	if attempt.Cancelled {
		s.logger.Debug().
			Float64("time", now).
			Str("owner", owner).
			Msg("broadcast cancelled")

		s.InvokeHook(hooking.HookCtx{
			Domain: s,
			Pos:    HookPosBroadcastCancelled,
			Item:   attempt,
		})

		return nil
	}

	b, err := s.action.Perform(now, owner, rec.Voicelines, rec.SuppressLog)
	if err != nil {
		s.logger.Error().
			Err(err).
			Float64("time", now).
			Str("owner", owner).
			Str("voicelines", rec.Voicelines).
			Msg("broadcast content does not resolve")

		s.InvokeHook(hooking.HookCtx{
			Domain: s,
			Pos:    HookPosBroadcastFailed,
			Item: FailedBroadcast{
				Owner:     owner,
				Time:      now,
				Reference: rec.Voicelines,
				Err:       err,
			},
		})

		return fmt.Errorf("broadcast %s: %w", owner, err)
	}

	if !rec.SuppressLog {
		s.logger.Debug().
			Float64("time", now).
			Str("owner", owner).
			Str("text", b.TextKey).
			Msg("broadcast")
	}

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosAfterBroadcast,
		Item:   b,
	})

	return nil
}
