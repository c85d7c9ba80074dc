package simulation

import (
	"github.com/sarchlab/advertise/config"
	"github.com/sarchlab/advertise/sim/timing"
)

// powerEvent switches the power of a set of emitters.
type powerEvent struct {
	*timing.EventBase

	owners  []string
	powered bool
}

func (s *Simulation) scheduleOutage(o config.Outage) {
	var owners []string

	for _, g := range s.scenario.Emitters {
		if g.Name == o.Group {
			owners = append(owners, g.Owners()...)
		}
	}

	h := &outageHandler{s: s}

	s.engine.Schedule(&powerEvent{
		EventBase: timing.NewEventBase(o.Start, h),
		owners:    owners,
		powered:   false,
	})
	s.engine.Schedule(&powerEvent{
		EventBase: timing.NewEventBase(o.End, h),
		owners:    owners,
		powered:   true,
	})
}

type outageHandler struct {
	s *Simulation
}

func (h *outageHandler) Handle(e timing.Event) error {
	evt := e.(*powerEvent)

	for _, owner := range evt.owners {
		h.s.power.SetPowered(owner, evt.powered)
	}

	h.s.logger.Info().
		Float64("time", evt.Time()).
		Int("emitters", len(evt.owners)).
		Bool("powered", evt.powered).
		Msg("power switched")

	return nil
}
