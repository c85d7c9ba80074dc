package npc

import (
	"github.com/rs/zerolog"

	"github.com/sarchlab/advertise/sim/timing"
)

// An Agent runs a plan over and over, one operator per tick.
type Agent struct {
	*timing.TickingComponent

	blackboard *Blackboard
	plan       []Operator
	step       int
	until      timing.VTimeInSec
	logger     zerolog.Logger

	numFinished uint64
	numFailed   uint64
}

// NewAgent creates an Agent for the owner. It ticks at freq until the end
// time once started.
func NewAgent(
	owner string,
	engine timing.EventScheduler,
	freq timing.Freq,
	plan []Operator,
	until timing.VTimeInSec,
	logger zerolog.Logger,
) *Agent {
	if len(plan) == 0 {
		panic("plan is empty")
	}

	a := &Agent{
		blackboard: NewBlackboard(owner),
		plan:       plan,
		until:      until,
		logger:     logger,
	}
	a.TickingComponent = timing.NewTickingComponent(owner, engine, freq, a)

	return a
}

// Start schedules the first tick.
func (a *Agent) Start() {
	a.TickNow()
}

// Blackboard returns the working memory of the agent.
func (a *Agent) Blackboard() *Blackboard {
	return a.blackboard
}

// NumFinished returns how many operator updates finished.
func (a *Agent) NumFinished() uint64 {
	return a.numFinished
}

// NumFailed returns how many operator updates failed.
func (a *Agent) NumFailed() uint64 {
	return a.numFailed
}

// Tick updates the current operator. A finished or failed operator moves the
// plan on to the next one, wrapping around at the end.
func (a *Agent) Tick() bool {
	now := a.Now()

	status, err := a.plan[a.step].Update(a.blackboard, now)

	switch status {
	case StatusContinuing:
	case StatusFailed:
		a.numFailed++
		a.logger.Warn().
			Err(err).
			Float64("time", now).
			Str("owner", a.Name()).
			Msg("plan step failed")
		a.step = (a.step + 1) % len(a.plan)
	default:
		a.numFinished++
		a.step = (a.step + 1) % len(a.plan)
	}

	return a.Freq.NextTick(now) <= a.until
}
