package broadcast

import (
	"github.com/rs/zerolog"

	"github.com/sarchlab/advertise/sim/timing"
)

// A Driver ticks a Scheduler at a fixed frequency until an end time.
type Driver struct {
	*timing.TickingComponent

	scheduler *Scheduler
	until     timing.VTimeInSec
	logger    zerolog.Logger
	numTicks  uint64
}

// NewDriver creates a Driver. The driver does not tick until Start is called.
func NewDriver(
	name string,
	engine timing.EventScheduler,
	freq timing.Freq,
	scheduler *Scheduler,
	until timing.VTimeInSec,
	logger zerolog.Logger,
) *Driver {
	d := &Driver{
		scheduler: scheduler,
		until:     until,
		logger:    logger,
	}
	d.TickingComponent = timing.NewTickingComponent(name, engine, freq, d)

	return d
}

// Start schedules the first tick at the current time.
func (d *Driver) Start() {
	d.TickNow()
}

// NumTicks returns how many times the Driver has ticked.
func (d *Driver) NumTicks() uint64 {
	return d.numTicks
}

// Tick passes the current time to the Scheduler. It asks for another tick
// while the next one does not pass the end time.
func (d *Driver) Tick() bool {
	now := d.Now()
	d.numTicks++

	if err := d.scheduler.OnTick(now); err != nil {
		d.logger.Warn().
			Err(err).
			Float64("time", now).
			Str("driver", d.Name()).
			Msg("scan finished with broken content")
	}

	return d.Freq.NextTick(now) <= d.until
}
