package broadcast

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/sarchlab/advertise/catalog"
	"github.com/sarchlab/advertise/random"
	"github.com/sarchlab/advertise/sim/hooking"
	"github.com/sarchlab/advertise/sim/timing"
)

// Builder builds Schedulers.
type Builder struct {
	clock          timing.TimeTeller
	catalog        catalog.Catalog
	presenter      Presenter
	rng            random.Source
	registry       *Registry
	logger         zerolog.Logger
	maxCheckPeriod timing.VTimeInSec
}

// MakeBuilder creates a Builder with a 15 second check period, a source
// seeded with zero and logging disabled.
func MakeBuilder() Builder {
	return Builder{
		maxCheckPeriod: DefaultMaxCheckPeriod,
		logger:         zerolog.Nop(),
	}
}

// WithClock sets where the Scheduler reads the current time from when a
// record is armed outside a tick.
func (b Builder) WithClock(clock timing.TimeTeller) Builder {
	b.clock = clock
	return b
}

// WithCatalog sets the content source.
func (b Builder) WithCatalog(c catalog.Catalog) Builder {
	b.catalog = c
	return b
}

// WithPresenter sets where announcements go.
func (b Builder) WithPresenter(p Presenter) Builder {
	b.presenter = p
	return b
}

// WithRandomSource sets the source used for jitter and voiceline selection.
func (b Builder) WithRandomSource(rng random.Source) Builder {
	b.rng = rng
	return b
}

// WithRegistry lets the Scheduler scan an existing Registry.
func (b Builder) WithRegistry(r *Registry) Builder {
	b.registry = r
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(logger zerolog.Logger) Builder {
	b.logger = logger
	return b
}

// WithMaxCheckPeriod sets the longest time between two scans.
func (b Builder) WithMaxCheckPeriod(period timing.VTimeInSec) Builder {
	b.maxCheckPeriod = period
	return b
}

// Build creates the Scheduler.
func (b Builder) Build() *Scheduler {
	b.parametersMustBeValid()

	rng := b.rng
	if rng == nil {
		rng = random.New(0)
	}

	registry := b.registry
	if registry == nil {
		registry = NewRegistry()
	}

	return &Scheduler{
		HookableBase:   hooking.NewHookableBase(),
		registry:       registry,
		action:         NewAction(b.catalog, b.presenter, rng),
		rng:            rng,
		clock:          b.clock,
		logger:         b.logger,
		maxCheckPeriod: b.maxCheckPeriod,
		nextWakeTime:   math.Inf(-1),
	}
}

func (b Builder) parametersMustBeValid() {
	if b.clock == nil {
		panic("clock is not set")
	}

	if b.catalog == nil {
		panic("catalog is not set")
	}

	if b.presenter == nil {
		panic("presenter is not set")
	}

	if b.maxCheckPeriod <= 0 {
		panic("max check period must be positive")
	}
}
