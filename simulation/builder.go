package simulation

import (
	"fmt"
	"math"

	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/sarchlab/advertise/broadcast"
	"github.com/sarchlab/advertise/catalog"
	"github.com/sarchlab/advertise/config"
	"github.com/sarchlab/advertise/datarecording"
	"github.com/sarchlab/advertise/monitoring"
	"github.com/sarchlab/advertise/npc"
	"github.com/sarchlab/advertise/presenting"
	"github.com/sarchlab/advertise/random"
	"github.com/sarchlab/advertise/sim/timing"
	"github.com/sarchlab/advertise/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	scenario       *config.Scenario
	catalog        *catalog.Store
	logger         zerolog.Logger
	presenters     []broadcast.Presenter
	monitorOff     bool
	outputFileName string
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		logger: zerolog.Nop(),
	}
}

// WithScenario sets the scenario to simulate.
func (b Builder) WithScenario(s *config.Scenario) Builder {
	b.scenario = s
	return b
}

// WithCatalog sets the content the emitters say.
func (b Builder) WithCatalog(c *catalog.Store) Builder {
	b.catalog = c
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(logger zerolog.Logger) Builder {
	b.logger = logger
	return b
}

// WithPresenter adds a presenter next to the log presenter.
func (b Builder) WithPresenter(p broadcast.Presenter) Builder {
	b.presenters = append(b.presenters[:len(b.presenters):len(b.presenters)], p)
	return b
}

// WithoutMonitoring disables the web monitor even if the scenario enables
// it.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOff = true
	return b
}

// WithOutputFileName sets the recording file, without extension. It
// overrides the recording of the scenario.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.scenario == nil {
		panic("scenario is not set")
	}

	if b.catalog == nil {
		panic("catalog is not set")
	}
}

// Build builds the simulation. Nothing runs until Run is called.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:       xid.New().String(),
		scenario: b.scenario,
		catalog:  b.catalog,
		logger:   b.logger,
		engine:   timing.NewSerialEngine(),
		rng:      random.New(b.scenario.Seed),
		counts:   tracing.NewCountTracer(),
		power:    broadcast.NewPowerSwitch(),
	}

	s.engine.AcceptHook(timing.NewEventLogger(b.logger))

	s.presenter = presenting.NewFanout(presenting.NewLogPresenter(b.logger))
	for _, p := range b.presenters {
		s.presenter.Add(p)
	}

	b.buildScheduler(s)
	b.buildRecorder(s)
	b.buildAgents(s)
	b.buildMonitor(s)

	return s
}

func (b Builder) buildScheduler(s *Simulation) {
	until := b.scenario.Duration

	s.scheduler = broadcast.MakeBuilder().
		WithClock(s.engine).
		WithCatalog(s.catalog).
		WithPresenter(s.presenter).
		WithRandomSource(s.rng).
		WithMaxCheckPeriod(b.scenario.MaxCheckPeriod).
		WithLogger(b.logger.With().Str("component", "scheduler").Logger()).
		Build()

	s.scheduler.AcceptHook(s.power)
	tracing.CollectTrace(s.scheduler, s.counts)

	for _, g := range b.scenario.Emitters {
		rb := g.RecordBuilder()
		for _, owner := range g.Owners() {
			if err := s.scheduler.Attach(rb.Build(owner)); err != nil {
				panic(err)
			}
		}
	}

	s.driver = broadcast.NewDriver("BroadcastDriver", s.engine,
		timing.Freq(b.scenario.TickFrequency), s.scheduler, until, b.logger)

	for _, o := range b.scenario.Outages {
		s.scheduleOutage(o)
	}
}

func (b Builder) buildRecorder(s *Simulation) {
	path := b.outputFileName
	if path == "" {
		path = b.scenario.Recording
	}

	if path == "" {
		return
	}

	s.dataRecorder = datarecording.New(path)
	s.dbTracer = tracing.NewDBTracer(s.dataRecorder)
	s.dbTracer.SkipRearms()
	tracing.CollectTrace(s.scheduler, s.dbTracer)
}

func (b Builder) buildAgents(s *Simulation) {
	action := broadcast.NewAction(s.catalog, s.presenter, s.rng)

	for _, g := range b.scenario.NPCs {
		op := npc.NewRandomVoicelineOperator(action, g.Voicelines, g.Hidden)

		for _, owner := range g.Owners() {
			agent := npc.NewAgent(owner, s.engine, timing.Freq(1/g.Period),
				[]npc.Operator{op}, b.scenario.Duration, b.logger)
			s.agents = append(s.agents, agent)
		}
	}
}

func (b Builder) buildMonitor(s *Simulation) {
	if b.monitorOff || !b.scenario.Monitor.Enabled {
		return
	}

	s.feed = monitoring.NewFeed(b.logger)
	s.presenter.Add(s.feed)

	s.monitor = monitoring.NewMonitor().
		WithLogger(b.logger).
		WithPortNumber(b.scenario.Monitor.Port)
	if b.scenario.Monitor.OpenBrowser {
		s.monitor.WithBrowser()
	}

	s.monitor.RegisterEngine(s.engine)
	s.monitor.RegisterScheduler(s.scheduler)
	s.monitor.RegisterCountTracer(s.counts)
	s.monitor.RegisterFeed(s.feed)

	s.progress = s.monitor.CreateProgressBar(
		fmt.Sprintf("Simulation %s", s.id),
		uint64(math.Ceil(b.scenario.Duration)))
	s.engine.AcceptHook(&progressHook{bar: s.progress})
}
