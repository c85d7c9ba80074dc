// Package simulation assembles a broadcast simulation from a scenario.
package simulation

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sarchlab/advertise/broadcast"
	"github.com/sarchlab/advertise/catalog"
	"github.com/sarchlab/advertise/config"
	"github.com/sarchlab/advertise/datarecording"
	"github.com/sarchlab/advertise/monitoring"
	"github.com/sarchlab/advertise/npc"
	"github.com/sarchlab/advertise/presenting"
	"github.com/sarchlab/advertise/random"
	"github.com/sarchlab/advertise/sim/hooking"
	"github.com/sarchlab/advertise/sim/timing"
	"github.com/sarchlab/advertise/tracing"
)

// A Simulation owns every part of one run.
type Simulation struct {
	id       string
	scenario *config.Scenario
	logger   zerolog.Logger

	engine    *timing.SerialEngine
	rng       random.Source
	catalog   *catalog.Store
	presenter *presenting.Fanout
	scheduler *broadcast.Scheduler
	driver    *broadcast.Driver
	power     *broadcast.PowerSwitch
	agents    []*npc.Agent

	counts       *tracing.CountTracer
	dataRecorder datarecording.DataRecorder
	dbTracer     *tracing.DBTracer

	monitor  *monitoring.Monitor
	feed     *monitoring.Feed
	progress *monitoring.ProgressBar
}

// ID returns the unique ID of the run.
func (s *Simulation) ID() string {
	return s.id
}

// Engine returns the engine that drives the run.
func (s *Simulation) Engine() *timing.SerialEngine {
	return s.engine
}

// Scheduler returns the broadcast scheduler.
func (s *Simulation) Scheduler() *broadcast.Scheduler {
	return s.scheduler
}

// Driver returns the component that ticks the scheduler.
func (s *Simulation) Driver() *broadcast.Driver {
	return s.driver
}

// PowerSwitch returns the switch outages toggle.
func (s *Simulation) PowerSwitch() *broadcast.PowerSwitch {
	return s.power
}

// Agents returns the NPC agents.
func (s *Simulation) Agents() []*npc.Agent {
	return s.agents
}

// Counts returns the per-emitter broadcast counts.
func (s *Simulation) Counts() *tracing.CountTracer {
	return s.counts
}

// DataRecorder returns the recorder, or nil when nothing is recorded.
func (s *Simulation) DataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// Monitor returns the web monitor, or nil when monitoring is off.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// Run starts the monitor and the catalog watcher if configured, then runs the
// engine until the end time. Cancelling ctx only stops the watcher.
func (s *Simulation) Run(ctx context.Context) error {
	if s.monitor != nil {
		s.monitor.StartServer()
	}

	if s.scenario.WatchCatalog && s.scenario.Catalog != "" {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		w := catalog.NewWatcher(s.scenario.Catalog, s.catalog, s.logger)
		go func() {
			if err := w.Run(watchCtx); err != nil &&
				!errors.Is(err, context.Canceled) {
				s.logger.Error().Err(err).Msg("catalog watcher stopped")
			}
		}()
	}

	s.driver.Start()
	for _, a := range s.agents {
		a.Start()
	}

	if err := s.engine.Run(); err != nil {
		return fmt.Errorf("simulation %s: %w", s.id, err)
	}

	if s.progress != nil {
		s.monitor.CompleteProgressBar(s.progress)
	}

	return nil
}

// Terminate flushes recordings and disconnects feed clients.
func (s *Simulation) Terminate() {
	if s.feed != nil {
		s.feed.Close()
	}

	if s.dataRecorder != nil {
		if err := s.dataRecorder.Close(); err != nil {
			s.logger.Error().Err(err).Msg("cannot close recording")
		}
	}
}

type progressHook struct {
	bar *monitoring.ProgressBar
}

func (h *progressHook) Func(ctx hooking.HookCtx) {
	if ctx.Pos != timing.HookPosAfterEvent {
		return
	}

	evt, ok := ctx.Item.(timing.Event)
	if !ok {
		return
	}

	h.bar.SetFinished(uint64(evt.Time()))
}
