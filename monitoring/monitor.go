// Package monitoring turns a running simulation into a web server that
// reports and controls the broadcast scheduler.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/advertise/broadcast"
	"github.com/sarchlab/advertise/catalog"
	"github.com/sarchlab/advertise/sim/timing"
	"github.com/sarchlab/advertise/tracing"
)

type engine interface {
	timing.TimeTeller

	Pause()
	Continue()
}

// Monitor exposes a simulation over HTTP.
type Monitor struct {
	engine      engine
	scheduler   *broadcast.Scheduler
	counts      *tracing.CountTracer
	feed        *Feed
	portNumber  int
	openBrowser bool
	logger      zerolog.Logger

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		logger: zerolog.Nop(),
	}
}

// WithPortNumber sets the port number of the monitor. Ports below 1000 fall
// back to a random port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		m.logger.Warn().
			Int("port", portNumber).
			Msg("monitor port not allowed, using a random port instead")

		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser opens the monitor in the default browser once it listens.
func (m *Monitor) WithBrowser() *Monitor {
	m.openBrowser = true
	return m
}

// WithLogger sets the logger.
func (m *Monitor) WithLogger(logger zerolog.Logger) *Monitor {
	m.logger = logger
	return m
}

// RegisterEngine registers the engine that is used in the simulation.
func (m *Monitor) RegisterEngine(e engine) {
	m.engine = e
}

// RegisterScheduler registers the scheduler to report on.
func (m *Monitor) RegisterScheduler(s *broadcast.Scheduler) {
	m.scheduler = s
}

// RegisterCountTracer registers the tracer behind /api/counts.
func (m *Monitor) RegisterCountTracer(t *tracing.CountTracer) {
	m.counts = t
}

// RegisterFeed registers the websocket feed served at /api/feed.
func (m *Monitor) RegisterFeed(f *Feed) {
	m.feed = f
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := NewProgressBar(name, total)

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the report.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router builds the HTTP routes of the monitor.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/emitters", m.listEmitters)
	r.HandleFunc("/api/emitter/{name}", m.emitterDetails)
	r.HandleFunc("/api/emitter/{name}/say", m.sayAdvertisement).
		Methods(http.MethodPost)
	r.HandleFunc("/api/counts", m.listCounts)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	if m.feed != nil {
		r.Handle("/api/feed", m.feed)
	}

	return r
}

// StartServer starts serving in the background and returns the address it
// listens on.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	router := m.Router()

	go func() {
		err := http.Serve(listener, router)
		dieOnErr(err)
	}()

	if m.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			m.logger.Warn().Err(err).Msg("cannot open browser")
		}
	}

	return url
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.engine.Now()
	fmt.Fprintf(w, "{\"now\":%.10f}", now)
}

type emittersRsp struct {
	NextWakeTime float64                 `json:"next_wake_time"`
	Emitters     []broadcast.RecordState `json:"emitters"`
}

func (m *Monitor) listEmitters(w http.ResponseWriter, _ *http.Request) {
	wake := m.scheduler.NextWakeTime()

	rsp := emittersRsp{
		Emitters: m.scheduler.Snapshot(),
	}

	// JSON has no infinities; a wake time that never got set is reported as
	// zero.
	if !math.IsInf(wake, 0) {
		rsp.NextWakeTime = wake
	}

	writeJSON(w, rsp)
}

func (m *Monitor) emitterDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	state, found := m.scheduler.Lookup(name)
	if !found {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Emitter not found"))
		dieOnErr(err)

		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&state)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) sayAdvertisement(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	err := m.scheduler.SayAdvertisement(name)

	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, broadcast.ErrEmitterNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case isLookupError(err):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func isLookupError(err error) bool {
	var lookupErr *catalog.LookupError
	return errors.As(err, &lookupErr)
}

func (m *Monitor) listCounts(w http.ResponseWriter, _ *http.Request) {
	if m.counts == nil {
		writeJSON(w, []tracing.EmitterCount{})
		return
	}

	counts := m.counts.Counts()
	for i := range counts {
		if math.IsInf(counts[i].MinGap, 0) {
			counts[i].MinGap = 0
		}
	}

	writeJSON(w, counts)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]progressRsp, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
