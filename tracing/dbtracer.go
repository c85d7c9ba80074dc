package tracing

import (
	"sync"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/advertise/broadcast"
	"github.com/sarchlab/advertise/datarecording"
	"github.com/sarchlab/advertise/sim/timing"
)

// Table names written by the DBTracer.
const (
	TableBroadcast = "broadcast"
	TableCancelled = "broadcast_cancelled"
	TableFailed    = "broadcast_failed"
	TableRearm     = "rearm"
)

// BroadcastEntry is a row of the broadcast table.
type BroadcastEntry struct {
	Owner     string
	Time      float64
	Reference string
	TextKey   string
	Audio     string
}

// CancelledEntry is a row of the broadcast_cancelled table.
type CancelledEntry struct {
	Owner string
	Time  float64
}

// FailedEntry is a row of the broadcast_failed table.
type FailedEntry struct {
	Owner     string
	Time      float64
	Reference string
	Error     string
}

// RearmEntry is a row of the rearm table.
type RearmEntry struct {
	Owner        string
	Time         float64
	NextFireTime float64
	Prewarm      bool
}

// DBTracer stores everything emitters do into a DataRecorder.
type DBTracer struct {
	lock    sync.Mutex
	backend datarecording.DataRecorder

	startTime, endTime timing.VTimeInSec
	skipRearms         bool
}

// NewDBTracer creates the tables and a tracer that writes into them. The
// recorder is flushed when the program exits.
func NewDBTracer(dataRecorder datarecording.DataRecorder) *DBTracer {
	dataRecorder.CreateTable(TableBroadcast, BroadcastEntry{})
	dataRecorder.CreateTable(TableCancelled, CancelledEntry{})
	dataRecorder.CreateTable(TableFailed, FailedEntry{})
	dataRecorder.CreateTable(TableRearm, RearmEntry{})

	t := &DBTracer{
		backend: dataRecorder,
	}

	atexit.Register(t.Terminate)

	return t
}

// SetTimeRange limits tracing to [startTime, endTime]. A non-positive bound
// is open.
func (t *DBTracer) SetTimeRange(startTime, endTime timing.VTimeInSec) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.startTime = startTime
	t.endTime = endTime
}

// SkipRearms stops the tracer from writing re-arm rows, which outnumber the
// others in long runs.
func (t *DBTracer) SkipRearms() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.skipRearms = true
}

func (t *DBTracer) inRange(now timing.VTimeInSec) bool {
	if t.startTime > 0 && now < t.startTime {
		return false
	}

	if t.endTime > 0 && now > t.endTime {
		return false
	}

	return true
}

// Broadcasted records a broadcast.
func (t *DBTracer) Broadcasted(b broadcast.Broadcast) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if !t.inRange(b.Time) {
		return
	}

	t.backend.InsertData(TableBroadcast, BroadcastEntry{
		Owner:     b.Owner,
		Time:      b.Time,
		Reference: b.Reference,
		TextKey:   b.TextKey,
		Audio:     b.Audio,
	})
}

// Cancelled records a cancelled attempt.
func (t *DBTracer) Cancelled(a broadcast.AttemptBroadcast) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if !t.inRange(a.Time) {
		return
	}

	t.backend.InsertData(TableCancelled, CancelledEntry{
		Owner: a.Broadcaster,
		Time:  a.Time,
	})
}

// Failed records a broadcast whose content did not resolve.
func (t *DBTracer) Failed(f broadcast.FailedBroadcast) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if !t.inRange(f.Time) {
		return
	}

	t.backend.InsertData(TableFailed, FailedEntry{
		Owner:     f.Owner,
		Time:      f.Time,
		Reference: f.Reference,
		Error:     f.Err.Error(),
	})
}

// Rearmed records a new fire time.
func (t *DBTracer) Rearmed(r broadcast.Rearm) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.skipRearms || !t.inRange(r.Time) {
		return
	}

	t.backend.InsertData(TableRearm, RearmEntry{
		Owner:        r.Owner,
		Time:         r.Time,
		NextFireTime: r.NextFireTime,
		Prewarm:      r.Prewarm,
	})
}

// Terminate flushes the recorder.
func (t *DBTracer) Terminate() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.backend.Flush()
}
