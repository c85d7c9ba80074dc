package tracing

import (
	"math"
	"sort"
	"sync"

	"github.com/sarchlab/advertise/broadcast"
	"github.com/sarchlab/advertise/sim/timing"
)

// EmitterCount summarizes the activity of one emitter.
type EmitterCount struct {
	Owner      string            `json:"owner"`
	Broadcasts uint64            `json:"broadcasts"`
	Cancelled  uint64            `json:"cancelled"`
	Failed     uint64            `json:"failed"`
	LastTime   timing.VTimeInSec `json:"last_time"`
	MinGap     timing.VTimeInSec `json:"min_gap"`
	MaxGap     timing.VTimeInSec `json:"max_gap"`
}

// CountTracer counts broadcasts per emitter and tracks the gaps between two
// broadcasts of the same emitter.
type CountTracer struct {
	lock   sync.Mutex
	counts map[string]*EmitterCount

	// per simulated time, how many emitters spoke
	perTime map[timing.VTimeInSec]uint64
}

// NewCountTracer creates a CountTracer.
func NewCountTracer() *CountTracer {
	return &CountTracer{
		counts:  make(map[string]*EmitterCount),
		perTime: make(map[timing.VTimeInSec]uint64),
	}
}

func (t *CountTracer) entry(owner string) *EmitterCount {
	c, ok := t.counts[owner]
	if !ok {
		c = &EmitterCount{Owner: owner, MinGap: math.Inf(1)}
		t.counts[owner] = c
	}

	return c
}

// Broadcasted counts a broadcast.
func (t *CountTracer) Broadcasted(b broadcast.Broadcast) {
	t.lock.Lock()
	defer t.lock.Unlock()

	c := t.entry(b.Owner)

	if c.Broadcasts > 0 {
		gap := b.Time - c.LastTime
		c.MinGap = math.Min(c.MinGap, gap)
		c.MaxGap = math.Max(c.MaxGap, gap)
	}

	c.Broadcasts++
	c.LastTime = b.Time
	t.perTime[b.Time]++
}

// Cancelled counts a cancelled attempt.
func (t *CountTracer) Cancelled(a broadcast.AttemptBroadcast) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.entry(a.Broadcaster).Cancelled++
}

// Failed counts a failed broadcast.
func (t *CountTracer) Failed(f broadcast.FailedBroadcast) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.entry(f.Owner).Failed++
}

// Rearmed does nothing.
func (t *CountTracer) Rearmed(broadcast.Rearm) {}

// Counts returns the summaries of all emitters, sorted by owner.
func (t *CountTracer) Counts() []EmitterCount {
	t.lock.Lock()
	defer t.lock.Unlock()

	counts := make([]EmitterCount, 0, len(t.counts))
	for _, c := range t.counts {
		counts = append(counts, *c)
	}

	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Owner < counts[j].Owner
	})

	return counts
}

// TotalBroadcasts returns the number of broadcasts of all emitters.
func (t *CountTracer) TotalBroadcasts() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	total := uint64(0)
	for _, c := range t.counts {
		total += c.Broadcasts
	}

	return total
}

// PeakSimultaneous returns the largest number of broadcasts that happened at
// the same simulated time.
func (t *CountTracer) PeakSimultaneous() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	peak := uint64(0)
	for _, n := range t.perTime {
		peak = max(peak, n)
	}

	return peak
}
