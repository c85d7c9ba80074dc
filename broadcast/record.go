package broadcast

import (
	"github.com/sarchlab/advertise/sim/timing"
)

// Default wait window of an emitter, in seconds.
const (
	DefaultMinimumWait = 8 * 60
	DefaultMaximumWait = 10 * 60
)

// A Record is the broadcast state of one emitter.
type Record struct {
	// Owner names the entity the emitter is attached to.
	Owner string

	// MinimumWait and MaximumWait bound the re-arm interval, in whole
	// seconds. MinimumWait <= MaximumWait always holds.
	MinimumWait int
	MaximumWait int

	// Voicelines references a weighted random entry of the catalog.
	Voicelines string

	// Prewarm lets the first broadcast happen any time from creation on,
	// instead of waiting at least MinimumWait.
	Prewarm bool

	// SuppressLog is passed through to the presenter.
	SuppressLog bool

	// NextFireTime is the simulated time after which the emitter is due.
	NextFireTime timing.VTimeInSec
}

// RecordBuilder builds Records.
type RecordBuilder struct {
	minimumWait int
	maximumWait int
	voicelines  string
	prewarm     bool
	suppressLog bool
}

// MakeRecordBuilder creates a RecordBuilder with the default wait window and
// prewarm enabled.
func MakeRecordBuilder() RecordBuilder {
	return RecordBuilder{
		minimumWait: DefaultMinimumWait,
		maximumWait: DefaultMaximumWait,
		prewarm:     true,
	}
}

// WithVoicelines sets the catalog reference.
func (b RecordBuilder) WithVoicelines(ref string) RecordBuilder {
	b.voicelines = ref
	return b
}

// WithWaitRange sets the re-arm window in seconds.
func (b RecordBuilder) WithWaitRange(minimumWait, maximumWait int) RecordBuilder {
	b.minimumWait = minimumWait
	b.maximumWait = maximumWait

	return b
}

// WithoutPrewarm makes the first broadcast wait a full interval.
func (b RecordBuilder) WithoutPrewarm() RecordBuilder {
	b.prewarm = false
	return b
}

// WithSuppressLog hides the broadcasts of the record from logs.
func (b RecordBuilder) WithSuppressLog() RecordBuilder {
	b.suppressLog = true
	return b
}

// Build creates a Record for the owner. Negative waits are raised to zero and
// a maximum below the minimum is raised to the minimum.
func (b RecordBuilder) Build(owner string) *Record {
	minimumWait := max(0, b.minimumWait)
	maximumWait := max(b.maximumWait, minimumWait)

	return &Record{
		Owner:       owner,
		MinimumWait: minimumWait,
		MaximumWait: maximumWait,
		Voicelines:  b.voicelines,
		Prewarm:     b.prewarm,
		SuppressLog: b.suppressLog,
	}
}
