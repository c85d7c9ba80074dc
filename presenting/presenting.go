// Package presenting provides Presenters that render announcements.
package presenting

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/sarchlab/advertise/broadcast"
)

// LogPresenter writes every announcement to a logger at info level.
// Announcements that ask for suppressed logs are dropped.
type LogPresenter struct {
	logger zerolog.Logger
}

// NewLogPresenter creates a LogPresenter.
func NewLogPresenter(logger zerolog.Logger) *LogPresenter {
	return &LogPresenter{logger: logger}
}

// Announce logs the announcement.
func (p *LogPresenter) Announce(a broadcast.Announcement) {
	if a.SuppressLog {
		return
	}

	e := p.logger.Info().
		Float64("time", a.Time).
		Str("owner", a.Owner).
		Str("text", a.TextKey)

	if a.Audio != "" {
		e = e.Str("audio", a.Audio)
	}

	e.Msg("announce")
}

// Fanout forwards announcements to several presenters in order.
type Fanout struct {
	lock       sync.RWMutex
	presenters []broadcast.Presenter
}

// NewFanout creates a Fanout.
func NewFanout(presenters ...broadcast.Presenter) *Fanout {
	return &Fanout{presenters: presenters}
}

// Add appends a presenter.
func (f *Fanout) Add(p broadcast.Presenter) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.presenters = append(f.presenters, p)
}

// Len returns the number of presenters.
func (f *Fanout) Len() int {
	f.lock.RLock()
	defer f.lock.RUnlock()

	return len(f.presenters)
}

// Announce forwards the announcement.
func (f *Fanout) Announce(a broadcast.Announcement) {
	f.lock.RLock()
	defer f.lock.RUnlock()

	for _, p := range f.presenters {
		p.Announce(a)
	}
}

var (
	_ broadcast.Presenter = (*LogPresenter)(nil)
	_ broadcast.Presenter = (*Fanout)(nil)
)
