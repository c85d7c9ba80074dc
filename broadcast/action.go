package broadcast

import (
	"github.com/sarchlab/advertise/catalog"
	"github.com/sarchlab/advertise/random"
	"github.com/sarchlab/advertise/sim/timing"
)

// An Announcement is what a Presenter renders.
type Announcement struct {
	Owner       string
	Time        timing.VTimeInSec
	TextKey     string
	Audio       string
	SuppressLog bool
}

// A Presenter renders announcements to whoever is listening.
type Presenter interface {
	Announce(a Announcement)
}

// Action picks a voiceline for an emitter and hands it to a Presenter.
type Action struct {
	catalog   catalog.Catalog
	presenter Presenter
	rng       random.Source
}

// NewAction creates an Action.
func NewAction(
	c catalog.Catalog,
	p Presenter,
	rng random.Source,
) *Action {
	return &Action{
		catalog:   c,
		presenter: p,
		rng:       rng,
	}
}

// Perform makes the owner say one voiceline of the reference. Nothing is
// presented when the reference or the picked voiceline does not resolve.
func (a *Action) Perform(
	now timing.VTimeInSec,
	owner, ref string,
	suppressLog bool,
) (Broadcast, error) {
	key, err := a.catalog.Pick(ref, a.rng)
	if err != nil {
		return Broadcast{}, err
	}

	line, err := a.catalog.Resolve(key)
	if err != nil {
		return Broadcast{}, err
	}

	a.presenter.Announce(Announcement{
		Owner:       owner,
		Time:        now,
		TextKey:     line.Message,
		Audio:       line.Audio,
		SuppressLog: suppressLog,
	})

	return Broadcast{
		Owner:     owner,
		Time:      now,
		Reference: ref,
		TextKey:   line.Message,
		Audio:     line.Audio,
	}, nil
}
