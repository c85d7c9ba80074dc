package npc

import (
	"github.com/sarchlab/advertise/broadcast"
	"github.com/sarchlab/advertise/sim/timing"
)

// RandomVoicelineOperator makes the owner say a random voiceline once. It
// does not consult the hooks of the broadcast scheduler, so it cannot be
// cancelled.
type RandomVoicelineOperator struct {
	action *broadcast.Action

	// Voicelines references a weighted random catalog entry.
	Voicelines string

	// Hidden keeps the voiceline out of the logs.
	Hidden bool
}

// NewRandomVoicelineOperator creates the operator.
func NewRandomVoicelineOperator(
	action *broadcast.Action,
	voicelines string,
	hidden bool,
) *RandomVoicelineOperator {
	return &RandomVoicelineOperator{
		action:     action,
		Voicelines: voicelines,
		Hidden:     hidden,
	}
}

// Update says the voiceline and finishes. Broken content fails the step.
func (o *RandomVoicelineOperator) Update(
	bb *Blackboard,
	now timing.VTimeInSec,
) (Status, error) {
	owner, err := bb.Owner()
	if err != nil {
		return StatusFailed, err
	}

	_, err = o.action.Perform(now, owner, o.Voicelines, o.Hidden)
	if err != nil {
		return StatusFailed, err
	}

	return StatusFinished, nil
}
