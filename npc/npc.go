// Package npc runs simple operator plans for simulated characters. The
// RandomVoicelineOperator lets a character say one voiceline as a plan step,
// outside of the periodic broadcast scheduler.
package npc

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sarchlab/advertise/sim/timing"
)

// BlackboardOwner is the key under which a blackboard stores the name of the
// character that runs the plan.
const BlackboardOwner = "Owner"

// ErrMissingOwner is returned when a blackboard has no owner.
var ErrMissingOwner = errors.New("npc: blackboard has no owner")

// Status is the outcome of an operator update.
type Status int

// Operator statuses.
const (
	StatusContinuing Status = iota
	StatusFinished
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusContinuing:
		return "Continuing"
	case StatusFinished:
		return "Finished"
	case StatusFailed:
		return "Failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// A Blackboard holds the working memory of one character.
type Blackboard struct {
	lock   sync.RWMutex
	values map[string]any
}

// NewBlackboard creates a blackboard owned by the named character.
func NewBlackboard(owner string) *Blackboard {
	return &Blackboard{
		values: map[string]any{BlackboardOwner: owner},
	}
}

// Set stores a value.
func (b *Blackboard) Set(key string, value any) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.values[key] = value
}

// Get returns a value.
func (b *Blackboard) Get(key string) (any, bool) {
	b.lock.RLock()
	defer b.lock.RUnlock()

	v, ok := b.values[key]

	return v, ok
}

// Owner returns the name of the character.
func (b *Blackboard) Owner() (string, error) {
	v, ok := b.Get(BlackboardOwner)
	if !ok {
		return "", ErrMissingOwner
	}

	owner, ok := v.(string)
	if !ok || owner == "" {
		return "", ErrMissingOwner
	}

	return owner, nil
}

// An Operator is one step of a plan.
type Operator interface {
	Update(bb *Blackboard, now timing.VTimeInSec) (Status, error)
}
