// Package random provides the seeded random source shared by the scheduler
// and the content catalog.
package random

import (
	"math/rand"
	"sync"
)

// Source produces random numbers.
type Source interface {
	// UniformInt returns an integer uniformly distributed in [low, high). It
	// returns low when high <= low.
	UniformInt(low, high int) int

	// Float64 returns a number uniformly distributed in [0, 1).
	Float64() float64
}

// New returns a Source seeded with seed. The same seed always replays the
// same sequence.
func New(seed int64) Source {
	return &lockedSource{
		rng: rand.New(rand.NewSource(seed)),
	}
}

type lockedSource struct {
	lock sync.Mutex
	rng  *rand.Rand
}

func (s *lockedSource) UniformInt(low, high int) int {
	if high <= low {
		return low
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	return low + s.rng.Intn(high-low)
}

func (s *lockedSource) Float64() float64 {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.rng.Float64()
}
