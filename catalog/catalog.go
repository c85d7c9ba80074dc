// Package catalog stores the voiceline content that emitters broadcast.
//
// A catalog holds two kinds of entries. A WeightedRandom entry maps voiceline
// IDs to selection weights and is what an emitter references. A Voiceline
// entry carries the text key and audio reference that a presenter renders.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sarchlab/advertise/random"
)

// Errors reported by lookups. They are wrapped in a *LookupError.
var (
	ErrUnknownReference = errors.New("unknown weighted random reference")
	ErrUnknownVoiceline = errors.New("unknown voiceline")
	ErrNoWeight         = errors.New("weighted random has no positive weight")
	ErrDuplicatedEntry  = errors.New("duplicated catalog entry")
)

// LookupError reports a catalog entry that does not resolve. It always
// indicates broken content, never a transient condition.
type LookupError struct {
	ID  string
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("catalog: %v: %q", e.Err, e.ID)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// Voiceline is a line an emitter can say together with the sound it plays.
type Voiceline struct {
	ID      string `yaml:"id" json:"id"`
	Message string `yaml:"message" json:"message"`
	Audio   string `yaml:"audio" json:"audio"`
}

// WeightedRandom maps voiceline IDs to relative selection weights.
type WeightedRandom struct {
	ID      string             `yaml:"id" json:"id"`
	Weights map[string]float64 `yaml:"weights" json:"weights"`
}

// Catalog is the lookup surface emitters consume.
type Catalog interface {
	// Pick selects a voiceline ID from the weighted random entry ref.
	Pick(ref string, rng random.Source) (string, error)

	// Resolve returns the voiceline with the given ID.
	Resolve(key string) (Voiceline, error)
}

// Store is an in-memory Catalog that is safe for concurrent use and can be
// replaced wholesale when the content is reloaded.
type Store struct {
	lock       sync.RWMutex
	weighted   map[string]WeightedRandom
	voicelines map[string]Voiceline
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		weighted:   make(map[string]WeightedRandom),
		voicelines: make(map[string]Voiceline),
	}
}

// AddWeightedRandom registers a weighted random entry.
func (s *Store) AddWeightedRandom(w WeightedRandom) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, found := s.weighted[w.ID]; found {
		return &LookupError{ID: w.ID, Err: ErrDuplicatedEntry}
	}

	weights := make(map[string]float64, len(w.Weights))
	for k, v := range w.Weights {
		weights[k] = v
	}

	s.weighted[w.ID] = WeightedRandom{ID: w.ID, Weights: weights}

	return nil
}

// AddVoiceline registers a voiceline.
func (s *Store) AddVoiceline(v Voiceline) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, found := s.voicelines[v.ID]; found {
		return &LookupError{ID: v.ID, Err: ErrDuplicatedEntry}
	}

	s.voicelines[v.ID] = v

	return nil
}

// Pick walks the entry's weights in ID order so that a seeded source always
// picks the same voiceline.
func (s *Store) Pick(ref string, rng random.Source) (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	w, found := s.weighted[ref]
	if !found {
		return "", &LookupError{ID: ref, Err: ErrUnknownReference}
	}

	keys := sortedPositiveKeys(w.Weights)
	if len(keys) == 0 {
		return "", &LookupError{ID: ref, Err: ErrNoWeight}
	}

	total := 0.0
	for _, k := range keys {
		total += w.Weights[k]
	}

	r := rng.Float64() * total
	for _, k := range keys {
		r -= w.Weights[k]
		if r < 0 {
			return k, nil
		}
	}

	return keys[len(keys)-1], nil
}

// Resolve returns the voiceline with the given ID.
func (s *Store) Resolve(key string) (Voiceline, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	v, found := s.voicelines[key]
	if !found {
		return Voiceline{}, &LookupError{ID: key, Err: ErrUnknownVoiceline}
	}

	return v, nil
}

// WeightedRandomIDs lists the IDs of all weighted random entries, sorted.
func (s *Store) WeightedRandomIDs() []string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	ids := make([]string, 0, len(s.weighted))
	for id := range s.weighted {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// Validate checks that every weighted entry has a positive weight and that
// every weighted voiceline resolves. All problems are reported together.
func (s *Store) Validate() error {
	s.lock.RLock()
	defer s.lock.RUnlock()

	var errs []error

	for _, ref := range sortedIDs(s.weighted) {
		w := s.weighted[ref]

		keys := sortedPositiveKeys(w.Weights)
		if len(keys) == 0 {
			errs = append(errs, &LookupError{ID: ref, Err: ErrNoWeight})
		}

		for _, k := range keys {
			if _, found := s.voicelines[k]; !found {
				errs = append(errs, fmt.Errorf("%s: %w",
					ref, &LookupError{ID: k, Err: ErrUnknownVoiceline}))
			}
		}
	}

	return errors.Join(errs...)
}

// Replace swaps the content of s with the content of other.
func (s *Store) Replace(other *Store) {
	other.lock.RLock()
	weighted := other.weighted
	voicelines := other.voicelines
	other.lock.RUnlock()

	s.lock.Lock()
	s.weighted = weighted
	s.voicelines = voicelines
	s.lock.Unlock()
}

func sortedPositiveKeys(weights map[string]float64) []string {
	keys := make([]string, 0, len(weights))
	for k, v := range weights {
		if v > 0 {
			keys = append(keys, k)
		}
	}

	sort.Strings(keys)

	return keys
}

func sortedIDs(m map[string]WeightedRandom) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

var _ Catalog = (*Store)(nil)
