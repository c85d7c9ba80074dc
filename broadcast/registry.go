package broadcast

import (
	"sync"
)

// A Registry holds the live Records, keyed by owner. Iteration follows
// insertion order.
type Registry struct {
	lock    sync.RWMutex
	order   []string
	records map[string]*Record
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		records: make(map[string]*Record),
	}
}

// Add registers a record under its owner.
func (r *Registry) Add(rec *Record) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, found := r.records[rec.Owner]; found {
		return ErrDuplicatedEmitter
	}

	r.records[rec.Owner] = rec
	r.order = append(r.order, rec.Owner)

	return nil
}

// Remove drops the record of the owner. It returns false if there was none.
func (r *Registry) Remove(owner string) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, found := r.records[owner]; !found {
		return false
	}

	delete(r.records, owner)

	for i, o := range r.order {
		if o == owner {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return true
}

// Get returns the record of the owner.
func (r *Registry) Get(owner string) (*Record, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	rec, found := r.records[owner]

	return rec, found
}

// Len returns the number of live records.
func (r *Registry) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return len(r.order)
}

// ForEachLive calls f once for every live record. Records removed while the
// iteration is running are skipped; records added are not visited.
func (r *Registry) ForEachLive(f func(owner string, rec *Record)) {
	r.lock.RLock()
	owners := make([]string, len(r.order))
	copy(owners, r.order)
	r.lock.RUnlock()

	for _, owner := range owners {
		rec, found := r.Get(owner)
		if !found {
			continue
		}

		f(owner, rec)
	}
}
