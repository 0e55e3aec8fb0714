package schedule

import "sync"

// inFlightSet tracks booking ids with an unresolved mutation, enforcing the
// one-mutation-per-id rule. A rollback must never clobber another operation's
// optimistic write on the same record.
type inFlightSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newInFlightSet() *inFlightSet {
	return &inFlightSet{ids: make(map[string]struct{})}
}

// acquire marks id as having a mutation in flight. It returns false when one
// already is.
func (f *inFlightSet) acquire(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.ids[id]; busy {
		return false
	}
	f.ids[id] = struct{}{}
	return true
}

// release clears the in-flight mark for id.
func (f *inFlightSet) release(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.ids, id)
}
