// Package cache holds the locally mirrored booking collection. It is the
// single source of truth the rest of the client reads; all writes go through
// the schedule service's mutation contract.
package cache

import (
	"sync"
	"time"

	"github.com/clinicdesk/schedule-sync/internal/domain/booking"
	"go.uber.org/zap"
)

// Subscriber receives the full booking collection after every mutation.
// Delivery is synchronous: the mutating call does not return until every
// subscriber has run.
type Subscriber func(bookings []booking.Booking)

// Store is the in-memory, versioned collection of booking records for the
// active resource, plus the timestamp of the last successful sync.
type Store struct {
	mu       sync.RWMutex
	bookings []booking.Booking
	lastSync time.Time

	subMu   sync.Mutex
	subs    map[int]Subscriber
	nextSub int

	logger *zap.Logger
}

// NewStore creates an empty booking store.
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		subs:   make(map[int]Subscriber),
		logger: logger,
	}
}

// Replace swaps in a whole new collection, used after a full refresh, and
// stamps the last-sync time.
func (s *Store) Replace(bookings []booking.Booking) {
	s.mu.Lock()
	s.bookings = make([]booking.Booking, 0, len(bookings))
	for _, b := range bookings {
		s.bookings = append(s.bookings, b.Clone())
	}
	s.lastSync = time.Now().UTC()
	s.mu.Unlock()

	s.notify()
}

// Apply mutates the record with the given id in place via patch. It returns
// false, changing nothing and notifying nobody, when the id is absent.
func (s *Store) Apply(id string, patch func(*booking.Booking)) bool {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		s.logger.Debug("cache apply on unknown booking", zap.String("booking_id", id))
		return false
	}
	patch(&s.bookings[idx])
	s.mu.Unlock()

	s.notify()
	return true
}

// Put overwrites the record with rec.ID wholesale, used for rollback and for
// committing a server-returned record. Returns false if the id is absent.
func (s *Store) Put(rec booking.Booking) bool {
	s.mu.Lock()
	idx := s.indexOf(rec.ID)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.bookings[idx] = rec.Clone()
	s.mu.Unlock()

	s.notify()
	return true
}

// Remove deletes the record with the given id, used after a confirmed
// cancellation. Returns false if the id is absent.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.bookings = append(s.bookings[:idx], s.bookings[idx+1:]...)
	s.mu.Unlock()

	s.notify()
	return true
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id string) (booking.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return booking.Booking{}, false
	}
	return s.bookings[idx].Clone(), true
}

// All returns a defensive copy of the current collection in cache order.
func (s *Store) All() []booking.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Len returns the number of cached records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bookings)
}

// LastSync returns the time of the last successful full refresh, zero if none
// has happened yet.
func (s *Store) LastSync() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync
}

// Subscribe registers fn for change notifications and returns its
// unsubscribe handle.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// indexOf must be called with s.mu held.
func (s *Store) indexOf(id string) int {
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			return i
		}
	}
	return -1
}

// snapshot must be called with s.mu held (read or write).
func (s *Store) snapshot() []booking.Booking {
	out := make([]booking.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, b.Clone())
	}
	return out
}

// notify delivers the current collection to every subscriber. Called without
// s.mu held so subscribers may read the store.
func (s *Store) notify() {
	s.mu.RLock()
	snap := s.snapshot()
	s.mu.RUnlock()

	s.subMu.Lock()
	fns := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
