// Package stubapi is an in-memory reference implementation of the scheduling
// backend's wire contract, used for local development and end-to-end tests.
package stubapi

import (
	"sync"
	"time"

	"github.com/clinicdesk/schedule-sync/internal/domain/booking"
	"github.com/google/uuid"
)

// Store keeps the stub backend's booking records.
type Store struct {
	mu       sync.Mutex
	bookings map[string]booking.Booking
}

// NewStore creates an empty stub store.
func NewStore() *Store {
	return &Store{bookings: make(map[string]booking.Booking)}
}

// Seed inserts records, assigning ids, versions and creation timestamps where
// missing.
func (s *Store) Seed(records ...booking.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for _, b := range records {
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		if b.Version == 0 {
			b.Version = 1
		}
		if b.Status == "" {
			b.Status = booking.StatusBooked
		}
		if b.CreatedAt == nil {
			t := now
			b.CreatedAt = &t
		}
		s.bookings[b.ID] = b.Clone()
	}
}

// List returns bookings for the resource whose start falls within [from, to],
// with advisory conflict sets computed across the resource's records.
func (s *Store) List(resourceID string, from, to time.Time) []booking.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []booking.Booking
	for _, b := range s.bookings {
		if b.ResourceID != resourceID {
			continue
		}
		if b.StartTime.Before(from) || b.StartTime.After(to) {
			continue
		}
		out = append(out, b.Clone())
	}

	for i := range out {
		out[i].ConflictingIDs = nil
		for j := range out {
			if i == j {
				continue
			}
			if out[i].Overlaps(&out[j]) {
				out[i].ConflictingIDs = append(out[i].ConflictingIDs, out[j].ID)
			}
		}
	}
	return out
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id string) (booking.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return booking.Booking{}, false
	}
	return b.Clone(), true
}

// Delete removes the record with the given id.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return false
	}
	delete(s.bookings, id)
	return true
}

// Update applies fn to the record with the given id, bumping its version and
// update timestamp.
func (s *Store) Update(id string, fn func(*booking.Booking)) (booking.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return booking.Booking{}, false
	}
	fn(&b)
	b.Version++
	now := time.Now().UTC()
	b.UpdatedAt = &now
	s.bookings[id] = b
	return b.Clone(), true
}
