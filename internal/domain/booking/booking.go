package booking

import (
	"fmt"
	"time"
)

// Booking is a scheduled time slot (appointment or reservation) as held in the
// local cache. ID, SubjectID and ResourceID are immutable once created;
// Version is the optimistic-concurrency token compared server-side on update.
type Booking struct {
	ID         string
	SubjectID  string
	ResourceID string
	StartTime  time.Time
	EndTime    time.Time
	Status     BookingStatus

	Confirmation    ConfirmationState
	ConfirmedAt     *time.Time
	ConfirmationRef string

	// ConflictingIDs lists other bookings whose time windows overlap this
	// one. Advisory only, surfaced to the UI and never acted on here.
	ConflictingIDs []string

	Version   int64
	CreatedAt *time.Time
	UpdatedAt *time.Time
}

// Validate checks the structural invariants of a booking record.
func (b *Booking) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("booking id is required")
	}
	if b.StartTime.IsZero() || b.EndTime.IsZero() {
		return fmt.Errorf("booking %s: start and end times are required", b.ID)
	}
	if !b.EndTime.After(b.StartTime) {
		return fmt.Errorf("booking %s: end time must be after start time", b.ID)
	}
	if !b.Status.IsValid() {
		return fmt.Errorf("booking %s: invalid status %q", b.ID, string(b.Status))
	}
	return nil
}

// Clone returns a deep copy of the booking. Snapshots taken for rollback rely
// on this being exact, including the conflicting-ids slice.
func (b Booking) Clone() Booking {
	c := b
	if b.ConflictingIDs != nil {
		c.ConflictingIDs = make([]string, len(b.ConflictingIDs))
		copy(c.ConflictingIDs, b.ConflictingIDs)
	}
	if b.ConfirmedAt != nil {
		t := *b.ConfirmedAt
		c.ConfirmedAt = &t
	}
	if b.CreatedAt != nil {
		t := *b.CreatedAt
		c.CreatedAt = &t
	}
	if b.UpdatedAt != nil {
		t := *b.UpdatedAt
		c.UpdatedAt = &t
	}
	return c
}

// Overlaps reports whether the two bookings' time windows intersect.
func (b *Booking) Overlaps(other *Booking) bool {
	return b.StartTime.Before(other.EndTime) && other.StartTime.Before(b.EndTime)
}

// HasConflict reports whether any overlapping booking is known.
func (b *Booking) HasConflict() bool {
	return len(b.ConflictingIDs) > 0
}
