package remote

import (
	"fmt"
	"time"

	"github.com/clinicdesk/schedule-sync/internal/domain/booking"
)

// bookingWire is the raw backend representation of a booking. Timestamps are
// ISO-8601 UTC strings on the wire.
type bookingWire struct {
	ID             string   `json:"id"`
	SubjectID      string   `json:"subject_id"`
	ResourceID     string   `json:"resource_id"`
	StartTime      string   `json:"start_time"`
	EndTime        string   `json:"end_time"`
	Status         string   `json:"status"`
	Version        int64    `json:"version"`
	ConflictingIDs []string `json:"conflicting_ids,omitempty"`
	CreatedAt      string   `json:"created_at,omitempty"`
	UpdatedAt      string   `json:"updated_at,omitempty"`
}

// reschedulePayload is the PATCH body for a reschedule request.
type reschedulePayload struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Version   int64  `json:"version"`
}

// toDomain validates the wire record and converts it to the typed entity.
// Confirmation state is derived here from the server-assigned creation
// timestamp, never taken from the payload.
func (w bookingWire) toDomain() (booking.Booking, error) {
	if w.ID == "" {
		return booking.Booking{}, fmt.Errorf("booking record missing id")
	}

	start, err := time.Parse(time.RFC3339, w.StartTime)
	if err != nil {
		return booking.Booking{}, fmt.Errorf("booking %s: invalid start_time %q: %w", w.ID, w.StartTime, err)
	}
	end, err := time.Parse(time.RFC3339, w.EndTime)
	if err != nil {
		return booking.Booking{}, fmt.Errorf("booking %s: invalid end_time %q: %w", w.ID, w.EndTime, err)
	}

	status, err := booking.ParseBookingStatus(w.Status)
	if err != nil {
		return booking.Booking{}, fmt.Errorf("booking %s: %w", w.ID, err)
	}

	b := booking.Booking{
		ID:             w.ID,
		SubjectID:      w.SubjectID,
		ResourceID:     w.ResourceID,
		StartTime:      start,
		EndTime:        end,
		Status:         status,
		Version:        w.Version,
		ConflictingIDs: w.ConflictingIDs,
	}

	if w.CreatedAt != "" {
		created, err := time.Parse(time.RFC3339, w.CreatedAt)
		if err != nil {
			return booking.Booking{}, fmt.Errorf("booking %s: invalid created_at %q: %w", w.ID, w.CreatedAt, err)
		}
		b.CreatedAt = &created
		b.ConfirmedAt = &created
	}
	if w.UpdatedAt != "" {
		updated, err := time.Parse(time.RFC3339, w.UpdatedAt)
		if err != nil {
			return booking.Booking{}, fmt.Errorf("booking %s: invalid updated_at %q: %w", w.ID, w.UpdatedAt, err)
		}
		b.UpdatedAt = &updated
	}

	b.Confirmation = booking.DeriveConfirmation(b.CreatedAt)
	b.ConfirmationRef = booking.ConfirmationRef(b.ID)

	if err := b.Validate(); err != nil {
		return booking.Booking{}, err
	}
	return b, nil
}

// toWire converts a domain booking back to its wire shape.
func toWire(b booking.Booking) bookingWire {
	w := bookingWire{
		ID:             b.ID,
		SubjectID:      b.SubjectID,
		ResourceID:     b.ResourceID,
		StartTime:      b.StartTime.UTC().Format(time.RFC3339),
		EndTime:        b.EndTime.UTC().Format(time.RFC3339),
		Status:         b.Status.String(),
		Version:        b.Version,
		ConflictingIDs: b.ConflictingIDs,
	}
	if b.CreatedAt != nil {
		w.CreatedAt = b.CreatedAt.UTC().Format(time.RFC3339)
	}
	if b.UpdatedAt != nil {
		w.UpdatedAt = b.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return w
}
