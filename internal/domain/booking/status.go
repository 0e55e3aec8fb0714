package booking

import "fmt"

// BookingStatus represents the current state of a booking in its lifecycle.
// CANCELLING and RESCHEDULING are transient optimistic states: they exist only
// between an optimistic local write and the resolution of the matching remote
// call, and must settle into a terminal state or roll back to BOOKED.
type BookingStatus string

const (
	StatusBooked       BookingStatus = "BOOKED"
	StatusCancelling   BookingStatus = "CANCELLING"
	StatusCancelled    BookingStatus = "CANCELLED"
	StatusRescheduling BookingStatus = "RESCHEDULING"
	StatusCheckedIn    BookingStatus = "CHECKED_IN"
	StatusCompleted    BookingStatus = "COMPLETED"
)

// validTransitions defines the state machine for booking status transitions.
// Transitions back to BOOKED model the rollback of a failed optimistic write.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusBooked:       {StatusCancelling, StatusRescheduling, StatusCheckedIn},
	StatusCancelling:   {StatusCancelled, StatusBooked},
	StatusRescheduling: {StatusBooked},
	StatusCheckedIn:    {StatusCompleted, StatusBooked},
	StatusCancelled:    {},
	StatusCompleted:    {},
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTransient returns true for the optimistic in-between states that must
// resolve once the matching remote call settles.
func (s BookingStatus) IsTransient() bool {
	return s == StatusCancelling || s == StatusRescheduling
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}
