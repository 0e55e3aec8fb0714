package domain

import (
	"errors"
	"fmt"
)

// ConflictError signals an optimistic-concurrency failure (HTTP 409): the
// version sent with a mutation no longer matches the server's record. The
// caller must re-fetch before retrying.
type ConflictError struct {
	BookingID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("booking %s was modified concurrently, refresh required", e.BookingID)
}

// NewConflictError creates a ConflictError for the given booking.
func NewConflictError(bookingID string) *ConflictError {
	return &ConflictError{BookingID: bookingID}
}

// RemoteError signals a remote call that failed for a reason other than a
// version conflict while the network was reachable: a non-2xx response or a
// transport-level failure.
type RemoteError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s failed: HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// NewRemoteError creates a RemoteError for a non-2xx response.
func NewRemoteError(op string, statusCode int) *RemoteError {
	return &RemoteError{Op: op, StatusCode: statusCode}
}

// WrapRemoteError creates a RemoteError for a transport-level failure.
func WrapRemoteError(op string, err error) *RemoteError {
	return &RemoteError{Op: op, Err: err}
}

// OfflineError signals a mutation that failed because the network was
// unreachable. The intent has been rolled back locally and, where the
// operation supports it, queued for replay once connectivity returns.
type OfflineError struct {
	Op        string
	BookingID string
	Queued    bool
}

func (e *OfflineError) Error() string {
	if e.Queued {
		return fmt.Sprintf("%s of booking %s deferred: offline, queued for replay", e.Op, e.BookingID)
	}
	return fmt.Sprintf("%s of booking %s failed: offline", e.Op, e.BookingID)
}

// NewOfflineError creates an OfflineError.
func NewOfflineError(op, bookingID string, queued bool) *OfflineError {
	return &OfflineError{Op: op, BookingID: bookingID, Queued: queued}
}

// MutationInFlightError signals a second mutation attempted on a booking id
// while a previous one has not yet resolved. At most one mutation per id may
// be in flight; callers should wait for the prior call to settle.
type MutationInFlightError struct {
	BookingID string
}

func (e *MutationInFlightError) Error() string {
	return fmt.Sprintf("a mutation for booking %s is already in flight", e.BookingID)
}

// NewMutationInFlightError creates a MutationInFlightError.
func NewMutationInFlightError(bookingID string) *MutationInFlightError {
	return &MutationInFlightError{BookingID: bookingID}
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsOffline reports whether err is (or wraps) an OfflineError.
func IsOffline(err error) bool {
	var oe *OfflineError
	return errors.As(err, &oe)
}

// IsRemote reports whether err is (or wraps) a RemoteError.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

// IsMutationInFlight reports whether err is (or wraps) a MutationInFlightError.
func IsMutationInFlight(err error) bool {
	var me *MutationInFlightError
	return errors.As(err, &me)
}
