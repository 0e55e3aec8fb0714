package booking

import (
	"strings"
	"time"
)

// ConfirmationState describes whether the server has acknowledged a booking's
// creation. It is derived from the presence of the server-assigned creation
// timestamp and is never set directly by the client.
type ConfirmationState string

const (
	ConfirmationConfirmed ConfirmationState = "CONFIRMED"
	ConfirmationPending   ConfirmationState = "PENDING"
	ConfirmationFailed    ConfirmationState = "FAILED"
)

// DeriveConfirmation maps a server creation timestamp to a confirmation state:
// CONFIRMED when the server has stamped the record, PENDING otherwise.
func DeriveConfirmation(createdAt *time.Time) ConfirmationState {
	if createdAt != nil && !createdAt.IsZero() {
		return ConfirmationConfirmed
	}
	return ConfirmationPending
}

// ConfirmationRef builds the short display token shown next to a confirmed
// booking, in the form "A-XXXX" from the first characters of the id.
func ConfirmationRef(id string) string {
	if id == "" {
		return ""
	}
	prefix := id
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	return "A-" + strings.ToUpper(prefix)
}
