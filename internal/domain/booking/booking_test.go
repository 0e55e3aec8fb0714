package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBooking() Booking {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	created := start.AddDate(0, 0, -7)
	return Booking{
		ID:         "appt-1234",
		SubjectID:  "user-1",
		ResourceID: "provider-1",
		StartTime:  start,
		EndTime:    start.Add(30 * time.Minute),
		Status:     StatusBooked,
		Version:    3,
		CreatedAt:  &created,
	}
}

func TestValidate(t *testing.T) {
	b := validBooking()
	require.NoError(t, b.Validate())

	missing := validBooking()
	missing.ID = ""
	assert.Error(t, missing.Validate())

	inverted := validBooking()
	inverted.EndTime = inverted.StartTime.Add(-time.Minute)
	assert.Error(t, inverted.Validate())

	badStatus := validBooking()
	badStatus.Status = "UNKNOWN"
	assert.Error(t, badStatus.Validate())
}

func TestCloneIsDeep(t *testing.T) {
	b := validBooking()
	b.ConflictingIDs = []string{"appt-9"}

	c := b.Clone()
	require.Equal(t, b, c)

	c.ConflictingIDs[0] = "changed"
	*c.CreatedAt = c.CreatedAt.Add(time.Hour)

	assert.Equal(t, "appt-9", b.ConflictingIDs[0])
	assert.NotEqual(t, *b.CreatedAt, *c.CreatedAt)
}

func TestOverlaps(t *testing.T) {
	a := validBooking()

	b := validBooking()
	b.ID = "appt-5678"
	b.StartTime = a.StartTime.Add(15 * time.Minute)
	b.EndTime = b.StartTime.Add(30 * time.Minute)
	assert.True(t, a.Overlaps(&b))
	assert.True(t, b.Overlaps(&a))

	// Back-to-back slots do not overlap.
	b.StartTime = a.EndTime
	b.EndTime = b.StartTime.Add(30 * time.Minute)
	assert.False(t, a.Overlaps(&b))
}

func TestDeriveConfirmation(t *testing.T) {
	now := time.Now().UTC()
	assert.Equal(t, ConfirmationConfirmed, DeriveConfirmation(&now))
	assert.Equal(t, ConfirmationPending, DeriveConfirmation(nil))
}

func TestConfirmationRef(t *testing.T) {
	assert.Equal(t, "A-APPT", ConfirmationRef("appt-1234"))
	assert.Equal(t, "A-AB", ConfirmationRef("ab"))
	assert.Equal(t, "", ConfirmationRef(""))
}
