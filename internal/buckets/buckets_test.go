package buckets

import (
	"testing"
	"time"

	"github.com/clinicdesk/schedule-sync/internal/domain/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

func slot(id string, status booking.BookingStatus, start time.Time) booking.Booking {
	return booking.Booking{
		ID:        id,
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Status:    status,
	}
}

func TestNextUpIsEarliestBookedAfterNow(t *testing.T) {
	bookings := []booking.Booking{
		slot("a", booking.StatusBooked, now.Add(10*time.Minute)),
		slot("b", booking.StatusBooked, now.Add(5*time.Minute)),
		slot("c", booking.StatusCheckedIn, now.Add(2*time.Minute)),
		slot("past", booking.StatusBooked, now.Add(-time.Hour)),
	}

	s := Partition(bookings, now)

	require.NotNil(t, s.NextUp)
	assert.Equal(t, "b", s.NextUp.ID)
}

func TestNextUpExcludedFromLaterTodayByIdentity(t *testing.T) {
	// Booking A starts in 10 minutes; it must land in Next Up and nowhere else.
	a := slot("a", booking.StatusBooked, now.Add(10*time.Minute))
	s := Partition([]booking.Booking{a}, now)

	require.NotNil(t, s.NextUp)
	assert.Equal(t, "a", s.NextUp.ID)
	assert.Empty(t, s.LaterToday)
	assert.Empty(t, s.Tomorrow)
	assert.Empty(t, s.Upcoming)
}

func TestLaterTodayEndsAtEndOfDay(t *testing.T) {
	endOfDay := time.Date(2026, 3, 10, 23, 59, 59, 999_000_000, time.UTC)
	startOfTomorrow := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)

	bookings := []booking.Booking{
		slot("next", booking.StatusBooked, now.Add(time.Minute)),
		slot("late", booking.StatusBooked, endOfDay),
		slot("midnight", booking.StatusBooked, startOfTomorrow),
	}

	s := Partition(bookings, now)

	require.NotNil(t, s.NextUp)
	assert.Equal(t, "next", s.NextUp.ID)
	require.Len(t, s.LaterToday, 1)
	assert.Equal(t, "late", s.LaterToday[0].ID)
	require.Len(t, s.Tomorrow, 1)
	assert.Equal(t, "midnight", s.Tomorrow[0].ID)
}

func TestUpcomingStartsTwoDaysOut(t *testing.T) {
	bookings := []booking.Booking{
		slot("tmrw", booking.StatusCheckedIn, now.AddDate(0, 0, 1)),
		slot("dayafter", booking.StatusBooked, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)),
		slot("nextweek", booking.StatusBooked, now.AddDate(0, 0, 7)),
	}

	s := Partition(bookings, now)

	require.Len(t, s.Tomorrow, 1)
	assert.Equal(t, "tmrw", s.Tomorrow[0].ID)
	require.Len(t, s.Upcoming, 2)
	assert.Equal(t, "dayafter", s.Upcoming[0].ID)
	assert.Equal(t, "nextweek", s.Upcoming[1].ID)
}

func TestBucketsSortedAscending(t *testing.T) {
	bookings := []booking.Booking{
		slot("u2", booking.StatusBooked, now.AddDate(0, 0, 4)),
		slot("u1", booking.StatusBooked, now.AddDate(0, 0, 3)),
		slot("l2", booking.StatusCheckedIn, now.Add(5*time.Hour)),
		slot("l1", booking.StatusCheckedIn, now.Add(2*time.Hour)),
	}

	s := Partition(bookings, now)

	require.Len(t, s.LaterToday, 2)
	assert.Equal(t, "l1", s.LaterToday[0].ID)
	assert.Equal(t, "l2", s.LaterToday[1].ID)
	require.Len(t, s.Upcoming, 2)
	assert.Equal(t, "u1", s.Upcoming[0].ID)
	assert.Equal(t, "u2", s.Upcoming[1].ID)
}

// TestEveryBookingInAtMostOneBucket checks the partition property over a
// spread of starts around every bucket boundary.
func TestEveryBookingInAtMostOneBucket(t *testing.T) {
	offsets := []time.Duration{
		-24 * time.Hour, -time.Minute, 0,
		time.Minute, 5 * time.Hour, 9*time.Hour + 59*time.Minute,
		10 * time.Hour, 24 * time.Hour, 33 * time.Hour,
		34 * time.Hour, 58 * time.Hour, 30 * 24 * time.Hour,
	}

	var bookings []booking.Booking
	for i, off := range offsets {
		status := booking.StatusBooked
		if i%3 == 0 {
			status = booking.StatusCheckedIn
		}
		bookings = append(bookings, slot(string(rune('a'+i)), status, now.Add(off)))
	}

	s := Partition(bookings, now)

	seen := map[string]int{}
	if s.NextUp != nil {
		seen[s.NextUp.ID]++
	}
	for _, bucket := range [][]booking.Booking{s.LaterToday, s.Tomorrow, s.Upcoming} {
		for _, b := range bucket {
			seen[b.ID]++
		}
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "booking %s appeared in %d buckets", id, count)
	}

	// Strictly-past bookings appear nowhere.
	for i, off := range offsets {
		if now.Add(off).After(now) {
			continue
		}
		assert.Zero(t, seen[string(rune('a'+i))])
	}
}

func TestEmptyInput(t *testing.T) {
	s := Partition(nil, now)
	assert.Nil(t, s.NextUp)
	assert.Empty(t, s.LaterToday)
	assert.Empty(t, s.Tomorrow)
	assert.Empty(t, s.Upcoming)
}
