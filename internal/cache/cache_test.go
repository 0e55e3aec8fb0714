package cache

import (
	"testing"
	"time"

	"github.com/clinicdesk/schedule-sync/internal/domain/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(zap.NewNop())
}

func fixture(id string) booking.Booking {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return booking.Booking{
		ID:         id,
		SubjectID:  "user-1",
		ResourceID: "provider-1",
		StartTime:  start,
		EndTime:    start.Add(30 * time.Minute),
		Status:     booking.StatusBooked,
		Version:    1,
	}
}

func TestReplaceStampsLastSync(t *testing.T) {
	s := newTestStore(t)
	assert.True(t, s.LastSync().IsZero())

	s.Replace([]booking.Booking{fixture("a"), fixture("b")})

	assert.Equal(t, 2, s.Len())
	assert.False(t, s.LastSync().IsZero())
}

func TestApplyMutatesInPlace(t *testing.T) {
	s := newTestStore(t)
	s.Replace([]booking.Booking{fixture("a")})

	ok := s.Apply("a", func(b *booking.Booking) {
		b.Status = booking.StatusCancelling
	})
	require.True(t, ok)

	got, found := s.Get("a")
	require.True(t, found)
	assert.Equal(t, booking.StatusCancelling, got.Status)
}

func TestApplyUnknownIDIsNoop(t *testing.T) {
	s := newTestStore(t)
	s.Replace([]booking.Booking{fixture("a")})

	var notified int
	unsub := s.Subscribe(func([]booking.Booking) { notified++ })
	defer unsub()

	ok := s.Apply("missing", func(b *booking.Booking) {
		b.Status = booking.StatusCancelled
	})

	assert.False(t, ok)
	assert.Zero(t, notified)
	assert.Equal(t, 1, s.Len())
}

func TestRemove(t *testing.T) {
	s := newTestStore(t)
	s.Replace([]booking.Booking{fixture("a"), fixture("b")})

	require.True(t, s.Remove("a"))
	assert.Equal(t, 1, s.Len())
	_, found := s.Get("a")
	assert.False(t, found)

	assert.False(t, s.Remove("a"))
}

func TestPutOverwritesWholesale(t *testing.T) {
	s := newTestStore(t)
	s.Replace([]booking.Booking{fixture("a")})

	rec := fixture("a")
	rec.Status = booking.StatusCheckedIn
	rec.Version = 7
	require.True(t, s.Put(rec))

	got, _ := s.Get("a")
	assert.Equal(t, rec, got)

	assert.False(t, s.Put(fixture("other")))
}

func TestSubscribersNotifiedSynchronously(t *testing.T) {
	s := newTestStore(t)

	var seen [][]booking.Booking
	unsub := s.Subscribe(func(bs []booking.Booking) { seen = append(seen, bs) })

	s.Replace([]booking.Booking{fixture("a")})
	s.Apply("a", func(b *booking.Booking) { b.Version = 2 })
	s.Remove("a")

	require.Len(t, seen, 3)
	assert.Len(t, seen[0], 1)
	assert.Equal(t, int64(2), seen[1][0].Version)
	assert.Empty(t, seen[2])

	unsub()
	s.Replace([]booking.Booking{fixture("b")})
	assert.Len(t, seen, 3)
}

func TestSnapshotsAreDefensiveCopies(t *testing.T) {
	s := newTestStore(t)
	rec := fixture("a")
	rec.ConflictingIDs = []string{"b"}
	s.Replace([]booking.Booking{rec})

	all := s.All()
	all[0].ConflictingIDs[0] = "tampered"
	all[0].Status = booking.StatusCancelled

	got, _ := s.Get("a")
	assert.Equal(t, "b", got.ConflictingIDs[0])
	assert.Equal(t, booking.StatusBooked, got.Status)
}

// A subscriber must be able to read the store without deadlocking, since
// delivery happens synchronously with the mutation.
func TestSubscriberMayReadStore(t *testing.T) {
	s := newTestStore(t)

	var lenInside int
	unsub := s.Subscribe(func([]booking.Booking) { lenInside = s.Len() })
	defer unsub()

	s.Replace([]booking.Booking{fixture("a"), fixture("b")})
	assert.Equal(t, 2, lenInside)
}
