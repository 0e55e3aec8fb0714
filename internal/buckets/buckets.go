// Package buckets partitions the cached booking collection into the
// time-relative display sections the UI renders.
package buckets

import (
	"sort"
	"time"

	"github.com/clinicdesk/schedule-sync/internal/domain/booking"
)

// Sections is the four-way partition of a booking collection relative to a
// moment in time. Every booking lands in at most one section; bookings whose
// start lies strictly in the past land in none.
type Sections struct {
	// NextUp is the single BOOKED booking starting soonest after now.
	NextUp *booking.Booking
	// LaterToday holds the remaining bookings starting after now but still
	// today, ascending by start time.
	LaterToday []booking.Booking
	// Tomorrow holds bookings starting anywhere tomorrow, ascending.
	Tomorrow []booking.Booking
	// Upcoming holds bookings starting two or more days out, ascending.
	Upcoming []booking.Booking
}

// Partition computes the display sections for bookings at the caller-supplied
// now. Day boundaries follow now's location. The Next Up member is excluded
// from Later Today by identity rather than by re-filtering, so a record on a
// bucket boundary can never appear twice.
func Partition(bookings []booking.Booking, now time.Time) Sections {
	var s Sections

	s.NextUp = nextUp(bookings, now)

	endOfToday := endOfDay(now)
	startOfTomorrow := startOfDay(now.AddDate(0, 0, 1))
	endOfTomorrow := endOfDay(now.AddDate(0, 0, 1))
	startOfUpcoming := startOfDay(now.AddDate(0, 0, 2))

	for _, b := range bookings {
		start := b.StartTime
		switch {
		case s.NextUp != nil && b.ID == s.NextUp.ID:
			// Already placed.
		case start.After(now) && !start.After(endOfToday):
			s.LaterToday = append(s.LaterToday, b)
		case !start.Before(startOfTomorrow) && !start.After(endOfTomorrow):
			s.Tomorrow = append(s.Tomorrow, b)
		case !start.Before(startOfUpcoming):
			s.Upcoming = append(s.Upcoming, b)
		}
	}

	sortByStart(s.LaterToday)
	sortByStart(s.Tomorrow)
	sortByStart(s.Upcoming)
	return s
}

// nextUp finds the BOOKED booking with the earliest start strictly after now.
func nextUp(bookings []booking.Booking, now time.Time) *booking.Booking {
	var best *booking.Booking
	for i := range bookings {
		b := &bookings[i]
		if b.Status != booking.StatusBooked || !b.StartTime.After(now) {
			continue
		}
		if best == nil || b.StartTime.Before(best.StartTime) {
			best = b
		}
	}
	if best == nil {
		return nil
	}
	c := best.Clone()
	return &c
}

func sortByStart(bs []booking.Booking) {
	sort.SliceStable(bs, func(i, j int) bool {
		return bs[i].StartTime.Before(bs[j].StartTime)
	})
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999_000_000, t.Location())
}
