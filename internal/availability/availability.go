// Package availability decides whether a classroom slot can be booked. It is
// pure: callers pass the current blocked slots and bookings, and no store
// access or mutation happens here.
package availability

import (
	"time"

	"github.com/example/classroom-booking/internal/store"
)

// SlotAvailable reports whether the (classroom, date, hour) slot is free. A
// slot is unavailable when a blocked slot matches the classroom, the date's
// weekday, and the hour, or when an existing booking matches the classroom,
// the exact date, and the hour.
func SlotAvailable(blocked []store.BlockedSlot, bookings []store.Booking, classroomID string, date time.Time, hour int) bool {
	weekday := date.Weekday()

	for _, slot := range blocked {
		if slot.ClassroomID == classroomID && slot.Day == weekday && slot.Hour == hour {
			return false
		}
	}

	for _, booking := range bookings {
		if booking.ClassroomID == classroomID && sameDay(booking.Date, date) && booking.Hour == hour {
			return false
		}
	}

	return true
}

// ConflictingDates filters the candidate dates of a recurring series down to
// those that are not available, preserving candidate order.
func ConflictingDates(blocked []store.BlockedSlot, bookings []store.Booking, classroomID string, dates []time.Time, hour int) []time.Time {
	var conflicts []time.Time
	for _, date := range dates {
		if !SlotAvailable(blocked, bookings, classroomID, date, hour) {
			conflicts = append(conflicts, date)
		}
	}
	return conflicts
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
