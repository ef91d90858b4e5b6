package store

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrSlotTaken is returned when inserting a booking would violate the
	// one-booking-per-(classroom, date, hour) invariant.
	ErrSlotTaken = errors.New("store: slot already taken")
)

// SlotConflictError reports the calendar dates on which inserting a series
// would collide with existing bookings. It unwraps to ErrSlotTaken.
type SlotConflictError struct {
	Dates []time.Time
}

// Error implements the error interface.
func (e *SlotConflictError) Error() string {
	if e == nil || len(e.Dates) == 0 {
		return ErrSlotTaken.Error()
	}
	formatted := make([]string, 0, len(e.Dates))
	for _, date := range e.Dates {
		formatted = append(formatted, date.Format(DateLayout))
	}
	return fmt.Sprintf("store: slots already taken on %s", strings.Join(formatted, ", "))
}

// Unwrap lets errors.Is match the ErrSlotTaken sentinel.
func (e *SlotConflictError) Unwrap() error {
	return ErrSlotTaken
}
