package application

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrSlotUnavailable is returned when the requested classroom slot is blocked or already booked.
	ErrSlotUnavailable = errors.New("application: slot unavailable")
	// ErrInvalidRange is returned when a series end date precedes its start date.
	ErrInvalidRange = errors.New("application: invalid date range")
	// ErrInvalidEmail is returned when a user email does not belong to the school domain.
	ErrInvalidEmail = errors.New("application: invalid email domain")
	// ErrSessionExpired is returned when a session token is past its validity window.
	ErrSessionExpired = errors.New("application: session expired")
)

// SeriesConflictError reports the occurrence dates of a recurring booking that
// collide with blocked slots or existing bookings. The series is never
// partially created when this error is returned.
type SeriesConflictError struct {
	Dates []time.Time
}

// Error implements the error interface.
func (e *SeriesConflictError) Error() string {
	if e == nil || len(e.Dates) == 0 {
		return "series conflict"
	}
	return "series conflict on " + strings.Join(e.FormattedDates(), ", ")
}

// FormattedDates renders the conflicting dates as dd/mm/yyyy, the format the
// booking screens show to users.
func (e *SeriesConflictError) FormattedDates() []string {
	if e == nil {
		return nil
	}
	formatted := make([]string, len(e.Dates))
	for i, date := range e.Dates {
		formatted[i] = date.Format("02/01/2006")
	}
	return formatted
}

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
