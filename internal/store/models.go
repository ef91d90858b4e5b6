package store

import (
	"time"

	"github.com/example/classroom-booking/internal/recurrence"
)

// DateLayout is the calendar-day format used for booking dates throughout the
// store. Dates are day-granular; timestamps are normalized to midnight UTC.
const DateLayout = "2006-01-02"

// Role identifies the permission level of a user.
type Role string

const (
	// RoleAdmin grants catalog management and configuration import.
	RoleAdmin Role = "admin"
	// RoleTeacher may create bookings and manage their own.
	RoleTeacher Role = "teacher"
)

// User is an account that can log in and own bookings.
type User struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

// Classroom is a bookable room in the school catalog.
type Classroom struct {
	ID        string
	Name      string
	Capacity  int
	Equipment []string
}

// BlockedSlot marks a recurring weekly unavailability for a classroom, such as
// fixed curriculum use. It is bound to a weekday, not a calendar date.
type BlockedSlot struct {
	ID          string
	ClassroomID string
	Day         time.Weekday
	Hour        int
	Subject     string
	ClassGroup  string
}

// Booking reserves one classroom for one hour on one calendar day. SeriesID is
// empty for standalone bookings.
type Booking struct {
	ID          string
	SeriesID    string
	ClassroomID string
	TeacherID   string
	ClassGroup  string
	Subject     string
	Date        time.Time
	Hour        int
}

// BookingSeries is the recurring template that owns a set of generated
// bookings. Every booking carrying its id shares classroom, teacher, group,
// subject, and hour with the series.
type BookingSeries struct {
	ID          string
	ClassroomID string
	TeacherID   string
	ClassGroup  string
	Subject     string
	StartDate   time.Time
	EndDate     time.Time
	Hour        int
	Frequency   recurrence.Frequency
}

// TeacherRef is the denormalized (id, name) projection of a user kept in the
// application settings.
type TeacherRef struct {
	ID   string
	Name string
}

// AppSettings holds the school-year configuration shown in pickers. The
// Teachers projection is recomputed from the current user set rather than
// edited directly.
type AppSettings struct {
	SchoolYear  string
	Teachers    []TeacherRef
	ClassGroups []string
	Subjects    []string
}

// BookingFilter narrows booking queries. Zero-valued fields are ignored.
type BookingFilter struct {
	ClassroomID string
	TeacherID   string
	SeriesID    string
	Date        *time.Time
}

// SeriesFilter narrows series queries. Zero-valued fields are ignored.
type SeriesFilter struct {
	ClassroomID string
	TeacherID   string
}

// CascadeResult reports what a cascading delete removed alongside its target.
// The removed series are returned so callers can emit cancellation
// notifications for each of them.
type CascadeResult struct {
	Series       []BookingSeries
	Bookings     int
	BlockedSlots int
}
