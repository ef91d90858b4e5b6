package store

import "context"

// Store owns every entity collection and is the only mutation surface over
// them. Implementations must apply each operation atomically: cascades remove
// the target and all its dependents as one logical step, and booking inserts
// enforce slot uniqueness at write time so a caller racing between an
// availability check and a commit is still rejected.
type Store interface {
	// Users.
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	// DeleteUser removes the user, every booking they own, and every series
	// they own together with its bookings.
	DeleteUser(ctx context.Context, id string) (CascadeResult, error)

	// Classrooms.
	CreateClassroom(ctx context.Context, classroom Classroom) (Classroom, error)
	UpdateClassroom(ctx context.Context, classroom Classroom) (Classroom, error)
	GetClassroom(ctx context.Context, id string) (Classroom, error)
	ListClassrooms(ctx context.Context) ([]Classroom, error)
	// DeleteClassroom removes the classroom and every booking, blocked slot,
	// and series (with its bookings) referencing it.
	DeleteClassroom(ctx context.Context, id string) (CascadeResult, error)
	// ReplaceClassrooms discards the whole classroom catalog and installs the
	// provided one.
	ReplaceClassrooms(ctx context.Context, classrooms []Classroom) error

	// Blocked slots.
	CreateBlockedSlot(ctx context.Context, slot BlockedSlot) (BlockedSlot, error)
	// ListBlockedSlots returns the blocked slots for a classroom, or all of
	// them when classroomID is empty.
	ListBlockedSlots(ctx context.Context, classroomID string) ([]BlockedSlot, error)

	// Bookings.
	CreateBooking(ctx context.Context, booking Booking) (Booking, error)
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
	DeleteBooking(ctx context.Context, id string) error

	// Series. CreateSeries inserts the series record and all its bookings
	// all-or-nothing; a *SlotConflictError names every colliding date.
	CreateSeries(ctx context.Context, series BookingSeries, bookings []Booking) (BookingSeries, error)
	GetSeries(ctx context.Context, id string) (BookingSeries, error)
	ListSeries(ctx context.Context, filter SeriesFilter) ([]BookingSeries, error)
	// DeleteSeries removes the series and every booking carrying its id.
	DeleteSeries(ctx context.Context, id string) error

	// Settings.
	GetSettings(ctx context.Context) (AppSettings, error)
	PutSettings(ctx context.Context, settings AppSettings) error

	// Reset clears all bookings, blocked slots, and series. Users, classrooms,
	// and settings are untouched.
	Reset(ctx context.Context) error
}
