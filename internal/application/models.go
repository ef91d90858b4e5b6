package application

import (
	"time"

	"github.com/example/classroom-booking/internal/recurrence"
	"github.com/example/classroom-booking/internal/store"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// BookingInput captures caller provided fields for a one-off booking.
// TeacherID is optional; when empty the booking is made for the principal.
type BookingInput struct {
	ClassroomID string
	TeacherID   string
	ClassGroup  string
	Subject     string
	Date        time.Time
	Hour        int
}

// CreateBookingParams wraps the data required to create a booking.
type CreateBookingParams struct {
	Principal Principal
	Input     BookingInput
}

// SeriesInput captures caller provided fields for a recurring booking.
// The owning teacher is always the principal.
type SeriesInput struct {
	ClassroomID string
	ClassGroup  string
	Subject     string
	StartDate   time.Time
	EndDate     time.Time
	Hour        int
	Frequency   recurrence.Frequency
}

// CreateSeriesParams wraps the data required to create a recurring booking.
type CreateSeriesParams struct {
	Principal Principal
	Input     SeriesInput
}

// ClassroomInput captures caller provided classroom fields.
type ClassroomInput struct {
	Name      string
	Capacity  int
	Equipment []string
}

// CreateClassroomParams wraps the data required to create a classroom.
type CreateClassroomParams struct {
	Principal Principal
	Input     ClassroomInput
}

// UpdateClassroomParams wraps the data required to update a classroom.
type UpdateClassroomParams struct {
	Principal   Principal
	ClassroomID string
	Input       ClassroomInput
}

// UserInput captures caller provided user attributes.
type UserInput struct {
	Name  string
	Email string
	Role  store.Role
}

// CreateUserParams wraps the data required to create a user.
type CreateUserParams struct {
	Principal Principal
	Input     UserInput
}

// ImportClassroom is a classroom entry in an imported configuration file.
type ImportClassroom struct {
	Name      string
	Capacity  int
	Equipment []string
}

// ImportUser is a user entry in an imported configuration file.
type ImportUser struct {
	Name  string
	Email string
	Role  store.Role
}

// ImportSettings carries the optional settings section of an imported
// configuration. A nil slice means the corresponding field is absent from the
// file and the stored value is kept; an empty non-nil slice replaces the
// stored value with nothing.
type ImportSettings struct {
	SchoolYear  string
	ClassGroups []string
	Subjects    []string
}

// ImportData is a parsed configuration file. Nil sections are absent and
// leave the corresponding stored data untouched.
type ImportData struct {
	Classrooms []ImportClassroom
	Users      []ImportUser
	Settings   *ImportSettings
}

// ImportParams wraps the data required to import a configuration.
type ImportParams struct {
	Principal Principal
	Data      ImportData
}

// LoginResult captures the outcome of a successful login.
type LoginResult struct {
	User  store.User
	Token string
}
