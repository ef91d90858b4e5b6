package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/classroom-booking/internal/recurrence"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(DateLayout, value)
	if err != nil {
		t.Fatalf("failed to parse date %q: %v", value, err)
	}
	return ts
}

func seededMemory(t *testing.T) *Memory {
	t.Helper()
	ctx := context.Background()
	m := NewMemory()

	users := []User{
		{ID: "user-1", Name: "Carme Lluís", Email: "clluis@xtec.cat", Role: RoleAdmin},
		{ID: "user-2", Name: "Jordi Pons", Email: "jpons@xtec.cat", Role: RoleTeacher},
	}
	for _, user := range users {
		if _, err := m.CreateUser(ctx, user); err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}
	}

	classrooms := []Classroom{
		{ID: "aula-1", Name: "Aula de Teoria 1", Capacity: 30, Equipment: []string{"Projector"}},
		{ID: "aula-2", Name: "Laboratori de Ciències", Capacity: 24},
	}
	for _, classroom := range classrooms {
		if _, err := m.CreateClassroom(ctx, classroom); err != nil {
			t.Fatalf("failed to seed classroom: %v", err)
		}
	}

	if _, err := m.CreateBlockedSlot(ctx, BlockedSlot{ID: "block-1", ClassroomID: "aula-2", Day: time.Wednesday, Hour: 8, Subject: "Química", ClassGroup: "1r Batx A"}); err != nil {
		t.Fatalf("failed to seed blocked slot: %v", err)
	}

	return m
}

func TestMemory_CreateBookingEnforcesSlotUniqueness(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := seededMemory(t)

	first := Booking{ID: "res-1", ClassroomID: "aula-1", TeacherID: "user-2", Date: day(t, "2024-06-03"), Hour: 9}
	if _, err := m.CreateBooking(ctx, first); err != nil {
		t.Fatalf("unexpected error creating booking: %v", err)
	}

	duplicate := Booking{ID: "res-2", ClassroomID: "aula-1", TeacherID: "user-1", Date: day(t, "2024-06-03"), Hour: 9}
	if _, err := m.CreateBooking(ctx, duplicate); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}

	// Same hour in another room or another hour in the same room is fine.
	for _, booking := range []Booking{
		{ID: "res-3", ClassroomID: "aula-2", TeacherID: "user-2", Date: day(t, "2024-06-03"), Hour: 9},
		{ID: "res-4", ClassroomID: "aula-1", TeacherID: "user-2", Date: day(t, "2024-06-03"), Hour: 10},
	} {
		if _, err := m.CreateBooking(ctx, booking); err != nil {
			t.Fatalf("unexpected error creating booking %s: %v", booking.ID, err)
		}
	}
}

func TestMemory_DeleteBookingFreesSlot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := seededMemory(t)

	booking := Booking{ID: "res-1", ClassroomID: "aula-1", TeacherID: "user-2", Date: day(t, "2024-06-03"), Hour: 9}
	if _, err := m.CreateBooking(ctx, booking); err != nil {
		t.Fatalf("unexpected error creating booking: %v", err)
	}
	if err := m.DeleteBooking(ctx, "res-1"); err != nil {
		t.Fatalf("unexpected error deleting booking: %v", err)
	}
	if err := m.DeleteBooking(ctx, "res-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for second delete, got %v", err)
	}
	if _, err := m.CreateBooking(ctx, Booking{ID: "res-2", ClassroomID: "aula-1", TeacherID: "user-2", Date: day(t, "2024-06-03"), Hour: 9}); err != nil {
		t.Fatalf("expected slot to be free after delete, got %v", err)
	}
}

func TestMemory_CreateSeriesIsAllOrNothing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := seededMemory(t)

	occupied := Booking{ID: "res-1", ClassroomID: "aula-1", TeacherID: "user-1", Date: day(t, "2024-06-10"), Hour: 9}
	if _, err := m.CreateBooking(ctx, occupied); err != nil {
		t.Fatalf("unexpected error creating booking: %v", err)
	}

	series := BookingSeries{
		ID:          "series-1",
		ClassroomID: "aula-1",
		TeacherID:   "user-2",
		StartDate:   day(t, "2024-06-03"),
		EndDate:     day(t, "2024-06-17"),
		Hour:        9,
		Frequency:   recurrence.FrequencyWeekly,
	}
	bookings := []Booking{
		{ID: "res-s1", ClassroomID: "aula-1", TeacherID: "user-2", Date: day(t, "2024-06-03"), Hour: 9},
		{ID: "res-s2", ClassroomID: "aula-1", TeacherID: "user-2", Date: day(t, "2024-06-10"), Hour: 9},
		{ID: "res-s3", ClassroomID: "aula-1", TeacherID: "user-2", Date: day(t, "2024-06-17"), Hour: 9},
	}

	_, err := m.CreateSeries(ctx, series, bookings)
	var conflict *SlotConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected SlotConflictError, got %v", err)
	}
	if len(conflict.Dates) != 1 || !conflict.Dates[0].Equal(day(t, "2024-06-10")) {
		t.Fatalf("expected conflict on 2024-06-10, got %v", conflict.Dates)
	}

	stored, err := m.ListBookings(ctx, BookingFilter{SeriesID: "series-1"})
	if err != nil {
		t.Fatalf("unexpected error listing bookings: %v", err)
	}
	if len(stored) != 0 {
		t.Fatalf("expected no partial series bookings, got %d", len(stored))
	}

	// Free the slot and the identical series commits in full.
	if err := m.DeleteBooking(ctx, "res-1"); err != nil {
		t.Fatalf("unexpected error deleting booking: %v", err)
	}
	if _, err := m.CreateSeries(ctx, series, bookings); err != nil {
		t.Fatalf("unexpected error creating series: %v", err)
	}
	stored, err = m.ListBookings(ctx, BookingFilter{SeriesID: "series-1"})
	if err != nil {
		t.Fatalf("unexpected error listing bookings: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("expected 3 series bookings, got %d", len(stored))
	}
}

func TestMemory_DeleteSeriesRemovesItsBookings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := seededMemory(t)

	series := BookingSeries{ID: "series-1", ClassroomID: "aula-1", TeacherID: "user-2", StartDate: day(t, "2024-06-03"), EndDate: day(t, "2024-06-10"), Hour: 9, Frequency: recurrence.FrequencyWeekly}
	bookings := []Booking{
		{ID: "res-s1", ClassroomID: "aula-1", TeacherID: "user-2", Date: day(t, "2024-06-03"), Hour: 9},
		{ID: "res-s2", ClassroomID: "aula-1", TeacherID: "user-2", Date: day(t, "2024-06-10"), Hour: 9},
	}
	if _, err := m.CreateSeries(ctx, series, bookings); err != nil {
		t.Fatalf("unexpected error creating series: %v", err)
	}
	standalone := Booking{ID: "res-1", ClassroomID: "aula-1", TeacherID: "user-2", Date: day(t, "2024-06-04"), Hour: 9}
	if _, err := m.CreateBooking(ctx, standalone); err != nil {
		t.Fatalf("unexpected error creating booking: %v", err)
	}

	if err := m.DeleteSeries(ctx, "series-1"); err != nil {
		t.Fatalf("unexpected error deleting series: %v", err)
	}
	if err := m.DeleteSeries(ctx, "series-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for second delete, got %v", err)
	}

	remaining, err := m.ListBookings(ctx, BookingFilter{})
	if err != nil {
		t.Fatalf("unexpected error listing bookings: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != "res-1" {
		t.Fatalf("expected only the standalone booking to survive, got %v", remaining)
	}
}

func TestMemory_DeleteClassroomCascades(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := seededMemory(t)

	series := BookingSeries{ID: "series-1", ClassroomID: "aula-2", TeacherID: "user-2", StartDate: day(t, "2024-06-03"), EndDate: day(t, "2024-06-10"), Hour: 9, Frequency: recurrence.FrequencyWeekly}
	seriesBookings := []Booking{
		{ID: "res-s1", ClassroomID: "aula-2", TeacherID: "user-2", Date: day(t, "2024-06-03"), Hour: 9},
		{ID: "res-s2", ClassroomID: "aula-2", TeacherID: "user-2", Date: day(t, "2024-06-10"), Hour: 9},
	}
	if _, err := m.CreateSeries(ctx, series, seriesBookings); err != nil {
		t.Fatalf("unexpected error creating series: %v", err)
	}
	if _, err := m.CreateBooking(ctx, Booking{ID: "res-1", ClassroomID: "aula-2", TeacherID: "user-1", Date: day(t, "2024-06-04"), Hour: 10}); err != nil {
		t.Fatalf("unexpected error creating booking: %v", err)
	}
	if _, err := m.CreateBooking(ctx, Booking{ID: "res-other", ClassroomID: "aula-1", TeacherID: "user-2", Date: day(t, "2024-06-04"), Hour: 10}); err != nil {
		t.Fatalf("unexpected error creating booking: %v", err)
	}

	result, err := m.DeleteClassroom(ctx, "aula-2")
	if err != nil {
		t.Fatalf("unexpected error deleting classroom: %v", err)
	}
	if len(result.Series) != 1 || result.Series[0].ID != "series-1" {
		t.Fatalf("expected cascade to report series-1, got %v", result.Series)
	}
	if result.Bookings != 3 {
		t.Fatalf("expected 3 removed bookings, got %d", result.Bookings)
	}
	if result.BlockedSlots != 1 {
		t.Fatalf("expected 1 removed blocked slot, got %d", result.BlockedSlots)
	}

	if _, err := m.GetClassroom(ctx, "aula-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected classroom to be gone, got %v", err)
	}
	bookings, err := m.ListBookings(ctx, BookingFilter{ClassroomID: "aula-2"})
	if err != nil {
		t.Fatalf("unexpected error listing bookings: %v", err)
	}
	if len(bookings) != 0 {
		t.Fatalf("expected no bookings referencing aula-2, got %v", bookings)
	}
	slots, err := m.ListBlockedSlots(ctx, "aula-2")
	if err != nil {
		t.Fatalf("unexpected error listing blocked slots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no blocked slots referencing aula-2, got %v", slots)
	}
	allSeries, err := m.ListSeries(ctx, SeriesFilter{ClassroomID: "aula-2"})
	if err != nil {
		t.Fatalf("unexpected error listing series: %v", err)
	}
	if len(allSeries) != 0 {
		t.Fatalf("expected no series referencing aula-2, got %v", allSeries)
	}

	// The unrelated classroom's booking survives.
	if _, err := m.GetBooking(ctx, "res-other"); err != nil {
		t.Fatalf("expected unrelated booking to survive, got %v", err)
	}
}

func TestMemory_DeleteUserCascades(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := seededMemory(t)

	series := BookingSeries{ID: "series-1", ClassroomID: "aula-1", TeacherID: "user-2", StartDate: day(t, "2024-06-03"), EndDate: day(t, "2024-06-10"), Hour: 9, Frequency: recurrence.FrequencyWeekly}
	seriesBookings := []Booking{
		{ID: "res-s1", ClassroomID: "aula-1", TeacherID: "user-2", Date: day(t, "2024-06-03"), Hour: 9},
	}
	if _, err := m.CreateSeries(ctx, series, seriesBookings); err != nil {
		t.Fatalf("unexpected error creating series: %v", err)
	}
	if _, err := m.CreateBooking(ctx, Booking{ID: "res-1", ClassroomID: "aula-1", TeacherID: "user-2", Date: day(t, "2024-06-04"), Hour: 9}); err != nil {
		t.Fatalf("unexpected error creating booking: %v", err)
	}
	if _, err := m.CreateBooking(ctx, Booking{ID: "res-admin", ClassroomID: "aula-1", TeacherID: "user-1", Date: day(t, "2024-06-05"), Hour: 9}); err != nil {
		t.Fatalf("unexpected error creating booking: %v", err)
	}

	result, err := m.DeleteUser(ctx, "user-2")
	if err != nil {
		t.Fatalf("unexpected error deleting user: %v", err)
	}
	if len(result.Series) != 1 || result.Series[0].ID != "series-1" {
		t.Fatalf("expected cascade to report series-1, got %v", result.Series)
	}
	if result.Bookings != 2 {
		t.Fatalf("expected 2 removed bookings, got %d", result.Bookings)
	}

	bookings, err := m.ListBookings(ctx, BookingFilter{TeacherID: "user-2"})
	if err != nil {
		t.Fatalf("unexpected error listing bookings: %v", err)
	}
	if len(bookings) != 0 {
		t.Fatalf("expected no bookings owned by user-2, got %v", bookings)
	}
	ownedSeries, err := m.ListSeries(ctx, SeriesFilter{TeacherID: "user-2"})
	if err != nil {
		t.Fatalf("unexpected error listing series: %v", err)
	}
	if len(ownedSeries) != 0 {
		t.Fatalf("expected no series owned by user-2, got %v", ownedSeries)
	}
	if _, err := m.GetBooking(ctx, "res-admin"); err != nil {
		t.Fatalf("expected unrelated booking to survive, got %v", err)
	}
}

func TestMemory_ResetClearsYearScopedCollections(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := seededMemory(t)

	if _, err := m.CreateBooking(ctx, Booking{ID: "res-1", ClassroomID: "aula-1", TeacherID: "user-2", Date: day(t, "2024-06-03"), Hour: 9}); err != nil {
		t.Fatalf("unexpected error creating booking: %v", err)
	}
	series := BookingSeries{ID: "series-1", ClassroomID: "aula-1", TeacherID: "user-2", StartDate: day(t, "2024-06-10"), EndDate: day(t, "2024-06-10"), Hour: 9, Frequency: recurrence.FrequencyDaily}
	if _, err := m.CreateSeries(ctx, series, []Booking{{ID: "res-s1", ClassroomID: "aula-1", TeacherID: "user-2", Date: day(t, "2024-06-10"), Hour: 9}}); err != nil {
		t.Fatalf("unexpected error creating series: %v", err)
	}

	if err := m.Reset(ctx); err != nil {
		t.Fatalf("unexpected error resetting store: %v", err)
	}

	bookings, _ := m.ListBookings(ctx, BookingFilter{})
	slots, _ := m.ListBlockedSlots(ctx, "")
	allSeries, _ := m.ListSeries(ctx, SeriesFilter{})
	if len(bookings) != 0 || len(slots) != 0 || len(allSeries) != 0 {
		t.Fatalf("expected empty collections after reset, got %d bookings, %d blocked slots, %d series", len(bookings), len(slots), len(allSeries))
	}

	users, _ := m.ListUsers(ctx)
	classrooms, _ := m.ListClassrooms(ctx)
	if len(users) != 2 || len(classrooms) != 2 {
		t.Fatalf("expected users and classrooms to survive reset, got %d users, %d classrooms", len(users), len(classrooms))
	}

	// The reused slot is insertable again.
	if _, err := m.CreateBooking(ctx, Booking{ID: "res-2", ClassroomID: "aula-1", TeacherID: "user-2", Date: day(t, "2024-06-03"), Hour: 9}); err != nil {
		t.Fatalf("expected slot to be free after reset, got %v", err)
	}
}

func TestMemory_ReplaceClassroomsDiscardsCatalog(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := seededMemory(t)

	if err := m.ReplaceClassrooms(ctx, []Classroom{{ID: "aula-new", Name: "Aula Nova", Capacity: 20}}); err != nil {
		t.Fatalf("unexpected error replacing classrooms: %v", err)
	}

	classrooms, err := m.ListClassrooms(ctx)
	if err != nil {
		t.Fatalf("unexpected error listing classrooms: %v", err)
	}
	if len(classrooms) != 1 || classrooms[0].ID != "aula-new" {
		t.Fatalf("expected only the replacement classroom, got %v", classrooms)
	}
	if _, err := m.GetClassroom(ctx, "aula-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected aula-1 to be gone, got %v", err)
	}
}

func TestMemory_UpdateClassroomMissingID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := seededMemory(t)

	_, err := m.UpdateClassroom(ctx, Classroom{ID: "aula-missing", Name: "Fantasma", Capacity: 10})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemory_GetUserByEmail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := seededMemory(t)

	user, err := m.GetUserByEmail(ctx, "jpons@xtec.cat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "user-2" {
		t.Fatalf("expected user-2, got %q", user.ID)
	}
	if _, err := m.GetUserByEmail(ctx, "unknown@xtec.cat"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
