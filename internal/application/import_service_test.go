package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/classroom-booking/internal/store"
)

func TestImportService_ImportConfiguration(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewImportService(store.NewMemory(), nil)

		err := svc.ImportConfiguration(context.Background(), ImportParams{
			Principal: Principal{UserID: "teacher-1"},
		})

		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("applies every section with its own policy", func(t *testing.T) {
		ctx := context.Background()
		mem := seedBookingStore(t)
		svc := NewImportService(mem, sequentialIDs("imp"))

		// A leftover booking from the outgoing school year.
		if _, err := mem.CreateBooking(ctx, store.Booking{
			ID: "old-res", ClassroomID: "aula-2", TeacherID: "teacher-1",
			ClassGroup: "4t ESO", Subject: "Història", Date: mustDate(t, "2024-05-20"), Hour: 9,
		}); err != nil {
			t.Fatalf("failed to seed booking: %v", err)
		}

		if err := mem.PutSettings(ctx, store.AppSettings{
			SchoolYear:  "2023-2024",
			ClassGroups: []string{"1r ESO A"},
			Subjects:    []string{"Història"},
		}); err != nil {
			t.Fatalf("failed to seed settings: %v", err)
		}

		err := svc.ImportConfiguration(ctx, ImportParams{
			Principal: Principal{UserID: "admin-1", IsAdmin: true},
			Data: ImportData{
				Classrooms: []ImportClassroom{
					{Name: "Aula Nova", Capacity: 32, Equipment: []string{"Canó"}},
				},
				Users: []ImportUser{
					{Name: "Laura Font", Email: "laura.font@xtec.cat", Role: store.RoleTeacher},
					// The exact address is already registered; skipped.
					{Name: "Marta Puig", Email: "marta.puig@xtec.cat", Role: store.RoleTeacher},
					// A differently cased address is a distinct key and merges in.
					{Name: "Marta Puig", Email: "MARTA.PUIG@xtec.cat", Role: store.RoleTeacher},
					{Name: "Sense Rol", Email: "sense.rol@xtec.cat"},
				},
				Settings: &ImportSettings{
					SchoolYear:  "2024-2025",
					ClassGroups: []string{"1r ESO A", "1r ESO B"},
				},
			},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		classrooms, err := mem.ListClassrooms(ctx)
		if err != nil {
			t.Fatalf("failed to list classrooms: %v", err)
		}
		if len(classrooms) != 1 || classrooms[0].Name != "Aula Nova" {
			t.Fatalf("expected the catalog replaced wholesale, got %+v", classrooms)
		}

		users, err := mem.ListUsers(ctx)
		if err != nil {
			t.Fatalf("failed to list users: %v", err)
		}
		if len(users) != 6 {
			t.Fatalf("expected 3 seeded + 3 merged users, got %d", len(users))
		}
		if _, err := mem.GetUserByEmail(ctx, "MARTA.PUIG@xtec.cat"); err != nil {
			t.Fatalf("expected the differently cased address merged as its own account, got %v", err)
		}
		merged, err := mem.GetUserByEmail(ctx, "sense.rol@xtec.cat")
		if err != nil {
			t.Fatalf("expected merged user, got %v", err)
		}
		if merged.Role != store.RoleTeacher {
			t.Fatalf("expected missing role to default to teacher, got %q", merged.Role)
		}

		bookings, err := mem.ListBookings(ctx, store.BookingFilter{})
		if err != nil {
			t.Fatalf("failed to list bookings: %v", err)
		}
		if len(bookings) != 0 {
			t.Fatalf("expected the calendar cleared, got %d bookings", len(bookings))
		}
		blocked, err := mem.ListBlockedSlots(ctx, "")
		if err != nil {
			t.Fatalf("failed to list blocked slots: %v", err)
		}
		if len(blocked) != 0 {
			t.Fatalf("expected blocked slots cleared, got %d", len(blocked))
		}

		settings, err := mem.GetSettings(ctx)
		if err != nil {
			t.Fatalf("failed to load settings: %v", err)
		}
		if settings.SchoolYear != "2024-2025" {
			t.Fatalf("expected school year replaced, got %q", settings.SchoolYear)
		}
		if len(settings.ClassGroups) != 2 {
			t.Fatalf("expected class groups replaced, got %v", settings.ClassGroups)
		}
		if len(settings.Subjects) != 1 || settings.Subjects[0] != "Història" {
			t.Fatalf("expected absent subjects section to keep stored value, got %v", settings.Subjects)
		}
		if len(settings.Teachers) != 6 {
			t.Fatalf("expected the teacher roster recomputed from all accounts, got %v", settings.Teachers)
		}
	})

	t.Run("absent sections leave stored data untouched", func(t *testing.T) {
		ctx := context.Background()
		mem := seedBookingStore(t)
		svc := NewImportService(mem, sequentialIDs("imp"))

		err := svc.ImportConfiguration(ctx, ImportParams{
			Principal: Principal{UserID: "admin-1", IsAdmin: true},
			Data:      ImportData{},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		classrooms, err := mem.ListClassrooms(ctx)
		if err != nil {
			t.Fatalf("failed to list classrooms: %v", err)
		}
		if len(classrooms) != 2 {
			t.Fatalf("expected the seeded catalog kept, got %d", len(classrooms))
		}
		users, err := mem.ListUsers(ctx)
		if err != nil {
			t.Fatalf("failed to list users: %v", err)
		}
		if len(users) != 3 {
			t.Fatalf("expected the seeded accounts kept, got %d", len(users))
		}

		// The calendar reset still happens.
		blocked, err := mem.ListBlockedSlots(ctx, "")
		if err != nil {
			t.Fatalf("failed to list blocked slots: %v", err)
		}
		if len(blocked) != 0 {
			t.Fatalf("expected blocked slots cleared, got %d", len(blocked))
		}
	})
}

func TestImportService_Settings(t *testing.T) {
	ctx := context.Background()
	mem := seedBookingStore(t)
	svc := NewImportService(mem, nil)

	if err := mem.PutSettings(ctx, store.AppSettings{
		SchoolYear: "2024-2025",
		Teachers:   []store.TeacherRef{{ID: "stale", Name: "Ja no hi és"}},
	}); err != nil {
		t.Fatalf("failed to seed settings: %v", err)
	}

	settings, err := svc.Settings(ctx, Principal{UserID: "teacher-1"})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if settings.SchoolYear != "2024-2025" {
		t.Fatalf("unexpected school year %q", settings.SchoolYear)
	}
	if len(settings.Teachers) != 3 {
		t.Fatalf("expected the roster derived from current accounts, got %v", settings.Teachers)
	}
	for _, ref := range settings.Teachers {
		if ref.ID == "stale" {
			t.Fatal("expected the stored stale roster to be ignored")
		}
	}

	if _, err := svc.Settings(ctx, Principal{}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized without a session, got %v", err)
	}
}
