package application

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/example/classroom-booking/internal/recurrence"
	"github.com/example/classroom-booking/internal/store"
)

func TestUserService_AddUser(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewUserService(store.NewMemory(), nil, nil, "@xtec.cat")

		_, err := svc.AddUser(context.Background(), CreateUserParams{
			Principal: Principal{UserID: "teacher-1"},
			Input:     UserInput{Name: "Laura Font", Email: "laura.font@xtec.cat", Role: store.RoleTeacher},
		})

		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects addresses outside the school domain", func(t *testing.T) {
		svc := NewUserService(store.NewMemory(), nil, nil, "@xtec.cat")

		_, err := svc.AddUser(context.Background(), CreateUserParams{
			Principal: Principal{UserID: "admin-1", IsAdmin: true},
			Input:     UserInput{Name: "Laura Font", Email: "laura.font@gmail.com", Role: store.RoleTeacher},
		})

		if !errors.Is(err, ErrInvalidEmail) {
			t.Fatalf("expected ErrInvalidEmail, got %v", err)
		}
	})

	t.Run("validates required attributes", func(t *testing.T) {
		svc := NewUserService(store.NewMemory(), nil, nil, "@xtec.cat")

		_, err := svc.AddUser(context.Background(), CreateUserParams{
			Principal: Principal{UserID: "admin-1", IsAdmin: true},
			Input:     UserInput{Name: "  ", Email: "", Role: store.Role("director")},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"name", "email", "role"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("requires the exact domain suffix", func(t *testing.T) {
		svc := NewUserService(store.NewMemory(), nil, nil, "@xtec.cat")

		_, err := svc.AddUser(context.Background(), CreateUserParams{
			Principal: Principal{UserID: "admin-1", IsAdmin: true},
			Input:     UserInput{Name: "Laura Font", Email: "Laura.Font@XTEC.CAT", Role: store.RoleTeacher},
		})

		if !errors.Is(err, ErrInvalidEmail) {
			t.Fatalf("expected ErrInvalidEmail for a differently cased domain, got %v", err)
		}
	})

	t.Run("persists the address as given", func(t *testing.T) {
		mem := store.NewMemory()
		svc := NewUserService(mem, nil, sequentialIDs("user"), "@xtec.cat")

		user, err := svc.AddUser(context.Background(), CreateUserParams{
			Principal: Principal{UserID: "admin-1", IsAdmin: true},
			Input:     UserInput{Name: "  Laura Font  ", Email: "  Laura.Font@xtec.cat ", Role: store.RoleTeacher},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if user.ID != "user-1" || user.Name != "Laura Font" || user.Email != "Laura.Font@xtec.cat" {
			t.Fatalf("unexpected user: %+v", user)
		}

		if _, err := mem.GetUserByEmail(context.Background(), "Laura.Font@xtec.cat"); err != nil {
			t.Fatalf("expected user persisted, got %v", err)
		}
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	t.Run("cascades and notifies the departing owner", func(t *testing.T) {
		ctx := context.Background()
		mem := seedBookingStore(t)
		gateway := &gatewayStub{}
		bookings := NewBookingService(mem, nil, sequentialIDs("id"))
		svc := NewUserService(mem, gateway, nil, "@xtec.cat")

		series, err := bookings.CreateSeries(ctx, CreateSeriesParams{
			Principal: Principal{UserID: "teacher-1"},
			Input: SeriesInput{
				ClassroomID: "aula-2", ClassGroup: "3r ESO A", Subject: "Química",
				StartDate: mustDate(t, "2024-06-04"), EndDate: mustDate(t, "2024-06-18"),
				Hour: 12, Frequency: recurrence.FrequencyWeekly,
			},
		})
		if err != nil {
			t.Fatalf("failed to create series: %v", err)
		}

		if err := svc.DeleteUser(ctx, Principal{UserID: "admin-1", IsAdmin: true}, "teacher-1"); err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if _, err := mem.GetUser(ctx, "teacher-1"); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected user removed, got %v", err)
		}
		remaining, err := mem.ListBookings(ctx, store.BookingFilter{TeacherID: "teacher-1"})
		if err != nil {
			t.Fatalf("failed to list bookings: %v", err)
		}
		if len(remaining) != 0 {
			t.Fatalf("expected no bookings left for the user, got %d", len(remaining))
		}

		want := fmt.Sprintf("series_cancelled:%s:teacher-1", series.ID)
		if len(gateway.events) != 1 || gateway.events[0] != want {
			t.Fatalf("expected %q, got %v", want, gateway.events)
		}
	})

	t.Run("deleting a missing user is a no-op", func(t *testing.T) {
		gateway := &gatewayStub{}
		svc := NewUserService(store.NewMemory(), gateway, nil, "@xtec.cat")

		if err := svc.DeleteUser(context.Background(), Principal{UserID: "admin-1", IsAdmin: true}, "missing"); err != nil {
			t.Fatalf("expected nil, got %v", err)
		}
		if len(gateway.events) != 0 {
			t.Fatalf("expected no notifications, got %v", gateway.events)
		}
	})

	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewUserService(store.NewMemory(), nil, nil, "@xtec.cat")

		err := svc.DeleteUser(context.Background(), Principal{UserID: "teacher-1"}, "teacher-2")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestUserService_ListUsers(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	for _, user := range []store.User{
		{ID: "u-2", Name: "jordi Serra", Email: "jordi.serra@xtec.cat", Role: store.RoleTeacher},
		{ID: "u-1", Name: "Anna Vila", Email: "anna.vila@xtec.cat", Role: store.RoleAdmin},
	} {
		if _, err := mem.CreateUser(ctx, user); err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}
	}
	svc := NewUserService(mem, nil, nil, "@xtec.cat")

	// The login screen calls this before any session exists.
	users, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(users) != 2 || users[0].Name != "Anna Vila" || users[1].Name != "jordi Serra" {
		t.Fatalf("expected case-insensitive name order, got %+v", users)
	}
}
