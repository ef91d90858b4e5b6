package application

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/example/classroom-booking/internal/recurrence"
	"github.com/example/classroom-booking/internal/store"
)

func TestClassroomService_AddClassroom(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewClassroomService(store.NewMemory(), nil, nil)

		_, err := svc.AddClassroom(context.Background(), CreateClassroomParams{
			Principal: Principal{UserID: "teacher-1"},
			Input:     ClassroomInput{Name: "Aula de Música", Capacity: 20},
		})

		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates required attributes", func(t *testing.T) {
		svc := NewClassroomService(store.NewMemory(), nil, nil)

		_, err := svc.AddClassroom(context.Background(), CreateClassroomParams{
			Principal: Principal{UserID: "admin-1", IsAdmin: true},
			Input:     ClassroomInput{Name: "   ", Capacity: 0},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["name"]; !ok {
			t.Fatalf("expected name validation error, got %v", vErr.FieldErrors)
		}
		if _, ok := vErr.FieldErrors["capacity"]; !ok {
			t.Fatalf("expected capacity validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("persists classrooms for administrators", func(t *testing.T) {
		mem := store.NewMemory()
		svc := NewClassroomService(mem, nil, sequentialIDs("aula"))

		classroom, err := svc.AddClassroom(context.Background(), CreateClassroomParams{
			Principal: Principal{UserID: "admin-1", IsAdmin: true},
			Input: ClassroomInput{
				Name:      "  Aula de Música  ",
				Capacity:  20,
				Equipment: []string{" Piano ", "", "Projector"},
			},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if classroom.ID != "aula-1" || classroom.Name != "Aula de Música" {
			t.Fatalf("unexpected classroom: %+v", classroom)
		}
		if len(classroom.Equipment) != 2 || classroom.Equipment[0] != "Piano" || classroom.Equipment[1] != "Projector" {
			t.Fatalf("expected trimmed equipment, got %v", classroom.Equipment)
		}

		if _, err := mem.GetClassroom(context.Background(), "aula-1"); err != nil {
			t.Fatalf("expected classroom persisted, got %v", err)
		}
	})
}

func TestClassroomService_UpdateClassroom(t *testing.T) {
	t.Run("replaces attributes of an existing classroom", func(t *testing.T) {
		mem := store.NewMemory()
		if _, err := mem.CreateClassroom(context.Background(), store.Classroom{ID: "aula-1", Name: "Aula 1", Capacity: 25}); err != nil {
			t.Fatalf("failed to seed classroom: %v", err)
		}
		svc := NewClassroomService(mem, nil, nil)

		err := svc.UpdateClassroom(context.Background(), UpdateClassroomParams{
			Principal:   Principal{UserID: "admin-1", IsAdmin: true},
			ClassroomID: "aula-1",
			Input:       ClassroomInput{Name: "Aula Gran", Capacity: 40, Equipment: []string{"Pissarra digital"}},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		updated, err := mem.GetClassroom(context.Background(), "aula-1")
		if err != nil {
			t.Fatalf("failed to load classroom: %v", err)
		}
		if updated.Name != "Aula Gran" || updated.Capacity != 40 {
			t.Fatalf("unexpected classroom after update: %+v", updated)
		}
	})

	t.Run("updating a missing classroom changes nothing and succeeds", func(t *testing.T) {
		mem := store.NewMemory()
		svc := NewClassroomService(mem, nil, nil)

		err := svc.UpdateClassroom(context.Background(), UpdateClassroomParams{
			Principal:   Principal{UserID: "admin-1", IsAdmin: true},
			ClassroomID: "missing",
			Input:       ClassroomInput{Name: "Aula Fantasma", Capacity: 10},
		})
		if err != nil {
			t.Fatalf("expected nil, got %v", err)
		}

		classrooms, err := mem.ListClassrooms(context.Background())
		if err != nil {
			t.Fatalf("failed to list classrooms: %v", err)
		}
		if len(classrooms) != 0 {
			t.Fatalf("expected no classrooms, got %d", len(classrooms))
		}
	})

	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewClassroomService(store.NewMemory(), nil, nil)

		err := svc.UpdateClassroom(context.Background(), UpdateClassroomParams{
			Principal:   Principal{UserID: "teacher-1"},
			ClassroomID: "aula-1",
			Input:       ClassroomInput{Name: "Aula", Capacity: 10},
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestClassroomService_DeleteClassroom(t *testing.T) {
	t.Run("cascades and notifies owners of removed series", func(t *testing.T) {
		ctx := context.Background()
		mem := seedBookingStore(t)
		gateway := &gatewayStub{}
		bookings := NewBookingService(mem, nil, sequentialIDs("id"))
		svc := NewClassroomService(mem, gateway, nil)

		series, err := bookings.CreateSeries(ctx, CreateSeriesParams{
			Principal: Principal{UserID: "teacher-1"},
			Input: SeriesInput{
				ClassroomID: "aula-1", ClassGroup: "3r ESO A", Subject: "Química",
				StartDate: mustDate(t, "2024-06-04"), EndDate: mustDate(t, "2024-06-18"),
				Hour: 12, Frequency: recurrence.FrequencyWeekly,
			},
		})
		if err != nil {
			t.Fatalf("failed to create series: %v", err)
		}

		if err := svc.DeleteClassroom(ctx, Principal{UserID: "admin-1", IsAdmin: true}, "aula-1"); err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if _, err := mem.GetClassroom(ctx, "aula-1"); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected classroom removed, got %v", err)
		}
		remaining, err := mem.ListBookings(ctx, store.BookingFilter{ClassroomID: "aula-1"})
		if err != nil {
			t.Fatalf("failed to list bookings: %v", err)
		}
		if len(remaining) != 0 {
			t.Fatalf("expected no bookings left in the classroom, got %d", len(remaining))
		}

		want := fmt.Sprintf("series_cancelled:%s:teacher-1", series.ID)
		if len(gateway.events) != 1 || gateway.events[0] != want {
			t.Fatalf("expected %q, got %v", want, gateway.events)
		}
	})

	t.Run("deleting a missing classroom is a no-op", func(t *testing.T) {
		gateway := &gatewayStub{}
		svc := NewClassroomService(store.NewMemory(), gateway, nil)

		if err := svc.DeleteClassroom(context.Background(), Principal{UserID: "admin-1", IsAdmin: true}, "missing"); err != nil {
			t.Fatalf("expected nil, got %v", err)
		}
		if len(gateway.events) != 0 {
			t.Fatalf("expected no notifications, got %v", gateway.events)
		}
	})

	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewClassroomService(store.NewMemory(), nil, nil)

		err := svc.DeleteClassroom(context.Background(), Principal{UserID: "teacher-1"}, "aula-1")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestClassroomService_ListClassrooms(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	for _, classroom := range []store.Classroom{
		{ID: "c-2", Name: "laboratori", Capacity: 24},
		{ID: "c-1", Name: "Aula Magna", Capacity: 80},
	} {
		if _, err := mem.CreateClassroom(ctx, classroom); err != nil {
			t.Fatalf("failed to seed classroom: %v", err)
		}
	}
	svc := NewClassroomService(mem, nil, nil)

	classrooms, err := svc.ListClassrooms(ctx, Principal{UserID: "teacher-1"})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(classrooms) != 2 || classrooms[0].Name != "Aula Magna" || classrooms[1].Name != "laboratori" {
		t.Fatalf("expected case-insensitive name order, got %+v", classrooms)
	}

	if _, err := svc.ListClassrooms(ctx, Principal{}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized without a session, got %v", err)
	}
}
