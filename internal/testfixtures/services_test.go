package testfixtures

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/classroom-booking/internal/application"
	"github.com/example/classroom-booking/internal/store"
)

func TestNewServices_WiresLoginOverSeededSchool(t *testing.T) {
	t.Parallel()

	mem := store.NewMemory()
	SeedSchool(t, mem)
	services := NewServices(mem)

	result, err := services.Auth.Login(context.Background(), TeacherID)
	if err != nil {
		t.Fatalf("unexpected login error: %v", err)
	}
	if result.Token != "tok-1" {
		t.Fatalf("expected deterministic token, got %q", result.Token)
	}

	principal, err := services.Auth.ValidateSession(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if principal.UserID != TeacherID || principal.IsAdmin {
		t.Fatalf("unexpected principal: %+v", principal)
	}
}

func TestNewServices_ClockDrivesSessionExpiry(t *testing.T) {
	t.Parallel()

	mem := store.NewMemory()
	SeedSchool(t, mem)
	services := NewServices(mem, WithSessionTTL(30*time.Minute))

	result, err := services.Auth.Login(context.Background(), AdminID)
	if err != nil {
		t.Fatalf("unexpected login error: %v", err)
	}

	services.Clock.Advance(31 * time.Minute)
	if _, err := services.Auth.ValidateSession(context.Background(), result.Token); !errors.Is(err, application.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestSeedSchool_PopulatesSQLiteStore(t *testing.T) {
	t.Parallel()

	s := NewSQLiteStore(t)
	SeedSchool(t, s)

	users, err := s.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error listing users: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 seeded users, got %d", len(users))
	}
	slots, err := s.ListBlockedSlots(context.Background(), ClassroomID)
	if err != nil {
		t.Fatalf("unexpected error listing blocked slots: %v", err)
	}
	if len(slots) != 1 || slots[0].Day != time.Monday {
		t.Fatalf("expected the Monday blocked slot, got %v", slots)
	}
}
