// Package testfixtures provides deterministic clocks, identifier generators,
// and a small seeded school so integration-style tests share one vocabulary of
// well-known entities.
package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/example/classroom-booking/internal/store"
)

// Well-known identifiers installed by SeedSchool.
const (
	AdminID       = "admin-1"
	TeacherID     = "teacher-1"
	SecondTeacher = "teacher-2"
	ClassroomID   = "aula-1"
	LabID         = "aula-2"
	BlockedSlotID = "block-1"
)

var referenceTime = time.Date(2024, time.June, 3, 8, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures. It
// falls on a Monday, matching the blocked slot SeedSchool installs.
func ReferenceTime() time.Time {
	return referenceTime
}

// SeedSchool installs the shared fixture school: an administrator, two
// teachers, two classrooms, and a blocked slot on ClassroomID every Monday at
// hour 10.
func SeedSchool(tb testing.TB, s store.Store) {
	tb.Helper()
	ctx := context.Background()

	users := []store.User{
		{ID: TeacherID, Name: "Marta Puig", Email: "marta.puig@xtec.cat", Role: store.RoleTeacher},
		{ID: SecondTeacher, Name: "Jordi Serra", Email: "jordi.serra@xtec.cat", Role: store.RoleTeacher},
		{ID: AdminID, Name: "Núria Camps", Email: "nuria.camps@xtec.cat", Role: store.RoleAdmin},
	}
	for _, user := range users {
		if _, err := s.CreateUser(ctx, user); err != nil {
			tb.Fatalf("failed to seed user %s: %v", user.ID, err)
		}
	}

	classrooms := []store.Classroom{
		{ID: ClassroomID, Name: "Aula d'Informàtica", Capacity: 30, Equipment: []string{"Ordinadors", "Projector"}},
		{ID: LabID, Name: "Laboratori de Ciències", Capacity: 24},
	}
	for _, classroom := range classrooms {
		if _, err := s.CreateClassroom(ctx, classroom); err != nil {
			tb.Fatalf("failed to seed classroom %s: %v", classroom.ID, err)
		}
	}

	if _, err := s.CreateBlockedSlot(ctx, store.BlockedSlot{
		ID: BlockedSlotID, ClassroomID: ClassroomID, Day: time.Monday, Hour: 10,
		Subject: "Tutoria", ClassGroup: "1r ESO A",
	}); err != nil {
		tb.Fatalf("failed to seed blocked slot: %v", err)
	}
}
