package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/classroom-booking/internal/store"
)

// seedDemoData installs a small school setup so a fresh instance is usable
// right away. An already populated store is left untouched.
func seedDemoData(ctx context.Context, s store.Store) error {
	existing, err := s.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to inspect store before seeding: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	users := []store.User{
		{ID: uuid.NewString(), Name: "Núria Camps", Email: "nuria.camps@xtec.cat", Role: store.RoleAdmin},
		{ID: uuid.NewString(), Name: "Marta Puig", Email: "marta.puig@xtec.cat", Role: store.RoleTeacher},
		{ID: uuid.NewString(), Name: "Jordi Serra", Email: "jordi.serra@xtec.cat", Role: store.RoleTeacher},
		{ID: uuid.NewString(), Name: "Laura Font", Email: "laura.font@xtec.cat", Role: store.RoleTeacher},
	}
	teachers := make([]store.TeacherRef, 0, len(users))
	for _, user := range users {
		if _, err := s.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", user.Email, err)
		}
		teachers = append(teachers, store.TeacherRef{ID: user.ID, Name: user.Name})
	}

	classrooms := []store.Classroom{
		{ID: uuid.NewString(), Name: "Aula d'Informàtica 1", Capacity: 30, Equipment: []string{"Ordinadors", "Projector"}},
		{ID: uuid.NewString(), Name: "Aula d'Informàtica 2", Capacity: 24, Equipment: []string{"Ordinadors"}},
		{ID: uuid.NewString(), Name: "Laboratori de Ciències", Capacity: 28, Equipment: []string{"Microscopis", "Campana extractora"}},
		{ID: uuid.NewString(), Name: "Aula de Música", Capacity: 32, Equipment: []string{"Piano", "Equip de so"}},
	}
	for _, classroom := range classrooms {
		if _, err := s.CreateClassroom(ctx, classroom); err != nil {
			return fmt.Errorf("failed to seed classroom %s: %w", classroom.Name, err)
		}
	}

	// Fixed curriculum use of the science lab.
	blocked := []store.BlockedSlot{
		{ID: uuid.NewString(), ClassroomID: classrooms[2].ID, Day: time.Monday, Hour: 9, Subject: "Biologia", ClassGroup: "1r Batx A"},
		{ID: uuid.NewString(), ClassroomID: classrooms[2].ID, Day: time.Wednesday, Hour: 11, Subject: "Química", ClassGroup: "2n Batx B"},
	}
	for _, slot := range blocked {
		if _, err := s.CreateBlockedSlot(ctx, slot); err != nil {
			return fmt.Errorf("failed to seed blocked slot: %w", err)
		}
	}

	// A couple of example bookings in the upcoming week.
	bookings := []store.Booking{
		{ID: uuid.NewString(), ClassroomID: classrooms[0].ID, TeacherID: users[1].ID, ClassGroup: "2n ESO B", Subject: "Informàtica", Date: nextWeekday(time.Tuesday), Hour: 9},
		{ID: uuid.NewString(), ClassroomID: classrooms[3].ID, TeacherID: users[2].ID, ClassGroup: "1r ESO A", Subject: "Música", Date: nextWeekday(time.Thursday), Hour: 11},
	}
	for _, booking := range bookings {
		if _, err := s.CreateBooking(ctx, booking); err != nil {
			return fmt.Errorf("failed to seed booking: %w", err)
		}
	}

	settings := store.AppSettings{
		SchoolYear:  "2025-2026",
		Teachers:    teachers,
		ClassGroups: []string{"1r ESO A", "1r ESO B", "2n ESO A", "2n ESO B", "3r ESO A", "4t ESO A", "1r Batx A", "2n Batx B"},
		Subjects:    []string{"Matemàtiques", "Llengua catalana", "Física", "Química", "Biologia", "Història", "Música", "Informàtica"},
	}
	if err := s.PutSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}

	return nil
}

// nextWeekday returns the first occurrence of the given weekday strictly after
// today, at midnight UTC.
func nextWeekday(day time.Weekday) time.Time {
	now := time.Now().UTC()
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for {
		date = date.AddDate(0, 0, 1)
		if date.Weekday() == day {
			return date
		}
	}
}
