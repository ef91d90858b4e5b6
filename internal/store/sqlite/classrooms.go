package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/classroom-booking/internal/store"
)

func (s *Store) CreateClassroom(ctx context.Context, classroom store.Classroom) (store.Classroom, error) {
	equipment, err := encodeJSON(classroom.Equipment)
	if err != nil {
		return store.Classroom{}, err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO classrooms (id, name, capacity, equipment) VALUES (?, ?, ?, ?)",
		classroom.ID, classroom.Name, classroom.Capacity, equipment,
	)
	if err != nil {
		return store.Classroom{}, fmt.Errorf("sqlite: failed to insert classroom: %w", err)
	}
	return classroom, nil
}

func (s *Store) UpdateClassroom(ctx context.Context, classroom store.Classroom) (store.Classroom, error) {
	equipment, err := encodeJSON(classroom.Equipment)
	if err != nil {
		return store.Classroom{}, err
	}
	result, err := s.db.ExecContext(ctx,
		"UPDATE classrooms SET name = ?, capacity = ?, equipment = ? WHERE id = ?",
		classroom.Name, classroom.Capacity, equipment, classroom.ID,
	)
	if err != nil {
		return store.Classroom{}, fmt.Errorf("sqlite: failed to update classroom: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return store.Classroom{}, fmt.Errorf("sqlite: failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return store.Classroom{}, store.ErrNotFound
	}
	return classroom, nil
}

func (s *Store) GetClassroom(ctx context.Context, id string) (store.Classroom, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, capacity, equipment FROM classrooms WHERE id = ?", id)

	var classroom store.Classroom
	var equipment string
	if err := row.Scan(&classroom.ID, &classroom.Name, &classroom.Capacity, &equipment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Classroom{}, store.ErrNotFound
		}
		return store.Classroom{}, fmt.Errorf("sqlite: failed to scan classroom: %w", err)
	}
	var err error
	if classroom.Equipment, err = decodeStrings(equipment); err != nil {
		return store.Classroom{}, err
	}
	return classroom, nil
}

func (s *Store) ListClassrooms(ctx context.Context) ([]store.Classroom, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, capacity, equipment FROM classrooms ORDER BY LOWER(name) ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list classrooms: %w", err)
	}
	defer rows.Close()

	var classrooms []store.Classroom
	for rows.Next() {
		var classroom store.Classroom
		var equipment string
		if err := rows.Scan(&classroom.ID, &classroom.Name, &classroom.Capacity, &equipment); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan classroom: %w", err)
		}
		if classroom.Equipment, err = decodeStrings(equipment); err != nil {
			return nil, err
		}
		classrooms = append(classrooms, classroom)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate classrooms: %w", err)
	}
	return classrooms, nil
}

// DeleteClassroom removes the classroom together with its blocked slots,
// series, and bookings as one transaction.
func (s *Store) DeleteClassroom(ctx context.Context, id string) (store.CascadeResult, error) {
	var result store.CascadeResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		deleted, err := tx.ExecContext(ctx, "DELETE FROM classrooms WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("sqlite: failed to delete classroom: %w", err)
		}
		if affected, err := deleted.RowsAffected(); err != nil {
			return fmt.Errorf("sqlite: failed to read rows affected: %w", err)
		} else if affected == 0 {
			return store.ErrNotFound
		}

		slots, err := tx.ExecContext(ctx, "DELETE FROM blocked_slots WHERE classroom_id = ?", id)
		if err != nil {
			return fmt.Errorf("sqlite: failed to delete blocked slots: %w", err)
		}
		removedSlots, err := slots.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: failed to read rows affected: %w", err)
		}
		result.BlockedSlots = int(removedSlots)

		result.Series, err = scanSeriesRows(tx.QueryContext(ctx,
			selectSeriesColumns+" WHERE classroom_id = ? ORDER BY start_date ASC, id ASC", id))
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM booking_series WHERE classroom_id = ?", id); err != nil {
			return fmt.Errorf("sqlite: failed to delete classroom series: %w", err)
		}

		bookings, err := tx.ExecContext(ctx, "DELETE FROM bookings WHERE classroom_id = ?", id)
		if err != nil {
			return fmt.Errorf("sqlite: failed to delete classroom bookings: %w", err)
		}
		removedBookings, err := bookings.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: failed to read rows affected: %w", err)
		}
		result.Bookings = int(removedBookings)
		return nil
	})
	if err != nil {
		return store.CascadeResult{}, err
	}
	return result, nil
}

// ReplaceClassrooms swaps the whole catalog inside one transaction.
func (s *Store) ReplaceClassrooms(ctx context.Context, classrooms []store.Classroom) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM classrooms"); err != nil {
			return fmt.Errorf("sqlite: failed to clear classrooms: %w", err)
		}
		for _, classroom := range classrooms {
			equipment, err := encodeJSON(classroom.Equipment)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx,
				"INSERT INTO classrooms (id, name, capacity, equipment) VALUES (?, ?, ?, ?)",
				classroom.ID, classroom.Name, classroom.Capacity, equipment,
			)
			if err != nil {
				return fmt.Errorf("sqlite: failed to insert classroom: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) CreateBlockedSlot(ctx context.Context, slot store.BlockedSlot) (store.BlockedSlot, error) {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO blocked_slots (id, classroom_id, day, hour, subject, class_group) VALUES (?, ?, ?, ?, ?, ?)",
		slot.ID, slot.ClassroomID, int(slot.Day), slot.Hour, slot.Subject, slot.ClassGroup,
	)
	if err != nil {
		return store.BlockedSlot{}, fmt.Errorf("sqlite: failed to insert blocked slot: %w", err)
	}
	return slot, nil
}

func (s *Store) ListBlockedSlots(ctx context.Context, classroomID string) ([]store.BlockedSlot, error) {
	query := "SELECT id, classroom_id, day, hour, subject, class_group FROM blocked_slots"
	args := []any{}
	if classroomID != "" {
		query += " WHERE classroom_id = ?"
		args = append(args, classroomID)
	}
	query += " ORDER BY day ASC, hour ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list blocked slots: %w", err)
	}
	defer rows.Close()

	var slots []store.BlockedSlot
	for rows.Next() {
		var slot store.BlockedSlot
		var day int
		if err := rows.Scan(&slot.ID, &slot.ClassroomID, &day, &slot.Hour, &slot.Subject, &slot.ClassGroup); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan blocked slot: %w", err)
		}
		slot.Day = time.Weekday(day)
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate blocked slots: %w", err)
	}
	return slots, nil
}
