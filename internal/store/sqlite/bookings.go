package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/classroom-booking/internal/recurrence"
	"github.com/example/classroom-booking/internal/store"
)

const selectSeriesColumns = "SELECT id, classroom_id, teacher_id, class_group, subject, start_date, end_date, hour, frequency FROM booking_series"

// CreateBooking inserts a booking. The schema's slot uniqueness turns a racing
// insert into ErrSlotTaken.
func (s *Store) CreateBooking(ctx context.Context, booking store.Booking) (store.Booking, error) {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO bookings (id, series_id, classroom_id, teacher_id, class_group, subject, date, hour) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		booking.ID, booking.SeriesID, booking.ClassroomID, booking.TeacherID,
		booking.ClassGroup, booking.Subject, encodeDate(booking.Date), booking.Hour,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.Booking{}, store.ErrSlotTaken
		}
		return store.Booking{}, fmt.Errorf("sqlite: failed to insert booking: %w", err)
	}
	return booking, nil
}

func (s *Store) GetBooking(ctx context.Context, id string) (store.Booking, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, series_id, classroom_id, teacher_id, class_group, subject, date, hour FROM bookings WHERE id = ?", id)
	booking, err := scanBooking(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Booking{}, store.ErrNotFound
		}
		return store.Booking{}, err
	}
	return booking, nil
}

func (s *Store) ListBookings(ctx context.Context, filter store.BookingFilter) ([]store.Booking, error) {
	query := "SELECT id, series_id, classroom_id, teacher_id, class_group, subject, date, hour FROM bookings"
	var clauses []string
	var args []any
	if filter.ClassroomID != "" {
		clauses = append(clauses, "classroom_id = ?")
		args = append(args, filter.ClassroomID)
	}
	if filter.TeacherID != "" {
		clauses = append(clauses, "teacher_id = ?")
		args = append(args, filter.TeacherID)
	}
	if filter.SeriesID != "" {
		clauses = append(clauses, "series_id = ?")
		args = append(args, filter.SeriesID)
	}
	if filter.Date != nil {
		clauses = append(clauses, "date = ?")
		args = append(args, encodeDate(*filter.Date))
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY date ASC, hour ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []store.Booking
	for rows.Next() {
		booking, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate bookings: %w", err)
	}
	return bookings, nil
}

func (s *Store) DeleteBooking(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("sqlite: failed to delete booking: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// CreateSeries inserts the series and all its bookings atomically. When any
// occurrence lands on an occupied slot the transaction rolls back and the
// returned *SlotConflictError lists every colliding date.
func (s *Store) CreateSeries(ctx context.Context, series store.BookingSeries, bookings []store.Booking) (store.BookingSeries, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var conflicts []time.Time
		for _, booking := range bookings {
			var occupied int
			err := tx.QueryRowContext(ctx,
				"SELECT COUNT(*) FROM bookings WHERE classroom_id = ? AND date = ? AND hour = ?",
				booking.ClassroomID, encodeDate(booking.Date), booking.Hour,
			).Scan(&occupied)
			if err != nil {
				return fmt.Errorf("sqlite: failed to check slot: %w", err)
			}
			if occupied > 0 {
				conflicts = append(conflicts, booking.Date)
			}
		}
		if len(conflicts) > 0 {
			return &store.SlotConflictError{Dates: conflicts}
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO booking_series (id, classroom_id, teacher_id, class_group, subject, start_date, end_date, hour, frequency) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			series.ID, series.ClassroomID, series.TeacherID, series.ClassGroup, series.Subject,
			encodeDate(series.StartDate), encodeDate(series.EndDate), series.Hour, series.Frequency.String(),
		)
		if err != nil {
			return fmt.Errorf("sqlite: failed to insert series: %w", err)
		}

		for _, booking := range bookings {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO bookings (id, series_id, classroom_id, teacher_id, class_group, subject, date, hour) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
				booking.ID, series.ID, booking.ClassroomID, booking.TeacherID,
				booking.ClassGroup, booking.Subject, encodeDate(booking.Date), booking.Hour,
			)
			if err != nil {
				if isUniqueViolation(err) {
					return store.ErrSlotTaken
				}
				return fmt.Errorf("sqlite: failed to insert series booking: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return store.BookingSeries{}, err
	}
	return series, nil
}

func (s *Store) GetSeries(ctx context.Context, id string) (store.BookingSeries, error) {
	rows, err := s.db.QueryContext(ctx, selectSeriesColumns+" WHERE id = ?", id)
	series, err := scanSeriesRows(rows, err)
	if err != nil {
		return store.BookingSeries{}, err
	}
	if len(series) == 0 {
		return store.BookingSeries{}, store.ErrNotFound
	}
	return series[0], nil
}

func (s *Store) ListSeries(ctx context.Context, filter store.SeriesFilter) ([]store.BookingSeries, error) {
	query := selectSeriesColumns
	var clauses []string
	var args []any
	if filter.ClassroomID != "" {
		clauses = append(clauses, "classroom_id = ?")
		args = append(args, filter.ClassroomID)
	}
	if filter.TeacherID != "" {
		clauses = append(clauses, "teacher_id = ?")
		args = append(args, filter.TeacherID)
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY start_date ASC, id ASC"

	return scanSeriesRows(s.db.QueryContext(ctx, query, args...))
}

// DeleteSeries removes the series record and every booking carrying its id.
func (s *Store) DeleteSeries(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, "DELETE FROM booking_series WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("sqlite: failed to delete series: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: failed to read rows affected: %w", err)
		}
		if affected == 0 {
			return store.ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM bookings WHERE series_id = ?", id); err != nil {
			return fmt.Errorf("sqlite: failed to delete series bookings: %w", err)
		}
		return nil
	})
}

func scanBooking(scan func(...any) error) (store.Booking, error) {
	var booking store.Booking
	var date string
	err := scan(&booking.ID, &booking.SeriesID, &booking.ClassroomID, &booking.TeacherID,
		&booking.ClassGroup, &booking.Subject, &date, &booking.Hour)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Booking{}, err
		}
		return store.Booking{}, fmt.Errorf("sqlite: failed to scan booking: %w", err)
	}
	if booking.Date, err = decodeDate(date); err != nil {
		return store.Booking{}, err
	}
	return booking, nil
}

func scanSeriesRows(rows *sql.Rows, err error) ([]store.BookingSeries, error) {
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to query series: %w", err)
	}
	defer rows.Close()

	var out []store.BookingSeries
	for rows.Next() {
		var series store.BookingSeries
		var startDate, endDate, frequency string
		err := rows.Scan(&series.ID, &series.ClassroomID, &series.TeacherID, &series.ClassGroup,
			&series.Subject, &startDate, &endDate, &series.Hour, &frequency)
		if err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan series: %w", err)
		}
		if series.StartDate, err = decodeDate(startDate); err != nil {
			return nil, err
		}
		if series.EndDate, err = decodeDate(endDate); err != nil {
			return nil, err
		}
		series.Frequency = recurrence.ParseFrequency(frequency)
		out = append(out, series)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate series: %w", err)
	}
	return out, nil
}
