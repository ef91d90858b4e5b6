package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/classroom-booking/internal/store"
)

func (s *Store) CreateUser(ctx context.Context, user store.User) (store.User, error) {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, role) VALUES (?, ?, ?, ?)",
		user.ID, user.Name, user.Email, string(user.Role),
	)
	if err != nil {
		return store.User{}, fmt.Errorf("sqlite: failed to insert user: %w", err)
	}
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (store.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		"SELECT id, name, email, role FROM users WHERE id = ?", id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (store.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		"SELECT id, name, email, role FROM users WHERE email = ?", email))
}

func (s *Store) ListUsers(ctx context.Context) ([]store.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, role FROM users ORDER BY LOWER(name) ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list users: %w", err)
	}
	defer rows.Close()

	var users []store.User
	for rows.Next() {
		var user store.User
		var role string
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &role); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan user: %w", err)
		}
		user.Role = store.Role(role)
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate users: %w", err)
	}
	return users, nil
}

// DeleteUser removes the user, their series with every generated booking, and
// their standalone bookings as one transaction.
func (s *Store) DeleteUser(ctx context.Context, id string) (store.CascadeResult, error) {
	var result store.CascadeResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		deleted, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("sqlite: failed to delete user: %w", err)
		}
		if affected, err := deleted.RowsAffected(); err != nil {
			return fmt.Errorf("sqlite: failed to read rows affected: %w", err)
		} else if affected == 0 {
			return store.ErrNotFound
		}

		result.Series, err = scanSeriesRows(tx.QueryContext(ctx,
			selectSeriesColumns+" WHERE teacher_id = ? ORDER BY start_date ASC, id ASC", id))
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM booking_series WHERE teacher_id = ?", id); err != nil {
			return fmt.Errorf("sqlite: failed to delete user series: %w", err)
		}

		bookings, err := tx.ExecContext(ctx, "DELETE FROM bookings WHERE teacher_id = ?", id)
		if err != nil {
			return fmt.Errorf("sqlite: failed to delete user bookings: %w", err)
		}
		removed, err := bookings.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: failed to read rows affected: %w", err)
		}
		result.Bookings = int(removed)
		return nil
	})
	if err != nil {
		return store.CascadeResult{}, err
	}
	return result, nil
}

func (s *Store) scanUser(row *sql.Row) (store.User, error) {
	var user store.User
	var role string
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.User{}, store.ErrNotFound
		}
		return store.User{}, fmt.Errorf("sqlite: failed to scan user: %w", err)
	}
	user.Role = store.Role(role)
	return user, nil
}
