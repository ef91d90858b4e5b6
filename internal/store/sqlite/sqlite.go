// Package sqlite provides the durable Store implementation backed by a
// modernc.org/sqlite database. Slot uniqueness is enforced by the schema, so
// concurrent writers racing past an availability check still get rejected at
// commit time.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	_ "modernc.org/sqlite"

	"github.com/example/classroom-booking/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id    TEXT PRIMARY KEY,
	name  TEXT NOT NULL,
	email TEXT NOT NULL,
	role  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS classrooms (
	id        TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	capacity  INTEGER NOT NULL,
	equipment TEXT NOT NULL DEFAULT 'null'
);

CREATE TABLE IF NOT EXISTS blocked_slots (
	id           TEXT PRIMARY KEY,
	classroom_id TEXT NOT NULL,
	day          INTEGER NOT NULL,
	hour         INTEGER NOT NULL,
	subject      TEXT NOT NULL DEFAULT '',
	class_group  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS booking_series (
	id           TEXT PRIMARY KEY,
	classroom_id TEXT NOT NULL,
	teacher_id   TEXT NOT NULL,
	class_group  TEXT NOT NULL,
	subject      TEXT NOT NULL,
	start_date   TEXT NOT NULL,
	end_date     TEXT NOT NULL,
	hour         INTEGER NOT NULL,
	frequency    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bookings (
	id           TEXT PRIMARY KEY,
	series_id    TEXT NOT NULL DEFAULT '',
	classroom_id TEXT NOT NULL,
	teacher_id   TEXT NOT NULL,
	class_group  TEXT NOT NULL,
	subject      TEXT NOT NULL,
	date         TEXT NOT NULL,
	hour         INTEGER NOT NULL,
	UNIQUE (classroom_id, date, hour)
);

CREATE INDEX IF NOT EXISTS idx_bookings_series ON bookings (series_id);
CREATE INDEX IF NOT EXISTS idx_bookings_teacher ON bookings (teacher_id);

CREATE TABLE IF NOT EXISTS app_settings (
	id           INTEGER PRIMARY KEY CHECK (id = 1),
	school_year  TEXT NOT NULL DEFAULT '',
	teachers     TEXT NOT NULL DEFAULT 'null',
	class_groups TEXT NOT NULL DEFAULT 'null',
	subjects     TEXT NOT NULL DEFAULT 'null'
);
`

// Store implements store.Store over a SQLite database.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open connects to the database at dsn and applies the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open %q: %w", dsn, err)
	}
	// modernc.org/sqlite serializes writes per connection; a single connection
	// keeps in-memory databases coherent as well.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// withTx runs fn inside a transaction, rolling back when fn errors.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("sqlite: transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: failed to commit transaction: %w", err)
	}
	return nil
}

// Reset clears bookings, blocked slots, and series in one transaction. Users,
// classrooms, and settings survive.
func (s *Store) Reset(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"bookings", "booking_series", "blocked_slots"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("sqlite: failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func encodeDate(date time.Time) string {
	return date.Format(store.DateLayout)
}

func decodeDate(value string) (time.Time, error) {
	date, err := time.ParseInLocation(store.DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: failed to parse date %q: %w", value, err)
	}
	return date, nil
}

func encodeJSON(value any) (string, error) {
	encoded, err := json.MarshalToString(value)
	if err != nil {
		return "", fmt.Errorf("sqlite: failed to encode column: %w", err)
	}
	return encoded, nil
}

func decodeStrings(value string) ([]string, error) {
	if value == "" || value == "null" {
		return nil, nil
	}
	var out []string
	if err := json.UnmarshalFromString(value, &out); err != nil {
		return nil, fmt.Errorf("sqlite: failed to decode column: %w", err)
	}
	return out, nil
}
