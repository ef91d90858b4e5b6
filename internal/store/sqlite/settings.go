package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/classroom-booking/internal/store"
)

func (s *Store) GetSettings(ctx context.Context) (store.AppSettings, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT school_year, teachers, class_groups, subjects FROM app_settings WHERE id = 1")

	var settings store.AppSettings
	var teachers, classGroups, subjects string
	if err := row.Scan(&settings.SchoolYear, &teachers, &classGroups, &subjects); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.AppSettings{}, nil
		}
		return store.AppSettings{}, fmt.Errorf("sqlite: failed to scan settings: %w", err)
	}

	if teachers != "" && teachers != "null" {
		if err := json.UnmarshalFromString(teachers, &settings.Teachers); err != nil {
			return store.AppSettings{}, fmt.Errorf("sqlite: failed to decode teacher roster: %w", err)
		}
	}
	var err error
	if settings.ClassGroups, err = decodeStrings(classGroups); err != nil {
		return store.AppSettings{}, err
	}
	if settings.Subjects, err = decodeStrings(subjects); err != nil {
		return store.AppSettings{}, err
	}
	return settings, nil
}

func (s *Store) PutSettings(ctx context.Context, settings store.AppSettings) error {
	teachers, err := encodeJSON(settings.Teachers)
	if err != nil {
		return err
	}
	classGroups, err := encodeJSON(settings.ClassGroups)
	if err != nil {
		return err
	}
	subjects, err := encodeJSON(settings.Subjects)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO app_settings (id, school_year, teachers, class_groups, subjects)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			school_year = excluded.school_year,
			teachers = excluded.teachers,
			class_groups = excluded.class_groups,
			subjects = excluded.subjects`,
		settings.SchoolYear, teachers, classGroups, subjects,
	)
	if err != nil {
		return fmt.Errorf("sqlite: failed to store settings: %w", err)
	}
	return nil
}
