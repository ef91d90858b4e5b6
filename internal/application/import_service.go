package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/classroom-booking/internal/store"
)

// ImportStore captures the store operations needed by the import service.
type ImportStore interface {
	ReplaceClassrooms(ctx context.Context, classrooms []store.Classroom) error
	ListUsers(ctx context.Context) ([]store.User, error)
	CreateUser(ctx context.Context, user store.User) (store.User, error)
	GetSettings(ctx context.Context) (store.AppSettings, error)
	PutSettings(ctx context.Context, settings store.AppSettings) error
	Reset(ctx context.Context) error
}

// ImportService applies an administrator-supplied configuration file and
// serves the school settings it maintains.
type ImportService struct {
	store       ImportStore
	idGenerator func() string
	logger      *slog.Logger
}

// NewImportService constructs an import service with the provided dependencies.
func NewImportService(imports ImportStore, idGenerator func() string) *ImportService {
	return NewImportServiceWithLogger(imports, idGenerator, nil)
}

// NewImportServiceWithLogger constructs an import service with a specified logger.
func NewImportServiceWithLogger(imports ImportStore, idGenerator func() string, logger *slog.Logger) *ImportService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &ImportService{
		store:       imports,
		idGenerator: idGenerator,
		logger:      defaultLogger(logger),
	}
}

func (s *ImportService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ImportService", operation, attrs...)
}

// ImportConfiguration applies a configuration file for administrators. Each
// section follows its own policy: classrooms replace the catalog wholesale,
// users merge additively keyed by exact email, and settings override per
// field.
// Every booking, series, and timetable block is cleared so the new year
// starts from an empty calendar.
func (s *ImportService) ImportConfiguration(ctx context.Context, params ImportParams) (err error) {
	if s == nil {
		return fmt.Errorf("ImportService is nil")
	}
	if s.store == nil {
		return fmt.Errorf("import store not configured")
	}

	logger := s.loggerWith(ctx, "ImportConfiguration",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to import configuration", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "configuration imported")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	data := params.Data

	if data.Classrooms != nil {
		replacement := make([]store.Classroom, 0, len(data.Classrooms))
		for _, entry := range data.Classrooms {
			replacement = append(replacement, store.Classroom{
				ID:        s.idGenerator(),
				Name:      strings.TrimSpace(entry.Name),
				Capacity:  entry.Capacity,
				Equipment: normalizeEquipment(entry.Equipment),
			})
		}
		if err = s.store.ReplaceClassrooms(ctx, replacement); err != nil {
			return
		}
		logger.With("classroom_count", len(replacement)).InfoContext(ctx, "classroom catalog replaced")
	}

	if len(data.Users) > 0 {
		var existing []store.User
		existing, err = s.store.ListUsers(ctx)
		if err != nil {
			return
		}
		// Duplicates are judged against the accounts that existed before
		// the import started, so a file can carry repeated addresses and
		// only the first wins. The key is the exact address: a differently
		// cased email counts as a new account.
		known := make(map[string]struct{}, len(existing))
		for _, user := range existing {
			known[user.Email] = struct{}{}
		}

		added := 0
		for _, entry := range data.Users {
			email := strings.TrimSpace(entry.Email)
			if email == "" {
				continue
			}
			if _, dup := known[email]; dup {
				continue
			}
			known[email] = struct{}{}

			role := entry.Role
			if role != store.RoleAdmin && role != store.RoleTeacher {
				role = store.RoleTeacher
			}

			if _, err = s.store.CreateUser(ctx, store.User{
				ID:    s.idGenerator(),
				Name:  strings.TrimSpace(entry.Name),
				Email: email,
				Role:  role,
			}); err != nil {
				return
			}
			added++
		}
		logger.With("user_count", added).InfoContext(ctx, "users merged")
	}

	if err = s.store.Reset(ctx); err != nil {
		return
	}

	var settings store.AppSettings
	settings, err = s.store.GetSettings(ctx)
	if err != nil {
		return
	}

	if data.Settings != nil {
		if year := strings.TrimSpace(data.Settings.SchoolYear); year != "" {
			settings.SchoolYear = year
		}
		if data.Settings.ClassGroups != nil {
			settings.ClassGroups = data.Settings.ClassGroups
		}
		if data.Settings.Subjects != nil {
			settings.Subjects = data.Settings.Subjects
		}
	}

	var users []store.User
	users, err = s.store.ListUsers(ctx)
	if err != nil {
		return
	}
	settings.Teachers = teacherProjection(users)

	err = s.store.PutSettings(ctx, settings)
	return
}

// Settings returns the school settings for any authenticated user. The
// teacher roster is always derived from the current accounts rather than the
// stored copy, so account changes show up immediately.
func (s *ImportService) Settings(ctx context.Context, principal Principal) (settings store.AppSettings, err error) {
	if s == nil {
		err = fmt.Errorf("ImportService is nil")
		return
	}
	if s.store == nil {
		err = fmt.Errorf("import store not configured")
		return
	}
	if principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	settings, err = s.store.GetSettings(ctx)
	if err != nil {
		return
	}

	var users []store.User
	users, err = s.store.ListUsers(ctx)
	if err != nil {
		return
	}
	settings.Teachers = teacherProjection(users)
	return
}

func teacherProjection(users []store.User) []store.TeacherRef {
	refs := make([]store.TeacherRef, 0, len(users))
	for _, user := range users {
		refs = append(refs, store.TeacherRef{ID: user.ID, Name: user.Name})
	}
	return refs
}
