package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/example/classroom-booking/internal/notification"
	"github.com/example/classroom-booking/internal/store"
)

// ClassroomStore captures the store operations needed by the classroom service.
type ClassroomStore interface {
	CreateClassroom(ctx context.Context, classroom store.Classroom) (store.Classroom, error)
	UpdateClassroom(ctx context.Context, classroom store.Classroom) (store.Classroom, error)
	GetClassroom(ctx context.Context, id string) (store.Classroom, error)
	ListClassrooms(ctx context.Context) ([]store.Classroom, error)
	DeleteClassroom(ctx context.Context, id string) (store.CascadeResult, error)
	ListUsers(ctx context.Context) ([]store.User, error)
}

// ClassroomService orchestrates validation, authorization, and persistence
// for the classroom catalog.
type ClassroomService struct {
	store       ClassroomStore
	notifier    notification.Gateway
	idGenerator func() string
	logger      *slog.Logger
}

// NewClassroomService constructs a classroom service with the provided dependencies.
func NewClassroomService(classrooms ClassroomStore, notifier notification.Gateway, idGenerator func() string) *ClassroomService {
	return NewClassroomServiceWithLogger(classrooms, notifier, idGenerator, nil)
}

// NewClassroomServiceWithLogger constructs a classroom service with a specified logger.
func NewClassroomServiceWithLogger(classrooms ClassroomStore, notifier notification.Gateway, idGenerator func() string, logger *slog.Logger) *ClassroomService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &ClassroomService{
		store:       classrooms,
		notifier:    notifier,
		idGenerator: idGenerator,
		logger:      defaultLogger(logger),
	}
}

func (s *ClassroomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ClassroomService", operation, attrs...)
}

// AddClassroom validates input and persists a new classroom for administrators.
func (s *ClassroomService) AddClassroom(ctx context.Context, params CreateClassroomParams) (classroom store.Classroom, err error) {
	if s == nil {
		err = fmt.Errorf("ClassroomService is nil")
		return
	}
	if s.store == nil {
		err = fmt.Errorf("classroom store not configured")
		return
	}

	logger := s.loggerWith(ctx, "AddClassroom",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add classroom", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("classroom_id", classroom.ID).InfoContext(ctx, "classroom added")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := validateClassroomInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	classroom = store.Classroom{
		ID:        s.idGenerator(),
		Name:      strings.TrimSpace(params.Input.Name),
		Capacity:  params.Input.Capacity,
		Equipment: normalizeEquipment(params.Input.Equipment),
	}

	var persisted store.Classroom
	persisted, err = s.store.CreateClassroom(ctx, classroom)
	if err != nil {
		return
	}
	classroom = persisted
	return
}

// UpdateClassroom replaces the attributes of an existing classroom for
// administrators. Updating a classroom that does not exist changes nothing
// and is reported as success.
func (s *ClassroomService) UpdateClassroom(ctx context.Context, params UpdateClassroomParams) error {
	if s == nil {
		return fmt.Errorf("ClassroomService is nil")
	}
	if s.store == nil {
		return fmt.Errorf("classroom store not configured")
	}

	logger := s.loggerWith(ctx, "UpdateClassroom",
		"principal_id", params.Principal.UserID,
		"classroom_id", params.ClassroomID,
	)

	if !params.Principal.IsAdmin {
		logger.ErrorContext(ctx, "failed to update classroom", "error", ErrUnauthorized, "error_kind", ErrorKind(ErrUnauthorized))
		return ErrUnauthorized
	}

	vErr := validateClassroomInput(params.Input)
	if vErr.HasErrors() {
		logger.ErrorContext(ctx, "failed to update classroom", "error", vErr, "error_kind", ErrorKind(vErr))
		return vErr
	}

	updated := store.Classroom{
		ID:        params.ClassroomID,
		Name:      strings.TrimSpace(params.Input.Name),
		Capacity:  params.Input.Capacity,
		Equipment: normalizeEquipment(params.Input.Equipment),
	}

	if _, err := s.store.UpdateClassroom(ctx, updated); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.WarnContext(ctx, "classroom missing, update skipped")
			return nil
		}
		logger.ErrorContext(ctx, "failed to update classroom", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "classroom updated")
	return nil
}

// DeleteClassroom removes a classroom and cascades over everything scheduled
// in it: bookings, recurring series, and timetable blocks. Owners of removed
// series are notified. Deleting a classroom that does not exist is a no-op.
func (s *ClassroomService) DeleteClassroom(ctx context.Context, principal Principal, classroomID string) error {
	if s == nil {
		return fmt.Errorf("ClassroomService is nil")
	}
	if s.store == nil {
		return fmt.Errorf("classroom store not configured")
	}

	logger := s.loggerWith(ctx, "DeleteClassroom",
		"principal_id", principal.UserID,
		"classroom_id", classroomID,
	)

	if !principal.IsAdmin {
		logger.ErrorContext(ctx, "failed to delete classroom", "error", ErrUnauthorized, "error_kind", ErrorKind(ErrUnauthorized))
		return ErrUnauthorized
	}

	classroom, err := s.store.GetClassroom(ctx, classroomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.InfoContext(ctx, "classroom already gone")
			return nil
		}
		logger.ErrorContext(ctx, "failed to delete classroom", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	// Snapshot the owners before mutating so notifications describe the
	// world the cascade acted on.
	owners, err := s.userSnapshot(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete classroom", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	cascade, err := s.store.DeleteClassroom(ctx, classroomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		logger.ErrorContext(ctx, "failed to delete classroom", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.With(
		"removed_bookings", cascade.Bookings,
		"removed_series", len(cascade.Series),
		"removed_blocked_slots", cascade.BlockedSlots,
	).InfoContext(ctx, "classroom deleted")

	s.notifyCancelledSeries(ctx, logger, cascade.Series, owners, classroom)
	return nil
}

// ListClassrooms returns the catalog sorted by name for any authenticated user.
func (s *ClassroomService) ListClassrooms(ctx context.Context, principal Principal) (classrooms []store.Classroom, err error) {
	if s == nil {
		err = fmt.Errorf("ClassroomService is nil")
		return
	}
	if principal.UserID == "" {
		err = ErrUnauthorized
		return
	}
	if s.store == nil {
		return nil, nil
	}

	classrooms, err = s.store.ListClassrooms(ctx)
	if err != nil {
		return
	}

	sort.Slice(classrooms, func(i, j int) bool {
		if strings.EqualFold(classrooms[i].Name, classrooms[j].Name) {
			return classrooms[i].ID < classrooms[j].ID
		}
		return strings.ToLower(classrooms[i].Name) < strings.ToLower(classrooms[j].Name)
	})
	return
}

func (s *ClassroomService) userSnapshot(ctx context.Context) (map[string]store.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]store.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}
	return byID, nil
}

func (s *ClassroomService) notifyCancelledSeries(ctx context.Context, logger *slog.Logger, cancelled []store.BookingSeries, owners map[string]store.User, classroom store.Classroom) {
	if s.notifier == nil {
		return
	}
	for _, series := range cancelled {
		owner, ok := owners[series.TeacherID]
		if !ok {
			logger.WarnContext(ctx, "skipping series notification", "reason", "owner missing", "series_id", series.ID)
			continue
		}
		if err := s.notifier.SeriesCancelled(ctx, series, owner, classroom); err != nil {
			logger.WarnContext(ctx, "series notification delivery failed", "series_id", series.ID, "error", err)
		}
	}
}

func validateClassroomInput(input ClassroomInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}

	return vErr
}

func normalizeEquipment(equipment []string) []string {
	var normalized []string
	for _, item := range equipment {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		normalized = append(normalized, trimmed)
	}
	return normalized
}
