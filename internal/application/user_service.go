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

// UserStore captures the store operations needed by the user service.
type UserStore interface {
	CreateUser(ctx context.Context, user store.User) (store.User, error)
	GetUser(ctx context.Context, id string) (store.User, error)
	GetUserByEmail(ctx context.Context, email string) (store.User, error)
	ListUsers(ctx context.Context) ([]store.User, error)
	DeleteUser(ctx context.Context, id string) (store.CascadeResult, error)
	ListClassrooms(ctx context.Context) ([]store.Classroom, error)
}

// UserService orchestrates validation, authorization, and persistence for
// teacher and administrator accounts.
type UserService struct {
	store       UserStore
	notifier    notification.Gateway
	idGenerator func() string
	emailDomain string
	logger      *slog.Logger
}

// NewUserService constructs a user service with the provided dependencies.
// emailDomain is the required suffix for every account address.
func NewUserService(users UserStore, notifier notification.Gateway, idGenerator func() string, emailDomain string) *UserService {
	return NewUserServiceWithLogger(users, notifier, idGenerator, emailDomain, nil)
}

// NewUserServiceWithLogger constructs a user service with a specified logger.
func NewUserServiceWithLogger(users UserStore, notifier notification.Gateway, idGenerator func() string, emailDomain string, logger *slog.Logger) *UserService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &UserService{
		store:       users,
		notifier:    notifier,
		idGenerator: idGenerator,
		emailDomain: emailDomain,
		logger:      defaultLogger(logger),
	}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// AddUser validates input and persists a new account for administrators.
// Addresses outside the school domain are rejected with ErrInvalidEmail;
// the suffix match is exact, so a differently cased domain does not pass.
func (s *UserService) AddUser(ctx context.Context, params CreateUserParams) (user store.User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.store == nil {
		err = fmt.Errorf("user store not configured")
		return
	}

	logger := s.loggerWith(ctx, "AddUser",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user added")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	input := params.Input
	email := strings.TrimSpace(input.Email)

	vErr := validateUserInput(input, email)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if s.emailDomain != "" && !strings.HasSuffix(email, s.emailDomain) {
		err = ErrInvalidEmail
		return
	}

	user = store.User{
		ID:    s.idGenerator(),
		Name:  strings.TrimSpace(input.Name),
		Email: email,
		Role:  input.Role,
	}

	var persisted store.User
	persisted, err = s.store.CreateUser(ctx, user)
	if err != nil {
		return
	}
	user = persisted
	return
}

// DeleteUser removes an account and cascades over everything it owns:
// bookings and recurring series. The departing owner is notified about each
// cancelled series. Deleting an account that does not exist is a no-op.
func (s *UserService) DeleteUser(ctx context.Context, principal Principal, userID string) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if s.store == nil {
		return fmt.Errorf("user store not configured")
	}

	logger := s.loggerWith(ctx, "DeleteUser",
		"principal_id", principal.UserID,
		"user_id", userID,
	)

	if !principal.IsAdmin {
		logger.ErrorContext(ctx, "failed to delete user", "error", ErrUnauthorized, "error_kind", ErrorKind(ErrUnauthorized))
		return ErrUnauthorized
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.InfoContext(ctx, "user already gone")
			return nil
		}
		logger.ErrorContext(ctx, "failed to delete user", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	// Snapshot the catalog before mutating so notifications describe the
	// world the cascade acted on.
	classrooms, err := s.classroomSnapshot(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete user", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	cascade, err := s.store.DeleteUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		logger.ErrorContext(ctx, "failed to delete user", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.With(
		"removed_bookings", cascade.Bookings,
		"removed_series", len(cascade.Series),
	).InfoContext(ctx, "user deleted")

	if s.notifier != nil {
		for _, series := range cascade.Series {
			classroom, ok := classrooms[series.ClassroomID]
			if !ok {
				logger.WarnContext(ctx, "skipping series notification", "reason", "classroom missing", "series_id", series.ID)
				continue
			}
			if nErr := s.notifier.SeriesCancelled(ctx, series, user, classroom); nErr != nil {
				logger.WarnContext(ctx, "series notification delivery failed", "series_id", series.ID, "error", nErr)
			}
		}
	}
	return nil
}

// ListUsers returns every account sorted by name. The login screen shows
// this list before any session exists, so no principal is required.
func (s *UserService) ListUsers(ctx context.Context) (users []store.User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.store == nil {
		return nil, nil
	}

	users, err = s.store.ListUsers(ctx)
	if err != nil {
		return
	}

	sort.Slice(users, func(i, j int) bool {
		if strings.EqualFold(users[i].Name, users[j].Name) {
			return users[i].ID < users[j].ID
		}
		return strings.ToLower(users[i].Name) < strings.ToLower(users[j].Name)
	})
	return
}

func (s *UserService) classroomSnapshot(ctx context.Context) (map[string]store.Classroom, error) {
	classrooms, err := s.store.ListClassrooms(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]store.Classroom, len(classrooms))
	for _, classroom := range classrooms {
		byID[classroom.ID] = classroom
	}
	return byID, nil
}

func validateUserInput(input UserInput, email string) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if email == "" {
		vErr.add("email", "email is required")
	}
	if input.Role != store.RoleAdmin && input.Role != store.RoleTeacher {
		vErr.add("role", "role must be admin or teacher")
	}

	return vErr
}
