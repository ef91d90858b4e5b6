package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/classroom-booking/internal/availability"
	"github.com/example/classroom-booking/internal/notification"
	"github.com/example/classroom-booking/internal/recurrence"
	"github.com/example/classroom-booking/internal/store"
)

// BookingStore captures the store operations needed by the booking service.
type BookingStore interface {
	GetUser(ctx context.Context, id string) (store.User, error)
	GetClassroom(ctx context.Context, id string) (store.Classroom, error)
	ListBlockedSlots(ctx context.Context, classroomID string) ([]store.BlockedSlot, error)
	CreateBooking(ctx context.Context, booking store.Booking) (store.Booking, error)
	GetBooking(ctx context.Context, id string) (store.Booking, error)
	ListBookings(ctx context.Context, filter store.BookingFilter) ([]store.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
	CreateSeries(ctx context.Context, series store.BookingSeries, bookings []store.Booking) (store.BookingSeries, error)
	GetSeries(ctx context.Context, id string) (store.BookingSeries, error)
	ListSeries(ctx context.Context, filter store.SeriesFilter) ([]store.BookingSeries, error)
	DeleteSeries(ctx context.Context, id string) error
}

// BookingService orchestrates availability checks, authorization, and
// persistence for one-off and recurring bookings.
type BookingService struct {
	store       BookingStore
	notifier    notification.Gateway
	idGenerator func() string
	logger      *slog.Logger
}

// NewBookingService constructs a booking service with the provided dependencies.
func NewBookingService(bookings BookingStore, notifier notification.Gateway, idGenerator func() string) *BookingService {
	return NewBookingServiceWithLogger(bookings, notifier, idGenerator, nil)
}

// NewBookingServiceWithLogger constructs a booking service with a specified logger.
func NewBookingServiceWithLogger(bookings BookingStore, notifier notification.Gateway, idGenerator func() string, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &BookingService{
		store:       bookings,
		notifier:    notifier,
		idGenerator: idGenerator,
		logger:      defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// IsSlotAvailable reports whether the classroom can be booked on the given
// date and hour.
func (s *BookingService) IsSlotAvailable(ctx context.Context, classroomID string, date time.Time, hour int) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("BookingService is nil")
	}
	if s.store == nil {
		return false, fmt.Errorf("booking store not configured")
	}

	date = recurrence.Midnight(date)

	blocked, err := s.store.ListBlockedSlots(ctx, classroomID)
	if err != nil {
		return false, err
	}
	bookings, err := s.store.ListBookings(ctx, store.BookingFilter{ClassroomID: classroomID, Date: &date})
	if err != nil {
		return false, err
	}

	return availability.SlotAvailable(blocked, bookings, classroomID, date, hour), nil
}

// CreateBooking validates input, checks availability, and persists a one-off
// booking. Teachers book for themselves; booking on behalf of another teacher
// requires an administrator.
func (s *BookingService) CreateBooking(ctx context.Context, params CreateBookingParams) (booking store.Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.store == nil {
		err = fmt.Errorf("booking store not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateBooking",
		"principal_id", params.Principal.UserID,
		"classroom_id", params.Input.ClassroomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", booking.ID).InfoContext(ctx, "booking created")
	}()

	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	input := params.Input
	if strings.TrimSpace(input.TeacherID) == "" {
		input.TeacherID = params.Principal.UserID
	}
	if input.TeacherID != params.Principal.UserID && !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := validateBookingInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	date := recurrence.Midnight(input.Date)

	var available bool
	available, err = s.IsSlotAvailable(ctx, input.ClassroomID, date, input.Hour)
	if err != nil {
		return
	}
	if !available {
		err = ErrSlotUnavailable
		return
	}

	booking = store.Booking{
		ID:          s.idGenerator(),
		ClassroomID: input.ClassroomID,
		TeacherID:   input.TeacherID,
		ClassGroup:  strings.TrimSpace(input.ClassGroup),
		Subject:     strings.TrimSpace(input.Subject),
		Date:        date,
		Hour:        input.Hour,
	}

	var persisted store.Booking
	persisted, err = s.store.CreateBooking(ctx, booking)
	if err != nil {
		if errors.Is(err, store.ErrSlotTaken) {
			err = ErrSlotUnavailable
		}
		return
	}
	booking = persisted

	s.notifyBooking(ctx, logger, booking, false)
	return
}

// CreateSeries expands a recurrence into school-day occurrences, verifies
// every occurrence is free, and persists the series with its bookings
// atomically. Any conflict rejects the whole series.
func (s *BookingService) CreateSeries(ctx context.Context, params CreateSeriesParams) (series store.BookingSeries, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.store == nil {
		err = fmt.Errorf("booking store not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateSeries",
		"principal_id", params.Principal.UserID,
		"classroom_id", params.Input.ClassroomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create series", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("series_id", series.ID).InfoContext(ctx, "series created")
	}()

	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	input := params.Input
	vErr := validateSeriesInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	start := recurrence.Midnight(input.StartDate)
	end := recurrence.Midnight(input.EndDate)

	var dates []time.Time
	dates, err = recurrence.Expand(start, end, input.Frequency)
	if err != nil {
		if errors.Is(err, recurrence.ErrInvalidRange) {
			err = ErrInvalidRange
		}
		return
	}

	var blocked []store.BlockedSlot
	blocked, err = s.store.ListBlockedSlots(ctx, input.ClassroomID)
	if err != nil {
		return
	}
	var existing []store.Booking
	existing, err = s.store.ListBookings(ctx, store.BookingFilter{ClassroomID: input.ClassroomID})
	if err != nil {
		return
	}

	conflicts := availability.ConflictingDates(blocked, existing, input.ClassroomID, dates, input.Hour)
	if len(conflicts) > 0 {
		err = &SeriesConflictError{Dates: conflicts}
		return
	}

	series = store.BookingSeries{
		ID:          s.idGenerator(),
		ClassroomID: input.ClassroomID,
		TeacherID:   params.Principal.UserID,
		ClassGroup:  strings.TrimSpace(input.ClassGroup),
		Subject:     strings.TrimSpace(input.Subject),
		StartDate:   start,
		EndDate:     end,
		Hour:        input.Hour,
		Frequency:   input.Frequency,
	}

	bookings := make([]store.Booking, len(dates))
	for i, date := range dates {
		bookings[i] = store.Booking{
			ID:          s.idGenerator(),
			SeriesID:    series.ID,
			ClassroomID: series.ClassroomID,
			TeacherID:   series.TeacherID,
			ClassGroup:  series.ClassGroup,
			Subject:     series.Subject,
			Date:        date,
			Hour:        series.Hour,
		}
	}

	var persisted store.BookingSeries
	persisted, err = s.store.CreateSeries(ctx, series, bookings)
	if err != nil {
		var conflictErr *store.SlotConflictError
		if errors.As(err, &conflictErr) {
			err = &SeriesConflictError{Dates: conflictErr.Dates}
		}
		return
	}
	series = persisted

	s.notifySeries(ctx, logger, series, false)
	return
}

// DeleteBooking removes a booking owned by the principal. Administrators may
// remove any booking. Deleting a booking that no longer exists is a no-op.
func (s *BookingService) DeleteBooking(ctx context.Context, principal Principal, bookingID string) error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.store == nil {
		return fmt.Errorf("booking store not configured")
	}

	logger := s.loggerWith(ctx, "DeleteBooking",
		"principal_id", principal.UserID,
		"booking_id", bookingID,
	)

	if principal.UserID == "" {
		logger.ErrorContext(ctx, "failed to delete booking", "error", ErrUnauthorized, "error_kind", ErrorKind(ErrUnauthorized))
		return ErrUnauthorized
	}

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.InfoContext(ctx, "booking already gone")
			return nil
		}
		logger.ErrorContext(ctx, "failed to delete booking", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if booking.TeacherID != principal.UserID && !principal.IsAdmin {
		logger.ErrorContext(ctx, "failed to delete booking", "error", ErrUnauthorized, "error_kind", ErrorKind(ErrUnauthorized))
		return ErrUnauthorized
	}

	if err := s.store.DeleteBooking(ctx, bookingID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		logger.ErrorContext(ctx, "failed to delete booking", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "booking deleted")
	s.notifyBooking(ctx, logger, booking, true)
	return nil
}

// DeleteSeries removes a recurring booking and all of its occurrences. Only
// the owning teacher or an administrator may delete a series. Deleting a
// series that no longer exists is a no-op.
func (s *BookingService) DeleteSeries(ctx context.Context, principal Principal, seriesID string) error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.store == nil {
		return fmt.Errorf("booking store not configured")
	}

	logger := s.loggerWith(ctx, "DeleteSeries",
		"principal_id", principal.UserID,
		"series_id", seriesID,
	)

	if principal.UserID == "" {
		logger.ErrorContext(ctx, "failed to delete series", "error", ErrUnauthorized, "error_kind", ErrorKind(ErrUnauthorized))
		return ErrUnauthorized
	}

	series, err := s.store.GetSeries(ctx, seriesID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.InfoContext(ctx, "series already gone")
			return nil
		}
		logger.ErrorContext(ctx, "failed to delete series", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if series.TeacherID != principal.UserID && !principal.IsAdmin {
		logger.ErrorContext(ctx, "failed to delete series", "error", ErrUnauthorized, "error_kind", ErrorKind(ErrUnauthorized))
		return ErrUnauthorized
	}

	if err := s.store.DeleteSeries(ctx, seriesID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		logger.ErrorContext(ctx, "failed to delete series", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "series deleted")
	s.notifySeries(ctx, logger, series, true)
	return nil
}

// ListBookings returns bookings matching the filter for any authenticated user.
func (s *BookingService) ListBookings(ctx context.Context, principal Principal, filter store.BookingFilter) ([]store.Booking, error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}
	if s.store == nil {
		return nil, nil
	}
	return s.store.ListBookings(ctx, filter)
}

// ListSeries returns recurring bookings matching the filter for any
// authenticated user.
func (s *BookingService) ListSeries(ctx context.Context, principal Principal, filter store.SeriesFilter) ([]store.BookingSeries, error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}
	if s.store == nil {
		return nil, nil
	}
	return s.store.ListSeries(ctx, filter)
}

// ListBlockedSlots returns the timetable blocks for a classroom, or for every
// classroom when classroomID is empty.
func (s *BookingService) ListBlockedSlots(ctx context.Context, principal Principal, classroomID string) ([]store.BlockedSlot, error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}
	if s.store == nil {
		return nil, nil
	}
	return s.store.ListBlockedSlots(ctx, classroomID)
}

// notifyBooking delivers a confirmation or cancellation for a booking. The
// booking outcome never depends on delivery: lookup misses skip the message
// and gateway failures are logged and dropped.
func (s *BookingService) notifyBooking(ctx context.Context, logger *slog.Logger, booking store.Booking, cancelled bool) {
	if s.notifier == nil {
		return
	}

	user, err := s.store.GetUser(ctx, booking.TeacherID)
	if err != nil {
		logger.WarnContext(ctx, "skipping booking notification", "reason", "teacher lookup failed", "error", err)
		return
	}
	classroom, err := s.store.GetClassroom(ctx, booking.ClassroomID)
	if err != nil {
		logger.WarnContext(ctx, "skipping booking notification", "reason", "classroom lookup failed", "error", err)
		return
	}

	if cancelled {
		err = s.notifier.BookingCancelled(ctx, booking, user, classroom)
	} else {
		err = s.notifier.BookingCreated(ctx, booking, user, classroom)
	}
	if err != nil {
		logger.WarnContext(ctx, "booking notification delivery failed", "error", err)
	}
}

func (s *BookingService) notifySeries(ctx context.Context, logger *slog.Logger, series store.BookingSeries, cancelled bool) {
	if s.notifier == nil {
		return
	}

	user, err := s.store.GetUser(ctx, series.TeacherID)
	if err != nil {
		logger.WarnContext(ctx, "skipping series notification", "reason", "teacher lookup failed", "error", err)
		return
	}
	classroom, err := s.store.GetClassroom(ctx, series.ClassroomID)
	if err != nil {
		logger.WarnContext(ctx, "skipping series notification", "reason", "classroom lookup failed", "error", err)
		return
	}

	if cancelled {
		err = s.notifier.SeriesCancelled(ctx, series, user, classroom)
	} else {
		err = s.notifier.SeriesCreated(ctx, series, user, classroom)
	}
	if err != nil {
		logger.WarnContext(ctx, "series notification delivery failed", "error", err)
	}
}

func validateBookingInput(input BookingInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.ClassroomID) == "" {
		vErr.add("classroom_id", "classroom is required")
	}
	if strings.TrimSpace(input.ClassGroup) == "" {
		vErr.add("class_group", "class group is required")
	}
	if strings.TrimSpace(input.Subject) == "" {
		vErr.add("subject", "subject is required")
	}
	if input.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	if input.Hour < 0 || input.Hour > 23 {
		vErr.add("hour", "hour must be between 0 and 23")
	}

	return vErr
}

func validateSeriesInput(input SeriesInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.ClassroomID) == "" {
		vErr.add("classroom_id", "classroom is required")
	}
	if strings.TrimSpace(input.ClassGroup) == "" {
		vErr.add("class_group", "class group is required")
	}
	if strings.TrimSpace(input.Subject) == "" {
		vErr.add("subject", "subject is required")
	}
	if input.StartDate.IsZero() {
		vErr.add("start_date", "start date is required")
	}
	if input.EndDate.IsZero() {
		vErr.add("end_date", "end date is required")
	}
	if input.Frequency == recurrence.FrequencyUnspecified {
		vErr.add("frequency", "frequency is required")
	}
	if input.Hour < 0 || input.Hour > 23 {
		vErr.add("hour", "hour must be between 0 and 23")
	}

	return vErr
}
