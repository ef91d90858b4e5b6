package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/classroom-booking/internal/application"
	"github.com/example/classroom-booking/internal/recurrence"
	"github.com/example/classroom-booking/internal/store"
)

var (
	errInvalidDate = errors.New("la data ha de tenir el format aaaa-mm-dd.")
	errInvalidHour = errors.New("l'hora ha de ser un nombre entre 0 i 23.")
)

type bookingService interface {
	IsSlotAvailable(ctx context.Context, classroomID string, date time.Time, hour int) (bool, error)
	CreateBooking(ctx context.Context, params application.CreateBookingParams) (store.Booking, error)
	DeleteBooking(ctx context.Context, principal application.Principal, bookingID string) error
	ListBookings(ctx context.Context, principal application.Principal, filter store.BookingFilter) ([]store.Booking, error)
	CreateSeries(ctx context.Context, params application.CreateSeriesParams) (store.BookingSeries, error)
	DeleteSeries(ctx context.Context, principal application.Principal, seriesID string) error
	ListSeries(ctx context.Context, principal application.Principal, filter store.SeriesFilter) ([]store.BookingSeries, error)
	ListBlockedSlots(ctx context.Context, principal application.Principal, classroomID string) ([]store.BlockedSlot, error)
}

type BookingHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	classroomID := strings.TrimSpace(query.Get("classroom_id"))
	if classroomID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}
	date, err := time.Parse(store.DateLayout, strings.TrimSpace(query.Get("date")))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}
	hour, err := strconv.Atoi(strings.TrimSpace(query.Get("hour")))
	if err != nil || hour < 0 || hour > 23 {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidHour)
		return
	}

	logger := h.log(r.Context(), "Availability", "classroom_id", classroomID, "hour", hour)

	available, err := h.service.IsSlotAvailable(r.Context(), classroomID, date, hour)
	if err != nil {
		logger.ErrorContext(r.Context(), "availability check failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, availabilityResponse{Available: available})
}

func (h *BookingHandler) ListBlockedSlots(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	classroomID := strings.TrimSpace(r.URL.Query().Get("classroom_id"))
	logger := h.log(r.Context(), "ListBlockedSlots", "principal_id", principal.UserID, "classroom_id", classroomID)

	slots, err := h.service.ListBlockedSlots(r.Context(), principal, classroomID)
	if err != nil {
		logger.ErrorContext(r.Context(), "blocked slot list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(slots)).InfoContext(r.Context(), "blocked slots listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBlockedSlotsResponse{BlockedSlots: toBlockedSlotDTOs(slots)})
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()

	filter := store.BookingFilter{
		ClassroomID: strings.TrimSpace(query.Get("classroom_id")),
		TeacherID:   strings.TrimSpace(query.Get("teacher_id")),
		SeriesID:    strings.TrimSpace(query.Get("series_id")),
	}
	if raw := strings.TrimSpace(query.Get("date")); raw != "" {
		date, err := time.Parse(store.DateLayout, raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
			return
		}
		filter.Date = &date
	}

	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)

	bookings, err := h.service.ListBookings(r.Context(), principal, filter)
	if err != nil {
		logger.ErrorContext(r.Context(), "booking list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(bookings)).InfoContext(r.Context(), "bookings listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBookingsResponse{Bookings: toBookingDTOs(bookings)})
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if err := validate.Struct(req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	date, err := time.Parse(store.DateLayout, req.Date)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "classroom_id", req.ClassroomID)

	booking, err := h.service.CreateBooking(r.Context(), application.CreateBookingParams{
		Principal: principal,
		Input: application.BookingInput{
			ClassroomID: req.ClassroomID,
			TeacherID:   req.TeacherID,
			ClassGroup:  req.ClassGroup,
			Subject:     req.Subject,
			Date:        date,
			Hour:        req.Hour,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("booking_id", booking.ID).InfoContext(r.Context(), "booking created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, bookingResponse{Booking: toBookingDTO(booking)})
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bookingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "booking_id", bookingID)

	if err := h.service.DeleteBooking(r.Context(), principal, bookingID); err != nil {
		logger.ErrorContext(r.Context(), "booking delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *BookingHandler) ListSeries(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()
	filter := store.SeriesFilter{
		ClassroomID: strings.TrimSpace(query.Get("classroom_id")),
		TeacherID:   strings.TrimSpace(query.Get("teacher_id")),
	}

	logger := h.log(r.Context(), "ListSeries", "principal_id", principal.UserID)

	series, err := h.service.ListSeries(r.Context(), principal, filter)
	if err != nil {
		logger.ErrorContext(r.Context(), "series list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(series)).InfoContext(r.Context(), "series listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSeriesResponse{Series: toSeriesDTOs(series)})
}

func (h *BookingHandler) CreateSeries(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req seriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CreateSeries", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode series request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if err := validate.Struct(req); err != nil {
		h.log(r.Context(), "CreateSeries", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid series request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	startDate, err := time.Parse(store.DateLayout, req.StartDate)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}
	endDate, err := time.Parse(store.DateLayout, req.EndDate)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}
	frequency := recurrence.ParseFrequency(req.Frequency)

	logger := h.log(r.Context(), "CreateSeries", "principal_id", principal.UserID, "classroom_id", req.ClassroomID)

	series, err := h.service.CreateSeries(r.Context(), application.CreateSeriesParams{
		Principal: principal,
		Input: application.SeriesInput{
			ClassroomID: req.ClassroomID,
			ClassGroup:  req.ClassGroup,
			Subject:     req.Subject,
			StartDate:   startDate,
			EndDate:     endDate,
			Hour:        req.Hour,
			Frequency:   frequency,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "series creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("series_id", series.ID).InfoContext(r.Context(), "series created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, seriesResponse{Series: toSeriesDTO(series)})
}

func (h *BookingHandler) DeleteSeries(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	seriesID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(seriesID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "DeleteSeries", "principal_id", principal.UserID, "series_id", seriesID)

	if err := h.service.DeleteSeries(r.Context(), principal, seriesID); err != nil {
		logger.ErrorContext(r.Context(), "series delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "series deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type bookingRequest struct {
	ClassroomID string `json:"classroom_id" validate:"required"`
	TeacherID   string `json:"teacher_id"`
	ClassGroup  string `json:"class_group" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Hour        int    `json:"hour" validate:"gte=0,lte=23"`
}

type seriesRequest struct {
	ClassroomID string `json:"classroom_id" validate:"required"`
	ClassGroup  string `json:"class_group" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
	StartDate   string `json:"start_date" validate:"required"`
	EndDate     string `json:"end_date" validate:"required"`
	Hour        int    `json:"hour" validate:"gte=0,lte=23"`
	Frequency   string `json:"frequency" validate:"required,oneof=daily weekly monthly"`
}

type availabilityResponse struct {
	Available bool `json:"available"`
}

type bookingResponse struct {
	Booking bookingDTO `json:"booking"`
}

type listBookingsResponse struct {
	Bookings []bookingDTO `json:"bookings"`
}

type seriesResponse struct {
	Series seriesDTO `json:"series"`
}

type listSeriesResponse struct {
	Series []seriesDTO `json:"series"`
}

type listBlockedSlotsResponse struct {
	BlockedSlots []blockedSlotDTO `json:"blocked_slots"`
}

type bookingDTO struct {
	ID          string `json:"id"`
	SeriesID    string `json:"series_id,omitempty"`
	ClassroomID string `json:"classroom_id"`
	TeacherID   string `json:"teacher_id"`
	ClassGroup  string `json:"class_group"`
	Subject     string `json:"subject"`
	Date        string `json:"date"`
	Hour        int    `json:"hour"`
}

type seriesDTO struct {
	ID          string `json:"id"`
	ClassroomID string `json:"classroom_id"`
	TeacherID   string `json:"teacher_id"`
	ClassGroup  string `json:"class_group"`
	Subject     string `json:"subject"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Hour        int    `json:"hour"`
	Frequency   string `json:"frequency"`
}

type blockedSlotDTO struct {
	ID          string `json:"id"`
	ClassroomID string `json:"classroom_id"`
	Day         int    `json:"day"`
	Hour        int    `json:"hour"`
	Subject     string `json:"subject,omitempty"`
	ClassGroup  string `json:"class_group,omitempty"`
}

func toBookingDTO(booking store.Booking) bookingDTO {
	return bookingDTO{
		ID:          booking.ID,
		SeriesID:    booking.SeriesID,
		ClassroomID: booking.ClassroomID,
		TeacherID:   booking.TeacherID,
		ClassGroup:  booking.ClassGroup,
		Subject:     booking.Subject,
		Date:        booking.Date.Format(store.DateLayout),
		Hour:        booking.Hour,
	}
}

func toBookingDTOs(bookings []store.Booking) []bookingDTO {
	if len(bookings) == 0 {
		return nil
	}
	out := make([]bookingDTO, 0, len(bookings))
	for _, booking := range bookings {
		out = append(out, toBookingDTO(booking))
	}
	return out
}

func toSeriesDTO(series store.BookingSeries) seriesDTO {
	return seriesDTO{
		ID:          series.ID,
		ClassroomID: series.ClassroomID,
		TeacherID:   series.TeacherID,
		ClassGroup:  series.ClassGroup,
		Subject:     series.Subject,
		StartDate:   series.StartDate.Format(store.DateLayout),
		EndDate:     series.EndDate.Format(store.DateLayout),
		Hour:        series.Hour,
		Frequency:   series.Frequency.String(),
	}
}

func toSeriesDTOs(series []store.BookingSeries) []seriesDTO {
	if len(series) == 0 {
		return nil
	}
	out := make([]seriesDTO, 0, len(series))
	for _, entry := range series {
		out = append(out, toSeriesDTO(entry))
	}
	return out
}

func toBlockedSlotDTO(slot store.BlockedSlot) blockedSlotDTO {
	return blockedSlotDTO{
		ID:          slot.ID,
		ClassroomID: slot.ClassroomID,
		Day:         int(slot.Day),
		Hour:        slot.Hour,
		Subject:     slot.Subject,
		ClassGroup:  slot.ClassGroup,
	}
}

func toBlockedSlotDTOs(slots []store.BlockedSlot) []blockedSlotDTO {
	if len(slots) == 0 {
		return nil
	}
	out := make([]blockedSlotDTO, 0, len(slots))
	for _, slot := range slots {
		out = append(out, toBlockedSlotDTO(slot))
	}
	return out
}
