package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/classroom-booking/internal/application"
	"github.com/example/classroom-booking/internal/store"
)

type classroomService interface {
	AddClassroom(ctx context.Context, params application.CreateClassroomParams) (store.Classroom, error)
	UpdateClassroom(ctx context.Context, params application.UpdateClassroomParams) error
	DeleteClassroom(ctx context.Context, principal application.Principal, classroomID string) error
	ListClassrooms(ctx context.Context, principal application.Principal) ([]store.Classroom, error)
}

type ClassroomHandler struct {
	service   classroomService
	responder responder
	logger    *slog.Logger
}

func NewClassroomHandler(service classroomService, logger *slog.Logger) *ClassroomHandler {
	base := defaultLogger(logger)
	return &ClassroomHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ClassroomHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ClassroomHandler", operation, attrs...)
}

func (h *ClassroomHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req classroomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode classroom request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if err := validate.Struct(req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid classroom request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	classroom, err := h.service.AddClassroom(r.Context(), application.CreateClassroomParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "classroom creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("classroom_id", classroom.ID).InfoContext(r.Context(), "classroom created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, classroomResponse{Classroom: toClassroomDTO(classroom)})
}

func (h *ClassroomHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	classroomID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(classroomID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing classroom id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req classroomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "classroom_id", classroomID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode classroom update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if err := validate.Struct(req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "classroom_id", classroomID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid classroom update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "classroom_id", classroomID)

	err := h.service.UpdateClassroom(r.Context(), application.UpdateClassroomParams{
		Principal:   principal,
		ClassroomID: classroomID,
		Input:       req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "classroom update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "classroom updated")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ClassroomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	classroomID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(classroomID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing classroom id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "classroom_id", classroomID)

	if err := h.service.DeleteClassroom(r.Context(), principal, classroomID); err != nil {
		logger.ErrorContext(r.Context(), "classroom delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "classroom deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ClassroomHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok || strings.TrimSpace(principal.UserID) == "" {
		h.log(r.Context(), "List", "error_kind", "unauthorized").ErrorContext(r.Context(), "missing authenticated principal")
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)
	classrooms, err := h.service.ListClassrooms(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "classroom list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(classrooms)).InfoContext(r.Context(), "classrooms listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listClassroomsResponse{Classrooms: toClassroomDTOs(classrooms)})
}

type classroomRequest struct {
	Name      string   `json:"name" validate:"required"`
	Capacity  int      `json:"capacity" validate:"required,gt=0"`
	Equipment []string `json:"equipment"`
}

func (r classroomRequest) toInput() application.ClassroomInput {
	return application.ClassroomInput{
		Name:      strings.TrimSpace(r.Name),
		Capacity:  r.Capacity,
		Equipment: r.Equipment,
	}
}

type classroomResponse struct {
	Classroom classroomDTO `json:"classroom"`
}

type listClassroomsResponse struct {
	Classrooms []classroomDTO `json:"classrooms"`
}

type classroomDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Capacity  int      `json:"capacity"`
	Equipment []string `json:"equipment,omitempty"`
}

func toClassroomDTO(classroom store.Classroom) classroomDTO {
	return classroomDTO{
		ID:        classroom.ID,
		Name:      classroom.Name,
		Capacity:  classroom.Capacity,
		Equipment: classroom.Equipment,
	}
}

func toClassroomDTOs(classrooms []store.Classroom) []classroomDTO {
	if len(classrooms) == 0 {
		return nil
	}
	out := make([]classroomDTO, 0, len(classrooms))
	for _, classroom := range classrooms {
		out = append(out, toClassroomDTO(classroom))
	}
	return out
}
