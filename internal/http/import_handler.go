package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/classroom-booking/internal/application"
	"github.com/example/classroom-booking/internal/store"
)

var errEmptyImportFile = errors.New("el fitxer de configuració no conté cap secció vàlida.")

type importService interface {
	ImportConfiguration(ctx context.Context, params application.ImportParams) error
	Settings(ctx context.Context, principal application.Principal) (store.AppSettings, error)
}

type ImportHandler struct {
	service   importService
	responder responder
	logger    *slog.Logger
}

func NewImportHandler(service importService, logger *slog.Logger) *ImportHandler {
	base := defaultLogger(logger)
	return &ImportHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ImportHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ImportHandler", operation, attrs...)
}

// Import applies a configuration file uploaded by an administrator.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Import", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode import file", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Import", "principal_id", principal.UserID)

	if req.Classrooms == nil && req.Users == nil && req.Settings == nil {
		logger.With("error_kind", "bad_request").ErrorContext(r.Context(), "import file carries no sections")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errEmptyImportFile)
		return
	}

	err := h.service.ImportConfiguration(r.Context(), application.ImportParams{
		Principal: principal,
		Data:      req.toData(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "configuration import failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "configuration imported")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, importResponse{
		Message: "La configuració s'ha importat correctament.",
	})
}

// Settings serves the school settings with the derived teacher roster.
func (h *ImportHandler) Settings(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Settings", "principal_id", principal.UserID)

	settings, err := h.service.Settings(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "settings fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, settingsResponse{Settings: toSettingsDTO(settings)})
}

// importRequest mirrors the configuration file layout. Absent sections decode
// to nil and leave the corresponding stored data untouched.
type importRequest struct {
	Classrooms []importClassroomEntry `json:"classrooms"`
	Users      []importUserEntry      `json:"users"`
	Settings   *importSettingsEntry   `json:"settings"`
}

type importClassroomEntry struct {
	Name      string   `json:"name"`
	Capacity  int      `json:"capacity"`
	Equipment []string `json:"equipment"`
}

type importUserEntry struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type importSettingsEntry struct {
	SchoolYear  string   `json:"school_year"`
	ClassGroups []string `json:"class_groups"`
	Subjects    []string `json:"subjects"`
}

func (r importRequest) toData() application.ImportData {
	data := application.ImportData{}

	if r.Classrooms != nil {
		data.Classrooms = make([]application.ImportClassroom, 0, len(r.Classrooms))
		for _, entry := range r.Classrooms {
			data.Classrooms = append(data.Classrooms, application.ImportClassroom{
				Name:      entry.Name,
				Capacity:  entry.Capacity,
				Equipment: entry.Equipment,
			})
		}
	}

	if r.Users != nil {
		data.Users = make([]application.ImportUser, 0, len(r.Users))
		for _, entry := range r.Users {
			data.Users = append(data.Users, application.ImportUser{
				Name:  entry.Name,
				Email: entry.Email,
				Role:  store.Role(strings.ToLower(strings.TrimSpace(entry.Role))),
			})
		}
	}

	if r.Settings != nil {
		data.Settings = &application.ImportSettings{
			SchoolYear:  r.Settings.SchoolYear,
			ClassGroups: r.Settings.ClassGroups,
			Subjects:    r.Settings.Subjects,
		}
	}

	return data
}

type importResponse struct {
	Message string `json:"message"`
}

type settingsResponse struct {
	Settings settingsDTO `json:"settings"`
}

type settingsDTO struct {
	SchoolYear  string          `json:"school_year"`
	Teachers    []teacherRefDTO `json:"teachers"`
	ClassGroups []string        `json:"class_groups"`
	Subjects    []string        `json:"subjects"`
}

type teacherRefDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func toSettingsDTO(settings store.AppSettings) settingsDTO {
	teachers := make([]teacherRefDTO, 0, len(settings.Teachers))
	for _, ref := range settings.Teachers {
		teachers = append(teachers, teacherRefDTO{ID: ref.ID, Name: ref.Name})
	}
	return settingsDTO{
		SchoolYear:  settings.SchoolYear,
		Teachers:    teachers,
		ClassGroups: settings.ClassGroups,
		Subjects:    settings.Subjects,
	}
}
