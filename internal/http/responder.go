package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/example/classroom-booking/internal/application"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// User-facing copy is Catalan, the language of the school this system serves.
var (
	errBadRequestBody      = errors.New("el format de la sol·licitud no és vàlid.")
	errInvalidResourceID   = errors.New("l'identificador indicat no és vàlid.")
	errMissingSessionToken = errors.New("cal iniciar sessió per continuar.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "No teniu permisos per realitzar aquesta acció.",
		})
	case errors.Is(err, application.ErrSessionExpired):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_SESSION_EXPIRED",
			Message:   "La sessió ha caducat. Torneu a iniciar sessió.",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "No s'ha trobat el recurs indicat."})
	case errors.Is(err, application.ErrSlotUnavailable):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "SLOT_UNAVAILABLE",
			Message:   "Aquesta aula no està disponible en aquesta franja horària.",
		})
	case errors.Is(err, application.ErrInvalidRange):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			Message: "La data de fi ha de ser igual o posterior a la data d'inici.",
		})
	case errors.Is(err, application.ErrInvalidEmail):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			Message: "El correu electrònic ha de pertànyer al domini del centre.",
		})
	default:
		var conflictErr *application.SeriesConflictError
		if errors.As(err, &conflictErr) {
			r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
				ErrorCode: "SERIES_CONFLICT",
				Message: "No s'ha pogut crear la reserva recurrent. Hi ha conflictes en les següents dates: " +
					strings.Join(conflictErr.FormattedDates(), ", "),
				ConflictDates: conflictErr.FormattedDates(),
			})
			return
		}

		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "Hi ha errors en les dades introduïdes.",
				Errors:  localizeValidationErrors(vErr),
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "S'ha produït un error intern del servidor."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "El contingut de la sol·licitud no és correcte."
	case http.StatusUnauthorized:
		return "Cal iniciar sessió per continuar."
	case http.StatusForbidden:
		return "No teniu permisos per realitzar aquesta acció."
	case http.StatusNotFound:
		return "No s'ha trobat el recurs indicat."
	case http.StatusConflict:
		return "La sol·licitud entra en conflicte amb l'estat actual."
	case http.StatusUnprocessableEntity:
		return "Hi ha errors en les dades introduïdes."
	default:
		return "S'ha produït un error intern del servidor."
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "classroom is required":
		return "Cal indicar una aula."
	case "class group is required":
		return "Cal indicar un grup classe."
	case "subject is required":
		return "Cal indicar una matèria."
	case "date is required":
		return "Cal indicar una data."
	case "start date is required":
		return "Cal indicar la data d'inici."
	case "end date is required":
		return "Cal indicar la data de fi."
	case "frequency is required":
		return "Cal indicar la freqüència."
	case "hour must be between 0 and 23":
		return "L'hora ha d'estar entre 0 i 23."
	case "name is required":
		return "El nom és obligatori."
	case "capacity must be positive":
		return "La capacitat ha de ser un nombre positiu."
	case "email is required":
		return "El correu electrònic és obligatori."
	case "role must be admin or teacher":
		return "El rol ha de ser administrador o professor."
	default:
		return message
	}
}

type errorResponse struct {
	ErrorCode     string            `json:"error_code,omitempty"`
	Message       string            `json:"message"`
	Errors        map[string]string `json:"errors,omitempty"`
	ConflictDates []string          `json:"conflict_dates,omitempty"`
}
