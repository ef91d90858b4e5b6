// Package notification delivers booking lifecycle messages. Delivery is
// simulated: the log gateway renders the email a real provider would send and
// writes it to the structured log. Callers treat every gateway as
// fire-and-forget and ignore failures.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/classroom-booking/internal/recurrence"
	"github.com/example/classroom-booking/internal/store"
)

// Gateway receives booking lifecycle events addressed to the owning teacher.
type Gateway interface {
	BookingCreated(ctx context.Context, booking store.Booking, user store.User, classroom store.Classroom) error
	BookingCancelled(ctx context.Context, booking store.Booking, user store.User, classroom store.Classroom) error
	SeriesCreated(ctx context.Context, series store.BookingSeries, user store.User, classroom store.Classroom) error
	SeriesCancelled(ctx context.Context, series store.BookingSeries, user store.User, classroom store.Classroom) error
}

// LogGateway writes simulated emails to a structured logger.
type LogGateway struct {
	logger *slog.Logger
}

// NewLogGateway constructs a gateway over the provided logger. A nil logger
// falls back to slog.Default.
func NewLogGateway(logger *slog.Logger) *LogGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogGateway{logger: logger}
}

var _ Gateway = (*LogGateway)(nil)

// The user-facing copy stays in Catalan, the language of the school this
// system serves.
const mailSignatureConfirm = "Gràcies,\nGestor de Reserves d'Aules"
const mailSignatureCancel = "Atentament,\nGestor de Reserves d'Aules"

func (g *LogGateway) BookingCreated(ctx context.Context, booking store.Booking, user store.User, classroom store.Classroom) error {
	body := fmt.Sprintf(
		"Hola %s,\n\nS'ha confirmat la teva reserva per a l'aula \"%s\".\n\nDetalls de la reserva:\n- Matèria: %s\n- Grup: %s\n- Dia: %s\n- Hora: %d:00 - %d:00\n\n%s",
		user.Name, classroom.Name, booking.Subject, booking.ClassGroup,
		catalanDate(booking.Date), booking.Hour, booking.Hour+1, mailSignatureConfirm,
	)
	g.send(ctx, user.Email, "Confirmació de reserva d'aula", body)
	return nil
}

func (g *LogGateway) BookingCancelled(ctx context.Context, booking store.Booking, user store.User, classroom store.Classroom) error {
	body := fmt.Sprintf(
		"Hola %s,\n\nS'ha cancel·lat la teva reserva per a l'aula \"%s\".\n\nDetalls de la reserva cancel·lada:\n- Matèria: %s\n- Grup: %s\n- Dia: %s\n- Hora: %d:00 - %d:00\n\n%s",
		user.Name, classroom.Name, booking.Subject, booking.ClassGroup,
		catalanDate(booking.Date), booking.Hour, booking.Hour+1, mailSignatureCancel,
	)
	g.send(ctx, user.Email, "Cancel·lació de reserva d'aula", body)
	return nil
}

func (g *LogGateway) SeriesCreated(ctx context.Context, series store.BookingSeries, user store.User, classroom store.Classroom) error {
	body := fmt.Sprintf(
		"Hola %s,\n\nS'ha confirmat la teva sèrie de reserves per a l'aula \"%s\".\n\nDetalls de la sèrie:\n- Matèria: %s\n- Grup: %s\n- Des del: %s\n- Fins al: %s\n- Freqüència: %s\n- Hora: %d:00 - %d:00\n\n%s",
		user.Name, classroom.Name, series.Subject, series.ClassGroup,
		catalanDate(series.StartDate), catalanDate(series.EndDate),
		catalanFrequency(series.Frequency), series.Hour, series.Hour+1, mailSignatureConfirm,
	)
	g.send(ctx, user.Email, "Confirmació de reserva d'aula recurrent", body)
	return nil
}

func (g *LogGateway) SeriesCancelled(ctx context.Context, series store.BookingSeries, user store.User, classroom store.Classroom) error {
	body := fmt.Sprintf(
		"Hola %s,\n\nS'ha cancel·lat la teva sèrie de reserves recurrents per a l'aula \"%s\".\n\nDetalls de la sèrie cancel·lada:\n- Matèria: %s\n- Grup: %s\n- Des del: %s\n- Fins al: %s\n- Freqüència: %s\n\n%s",
		user.Name, classroom.Name, series.Subject, series.ClassGroup,
		catalanDate(series.StartDate), catalanDate(series.EndDate),
		catalanFrequency(series.Frequency), mailSignatureCancel,
	)
	g.send(ctx, user.Email, "Cancel·lació de sèrie de reserves d'aula", body)
	return nil
}

func (g *LogGateway) send(ctx context.Context, to, subject, body string) {
	g.logger.InfoContext(ctx, "simulated email dispatch",
		"to", to,
		"subject", subject,
		"body", body,
	)
}

// catalanDate renders a calendar day the way the booking UI does, dd/mm/yyyy.
func catalanDate(date time.Time) string {
	return date.Format("02/01/2006")
}

func catalanFrequency(frequency recurrence.Frequency) string {
	switch frequency {
	case recurrence.FrequencyDaily:
		return "Diària"
	case recurrence.FrequencyWeekly:
		return "Setmanal"
	case recurrence.FrequencyMonthly:
		return "Mensual"
	default:
		return "Desconeguda"
	}
}
