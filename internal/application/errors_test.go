package application

import (
	"errors"
	"testing"
	"time"
)

func TestSeriesConflictError_FormattedDates(t *testing.T) {
	conflictErr := &SeriesConflictError{Dates: []time.Time{
		time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
	}}

	formatted := conflictErr.FormattedDates()
	if len(formatted) != 2 || formatted[0] != "03/06/2024" || formatted[1] != "10/06/2024" {
		t.Fatalf("expected dd/mm/yyyy dates, got %v", formatted)
	}

	if msg := conflictErr.Error(); msg != "series conflict on 03/06/2024, 10/06/2024" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestErrorKind(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "unauthorized", err: ErrUnauthorized, want: "unauthorized"},
		{name: "not found", err: ErrNotFound, want: "not_found"},
		{name: "slot unavailable", err: ErrSlotUnavailable, want: "slot_unavailable"},
		{name: "invalid range", err: ErrInvalidRange, want: "invalid_range"},
		{name: "invalid email", err: ErrInvalidEmail, want: "invalid_email"},
		{name: "session expired", err: ErrSessionExpired, want: "session_expired"},
		{name: "series conflict", err: &SeriesConflictError{}, want: "series_conflict"},
		{name: "validation", err: &ValidationError{FieldErrors: map[string]string{"name": "required"}}, want: "validation"},
		{name: "wrapped sentinel", err: errors.Join(errors.New("ctx"), ErrNotFound), want: "not_found"},
		{name: "unexpected", err: errors.New("boom"), want: "unexpected"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ErrorKind(tc.err); got != tc.want {
				t.Fatalf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}
