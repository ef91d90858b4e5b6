package recurrence

import (
	"errors"
	"strings"
	"time"
)

// Frequency represents supported recurrence intervals between bookings.
type Frequency int

const (
	// FrequencyUnspecified indicates the frequency is not set.
	FrequencyUnspecified Frequency = iota
	// FrequencyDaily advances one calendar day between candidates.
	FrequencyDaily
	// FrequencyWeekly advances seven calendar days between candidates.
	FrequencyWeekly
	// FrequencyMonthly advances one calendar month between candidates.
	FrequencyMonthly
)

// ErrInvalidRange indicates the expansion range starts after it ends.
var ErrInvalidRange = errors.New("recurrence: start date is after end date")

// ErrInvalidFrequency indicates the recurrence frequency is not supported.
var ErrInvalidFrequency = errors.New("recurrence: invalid frequency")

// String returns the canonical lower-case name of the frequency.
func (f Frequency) String() string {
	switch f {
	case FrequencyDaily:
		return "daily"
	case FrequencyWeekly:
		return "weekly"
	case FrequencyMonthly:
		return "monthly"
	default:
		return "unspecified"
	}
}

// ParseFrequency maps a canonical name back to a Frequency. Unknown values map
// to FrequencyUnspecified.
func ParseFrequency(value string) Frequency {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "daily":
		return FrequencyDaily
	case "weekly":
		return FrequencyWeekly
	case "monthly":
		return FrequencyMonthly
	default:
		return FrequencyUnspecified
	}
}

// Expand produces the concrete booking dates for a recurring series.
//
// The sequence begins at start and advances by the frequency step (daily: one
// day, weekly: seven days, monthly: one calendar month with Go's AddDate
// normalization for month-end overflow). Every candidate not after end is
// considered, and only candidates falling on Monday through Friday are
// retained; weekend candidates are skipped, not rescheduled. An empty result
// is legal when every candidate in range lands on a weekend.
//
// Expand fails with ErrInvalidRange when start is strictly after end, checked
// before any expansion happens.
func Expand(start, end time.Time, frequency Frequency) ([]time.Time, error) {
	start = Midnight(start)
	end = Midnight(end)

	if start.After(end) {
		return nil, ErrInvalidRange
	}

	var step func(time.Time) time.Time
	switch frequency {
	case FrequencyDaily:
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }
	case FrequencyWeekly:
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 7) }
	case FrequencyMonthly:
		step = func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }
	default:
		return nil, ErrInvalidFrequency
	}

	dates := make([]time.Time, 0)
	for current := start; !current.After(end); current = step(current) {
		if isSchoolDay(current.Weekday()) {
			dates = append(dates, current)
		}
	}

	return dates, nil
}

// Midnight truncates a timestamp to its calendar day in UTC. Booking dates are
// day-granular; normalizing here keeps map keys and comparisons stable.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isSchoolDay(day time.Weekday) bool {
	return day >= time.Monday && day <= time.Friday
}
