package shared

import (
	"fmt"
	"time"

	"github.com/bodega-pos/bodega/internal/platform/httpx"
)

// Period selects the reporting window for aggregation queries.
type Period string

const (
	// PeriodToday covers the current calendar day.
	PeriodToday Period = "today"
	// PeriodWeek covers the rolling seven days up to now.
	PeriodWeek Period = "week"
	// PeriodMonth covers the current month from day one.
	PeriodMonth Period = "month"
)

// ParsePeriod validates a period selector coming from the UI.
func ParsePeriod(raw string) (Period, error) {
	switch Period(raw) {
	case PeriodToday, PeriodWeek, PeriodMonth:
		return Period(raw), nil
	case "":
		return PeriodToday, nil
	}
	return "", fmt.Errorf("%w: unknown period %q", httpx.ErrValidation, raw)
}

// Window resolves the period to an inclusive [from, to] range anchored at a
// reference instant fixed by the caller. Day boundaries follow the reference
// location, not UTC.
func (p Period) Window(now time.Time) (time.Time, time.Time, error) {
	switch p {
	case PeriodToday:
		from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return from, now, nil
	case PeriodWeek:
		return now.AddDate(0, 0, -7), now, nil
	case PeriodMonth:
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return from, now, nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("%w: unknown period %q", httpx.ErrValidation, string(p))
}
