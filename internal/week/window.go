package week

import (
	"fmt"
	"time"

	pkgerrors "github.com/tuliahq/sales-sync/pkg/errors"
)

const dateLayout = "2006-01-02"

// DayKeys are the seven week-relative keys of a canonical record, Monday first.
var DayKeys = [7]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// Window is a Monday-start, 7-day week anchored to local midnight in a
// configured zone. Start and End are inclusive calendar days.
type Window struct {
	Start time.Time
	End   time.Time
}

// Resolve returns the window containing target, or containing now when
// target is empty. target must be an ISO calendar date; anything else is a
// configuration error rather than a silent fallback. A target falling on a
// Monday starts the window on that same date.
func Resolve(target string, loc *time.Location, now time.Time) (Window, error) {
	if loc == nil {
		loc = time.UTC
	}

	anchor := now.In(loc)
	if target != "" {
		parsed, err := time.ParseInLocation(dateLayout, target, loc)
		if err != nil {
			return Window{}, pkgerrors.Wrap(pkgerrors.CodeConfiguration, err,
				fmt.Sprintf("target date %q is not a valid YYYY-MM-DD date", target))
		}
		anchor = parsed
	}

	// Monday=0 .. Sunday=6
	offset := (int(anchor.Weekday()) + 6) % 7
	start := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, loc).
		AddDate(0, 0, -offset)

	return Window{Start: start, End: start.AddDate(0, 0, 6)}, nil
}

// DayKey maps an absolute calendar date to its week-relative key. Dates
// outside the window report ok=false and must be discarded by the caller;
// upstream may return a wider range than requested. Only the calendar date
// matters, so the input's zone and time of day are ignored.
func (w Window) DayKey(date time.Time) (string, bool) {
	y, m, d := date.Date()
	for i := 0; i < 7; i++ {
		day := w.Start.AddDate(0, 0, i)
		dy, dm, dd := day.Date()
		if y == dy && m == dm && d == dd {
			return DayKeys[i], true
		}
	}
	return "", false
}

// Days returns the seven calendar days of the window in order.
func (w Window) Days() []time.Time {
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = w.Start.AddDate(0, 0, i)
	}
	return days
}

// StartISO returns the window start as YYYY-MM-DD; it doubles as the
// persisted week key.
func (w Window) StartISO() string {
	return w.Start.Format(dateLayout)
}

// EndISO returns the window end as YYYY-MM-DD.
func (w Window) EndISO() string {
	return w.End.Format(dateLayout)
}
