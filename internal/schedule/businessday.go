package schedule

import (
	"fmt"
	"time"
)

// DefaultBusinessDaySearchLimit bounds the backward search for a business
// day. Two weeks of consecutive weekend/holiday dates means the holiday
// calendar is broken.
const DefaultBusinessDaySearchLimit = 14

// HolidaySet is a set of non-business dates, keyed by year/month/day.
type HolidaySet map[time.Time]struct{}

// NewHolidaySet normalizes dates to midnight UTC so lookups ignore time of
// day and zone.
func NewHolidaySet(dates []time.Time) HolidaySet {
	set := make(HolidaySet, len(dates))
	for _, d := range dates {
		set[dateKey(d)] = struct{}{}
	}
	return set
}

func (s HolidaySet) Contains(d time.Time) bool {
	_, ok := s[dateKey(d)]
	return ok
}

func dateKey(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// PrevBusinessDay rolls a date backward to the nearest date that is neither a
// weekend nor a holiday. The date itself is returned unchanged if it already
// is a business day. The search is bounded by limit steps; exhausting it
// returns an error rather than looping forever on bad calendar data.
func PrevBusinessDay(d time.Time, holidays HolidaySet, limit int) (time.Time, error) {
	if limit <= 0 {
		limit = DefaultBusinessDaySearchLimit
	}
	result := dateKey(d)
	for i := 0; i <= limit; i++ {
		wd := result.Weekday()
		if wd != time.Saturday && wd != time.Sunday && !holidays.Contains(result) {
			return result, nil
		}
		result = result.AddDate(0, 0, -1)
	}
	return time.Time{}, fmt.Errorf("no business day found within %d days before %s", limit, d.Format("2006-01-02"))
}

// IssueDate computes the proposed issue date for a billing month: the
// configured day of the month (day <= 0 means last day, days past month end
// clamp to it), rolled back to the previous business day.
func IssueDate(m Month, day int, holidays HolidaySet, limit int) (time.Time, error) {
	last := m.Last()
	target := last
	if day > 0 {
		if day > last.Day() {
			day = last.Day()
		}
		target = time.Date(m.Year(), m.Month(), day, 0, 0, 0, 0, time.UTC)
	}
	return PrevBusinessDay(target, holidays, limit)
}
