package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaemin/maintbilling/internal/schedule"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPrevBusinessDay(t *testing.T) {
	none := schedule.NewHolidaySet(nil)

	// A weekday stays put.
	got, err := schedule.PrevBusinessDay(date(2024, 3, 27), none, 14)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 27), got)

	// 2024-03-30 is a Saturday; it rolls back to Friday the 29th.
	got, err = schedule.PrevBusinessDay(date(2024, 3, 30), none, 14)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 29), got)

	// With Friday a holiday the Saturday rolls through to Thursday.
	holidays := schedule.NewHolidaySet([]time.Time{date(2024, 3, 29)})
	got, err = schedule.PrevBusinessDay(date(2024, 3, 30), holidays, 14)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 28), got)
}

func TestPrevBusinessDayNormalizesTimeOfDay(t *testing.T) {
	none := schedule.NewHolidaySet(nil)
	got, err := schedule.PrevBusinessDay(time.Date(2024, 3, 27, 18, 45, 0, 0, time.UTC), none, 14)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 27), got)
}

func TestPrevBusinessDaySearchBound(t *testing.T) {
	// Saturday the 30th with the preceding three weekdays all holidays and a
	// search limit of 3: every candidate is consumed, so the calendar is
	// reported as broken instead of rolling further.
	holidays := schedule.NewHolidaySet([]time.Time{
		date(2024, 3, 29),
		date(2024, 3, 28),
		date(2024, 3, 27),
	})
	_, err := schedule.PrevBusinessDay(date(2024, 3, 30), holidays, 3)
	assert.Error(t, err)
}

func TestIssueDate(t *testing.T) {
	none := schedule.NewHolidaySet(nil)
	march := schedule.NewMonth(2024, time.March)

	// Day zero means last day of month; 2024-03-31 is a Sunday, so the
	// proposal lands on Friday the 29th.
	got, err := schedule.IssueDate(march, 0, none, 14)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 29), got)

	// 2024-03-10 is a Sunday; day 10 rolls back to Friday the 8th.
	got, err = schedule.IssueDate(march, 10, none, 14)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 8), got)

	// Day 31 in a 29-day month clamps to the last day.
	february := schedule.NewMonth(2024, time.February)
	got, err = schedule.IssueDate(february, 31, none, 14)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 2, 29), got)
}
