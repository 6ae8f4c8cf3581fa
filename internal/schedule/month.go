// Package schedule implements the billing calendar rules: cycle target
// months, contract period rolling and business-day adjustment.
package schedule

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Month is a month in a specific year.
type Month time.Time

func NewMonth(year int, month time.Month) Month {
	return Month(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
}

// MonthOf returns the Month in which t occurs.
func MonthOf(t time.Time) Month {
	year, month, _ := t.Date()
	return Month(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
}

// ParseMonth parses a "YYYY-MM" string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q", s)
	}
	return MonthOf(t), nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", time.Time(m).Year(), time.Time(m).Month())
}

func (m Month) Year() int         { return time.Time(m).Year() }
func (m Month) Month() time.Month { return time.Time(m).Month() }
func (m Month) IsZero() bool      { return time.Time(m).IsZero() }

// First returns the first day of the month.
func (m Month) First() time.Time {
	return time.Time(m)
}

// Last returns the last day of the month.
func (m Month) Last() time.Time {
	return time.Time(m).AddDate(0, 1, -1)
}

// AddMonths returns the month n months after m (n may be negative).
func (m Month) AddMonths(n int) Month {
	return Month(time.Time(m).AddDate(0, n, 0))
}

// Previous returns the immediately preceding month.
func (m Month) Previous() Month {
	return m.AddMonths(-1)
}

func (m Month) Equal(n Month) bool {
	return time.Time(m).Equal(time.Time(n))
}

func (m Month) Before(n Month) bool {
	return time.Time(m).Before(time.Time(n))
}

// Contains reports whether t falls within the month.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.Year() && t.Month() == m.Month()
}

func (m Month) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m *Month) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	if value == "" || value == "null" {
		return nil
	}
	parsed, err := ParseMonth(value)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Scan reads the value from the database.
func (m *Month) Scan(value interface{}) error {
	nullTime := &sql.NullTime{}
	if err := nullTime.Scan(value); err != nil {
		return err
	}
	*m = MonthOf(nullTime.Time)
	return nil
}

// Value returns the value for the SQL driver to write to the database.
func (m Month) Value() (driver.Value, error) {
	return time.Time(m), nil
}

// GormDataType defines the data type used by gorm for the type.
func (Month) GormDataType() string {
	return "date"
}

// AddMonthsClamped adds n months to a date, clamping the day to the last day
// of the resulting month (Jan 31 + 1 month = Feb 28). Renewal periods roll
// with this arithmetic so a month-end contract never overflows into the next
// month.
func AddMonthsClamped(d time.Time, n int) time.Time {
	year, month, day := d.Date()
	target := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, d.Location())
	lastDay := target.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, d.Location())
}
