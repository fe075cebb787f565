package valueobject

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire and storage layout of a calendar date
const DateLayout = "2006-01-02"

// Date is a calendar date without time-of-day, normalized to UTC midnight.
// It is immutable - all operations return new Date instances
type Date struct {
	t time.Time
}

// NewDate creates a Date from its calendar parts
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar date in the timestamp's own location
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// Today returns the current date in UTC
func Today() Date {
	return DateOf(time.Now().UTC())
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

// MustParseDate parses a YYYY-MM-DD string and panics on failure
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns the date as a UTC midnight timestamp
func (d Date) Time() time.Time {
	return d.t
}

// Ptr returns the date as a timestamp pointer, nil for the zero date
func (d Date) Ptr() *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.t
	return &t
}

// IsZero reports whether the date is unset
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Year returns the calendar year
func (d Date) Year() int {
	return d.t.Year()
}

// Day returns the day of month
func (d Date) Day() int {
	return d.t.Day()
}

// String returns the YYYY-MM-DD representation
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// PeriodMonth returns the YYYY-MM period the date belongs to
func (d Date) PeriodMonth() string {
	return d.t.Format("2006-01")
}

// AddDays returns the date shifted by n calendar days
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// MonthStart returns the first day of the date's month
func (d Date) MonthStart() Date {
	return NewDate(d.t.Year(), d.t.Month(), 1)
}

// Before reports whether d is strictly before other
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// After reports whether d is strictly after other
func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

// Equal reports whether both dates are the same day
func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

// MaxDate returns the later of two dates
func MaxDate(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

// MinDate returns the earlier of two dates
func MinDate(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

// InclusiveDayCount counts the days in [start, end]. The result is zero or
// negative when end is before start.
func InclusiveDayCount(start, end Date) int {
	return int(end.t.Sub(start.t).Hours()/24) + 1
}

// MarshalJSON implements json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateRange is an inclusive range of calendar dates
type DateRange struct {
	Start Date
	End   Date
}

// NewDateRange creates a range, rejecting an end before the start
func NewDateRange(start, end Date) (DateRange, error) {
	if start.IsZero() || end.IsZero() {
		return DateRange{}, fmt.Errorf("date range requires both start and end")
	}
	if end.Before(start) {
		return DateRange{}, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return DateRange{Start: start, End: end}, nil
}

// Days returns the inclusive length, never less than one
func (r DateRange) Days() int {
	return max(1, InclusiveDayCount(r.Start, r.End))
}

// Contains reports whether d falls inside the range
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Overlap returns the intersection length in days, zero when disjoint
func (r DateRange) Overlap(other DateRange) int {
	start := MaxDate(r.Start, other.Start)
	end := MinDate(r.End, other.End)
	return max(0, InclusiveDayCount(start, end))
}
