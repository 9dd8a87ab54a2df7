// Package calendar converts between day numbers and calendar fields.
//
// Day numbers count whole days since 1960-01-01, which is day 0 and a Friday.
// The calendar follows the conventions of the British Empire: Julian leap
// years up to 1752, Gregorian leap years afterwards, and the eleven days
// September 3 to September 13, 1752 never happened.
package calendar

import (
	"fmt"
)

const (
	// MsPerDay is the number of milliseconds in a day without a leap second.
	MsPerDay = 86_400_000
	// MsPerLeapDay is the exclusive upper bound of a millisecond-of-day value.
	// One leap second per day is tolerated.
	MsPerLeapDay = MsPerDay + 1000

	epochYear    = 1960
	epochWeekday = 5 // 1960-01-01 was a Friday

	switchYear  = 1752
	switchMonth = 9
)

// Instant is a day number and a millisecond of that day.
// Whether the pair denotes GMT or a local wall clock depends on context.
type Instant struct {
	Day int64
	Ms  int64
}

// Compare returns -1, 0 or +1 depending on whether a is before, equal to or after b.
func (a Instant) Compare(b Instant) int {
	switch {
	case a.Day < b.Day:
		return -1
	case a.Day > b.Day:
		return 1
	case a.Ms < b.Ms:
		return -1
	case a.Ms > b.Ms:
		return 1
	}
	return 0
}

// Equal reports whether a and b denote the same day and millisecond.
func (a Instant) Equal(b Instant) bool { return a == b }

// Before reports whether a is before b.
func (a Instant) Before(b Instant) bool { return a.Compare(b) < 0 }

// After reports whether a is after b.
func (a Instant) After(b Instant) bool { return a.Compare(b) > 0 }

func (a Instant) String() string {
	return fmt.Sprintf("%d:%d", a.Day, a.Ms)
}

// Date is a calendar date.
type Date struct {
	Year  int
	Month int // 1..12
	Day   int // 1..31
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Clock is a time of day. Second may be 60 during a leap second.
type Clock struct {
	Hour   int
	Minute int
	Second int
	Ms     int
}

// Fields is an Instant broken down into calendar and clock fields.
type Fields struct {
	Year    int
	Month   int
	Day     int
	Hour    int
	Minute  int
	Second  int
	Ms      int
	Weekday int // 0=Sunday
	YearDay int // 1..366
}

// Date returns the date part of f.
func (f Fields) Date() Date {
	return Date{Year: f.Year, Month: f.Month, Day: f.Day}
}

// Clock returns the time-of-day part of f.
func (f Fields) Clock() Clock {
	return Clock{Hour: f.Hour, Minute: f.Minute, Second: f.Second, Ms: f.Ms}
}

// SetClock replaces the time-of-day part of f.
func (f *Fields) SetClock(c Clock) {
	f.Hour, f.Minute, f.Second, f.Ms = c.Hour, c.Minute, c.Second, c.Ms
}

// Instant converts f back to a day number and millisecond of day.
// Weekday and YearDay are ignored.
func (f Fields) Instant() (Instant, error) {
	day, err := DayFromDate(f.Month, f.Day, f.Year)
	if err != nil {
		return Instant{}, err
	}
	ms, err := MsFromClock(f.Clock())
	if err != nil {
		return Instant{}, err
	}
	return Instant{Day: day, Ms: ms}, nil
}

func (f Fields) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d.%03d", f.Year, f.Month, f.Day, f.Hour, f.Minute, f.Second, f.Ms)
}

// FieldsFromInstant breaks in down into calendar and clock fields.
func FieldsFromInstant(in Instant) (Fields, error) {
	c, err := ClockFromMs(in.Ms)
	if err != nil {
		return Fields{}, err
	}
	d := DateFromDay(in.Day)
	f := Fields{
		Year:    d.Year,
		Month:   d.Month,
		Day:     d.Day,
		Weekday: Weekday(in.Day),
	}
	f.SetClock(c)
	// A date produced by DateFromDay is always valid.
	f.YearDay, _ = YearDay(d.Month, d.Day, d.Year)
	return f, nil
}
