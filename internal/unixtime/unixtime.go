// Package unixtime converts between calendar instants and Unix time.
//
// Day 3653 is 1970-01-01. Conversions are exact for dates after the 1752
// calendar switch; earlier instants follow the Julian calendar and so do not
// match time.Time, which is proleptic Gregorian.
package unixtime

import (
	"time"

	"github.com/ngrash/go-reltime/calendar"
)

// EpochDay is the day number of 1970-01-01.
const EpochDay = 3653

// Milli returns the number of milliseconds since 1970-01-01 00:00:00 GMT.
// A leap second reading (Ms past the end of the day) counts as the first
// second of the next day.
func Milli(in calendar.Instant) int64 {
	return (in.Day-EpochDay)*calendar.MsPerDay + in.Ms
}

// FromMilli returns the instant ms milliseconds after the Unix epoch.
func FromMilli(ms int64) calendar.Instant {
	return calendar.NormalizeInstant(EpochDay, ms)
}

// ToTime converts in to a UTC time.Time.
func ToTime(in calendar.Instant) time.Time {
	return time.UnixMilli(Milli(in)).UTC()
}

// FromTime converts t to a GMT instant, truncated to the millisecond.
func FromTime(t time.Time) calendar.Instant {
	return FromMilli(t.UnixMilli())
}

// Now returns the current GMT instant.
func Now() calendar.Instant {
	return FromTime(time.Now())
}
