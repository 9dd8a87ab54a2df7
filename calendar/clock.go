package calendar

import (
	"math"

	"github.com/ngrash/go-reltime/timeerr"
)

// MsFromClock returns the millisecond of day of c.
// A second of 60 is accepted so leap seconds can be represented.
func MsFromClock(c Clock) (int64, error) {
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 ||
		c.Second < 0 || c.Second > 60 || c.Ms < 0 || c.Ms > 999 {
		return 0, timeerr.InvalidTime("calendar.MsFromClock", "no such time %02d:%02d:%02d.%03d", c.Hour, c.Minute, c.Second, c.Ms)
	}
	return ((int64(c.Hour)*60+int64(c.Minute))*60+int64(c.Second))*1000 + int64(c.Ms), nil
}

// ClockFromMs returns the time of day of a millisecond of day.
// Values in the extra second after midnight render as 23:59:60.
func ClockFromMs(ms int64) (Clock, error) {
	if ms < 0 || ms >= MsPerLeapDay {
		return Clock{}, timeerr.InvalidTime("calendar.ClockFromMs", "millisecond of day %d out of range", ms)
	}
	c := Clock{Ms: int(ms % 1000)}
	s := ms / 1000
	c.Second = int(s % 60)
	m := s / 60
	c.Minute = int(m % 60)
	c.Hour = int(m / 60)
	if c.Hour == 24 {
		c.Hour, c.Minute, c.Second = 23, 59, 60
	}
	return c, nil
}

// MsFromFraction converts a fraction of a day in [0, 1] to milliseconds,
// rounded to the nearest millisecond.
func MsFromFraction(f float64) (int64, error) {
	if math.IsNaN(f) || f < 0 || f > 1 {
		return 0, timeerr.InvalidTime("calendar.MsFromFraction", "fraction %v out of range", f)
	}
	return int64(math.Round(f * MsPerDay)), nil
}

// FractionFromMs converts a millisecond of day to a fraction of a day.
// The fraction never exceeds 1, even inside a leap second.
func FractionFromMs(ms int64) (float64, error) {
	if ms < 0 || ms >= MsPerLeapDay {
		return 0, timeerr.InvalidTime("calendar.FractionFromMs", "millisecond of day %d out of range", ms)
	}
	return math.Min(float64(ms)/MsPerDay, 1), nil
}

// NormalizeDuration brings a span of days and milliseconds into canonical form:
// |ms| is below one day and ms has the same sign as day.
func NormalizeDuration(day, ms int64) Instant {
	if ms >= MsPerDay || ms <= -MsPerDay {
		day += ms / MsPerDay
		ms %= MsPerDay
	}
	switch {
	case day > 0 && ms < 0:
		day--
		ms += MsPerDay
	case day < 0 && ms > 0:
		day++
		ms -= MsPerDay
	}
	return Instant{Day: day, Ms: ms}
}

// NormalizeInstant carries milliseconds into days so that 0 <= ms < MsPerDay.
func NormalizeInstant(day, ms int64) Instant {
	carry := floorDiv(ms, MsPerDay)
	return Instant{Day: day + carry, Ms: ms - carry*MsPerDay}
}
