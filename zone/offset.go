package zone

import (
	"math"

	"github.com/ngrash/go-reltime/calendar"
	"github.com/ngrash/go-reltime/timeerr"
)

// Offset returns the offset from GMT in seconds that applies to in, and
// whether daylight saving time is in effect.
//
// If local is false, in is a GMT instant. Otherwise in is a local wall
// clock reading and daylightHint picks daylight time for readings that
// occur twice when the clocks go back. A local reading that falls into
// the gap of a negative daylight shift fails unless daylightHint is set.
func Offset(in calendar.Instant, tz TimeZone, local bool, daylightHint bool) (int32, bool, error) {
	const op = "zone.Offset"

	offset := tz.Offset
	if _, err := calendar.FieldsFromInstant(in); err != nil {
		return 0, false, err
	}

	// Boundary times are local standard time. The rule and its boundary
	// days are both taken from the local standard year.
	if !local {
		in = AddOffset(in, int64(offset))
	}
	year := calendar.DateFromDay(in.Day).Year

	rule, ok := tz.RuleFor(year)
	if !ok || !rule.HasDaylight || rule.Extra == 0 {
		return offset, false, nil
	}

	now := in.Day
	start, err := BoundaryDay(rule.Start, year)
	if err != nil {
		return 0, false, err
	}
	end, err := BoundaryDay(rule.End, year)
	if err != nil {
		return 0, false, err
	}

	if ((now < start || now > end) && start <= end) ||
		((now > end && now < start) && start >= end) {
		return offset, false, nil
	}
	if ((now < end || now > start) && start >= end) ||
		((now > start && now < end) && start <= end) {
		return offset + rule.Extra, true, nil
	}

	// On a changing day.
	secs := in.Ms / 1000
	if now == start {
		if local && rule.Extra < 0 &&
			secs >= int64(rule.Start.Time+rule.Extra) && secs < int64(rule.Start.Time) {
			if daylightHint {
				return offset + rule.Extra, true, nil
			}
			return 0, false, timeerr.InvalidTime(op, "local time %v of zone %q is ambiguous", in, tz.Name)
		}
		if secs >= int64(rule.Start.Time) {
			return offset + rule.Extra, true, nil
		}
		return offset, false, nil
	}

	if !local {
		if secs >= int64(rule.End.Time) {
			return offset, false, nil
		}
		return offset + rule.Extra, true, nil
	}

	// Wall clock time between End.Time and End.Time+Extra happens twice.
	if secs >= int64(rule.End.Time+rule.Extra) {
		return offset, false, nil
	}
	if secs < int64(rule.End.Time) {
		return offset + rule.Extra, true, nil
	}
	if !daylightHint {
		return offset, false, nil
	}
	return offset + rule.Extra, true, nil
}

// BoundaryDay returns the day number on which b falls in year.
func BoundaryDay(b Boundary, year int) (int64, error) {
	const op = "zone.BoundaryDay"
	switch b.Code {
	case MonthDay:
		return calendar.DayFromDate(b.Month, b.Day, year)

	case LastWeekday:
		return calendar.NthWeekdayOfMonth(b.Month, b.Day, -1, year)

	case WeekdayOnOrAfter:
		anchor, err := calendar.DayFromDate(b.Month, b.AuxDay, year)
		if err != nil {
			return 0, err
		}
		day, err := calendar.NthWeekdayOfMonth(b.Month, b.Day, 1, year)
		if err != nil {
			return 0, err
		}
		shift := 7 * int64(math.Ceil(float64(anchor-day)/7))
		if shift > 28 {
			return 0, timeerr.InvalidDate(op, "boundary %v does not exist in %d", b, year)
		}
		if shift > 0 {
			day += shift
		}
		return day, nil

	case WeekdayOnOrBefore:
		anchor, err := calendar.DayFromDate(b.Month, b.AuxDay, year)
		if err != nil {
			return 0, err
		}
		day, err := calendar.NthWeekdayOfMonth(b.Month, b.Day, -1, year)
		if err != nil {
			return 0, err
		}
		shift := 7 * int64(math.Ceil(float64(day-anchor)/7))
		if shift > 28 {
			return 0, timeerr.InvalidDate(op, "boundary %v does not exist in %d", b, year)
		}
		if shift > 0 {
			day -= shift
		}
		return day, nil
	}
	return 0, timeerr.InvalidDate(op, "unknown boundary code %v", b.Code)
}

// AddOffset shifts in by secs seconds, carrying into the day number when the
// millisecond of day leaves [0, MsPerDay).
func AddOffset(in calendar.Instant, secs int64) calendar.Instant {
	ms := in.Ms + 1000*secs
	if ms >= calendar.MsPerDay || ms < 0 {
		return calendar.NormalizeInstant(in.Day, ms)
	}
	return calendar.Instant{Day: in.Day, Ms: ms}
}

// ToLocal converts a GMT instant to the wall clock of tz.
func ToLocal(gmt calendar.Instant, tz TimeZone) (calendar.Instant, bool, error) {
	off, daylight, err := Offset(gmt, tz, false, false)
	if err != nil {
		return calendar.Instant{}, false, err
	}
	return AddOffset(gmt, int64(off)), daylight, nil
}

// ToGMT converts a wall clock reading of tz to GMT.
// daylightHint resolves readings that occur twice.
func ToGMT(local calendar.Instant, tz TimeZone, daylightHint bool) (calendar.Instant, error) {
	off, _, err := Offset(local, tz, true, daylightHint)
	if err != nil {
		return calendar.Instant{}, err
	}
	return AddOffset(local, -int64(off)), nil
}

// Floor returns the GMT instant of local midnight starting the local day
// that contains gmt.
func Floor(gmt calendar.Instant, tz TimeZone) (calendar.Instant, error) {
	local, daylight, err := ToLocal(gmt, tz)
	if err != nil {
		return calendar.Instant{}, err
	}
	local.Ms = 0
	return ToGMT(local, tz, daylight)
}

// Ceil returns the GMT instant of the next local midnight, or gmt itself if
// it already is local midnight.
func Ceil(gmt calendar.Instant, tz TimeZone) (calendar.Instant, error) {
	local, daylight, err := ToLocal(gmt, tz)
	if err != nil {
		return calendar.Instant{}, err
	}
	if local.Ms != 0 {
		local.Day++
		local.Ms = 0
	}
	return ToGMT(local, tz, daylight)
}
