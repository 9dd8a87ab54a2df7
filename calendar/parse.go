package calendar

import (
	"strconv"
	"strings"

	"github.com/ngrash/go-reltime/timeerr"
)

// ParseDate parses a date in the form YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	const op = "calendar.ParseDate"
	// A leading minus belongs to the year.
	neg := strings.HasPrefix(s, "-")
	parts := strings.Split(strings.TrimPrefix(s, "-"), "-")
	if len(parts) != 3 {
		return Date{}, timeerr.InvalidDate(op, "date %q is not YYYY-MM-DD", s)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, timeerr.InvalidDate(op, "date %q is not YYYY-MM-DD", s)
		}
		nums[i] = n
	}
	d := Date{Year: nums[0], Month: nums[1], Day: nums[2]}
	if neg {
		d.Year = -d.Year
	}
	if !validDate(d.Month, d.Day, d.Year) {
		return Date{}, timeerr.InvalidDate(op, "no such date %q", s)
	}
	return d, nil
}

// ParseFields parses YYYY-MM-DD[ HH:MM[:SS[.mmm]]]. A "T" may separate the
// date from the time. Weekday and YearDay of the result are filled in.
func ParseFields(s string) (Fields, error) {
	const op = "calendar.ParseFields"
	s = strings.TrimSpace(s)
	datePart, timePart, hasTime := strings.Cut(s, " ")
	if !hasTime {
		datePart, timePart, hasTime = strings.Cut(s, "T")
	}
	d, err := ParseDate(datePart)
	if err != nil {
		return Fields{}, err
	}

	var c Clock
	if hasTime {
		c, err = parseClock(strings.TrimSpace(timePart))
		if err != nil {
			return Fields{}, timeerr.InvalidTime(op, "time %q is not HH:MM[:SS[.mmm]]", timePart)
		}
		if _, err := MsFromClock(c); err != nil {
			return Fields{}, err
		}
	}

	day, err := DayFromDate(d.Month, d.Day, d.Year)
	if err != nil {
		return Fields{}, err
	}
	f := Fields{Year: d.Year, Month: d.Month, Day: d.Day, Weekday: Weekday(day)}
	f.SetClock(c)
	f.YearDay, _ = YearDay(d.Month, d.Day, d.Year)
	return f, nil
}

func parseClock(s string) (Clock, error) {
	var c Clock
	hms, frac, hasFrac := strings.Cut(s, ".")
	parts := strings.Split(hms, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return c, strconv.ErrSyntax
	}
	dst := []*int{&c.Hour, &c.Minute, &c.Second}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return c, err
		}
		*dst[i] = n
	}
	if hasFrac {
		if len(parts) != 3 || len(frac) == 0 || len(frac) > 3 {
			return c, strconv.ErrSyntax
		}
		n, err := strconv.Atoi(frac)
		if err != nil {
			return c, err
		}
		for i := len(frac); i < 3; i++ {
			n *= 10
		}
		c.Ms = n
	}
	return c, nil
}
