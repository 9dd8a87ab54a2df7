package reltime

import "fmt"

// Unit is the period a Term adds or aligns to.
type Unit int

// Units up to and including Hr are durations and are evaluated in GMT.
// The others are calendar periods and are evaluated on the local wall clock.
const (
	Ms Unit = iota
	Sec
	Min
	Hr
	Day
	Weekday // Monday to Friday
	BusinessDay
	Sun
	Mon
	Tue
	Wed
	Thu
	Fri
	Sat
	Week
	TenDay
	Month
	Quarter
	Year
)

var unitNames = map[Unit]string{
	Ms:          "ms",
	Sec:         "sec",
	Min:         "min",
	Hr:          "hr",
	Day:         "day",
	Weekday:     "wkd",
	BusinessDay: "biz",
	Sun:         "sun",
	Mon:         "mon",
	Tue:         "tue",
	Wed:         "wed",
	Thu:         "thu",
	Fri:         "fri",
	Sat:         "sat",
	Week:        "wk",
	TenDay:      "tdy",
	Month:       "mth",
	Quarter:     "qtr",
	Year:        "yr",
}

var unitsByName = func() map[string]Unit {
	m := make(map[string]Unit, len(unitNames))
	for u, name := range unitNames {
		m[name] = u
	}
	return m
}()

// ParseUnit returns the unit with the given abbreviation. Abbreviations are case-sensitive.
func ParseUnit(s string) (Unit, bool) {
	u, ok := unitsByName[s]
	return u, ok
}

func (u Unit) String() string {
	if name, ok := unitNames[u]; ok {
		return name
	}
	return fmt.Sprintf("<undefined unit (%d)>", int(u))
}

// SubDay reports whether u is a duration shorter than a day.
func (u Unit) SubDay() bool {
	return u <= Hr
}

// weekday returns the weekday matched by Sun..Sat.
func (u Unit) weekday() (int, bool) {
	if u >= Sun && u <= Sat {
		return int(u - Sun), true
	}
	return 0, false
}
