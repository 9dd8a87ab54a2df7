// Package zone resolves GMT offsets and daylight saving time from
// historical rule sets and converts instants between GMT and local time.
//
// A TimeZone has a base offset and a list of DstRules ordered most recent
// first. Each rule covers a range of years and names the boundary days on
// which daylight saving time starts and ends. Boundary times are given in
// seconds of local standard time.
package zone

import (
	"fmt"
	"time"
)

// AnyYear leaves a side of a rule's year range open.
const AnyYear = -1

// BoundaryCode tells how a Boundary's Day and AuxDay select a day of the month.
type BoundaryCode int

const (
	// MonthDay is the fixed day of month Day.
	MonthDay BoundaryCode = iota
	// LastWeekday is the last weekday Day of the month.
	LastWeekday
	// WeekdayOnOrAfter is the first weekday Day on or after day of month AuxDay.
	WeekdayOnOrAfter
	// WeekdayOnOrBefore is the last weekday Day on or before day of month AuxDay.
	WeekdayOnOrBefore
)

func (c BoundaryCode) String() string {
	switch c {
	case MonthDay:
		return "MonthDay"
	case LastWeekday:
		return "LastWeekday"
	case WeekdayOnOrAfter:
		return "WeekdayOnOrAfter"
	case WeekdayOnOrBefore:
		return "WeekdayOnOrBefore"
	default:
		return fmt.Sprintf("<undefined code (%d)>", int(c))
	}
}

// Boundary is the day and time at which daylight saving time starts or ends.
type Boundary struct {
	Month  int
	Code   BoundaryCode
	Day    int   // day of month for MonthDay, weekday (0=Sunday) otherwise
	AuxDay int   // anchor day of month for WeekdayOnOrAfter and WeekdayOnOrBefore
	Time   int32 // seconds of local standard time
}

// String renders b the way the ON and AT columns of a tzdata rule line read,
// for example "Mar Sun>=8 2:00".
func (b Boundary) String() string {
	var on string
	switch b.Code {
	case MonthDay:
		on = fmt.Sprint(b.Day)
	case LastWeekday:
		on = "last" + weekdayAbbrev(b.Day)
	case WeekdayOnOrAfter:
		on = fmt.Sprintf("%s>=%d", weekdayAbbrev(b.Day), b.AuxDay)
	case WeekdayOnOrBefore:
		on = fmt.Sprintf("%s<=%d", weekdayAbbrev(b.Day), b.AuxDay)
	default:
		on = "?"
	}
	month := "?"
	if b.Month >= 1 && b.Month <= 12 {
		month = time.Month(b.Month).String()[:3]
	}
	return fmt.Sprintf("%s %s %s", month, on, FormatSeconds(int64(b.Time)))
}

func weekdayAbbrev(d int) string {
	if d < 0 || d > 6 {
		return "?"
	}
	return time.Weekday(d).String()[:3]
}

// FormatSeconds renders a signed number of seconds as [-]H:MM[:SS].
func FormatSeconds(secs int64) string {
	sign := ""
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	h, m, s := secs/3600, secs/60%60, secs%60
	if s != 0 {
		return fmt.Sprintf("%s%d:%02d:%02d", sign, h, m, s)
	}
	return fmt.Sprintf("%s%d:%02d", sign, h, m)
}

// DstRule describes daylight saving time for a range of years.
type DstRule struct {
	From        int // first year, or AnyYear
	To          int // last year, or AnyYear
	HasDaylight bool
	Extra       int32 // seconds added to the base offset during daylight time
	Start       Boundary
	End         Boundary
}

// Covers reports whether year lies in the rule's year range.
func (r DstRule) Covers(year int) bool {
	return (r.To == AnyYear || r.To >= year) && (r.From == AnyYear || r.From <= year)
}

// TimeZone is a base offset plus daylight saving rules.
type TimeZone struct {
	Name   string
	Offset int32     // seconds east of GMT
	Rules  []DstRule // most recent first
}

// RuleFor returns the first rule covering year.
func (tz TimeZone) RuleFor(year int) (DstRule, bool) {
	for _, r := range tz.Rules {
		if r.Covers(year) {
			return r, true
		}
	}
	return DstRule{}, false
}

// Fixed returns a zone without daylight saving time.
func Fixed(name string, offset int32) TimeZone {
	return TimeZone{Name: name, Offset: offset}
}
