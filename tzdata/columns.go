package tzdata

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ngrash/go-reltime/zone"
)

// Year is a year in a FROM or TO column.
type Year int

const (
	// MinYear means the indefinite past.
	MinYear Year = math.MinInt
	// MaxYear means the indefinite future.
	MaxYear Year = math.MaxInt
)

func (y Year) String() string {
	switch y {
	case MinYear:
		return "min"
	case MaxYear:
		return "max"
	}
	return strconv.Itoa(int(y))
}

// ZoneYear converts y to a DstRule year, mapping both open ends to
// zone.AnyYear.
func (y Year) ZoneYear() int {
	if y == MinYear || y == MaxYear {
		return zone.AnyYear
	}
	return int(y)
}

// parseYear parses FROM, or TO when from is given. Any unambiguous prefix
// of minimum, maximum and (for TO) only is accepted.
func parseYear(s string, from *Year) (Year, error) {
	l := strings.ToLower(s)
	switch {
	case isAbbrev(l, "minimum", "mi"):
		return MinYear, nil
	case isAbbrev(l, "maximum", "ma"):
		return MaxYear, nil
	case from != nil && isAbbrev(l, "only", "o"):
		return *from, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("not a year")
	}
	return Year(n), nil
}

// TimeForm tells which clock a Time is read on.
type TimeForm int

const (
	WallClock TimeForm = iota
	StandardTime
	DaylightSavingTime
	UniversalTime
)

func (f TimeForm) String() string {
	switch f {
	case WallClock:
		return "WallClock"
	case StandardTime:
		return "StandardTime"
	case DaylightSavingTime:
		return "DaylightSavingTime"
	case UniversalTime:
		return "UniversalTime"
	default:
		return "<UNDEFINED>"
	}
}

// Time is a number of seconds since 00:00, read on the clock given by Form.
type Time struct {
	Seconds int32
	Form    TimeForm
}

func (t Time) String() string {
	s := zone.FormatSeconds(int64(t.Seconds))
	switch t.Form {
	case StandardTime:
		s += "s"
	case UniversalTime:
		s += "u"
	case DaylightSavingTime:
		s += "d"
	}
	return s
}

// DayForm tells how a Day selects a day of the month.
type DayForm int

const (
	DayFormNum    DayForm = iota // 5
	DayFormLast                  // lastSun
	DayFormAfter                 // Sun>=8
	DayFormBefore                // Sun<=25
)

func (f DayForm) String() string {
	switch f {
	case DayFormNum:
		return "Num"
	case DayFormLast:
		return "Last"
	case DayFormAfter:
		return "After"
	case DayFormBefore:
		return "Before"
	default:
		return "<UNDEFINED>"
	}
}

// Day is an ON column.
type Day struct {
	Form    DayForm
	Num     int // day of month, except for DayFormLast
	Weekday int // 0 is Sunday; unused for DayFormNum
}

func (d Day) String() string {
	wd := "?"
	if d.Weekday >= 0 && d.Weekday <= 6 {
		wd = time.Weekday(d.Weekday).String()[:3]
	}
	switch d.Form {
	case DayFormLast:
		return "last" + wd
	case DayFormAfter:
		return fmt.Sprintf("%s>=%d", wd, d.Num)
	case DayFormBefore:
		return fmt.Sprintf("%s<=%d", wd, d.Num)
	}
	return strconv.Itoa(d.Num)
}

// Boundary returns the zone boundary on d of month at the given seconds of
// local standard time.
func (d Day) Boundary(month int, at int32) zone.Boundary {
	b := zone.Boundary{Month: month, Time: at}
	switch d.Form {
	case DayFormNum:
		b.Code = zone.MonthDay
		b.Day = d.Num
	case DayFormLast:
		b.Code = zone.LastWeekday
		b.Day = d.Weekday
	case DayFormAfter:
		b.Code = zone.WeekdayOnOrAfter
		b.Day = d.Weekday
		b.AuxDay = d.Num
	case DayFormBefore:
		b.Code = zone.WeekdayOnOrBefore
		b.Day = d.Weekday
		b.AuxDay = d.Num
	}
	return b
}

// ParseDay parses an ON column: "5", "lastSun", "Sun>=8" or "Sun<=25".
// Weekday names may be abbreviated or spelled out.
func ParseDay(s string) (Day, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 31 {
			return Day{}, fmt.Errorf("day of month %d out of range", n)
		}
		return Day{Form: DayFormNum, Num: n}, nil
	}
	if rest, ok := strings.CutPrefix(s, "last"); ok {
		wd, err := parseWeekday(rest)
		if err != nil {
			return Day{}, err
		}
		return Day{Form: DayFormLast, Weekday: wd}, nil
	}

	form := DayFormBefore
	left, right, ok := strings.Cut(s, "<=")
	if !ok {
		form = DayFormAfter
		left, right, ok = strings.Cut(s, ">=")
	}
	if !ok || left == "" || right == "" {
		return Day{}, fmt.Errorf("day %q: expected a number, lastWeekday, weekday>=N or weekday<=N", s)
	}
	wd, err := parseWeekday(left)
	if err != nil {
		return Day{}, err
	}
	n, err := strconv.Atoi(right)
	if err != nil || n < 1 || n > 31 {
		return Day{}, fmt.Errorf("day of month %q out of range", right)
	}
	return Day{Form: form, Weekday: wd, Num: n}, nil
}

// ParseMonth parses an IN column. Month names may be abbreviated to three
// letters or more.
func ParseMonth(s string) (int, error) {
	if len(s) >= 3 {
		l := strings.ToLower(s)
		for m := time.January; m <= time.December; m++ {
			long := strings.ToLower(m.String())
			if isAbbrev(l, long, long[:3]) {
				return int(m), nil
			}
		}
	}
	return 0, fmt.Errorf("month %q: invalid", s)
}

func parseWeekday(s string) (int, error) {
	l := strings.ToLower(s)
	for wd, w := range []struct {
		long, min string
	}{
		{"sunday", "su"}, {"monday", "m"}, {"tuesday", "tu"}, {"wednesday", "w"},
		{"thursday", "th"}, {"friday", "f"}, {"saturday", "sa"},
	} {
		if isAbbrev(l, w.long, w.min) {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

// ParseTime parses an AT column: a time of day such as "2", "2:00",
// "01:28:14" or "-2:30", optionally followed by w (wall clock, the
// default), s (standard time) or u, g, z (universal time).
func ParseTime(s string) (Time, error) {
	body, suffix := cutSuffix(s, "wsugz")
	secs, err := parseSeconds(body)
	if err != nil {
		return Time{}, err
	}
	form := WallClock
	switch suffix {
	case 's':
		form = StandardTime
	case 'u', 'g', 'z':
		form = UniversalTime
	}
	return Time{Seconds: secs, Form: form}, nil
}

// ParseSave parses a SAVE column. The suffix s marks standard time and d
// daylight saving time; without a suffix a zero amount is standard time.
func ParseSave(s string) (Time, error) {
	body, suffix := cutSuffix(s, "sd")
	secs, err := parseSeconds(body)
	if err != nil {
		return Time{}, err
	}
	form := DaylightSavingTime
	if suffix == 's' || (suffix == 0 && secs == 0) {
		form = StandardTime
	}
	return Time{Seconds: secs, Form: form}, nil
}

// ParseOffset parses a STDOFF column, an offset east of UT such as "-5:00".
func ParseOffset(s string) (int32, error) {
	secs, err := parseSeconds(s)
	if err != nil {
		return 0, err
	}
	if secs <= -86400 || secs >= 86400 {
		return 0, fmt.Errorf("offset %q is not within a day", s)
	}
	return secs, nil
}

func cutSuffix(s string, suffixes string) (string, byte) {
	if n := len(s); n > 1 && strings.IndexByte(suffixes, s[n-1]) >= 0 {
		return s[:n-1], s[n-1]
	}
	return s, 0
}

// parseSeconds parses [-]H[:MM[:SS[.frac]]] or "-" and rounds to whole
// seconds, ties to even.
func parseSeconds(s string) (int32, error) {
	if s == "-" {
		return 0, nil
	}
	neg := false
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		neg = true
		s = rest
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 || parts[0] == "" {
		return 0, fmt.Errorf("time %q: invalid", s)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour format: %w", err)
	}
	var minutes int
	if len(parts) > 1 {
		if minutes, err = strconv.Atoi(parts[1]); err != nil || minutes > 59 || minutes < 0 {
			return 0, fmt.Errorf("invalid minute %q", parts[1])
		}
	}
	var seconds float64
	if len(parts) > 2 {
		if seconds, err = strconv.ParseFloat(parts[2], 64); err != nil || seconds < 0 || seconds >= 61 {
			return 0, fmt.Errorf("invalid second %q", parts[2])
		}
	}

	total := math.RoundToEven(float64(hours)*3600 + float64(minutes)*60 + seconds)
	if total > math.MaxInt32 {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	if neg {
		total = -total
	}
	return int32(total), nil
}

// parseRuleName checks a rule set name. It must not start with a digit or
// a sign, and unquoted names avoid the characters reserved for extensions.
func parseRuleName(s string) (string, error) {
	if s == "" {
		return "", errors.New("empty name")
	}
	if (s[0] >= '0' && s[0] <= '9') || s[0] == '-' || s[0] == '+' {
		return "", fmt.Errorf("name must not start with %q", s[0])
	}
	if strings.ContainsAny(s, "!$%&'()*,/:;<=>?@[\\]^`{|}~") {
		return "", fmt.Errorf("name contains a reserved character")
	}
	return s, nil
}

func parseLetters(s string) string {
	if s == "-" {
		return ""
	}
	return s
}

// isAbbrev reports whether s is a prefix of long at least as long as min.
func isAbbrev(s, long, min string) bool {
	return strings.HasPrefix(s, min) && strings.HasPrefix(long, s)
}
