package zone

import (
	"errors"
	"fmt"
)

// Validate checks that tz is well formed: boundaries name existing months,
// weekdays and days; year ranges are ordered; and rules are listed most
// recent first without overlapping.
func Validate(tz TimeZone) error {
	var errs []error
	if tz.Offset <= -86400 || tz.Offset >= 86400 {
		errs = append(errs, fmt.Errorf("invalid offset %d: must be less than a day", tz.Offset))
	}

	for i, r := range tz.Rules {
		if r.From != AnyYear && r.To != AnyYear && r.From > r.To {
			errs = append(errs, fmt.Errorf("rule %d: from year %d is after to year %d", i, r.From, r.To))
		}
		if r.HasDaylight {
			errs = append(errs, validateBoundary(i, "start", r.Start)...)
			errs = append(errs, validateBoundary(i, "end", r.End)...)
		}
		if i == 0 {
			continue
		}
		prev := tz.Rules[i-1]
		if prev.From == AnyYear {
			errs = append(errs, fmt.Errorf("rule %d: unreachable, rule %d has an open start", i, i-1))
			continue
		}
		if r.To == AnyYear || r.To >= prev.From {
			errs = append(errs, fmt.Errorf("rule %d: years up to %s overlap rule %d starting %d", i, yearString(r.To), i-1, prev.From))
		}
	}
	return errors.Join(errs...)
}

func validateBoundary(i int, which string, b Boundary) []error {
	var errs []error
	if b.Month < 1 || b.Month > 12 {
		errs = append(errs, fmt.Errorf("rule %d: invalid %s month %d", i, which, b.Month))
	}
	switch b.Code {
	case MonthDay:
		if b.Day < 1 || b.Day > 31 {
			errs = append(errs, fmt.Errorf("rule %d: invalid %s day of month %d", i, which, b.Day))
		}
	case LastWeekday, WeekdayOnOrAfter, WeekdayOnOrBefore:
		if b.Day < 0 || b.Day > 6 {
			errs = append(errs, fmt.Errorf("rule %d: invalid %s weekday %d", i, which, b.Day))
		}
		if b.Code != LastWeekday && (b.AuxDay < 1 || b.AuxDay > 31) {
			errs = append(errs, fmt.Errorf("rule %d: invalid %s anchor day %d", i, which, b.AuxDay))
		}
	default:
		errs = append(errs, fmt.Errorf("rule %d: invalid %s code %v", i, which, b.Code))
	}
	if b.Time < -86400 || b.Time > 2*86400 {
		errs = append(errs, fmt.Errorf("rule %d: invalid %s time %d", i, which, b.Time))
	}
	return errs
}

func yearString(y int) string {
	if y == AnyYear {
		return "any"
	}
	return fmt.Sprint(y)
}
