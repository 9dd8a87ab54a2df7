// Package tzexpand lists the daylight saving transitions of a zone over a
// range of years.
package tzexpand

import (
	"fmt"
	"slices"

	"github.com/ngrash/go-reltime/calendar"
	"github.com/ngrash/go-reltime/zone"
)

// Transition is a change of a zone's offset.
type Transition struct {
	GMT      calendar.Instant
	Daylight bool  // whether daylight saving time starts
	Offset   int32 // total offset east of GMT from GMT on
	Rule     int   // index into the zone's rules
}

func (t Transition) String() string {
	kind := "end"
	if t.Daylight {
		kind = "start"
	}
	f, err := calendar.FieldsFromInstant(t.GMT)
	if err != nil {
		return fmt.Sprintf("%v %s %s", t.GMT, kind, zone.FormatSeconds(int64(t.Offset)))
	}
	return fmt.Sprintf("%v GMT %s %s", f, kind, zone.FormatSeconds(int64(t.Offset)))
}

// Transitions returns the transitions of tz in the years from to to, both
// inclusive, in order. Rules without daylight saving time or with a zero
// shift contribute nothing.
func Transitions(tz zone.TimeZone, from, to int) ([]Transition, error) {
	if from > to {
		return nil, fmt.Errorf("year range %d..%d is empty", from, to)
	}

	var tr []Transition
	for year := from; year <= to; year++ {
		rule, ok := tz.RuleFor(year)
		if !ok || !rule.HasDaylight || rule.Extra == 0 {
			continue
		}
		idx := slices.Index(tz.Rules, rule)

		start, err := at(rule.Start, year, tz.Offset)
		if err != nil {
			return nil, fmt.Errorf("%s: start of daylight saving time in %d: %w", tz.Name, year, err)
		}
		end, err := at(rule.End, year, tz.Offset)
		if err != nil {
			return nil, fmt.Errorf("%s: end of daylight saving time in %d: %w", tz.Name, year, err)
		}

		pair := []Transition{
			{GMT: start, Daylight: true, Offset: tz.Offset + rule.Extra, Rule: idx},
			{GMT: end, Daylight: false, Offset: tz.Offset, Rule: idx},
		}
		// South of the equator daylight saving time ends first.
		if end.Before(start) {
			pair[0], pair[1] = pair[1], pair[0]
		}
		tr = append(tr, pair...)
	}
	return tr, nil
}

// at returns the GMT instant of boundary b in year. Boundary times are
// local standard time.
func at(b zone.Boundary, year int, offset int32) (calendar.Instant, error) {
	day, err := zone.BoundaryDay(b, year)
	if err != nil {
		return calendar.Instant{}, err
	}
	return zone.AddOffset(calendar.Instant{Day: day}, int64(b.Time)-int64(offset)), nil
}
