package reltime

import (
	"slices"

	"github.com/ngrash/go-reltime/calendar"
	"github.com/ngrash/go-reltime/zone"
)

// HolidaySet is a sorted set of local day numbers that are not business days.
// The zero value is an empty set.
type HolidaySet struct {
	days []int64
}

// NewHolidaySet returns a set of the given day numbers in any order.
func NewHolidaySet(days ...int64) HolidaySet {
	s := slices.Clone(days)
	slices.Sort(s)
	return HolidaySet{days: slices.Compact(s)}
}

// Contains reports whether day is a holiday.
func (h HolidaySet) Contains(day int64) bool {
	_, ok := slices.BinarySearch(h.days, day)
	return ok
}

// Len returns the number of holidays.
func (h HolidaySet) Len() int { return len(h.days) }

// Days returns the holidays in ascending order.
func (h HolidaySet) Days() []int64 { return slices.Clone(h.days) }

// Union returns a set holding the holidays of h and other.
func (h HolidaySet) Union(other HolidaySet) HolidaySet {
	return NewHolidaySet(append(slices.Clone(h.days), other.days...)...)
}

// HolidaysFromInstants converts GMT instants to the local days they fall on in tz.
func HolidaysFromInstants(gmt []calendar.Instant, tz zone.TimeZone) (HolidaySet, error) {
	days := make([]int64, 0, len(gmt))
	for _, in := range gmt {
		local, _, err := zone.ToLocal(in, tz)
		if err != nil {
			return HolidaySet{}, err
		}
		days = append(days, local.Day)
	}
	return NewHolidaySet(days...), nil
}

// HolidaysFromDates converts calendar dates to a holiday set.
func HolidaysFromDates(dates []calendar.Date) (HolidaySet, error) {
	days := make([]int64, 0, len(dates))
	for _, d := range dates {
		day, err := calendar.DayFromDate(d.Month, d.Day, d.Year)
		if err != nil {
			return HolidaySet{}, err
		}
		days = append(days, day)
	}
	return NewHolidaySet(days...), nil
}
