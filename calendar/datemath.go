package calendar

import (
	"github.com/ngrash/go-reltime/timeerr"
)

var monthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// IsLeapYear determines if the year is a leap year.
// Up to 1752 every fourth year is a leap year. Afterwards, years divisible
// by 100 are leap years only if they are also divisible by 400.
func IsLeapYear(year int) bool {
	if year%4 != 0 {
		return false
	}
	if year <= switchYear {
		return true
	}
	return year%100 != 0 || year%400 == 0
}

// DaysInMonth returns the number of days in a given month for a specific year,
// or 0 for an invalid month. September 1752 has 19 days.
func DaysInMonth(month, year int) int {
	if year == switchYear && month == switchMonth {
		return 19
	}
	if month < 1 || month > 12 {
		return 0
	}
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return monthDays[month-1]
}

// DaysInYear returns the number of days in year. 1752 has 355 days.
func DaysInYear(year int) int {
	if year == switchYear {
		return 355
	}
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// gregorianLeaps counts Gregorian leap years in [1, y], extended to y <= 0.
func gregorianLeaps(y int64) int64 {
	return floorDiv(y, 4) - floorDiv(y, 100) + floorDiv(y, 400)
}

// daysBeforeYear returns the day number of January 1 of year.
func daysBeforeYear(year int) int64 {
	y := int64(year)
	if year > switchYear {
		return 365*(y-epochYear) + gregorianLeaps(y-1) - gregorianLeaps(epochYear-1)
	}
	first := daysBeforeYear(switchYear + 1)
	// Julian years [year, 1752], less the eleven dropped days.
	span := 365*(switchYear+1-y) + floorDiv(switchYear, 4) - floorDiv(y-1, 4) - 11
	return first - span
}

// validDate reports whether the date exists, honoring the 1752 gap.
func validDate(month, day, year int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	if year == switchYear && month == switchMonth {
		return day <= 2 || (day >= 14 && day <= 30)
	}
	return day <= DaysInMonth(month, year)
}

// DayFromDate returns the day number of the given date.
func DayFromDate(month, day, year int) (int64, error) {
	if !validDate(month, day, year) {
		return 0, timeerr.InvalidDate("calendar.DayFromDate", "no such date %04d-%02d-%02d", year, month, day)
	}
	d := int64(day - 1)
	if year == switchYear && month == switchMonth && day > 2 {
		d -= 11
	}
	for m := 1; m < month; m++ {
		d += int64(DaysInMonth(m, year))
	}
	return daysBeforeYear(year) + d, nil
}

// DayFromFields returns the day number of the date in f.
func DayFromFields(f Fields) (int64, error) {
	return DayFromDate(f.Month, f.Day, f.Year)
}

// DateFromDay returns the calendar date of a day number.
func DateFromDay(day int64) Date {
	// Estimate the year, then correct it.
	year := epochYear + int(floorDiv(day*400, 146097))
	for daysBeforeYear(year) > day {
		year--
	}
	for daysBeforeYear(year+1) <= day {
		year++
	}
	rem := int(day - daysBeforeYear(year))
	month := 1
	for {
		n := DaysInMonth(month, year)
		if rem < n {
			break
		}
		rem -= n
		month++
	}
	d := rem + 1
	if year == switchYear && month == switchMonth && d > 2 {
		d += 11
	}
	return Date{Year: year, Month: month, Day: d}
}

// Weekday returns the weekday of a day number, 0 for Sunday to 6 for Saturday.
func Weekday(day int64) int {
	w := (day + epochWeekday) % 7
	if w < 0 {
		w += 7
	}
	return int(w)
}

// YearDay returns the day of the year of a date, 1 for January 1.
func YearDay(month, day, year int) (int, error) {
	if !validDate(month, day, year) {
		return 0, timeerr.InvalidDate("calendar.YearDay", "no such date %04d-%02d-%02d", year, month, day)
	}
	yd := day
	if year == switchYear && month == switchMonth && day > 2 {
		yd -= 11
	}
	for m := 1; m < month; m++ {
		yd += DaysInMonth(m, year)
	}
	return yd, nil
}

// NthWeekdayOfMonth returns the day number of the index-th weekday of the month,
// for example the third Monday. An index of -1 means the last one in the month.
func NthWeekdayOfMonth(month, weekday, index, year int) (int64, error) {
	const op = "calendar.NthWeekdayOfMonth"
	if index != -1 && (index < 1 || index > 5) {
		return 0, timeerr.InvalidDate(op, "index %d out of range", index)
	}
	if weekday < 0 || weekday > 6 {
		return 0, timeerr.InvalidDate(op, "weekday %d out of range", weekday)
	}
	if month < 1 || month > 12 {
		return 0, timeerr.InvalidDate(op, "month %d out of range", month)
	}

	if index > 0 {
		// Go to the first possible day, then forward to the weekday.
		first, err := DayFromDate(month, (index-1)*7+1, year)
		if err != nil {
			return 0, err
		}
		day := first + int64((weekday-Weekday(first)+7)%7)
		if DateFromDay(day).Month != month {
			return 0, timeerr.InvalidDate(op, "no weekday %d number %d in %04d-%02d", weekday, index, year, month)
		}
		return day, nil
	}

	// Last one: step back from the first of the next month.
	nm, ny := month+1, year
	if nm > 12 {
		nm, ny = 1, year+1
	}
	next, err := DayFromDate(nm, 1, ny)
	if err != nil {
		return 0, err
	}
	last := next - 1
	return last - int64((Weekday(last)-weekday+7)%7), nil
}

// Easter returns the day number of Easter Sunday, computed with the
// Gregorian golden-number algorithm. Years before 1752 are rejected.
func Easter(year int) (int64, error) {
	if year < switchYear {
		return 0, timeerr.InvalidDate("calendar.Easter", "year %d predates the Gregorian calendar", year)
	}
	aa := year % 19 // aa+1 is the golden number
	bb := year / 100
	cc := year % 100
	dd := bb / 4
	ee := bb % 4
	ff := cc / 4
	gg := cc % 4
	hh := (8*bb + 13) / 25
	jj := (19*aa + bb - dd - hh + 15) % 30 // paschal full moon, unadjusted
	mm := (aa + 11*jj) / 319
	kk := (2*ee + 2*ff - gg - jj + mm + 32) % 7

	march22, err := DayFromDate(3, 22, year)
	if err != nil {
		return 0, err
	}
	return march22 + int64(jj-mm+kk), nil
}
