package reltime

import (
	"github.com/ngrash/go-reltime/calendar"
	"github.com/ngrash/go-reltime/timeerr"
	"github.com/ngrash/go-reltime/zone"
)

// Apply applies expr to the GMT instant gmt and returns a GMT instant.
//
// Terms of a day or longer, and all aligned terms, are evaluated on the wall
// clock of tz. Unaligned terms shorter than a day are evaluated in GMT. The
// value is converted only when consecutive terms need a different
// representation. Business day terms skip the local days in hol.
func Apply(gmt calendar.Instant, expr Expr, tz zone.TimeZone, hol HolidaySet) (calendar.Instant, error) {
	const op = "reltime.Apply"
	if len(expr.Terms) == 0 {
		return calendar.Instant{}, timeerr.BadExpression(op, "empty expression", nil, expr.Source)
	}

	var (
		cur      = gmt
		inGMT    = true
		daylight bool
		err      error
	)
	for _, t := range expr.Terms {
		if err := t.check(); err != nil {
			return calendar.Instant{}, timeerr.BadExpression(op, err.Error(), spanIn(expr, t), expr.Source)
		}

		needLocal := t.Align || !t.Unit.SubDay()
		switch {
		case inGMT && needLocal:
			cur, daylight, err = zone.ToLocal(cur, tz)
			inGMT = false
		case !inGMT && !needLocal:
			cur, err = zone.ToGMT(cur, tz, daylight)
			inGMT = true
		}
		if err != nil {
			return calendar.Instant{}, err
		}

		cur, err = applyTerm(cur, t, hol)
		if err != nil {
			return calendar.Instant{}, err
		}
	}

	if !inGMT {
		return zone.ToGMT(cur, tz, daylight)
	}
	return cur, nil
}

func spanIn(expr Expr, t Term) *timeerr.Span {
	if expr.Source == "" {
		return nil
	}
	s := t.Span
	return &s
}

// applyTerm applies a single checked term.
func applyTerm(in calendar.Instant, t Term, hol HolidaySet) (calendar.Instant, error) {
	switch t.Unit {
	case Ms, Sec, Min, Hr:
		return addSubDay(in, t)
	case Day, Week:
		return addDays(in, t)
	case Weekday, BusinessDay, Sun, Mon, Tue, Wed, Thu, Fri, Sat:
		return walkDays(in, t, hol)
	}

	f, err := calendar.FieldsFromInstant(in)
	if err != nil {
		return calendar.Instant{}, err
	}
	switch t.Unit {
	case Month, Quarter:
		addMonths(&f, t)
	case Year:
		addYears(&f, t)
	case TenDay:
		addTenDays(&f, t)
	}
	return f.Instant()
}

func partialDay(f calendar.Fields) bool {
	return f.Hour != 0 || f.Minute != 0 || f.Second != 0 || f.Ms != 0
}

func midnight(f *calendar.Fields) {
	f.SetClock(calendar.Clock{})
}

func addSubDay(in calendar.Instant, t Term) (calendar.Instant, error) {
	n := int64(t.Count)
	if n == 0 {
		f, err := calendar.FieldsFromInstant(in)
		if err != nil {
			return calendar.Instant{}, err
		}
		switch t.Unit {
		case Hr:
			f.Minute = 0
			fallthrough
		case Min:
			f.Second = 0
			fallthrough
		case Sec:
			f.Ms = 0
		}
		return f.Instant()
	}

	switch t.Unit {
	case Hr:
		n *= 3_600_000
	case Min:
		n *= 60_000
	case Sec:
		n *= 1000
	}

	ms := in.Ms
	if t.Align {
		off := ms % n
		switch {
		case t.Sign > 0:
			ms += n - off
		case off > 0:
			ms -= off
		default:
			ms -= n
		}
	} else {
		ms += int64(t.Sign) * n
	}
	return calendar.NormalizeInstant(in.Day, ms), nil
}

func addDays(in calendar.Instant, t Term) (calendar.Instant, error) {
	n := t.Count
	if t.Unit == Week {
		n *= 7
	}
	if n == 0 {
		return calendar.Instant{Day: in.Day}, nil
	}
	if !t.Align {
		return calendar.Instant{Day: in.Day + int64(t.Sign*n), Ms: in.Ms}, nil
	}

	// Align to day 1, 1+n, 1+2n, ... of the month.
	f, err := calendar.FieldsFromInstant(in)
	if err != nil {
		return calendar.Instant{}, err
	}
	dim := calendar.DaysInMonth(f.Month, f.Year)
	if n >= dim {
		return calendar.Instant{}, timeerr.Unmatched("reltime.Apply", "cannot align to %d days in a month of %d days", n, dim)
	}
	if partialDay(f) {
		if t.Sign < 0 {
			f.Day++
		}
		midnight(&f)
	}
	if f.Day == 1 && t.Sign < 0 {
		// Continue from the day after the end of the previous month.
		f.Month--
		if f.Month < 1 {
			f.Month = 12
			f.Year--
		}
		dim = calendar.DaysInMonth(f.Month, f.Year)
		f.Day = dim + 1
	}

	off := (f.Day - 1) % n
	if t.Sign > 0 {
		off -= n
	} else if off == 0 {
		off = n
	}
	f.Day -= off
	if f.Day > dim {
		// The first of the next month is always aligned.
		f.Day = 1
		f.Month++
		if f.Month > 12 {
			f.Month = 1
			f.Year++
		}
	}
	return f.Instant()
}

func addMonths(f *calendar.Fields, t Term) {
	n := t.Count
	if t.Unit == Quarter {
		if n == 0 {
			f.Month = ((f.Month-1)/3)*3 + 1
			f.Day = 1
			midnight(f)
			return
		}
		n *= 3
	}
	if n == 0 {
		f.Day = 1
		midnight(f)
		return
	}

	if t.Align && (partialDay(*f) || f.Day > 1) {
		if t.Sign < 0 {
			f.Month++
		}
		f.Day = 1
		midnight(f)
	}

	var off int
	if t.Align {
		off = (f.Month - 1) % n
		if t.Sign > 0 {
			off -= n
		} else if off == 0 {
			off = n
		}
	} else {
		off = -t.Sign * n
	}

	f.Month -= off
	if f.Month > 11 || f.Month < 1 {
		m := f.Month % 12
		if m < 1 {
			m += 12
		}
		f.Year += (f.Month - m) / 12
		f.Month = m
	}
	clampDay(f)
}

func addYears(f *calendar.Fields, t Term) {
	n := t.Count
	if n == 0 {
		f.Month = 1
		f.Day = 1
		midnight(f)
		return
	}

	if t.Align && (partialDay(*f) || f.Day > 1 || f.Month > 1) {
		if t.Sign < 0 {
			f.Year++
		}
		f.Month = 1
		f.Day = 1
		midnight(f)
	}

	var off int
	if t.Align {
		off = f.Year % n
		if t.Sign > 0 {
			off -= n
		} else if off == 0 {
			off = n
		}
	} else {
		off = -t.Sign * n
	}
	f.Year -= off
	clampDay(f) // February 29
}

func clampDay(f *calendar.Fields) {
	if dim := calendar.DaysInMonth(f.Month, f.Year); f.Day > dim {
		f.Day = dim
	}
}

// tenDayStart reports whether day starts a period of n ten-day periods.
func tenDayStart(day, n int) bool {
	switch n {
	case 1:
		return day == 1 || day == 11 || day == 21
	case 2:
		return day == 1 || day == 11
	}
	return day == 1
}

func addTenDays(f *calendar.Fields, t Term) {
	n := t.Count
	if n == 0 {
		f.Day = ((f.Day-1)/10)*10 + 1
		if f.Day > 21 {
			f.Day = 21
		}
		midnight(f)
		return
	}

	if t.Align && partialDay(*f) {
		if t.Sign < 0 {
			f.Day++
		}
		midnight(f)
	}

	// Move to the neighbouring period start if inside a period.
	moved := true
	switch {
	case f.Day > 1 && f.Day < 11:
		if t.Sign > 0 {
			f.Day = 11
		} else {
			f.Day = 1
		}
	case f.Day > 11 && f.Day < 21:
		if t.Sign > 0 {
			f.Day = 21
		} else {
			f.Day = 11
		}
	case f.Day > 21:
		if t.Sign > 0 {
			f.Day = 1
			f.Month++
		} else {
			f.Day = 21
		}
	default:
		moved = false
	}

	if !t.Align {
		if moved {
			n--
		}
		f.Day += n * t.Sign * 10
		carryTenDays(f)
		return
	}

	if !moved {
		f.Day += t.Sign * 10
		carryTenDays(f)
	}
	for !tenDayStart(f.Day, n) {
		f.Day += t.Sign * 10
		carryTenDays(f)
	}
}

// carryTenDays folds a linear count of ten-day periods, 30 days to a
// month, back into day, month and year.
func carryTenDays(f *calendar.Fields) {
	d := f.Day % 30
	if d < 1 {
		d += 30
	}
	f.Month += (f.Day - d) / 30
	f.Day = d

	m := f.Month % 12
	if m < 1 {
		m += 12
	}
	f.Year += (f.Month - m) / 12
	f.Month = m
}

// walkDays moves day by day until count matching days have been passed.
func walkDays(in calendar.Instant, t Term, hol HolidaySet) (calendar.Instant, error) {
	day, ms := in.Day, in.Ms
	sign, n := t.Sign, t.Count

	if t.Align && (n == 0 || ms != 0) {
		if n == 0 {
			sign = -1
		}
		if sign < 0 {
			day++
		}
		ms = 0
	}

	// A run of non-matching days is shorter than twice the number of
	// holidays plus a week.
	limit := 2*hol.Len() + 7
	next := func() error {
		for i := 0; ; i++ {
			day += int64(sign)
			if dayMatches(day, t.Unit, hol) {
				return nil
			}
			if i > limit {
				return timeerr.Unmatched("reltime.Apply", "no %v found within %d days", t.Unit, limit)
			}
		}
	}

	if err := next(); err != nil {
		return calendar.Instant{}, err
	}
	if _, byWeek := t.Unit.weekday(); byWeek && n > 0 {
		day += int64(sign * (n - 1) * 7)
	} else {
		for i := 1; i < n; i++ {
			if err := next(); err != nil {
				return calendar.Instant{}, err
			}
		}
	}
	return calendar.Instant{Day: day, Ms: ms}, nil
}

func dayMatches(day int64, u Unit, hol HolidaySet) bool {
	wd := calendar.Weekday(day)
	if want, ok := u.weekday(); ok {
		return wd == want
	}
	if wd == 0 || wd == 6 {
		return false
	}
	if u == BusinessDay {
		return !hol.Contains(day)
	}
	return true
}
