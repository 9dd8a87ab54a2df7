// Package vector applies calendar operations element-wise over slices of
// instants. A missing input or a failing element only affects its own
// output; the call as a whole fails only when the operands cannot be paired.
//
// Operands of different lengths are recycled: the shorter one is repeated,
// which requires the longer length to be a multiple of the shorter one. If
// any operand is empty the result is empty.
package vector

import (
	"errors"
	"fmt"

	"github.com/samber/mo"

	"github.com/ngrash/go-reltime/calendar"
	"github.com/ngrash/go-reltime/reltime"
	"github.com/ngrash/go-reltime/zone"
)

var (
	// ErrMissing marks an output whose input was missing.
	ErrMissing = errors.New("missing value")
	// ErrLengthMismatch is returned when neither operand length is a
	// multiple of the other.
	ErrLengthMismatch = errors.New("longer operand length is not a multiple of the shorter")
)

// Times wraps instants as present values.
func Times(ins ...calendar.Instant) []mo.Option[calendar.Instant] {
	out := make([]mo.Option[calendar.Instant], len(ins))
	for i, in := range ins {
		out[i] = mo.Some(in)
	}
	return out
}

// Values splits results into their instants and the errors of failed
// elements, joined.
func Values(rs []mo.Result[calendar.Instant]) ([]calendar.Instant, error) {
	out := make([]calendar.Instant, len(rs))
	var errs []error
	for i, r := range rs {
		v, err := r.Get()
		if err != nil {
			errs = append(errs, fmt.Errorf("element %d: %w", i, err))
			continue
		}
		out[i] = v
	}
	return out, errors.Join(errs...)
}

func recycled(op string, la, lb int) (int, error) {
	if la == 0 || lb == 0 {
		return 0, nil
	}
	if la%lb != 0 && lb%la != 0 {
		return 0, fmt.Errorf("%s: lengths %d and %d: %w", op, la, lb, ErrLengthMismatch)
	}
	return max(la, lb), nil
}

func missing[T any]() mo.Result[T] {
	return mo.Err[T](ErrMissing)
}

// ApplyEach applies exprs[i] to times[i] in tz, recycling the shorter
// operand. An expression that does not parse fails every element it is
// paired with.
func ApplyEach(times []mo.Option[calendar.Instant], exprs []string, tz zone.TimeZone, hol reltime.HolidaySet) ([]mo.Result[calendar.Instant], error) {
	n, err := recycled("vector.ApplyEach", len(times), len(exprs))
	if err != nil {
		return nil, err
	}

	parsed := make([]mo.Result[reltime.Expr], len(exprs))
	for i, s := range exprs {
		parsed[i] = mo.TupleToResult(reltime.Parse(s))
	}

	out := make([]mo.Result[calendar.Instant], n)
	for i := range out {
		in, ok := times[i%len(times)].Get()
		if !ok {
			out[i] = missing[calendar.Instant]()
			continue
		}
		expr, err := parsed[i%len(exprs)].Get()
		if err != nil {
			out[i] = mo.Err[calendar.Instant](err)
			continue
		}
		out[i] = mo.TupleToResult(expr.Apply(in, tz, hol))
	}
	return out, nil
}

// AddTimes returns a[i] + sign*b[i]. With span set the operands are time
// spans and each sum is normalised so that days and milliseconds share a
// sign; otherwise the sum is an instant with milliseconds within the day.
func AddTimes(a, b []mo.Option[calendar.Instant], sign int, span bool) ([]mo.Result[calendar.Instant], error) {
	if sign != 1 && sign != -1 {
		return nil, fmt.Errorf("vector.AddTimes: sign must be +1 or -1, got %d", sign)
	}
	n, err := recycled("vector.AddTimes", len(a), len(b))
	if err != nil {
		return nil, err
	}

	out := make([]mo.Result[calendar.Instant], n)
	for i := range out {
		x, okx := a[i%len(a)].Get()
		y, oky := b[i%len(b)].Get()
		if !okx || !oky {
			out[i] = missing[calendar.Instant]()
			continue
		}
		day := x.Day + int64(sign)*y.Day
		ms := x.Ms + int64(sign)*y.Ms
		if span {
			out[i] = mo.Ok(calendar.NormalizeDuration(day, ms))
		} else {
			out[i] = mo.Ok(calendar.NormalizeInstant(day, ms))
		}
	}
	return out, nil
}

// FloorEach returns the start of the local day of each instant in tz.
func FloorEach(times []mo.Option[calendar.Instant], tz zone.TimeZone) []mo.Result[calendar.Instant] {
	return each(times, func(in calendar.Instant) (calendar.Instant, error) {
		return zone.Floor(in, tz)
	})
}

// CeilEach returns the start of the next local day of each instant in tz,
// or the instant itself if it is already at local midnight.
func CeilEach(times []mo.Option[calendar.Instant], tz zone.TimeZone) []mo.Result[calendar.Instant] {
	return each(times, func(in calendar.Instant) (calendar.Instant, error) {
		return zone.Ceil(in, tz)
	})
}

func each(times []mo.Option[calendar.Instant], fn func(calendar.Instant) (calendar.Instant, error)) []mo.Result[calendar.Instant] {
	out := make([]mo.Result[calendar.Instant], len(times))
	for i, t := range times {
		in, ok := t.Get()
		if !ok {
			out[i] = missing[calendar.Instant]()
			continue
		}
		out[i] = mo.TupleToResult(fn(in))
	}
	return out
}

// Interval is a closed range of instants.
type Interval struct {
	Min, Max calendar.Instant
}

// Range returns the earliest and latest of times. It is None if times has no
// present values, or if a value is missing and skipMissing is false.
func Range(times []mo.Option[calendar.Instant], skipMissing bool) mo.Option[Interval] {
	var (
		r    Interval
		seen bool
	)
	for _, t := range times {
		in, ok := t.Get()
		if !ok {
			if skipMissing {
				continue
			}
			return mo.None[Interval]()
		}
		if !seen {
			r = Interval{Min: in, Max: in}
			seen = true
			continue
		}
		if in.After(r.Max) {
			r.Max = in
		}
		if in.Before(r.Min) {
			r.Min = in
		}
	}
	if !seen {
		return mo.None[Interval]()
	}
	return mo.Some(r)
}

// Sum adds time spans. It is None if a value is missing and skipMissing is
// false.
func Sum(spans []mo.Option[calendar.Instant], skipMissing bool) mo.Option[calendar.Instant] {
	var total calendar.Instant
	for _, s := range spans {
		v, ok := s.Get()
		if !ok {
			if skipMissing {
				continue
			}
			return mo.None[calendar.Instant]()
		}
		total = calendar.NormalizeDuration(total.Day+v.Day, total.Ms+v.Ms)
	}
	return mo.Some(total)
}

// CumulativeSum returns the running totals of spans. A missing value fails
// its own element and every later one, unless skipMissing is set, in which
// case it counts as zero.
func CumulativeSum(spans []mo.Option[calendar.Instant], skipMissing bool) []mo.Result[calendar.Instant] {
	out := make([]mo.Result[calendar.Instant], len(spans))
	var total calendar.Instant
	for i, s := range spans {
		v, ok := s.Get()
		if !ok && !skipMissing {
			for j := i; j < len(out); j++ {
				out[j] = missing[calendar.Instant]()
			}
			break
		}
		if ok {
			total = calendar.NormalizeDuration(total.Day+v.Day, total.Ms+v.Ms)
		}
		out[i] = mo.Ok(total)
	}
	return out
}
