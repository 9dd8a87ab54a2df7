// Package reltime evaluates relative time expressions.
//
// An expression is a whitespace separated list of terms. Each term is a
// sign, an optional "a" for alignment, a count and a unit:
//
//	+1biz       next business day
//	-2wk        two weeks back
//	+a15min     forward to the next quarter hour
//	+0amth      back to the start of the month
//
// Without "a" a term adds count periods. With "a" it moves to the next
// (or previous) boundary of a period of count units. Day and longer units
// work on the local wall clock of a time zone, shorter units on GMT.
package reltime

import (
	"fmt"
	"strings"

	"github.com/ngrash/go-reltime/calendar"
	"github.com/ngrash/go-reltime/timeerr"
	"github.com/ngrash/go-reltime/zone"
)

// Term is one step of an expression.
type Term struct {
	Sign  int // +1 or -1
	Align bool
	Count int
	Unit  Unit
	Span  timeerr.Span // position in Expr.Source
}

func (t Term) String() string {
	var sb strings.Builder
	if t.Sign < 0 {
		sb.WriteByte('-')
	} else {
		sb.WriteByte('+')
	}
	if t.Align {
		sb.WriteByte('a')
	}
	fmt.Fprintf(&sb, "%d%v", t.Count, t.Unit)
	return sb.String()
}

// Expr is a parsed expression. Terms are applied left to right.
type Expr struct {
	Terms  []Term
	Source string
}

// String renders the expression in canonical form, terms separated by a space.
func (e Expr) String() string {
	parts := make([]string, len(e.Terms))
	for i, t := range e.Terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// Apply is shorthand for the package level Apply.
func (e Expr) Apply(gmt calendar.Instant, tz zone.TimeZone, hol HolidaySet) (calendar.Instant, error) {
	return Apply(gmt, e, tz, hol)
}

// ApplyString parses expr and applies it to gmt.
func ApplyString(gmt calendar.Instant, expr string, tz zone.TimeZone, hol HolidaySet) (calendar.Instant, error) {
	e, err := Parse(expr)
	if err != nil {
		return calendar.Instant{}, err
	}
	return Apply(gmt, e, tz, hol)
}
