// Package timeerr defines the error type returned by the calendar, zone,
// relative-time and sequence packages.
//
// Every error carries a Kind. Callers match kinds with errors.Is against
// the exported sentinels:
//
//	if errors.Is(err, timeerr.ErrInvalidDate) { ... }
package timeerr

import (
	"fmt"
	"strings"
)

// Kind classifies an Error.
type Kind string

const (
	KindInvalidDate    Kind = "invalid date"
	KindInvalidTime    Kind = "invalid time"
	KindUnknownZone    Kind = "unknown zone"
	KindBadExpression  Kind = "bad expression"
	KindUnmatched      Kind = "unmatched"
	KindStationaryStep Kind = "stationary step"
	KindNonMonotonic   Kind = "non-monotonic"
)

// Sentinels for errors.Is. Only the Kind of a sentinel is compared.
var (
	ErrInvalidDate    = &Error{Kind: KindInvalidDate}
	ErrInvalidTime    = &Error{Kind: KindInvalidTime}
	ErrUnknownZone    = &Error{Kind: KindUnknownZone}
	ErrBadExpression  = &Error{Kind: KindBadExpression}
	ErrUnmatched      = &Error{Kind: KindUnmatched}
	ErrStationaryStep = &Error{Kind: KindStationaryStep}
	ErrNonMonotonic   = &Error{Kind: KindNonMonotonic}
)

// Span is a half-open range of byte offsets into Error.Input.
type Span struct {
	Start int
	End   int
}

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Op      string // operation that failed, e.g. "calendar.DayFromDate"
	Message string
	Span    *Span  // set for expression errors
	Input   string // the expression, if any
	Err     error  // underlying cause, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	if e.Op != "" {
		sb.WriteString(e.Op)
		sb.WriteString(": ")
	}
	if e.Message != "" {
		sb.WriteString(e.Message)
	} else {
		sb.WriteString(string(e.Kind))
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}

func newError(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// InvalidDate creates an error for an out-of-range or nonexistent date.
func InvalidDate(op, format string, args ...any) *Error {
	return newError(KindInvalidDate, op, format, args...)
}

// InvalidTime creates an error for an out-of-range time of day.
func InvalidTime(op, format string, args ...any) *Error {
	return newError(KindInvalidTime, op, format, args...)
}

// UnknownZone creates an error for a zone name that could not be resolved.
func UnknownZone(op, name string) *Error {
	return &Error{Kind: KindUnknownZone, Op: op, Message: fmt.Sprintf("unknown zone %q", name)}
}

// BadExpression creates an error for an unparseable relative-time expression.
// span may be nil when the problem is not tied to a position.
func BadExpression(op, message string, span *Span, input string) *Error {
	return &Error{Kind: KindBadExpression, Op: op, Message: message, Span: span, Input: input}
}

// Unmatched creates an error for a term that could not be satisfied.
func Unmatched(op, format string, args ...any) *Error {
	return newError(KindUnmatched, op, format, args...)
}

// StationaryStep creates an error for a sequence step that did not move.
func StationaryStep(op, format string, args ...any) *Error {
	return newError(KindStationaryStep, op, format, args...)
}

// NonMonotonic creates an error for a sequence step that changed direction.
func NonMonotonic(op, format string, args ...any) *Error {
	return newError(KindNonMonotonic, op, format, args...)
}

// Wrap attaches kind and op to err. It returns nil if err is nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// DisplayRich renders expression errors with the input and a caret line
// under the offending span. Other errors render as "error: <message>".
func (e *Error) DisplayRich() string {
	if e.Span == nil || e.Input == "" {
		return fmt.Sprintf("error: %s", e.Error())
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "error: %s\n", e.Message)
	fmt.Fprintf(&sb, "  %s\n", e.Input)
	n := e.Span.End - e.Span.Start
	if n < 1 {
		n = 1
	}
	sb.WriteString(strings.Repeat(" ", e.Span.Start+2))
	sb.WriteString(strings.Repeat("^", n))
	return sb.String()
}
