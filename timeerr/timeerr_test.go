package timeerr

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{InvalidDate("calendar.DayFromDate", "no such date %d-%d-%d", 1752, 9, 5), "calendar.DayFromDate: no such date 1752-9-5"},
		{UnknownZone("zone.Lookup", "Mars/Olympus"), `zone.Lookup: unknown zone "Mars/Olympus"`},
		{&Error{Kind: KindUnmatched}, "unmatched"},
		{Wrap(KindInvalidTime, "op", io.ErrUnexpectedEOF), "op: invalid time: unexpected EOF"},
	}
	for _, c := range cases {
		if diff := cmp.Diff(c.want, c.err.Error()); diff != "" {
			t.Errorf("Error() mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("applying: %w", Unmatched("reltime.Apply", "no biz found"))
	if !errors.Is(err, ErrUnmatched) {
		t.Errorf("errors.Is(%v, ErrUnmatched) = false, want true", err)
	}
	if errors.Is(err, ErrBadExpression) {
		t.Errorf("errors.Is(%v, ErrBadExpression) = true, want false", err)
	}
	if got := KindOf(err); got != KindUnmatched {
		t.Errorf("KindOf() = %q, want %q", got, KindUnmatched)
	}
	if got := KindOf(io.EOF); got != "" {
		t.Errorf("KindOf(io.EOF) = %q, want empty", got)
	}

	wrapped := Wrap(KindInvalidTime, "op", io.ErrUnexpectedEOF)
	if !errors.Is(wrapped, io.ErrUnexpectedEOF) {
		t.Error("Wrap() does not unwrap to its cause")
	}
	if Wrap(KindInvalidTime, "op", nil) != nil {
		t.Error("Wrap(nil) != nil")
	}
}

func TestDisplayRich(t *testing.T) {
	err := BadExpression("reltime.Parse", "unknown unit \"xyz\"", &Span{Start: 2, End: 5}, "+1xyz")
	want := "error: unknown unit \"xyz\"\n  +1xyz\n    ^^^"
	if diff := cmp.Diff(want, err.DisplayRich()); diff != "" {
		t.Errorf("DisplayRich() mismatch (-want +got):\n%s", diff)
	}

	plain := InvalidTime("calendar.MsFromClock", "no such time")
	if diff := cmp.Diff("error: calendar.MsFromClock: no such time", plain.DisplayRich()); diff != "" {
		t.Errorf("DisplayRich() mismatch (-want +got):\n%s", diff)
	}
}
