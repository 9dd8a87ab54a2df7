package tzexpand

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ngrash/go-reltime/calendar"
	"github.com/ngrash/go-reltime/internal/unixtime"
	"github.com/ngrash/go-reltime/zone"
)

var (
	newYork = zone.TimeZone{
		Name:   "America/New_York",
		Offset: -5 * 3600,
		Rules: []zone.DstRule{
			{
				From: 2007, To: zone.AnyYear, HasDaylight: true, Extra: 3600,
				Start: zone.Boundary{Month: 3, Code: zone.WeekdayOnOrAfter, Day: 0, AuxDay: 8, Time: 7200},
				End:   zone.Boundary{Month: 11, Code: zone.WeekdayOnOrAfter, Day: 0, AuxDay: 1, Time: 3600},
			},
			{
				From: 1987, To: 2006, HasDaylight: true, Extra: 3600,
				Start: zone.Boundary{Month: 4, Code: zone.WeekdayOnOrAfter, Day: 0, AuxDay: 1, Time: 7200},
				End:   zone.Boundary{Month: 10, Code: zone.LastWeekday, Day: 0, Time: 3600},
			},
		},
	}
	auckland = zone.TimeZone{
		Name:   "Pacific/Auckland",
		Offset: 12 * 3600,
		Rules: []zone.DstRule{
			{
				From: 2008, To: zone.AnyYear, HasDaylight: true, Extra: 3600,
				Start: zone.Boundary{Month: 9, Code: zone.LastWeekday, Day: 0, Time: 7200},
				End:   zone.Boundary{Month: 4, Code: zone.WeekdayOnOrAfter, Day: 0, AuxDay: 1, Time: 7200},
			},
		},
	}
)

func TestTransitions(t *testing.T) {
	cases := []struct {
		name     string
		tz       zone.TimeZone
		from, to int
		want     []Transition
	}{
		{
			name: "northern hemisphere",
			tz:   newYork,
			from: 2024, to: 2024,
			want: []Transition{
				{GMT: calendar.Instant{Day: 23445, Ms: 7 * 3600_000}, Daylight: true, Offset: -4 * 3600, Rule: 0},
				{GMT: calendar.Instant{Day: 23683, Ms: 6 * 3600_000}, Daylight: false, Offset: -5 * 3600, Rule: 0},
			},
		},
		{
			name: "southern hemisphere",
			tz:   auckland,
			from: 2024, to: 2024,
			want: []Transition{
				{GMT: calendar.Instant{Day: 23472, Ms: 14 * 3600_000}, Daylight: false, Offset: 12 * 3600, Rule: 0},
				{GMT: calendar.Instant{Day: 23647, Ms: 14 * 3600_000}, Daylight: true, Offset: 13 * 3600, Rule: 0},
			},
		},
		{
			name: "no rule for the years",
			tz:   newYork,
			from: 1960, to: 1970,
			want: nil,
		},
		{
			name: "fixed zone",
			tz:   zone.Fixed("Etc/UTC", 0),
			from: 2000, to: 2030,
			want: nil,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Transitions(c.tz, c.from, c.to)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("Transitions(%s, %d, %d) mismatch (-want +got):\n%s", c.tz.Name, c.from, c.to, diff)
			}
		})
	}
}

func TestTransitions_RuleChange(t *testing.T) {
	got, err := Transitions(newYork, 2006, 2007)
	if err != nil {
		t.Fatal(err)
	}
	want := []time.Time{
		time.Date(2006, time.April, 2, 7, 0, 0, 0, time.UTC),
		time.Date(2006, time.October, 29, 6, 0, 0, 0, time.UTC),
		time.Date(2007, time.March, 11, 7, 0, 0, 0, time.UTC),
		time.Date(2007, time.November, 4, 6, 0, 0, 0, time.UTC),
	}
	var gotTimes []time.Time
	for _, tr := range got {
		gotTimes = append(gotTimes, unixtime.ToTime(tr.GMT))
	}
	if diff := cmp.Diff(want, gotTimes); diff != "" {
		t.Errorf("transition times mismatch (-want +got):\n%s", diff)
	}
	if got[0].Rule != 1 || got[2].Rule != 0 {
		t.Errorf("rule indexes = %d, %d; want 1, 0", got[0].Rule, got[2].Rule)
	}
}

func TestTransitions_MatchOffset(t *testing.T) {
	trs, err := Transitions(newYork, 1990, 2030)
	if err != nil {
		t.Fatal(err)
	}
	for _, tr := range trs {
		off, daylight, err := zone.Offset(tr.GMT, newYork, false, false)
		if err != nil {
			t.Fatal(err)
		}
		if off != tr.Offset || daylight != tr.Daylight {
			t.Errorf("zone.Offset(%v) = %d, %v; transition says %d, %v", tr, off, daylight, tr.Offset, tr.Daylight)
		}
		before := zone.AddOffset(tr.GMT, -1)
		if _, daylight, _ := zone.Offset(before, newYork, false, false); daylight == tr.Daylight {
			t.Errorf("one second before %v daylight saving time is already %v", tr, daylight)
		}
	}
}

func TestTransitions_EmptyRange(t *testing.T) {
	if _, err := Transitions(newYork, 2000, 1999); err == nil {
		t.Error("expected an error for an empty year range")
	}
}
