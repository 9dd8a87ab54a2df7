package tzc

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ngrash/go-reltime/tzdata"
	"github.com/ngrash/go-reltime/zone"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func compile(t *testing.T, src string) *zone.Registry {
	t.Helper()
	f, err := tzdata.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	reg, err := Compile(f, Options{Logger: quiet})
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func lookup(t *testing.T, reg *zone.Registry, name string) zone.TimeZone {
	t.Helper()
	tz, err := reg.Lookup(name)
	if err != nil {
		t.Fatal(err)
	}
	return tz
}

func sunOnOrAfter(month, day int, at int32) zone.Boundary {
	return zone.Boundary{Month: month, Code: zone.WeekdayOnOrAfter, Day: 0, AuxDay: day, Time: at}
}

func lastSun(month int, at int32) zone.Boundary {
	return zone.Boundary{Month: month, Code: zone.LastWeekday, Day: 0, Time: at}
}

func TestCompile_NewYork(t *testing.T) {
	reg := compile(t, `
Rule US 1967 2006 - Oct lastSun 2:00 0 S
Rule US 1967 1973 - Apr lastSun 2:00 1:00 D
Rule US 1974 only - Jan 6 2:00 1:00 D
Rule US 1975 only - Feb lastSun 2:00 1:00 D
Rule US 1976 1986 - Apr lastSun 2:00 1:00 D
Rule US 1987 2006 - Apr Sun>=1 2:00 1:00 D
Rule US 2007 max - Mar Sun>=8 2:00 1:00 D
Rule US 2007 max - Nov Sun>=1 2:00 0 S

Zone America/New_York -5:00 US E%sT
`)
	got := lookup(t, reg, "America/New_York")

	oct := lastSun(10, 3600)
	want := zone.TimeZone{
		Name:   "America/New_York",
		Offset: -5 * 3600,
		Rules: []zone.DstRule{
			{From: 2007, To: zone.AnyYear, HasDaylight: true, Extra: 3600, Start: sunOnOrAfter(3, 8, 7200), End: sunOnOrAfter(11, 1, 3600)},
			{From: 1987, To: 2006, HasDaylight: true, Extra: 3600, Start: sunOnOrAfter(4, 1, 7200), End: oct},
			{From: 1976, To: 1986, HasDaylight: true, Extra: 3600, Start: lastSun(4, 7200), End: oct},
			{From: 1975, To: 1975, HasDaylight: true, Extra: 3600, Start: lastSun(2, 7200), End: oct},
			{From: 1974, To: 1974, HasDaylight: true, Extra: 3600, Start: zone.Boundary{Month: 1, Code: zone.MonthDay, Day: 6, Time: 7200}, End: oct},
			{From: 1967, To: 1973, HasDaylight: true, Extra: 3600, Start: lastSun(4, 7200), End: oct},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Compile() mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_Auckland(t *testing.T) {
	reg := compile(t, `
Rule NZ 1990 2006 - Oct Sun>=1 2:00s 1:00 D
Rule NZ 1990 2007 - Mar Sun>=15 2:00s 0 S
Rule NZ 2007 max - Sep lastSun 2:00s 1:00 D
Rule NZ 2008 max - Apr Sun>=1 2:00s 0 S
Zone Pacific/Auckland 12:00 NZ NZ%sT
Link Pacific/Auckland Antarctica/McMurdo
`)
	got := lookup(t, reg, "Antarctica/McMurdo")

	want := zone.TimeZone{
		Name:   "Pacific/Auckland",
		Offset: 12 * 3600,
		Rules: []zone.DstRule{
			{From: 2008, To: zone.AnyYear, HasDaylight: true, Extra: 3600, Start: lastSun(9, 7200), End: sunOnOrAfter(4, 1, 7200)},
			{From: 2007, To: 2007, HasDaylight: true, Extra: 3600, Start: lastSun(9, 7200), End: sunOnOrAfter(3, 15, 7200)},
			{From: 1990, To: 2006, HasDaylight: true, Extra: 3600, Start: sunOnOrAfter(10, 1, 7200), End: sunOnOrAfter(3, 15, 7200)},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Compile() mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_Universal(t *testing.T) {
	reg := compile(t, `
Rule EU 1977 1980 - Apr Sun>=1 1:00u 1:00 S
Rule EU 1977 only - Sep lastSun 1:00u 0 -
Rule EU 1978 only - Oct 1 1:00u 0 -
Rule EU 1979 1995 - Sep lastSun 1:00u 0 -
Rule EU 1981 max - Mar lastSun 1:00u 1:00 S
Rule EU 1996 max - Oct lastSun 1:00u 0 -
Zone Europe/Berlin 1:00 EU CE%sT
`)
	got := lookup(t, reg, "Europe/Berlin")

	if len(got.Rules) == 0 {
		t.Fatal("no rules")
	}
	want := zone.DstRule{From: 1996, To: zone.AnyYear, HasDaylight: true, Extra: 3600, Start: lastSun(3, 7200), End: lastSun(10, 7200)}
	if diff := cmp.Diff(want, got.Rules[0]); diff != "" {
		t.Errorf("most recent rule mismatch (-want +got):\n%s", diff)
	}
	if r, ok := got.RuleFor(1985); !ok || r.End != lastSun(9, 7200) {
		t.Errorf("RuleFor(1985) = %+v, %v; want a rule ending on the last Sunday in September", r, ok)
	}
}

func TestCompile_Merge(t *testing.T) {
	reg := compile(t, `
Rule M 2000 2004 - Apr Sun>=1 2:00 1:00 D
Rule M 2000 2009 - Oct lastSun 2:00 0 S
Rule M 2005 2009 - Apr Sun>=1 2:00 1:00 D
Zone Test/Merge 2:00 M T%sT
`)
	got := lookup(t, reg, "Test/Merge").Rules
	want := []zone.DstRule{
		{From: 2000, To: 2009, HasDaylight: true, Extra: 3600, Start: sunOnOrAfter(4, 1, 7200), End: lastSun(10, 3600)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Compile() mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_FixedZones(t *testing.T) {
	reg := compile(t, `
Zone Etc/UTC 0 - UTC
Zone Test/AlwaysDaylight -5:00 1:00 EDT
Zone Test/Changed -3:00 - X 1990
                  -4:00 - Y
`)
	tests := []struct {
		name string
		want zone.TimeZone
	}{
		{"Etc/UTC", zone.Fixed("Etc/UTC", 0)},
		{"Test/AlwaysDaylight", zone.Fixed("Test/AlwaysDaylight", -4*3600)},
		{"Test/Changed", zone.Fixed("Test/Changed", -4*3600)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lookup(t, reg, tt.name)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompile_EarlierEras(t *testing.T) {
	reg := compile(t, `
Rule A 1950 1959 - Apr 1 2:00 1:00 D
Rule A 1950 1959 - Oct 1 2:00 0 S
Rule B 1980 max - Mar lastSun 2:00 1:00 D
Rule B 1980 max - Oct lastSun 2:00 0 S
Zone Test/Eras 3:00 A X%sT 1960
               2:00 A Y%sT 1970
               2:00 - YST 1980
               2:00 B Y%sT
`)
	got := lookup(t, reg, "Test/Eras")
	want := zone.TimeZone{
		Name:   "Test/Eras",
		Offset: 2 * 3600,
		Rules: []zone.DstRule{
			{From: 1980, To: zone.AnyYear, HasDaylight: true, Extra: 3600, Start: lastSun(3, 7200), End: lastSun(10, 3600)},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Compile() mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "missing rule set",
			src:  "Zone Test/Missing 1:00 Nope X%sT\n",
			want: "no rule lines named Nope",
		},
		{
			name: "duplicate zone",
			src:  "Zone Test/Dup 1:00 - A\nZone Test/Dup 2:00 - B\n",
			want: "defined twice",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := tzdata.Parse(strings.NewReader(tt.src))
			if err != nil {
				t.Fatal(err)
			}
			_, err = Compile(f, Options{Logger: quiet})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Compile() error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestCompile_LogsAmbiguousYears(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	reg, err := CompileBytes([][]byte{
		[]byte(`
Rule GB 1941 1943 - Apr Sun>=2 1:00s 2:00 BDST
Rule GB 1941 1943 - Aug Sun>=9 1:00s 1:00 BST
Rule GB 1941 1943 - Sep Sun>=15 1:00s 0 GMT
`),
		[]byte("Zone Test/War 0:00 GB %s\n"),
	}, Options{Logger: logger})
	if err != nil {
		t.Fatal(err)
	}
	r, ok := lookup(t, reg, "Test/War").RuleFor(1942)
	if !ok || r.Extra != 7200 || r.Start.Month != 4 || r.End.Month != 9 {
		t.Errorf("RuleFor(1942) = %+v, %v", r, ok)
	}
	if !strings.Contains(buf.String(), "switch more than twice") {
		t.Errorf("expected a warning about ambiguous years, got log:\n%s", buf.String())
	}
}
