package tzir

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ngrash/go-reltime/tzdata"
)

func parse(t *testing.T, s string) tzdata.File {
	t.Helper()
	f, err := tzdata.Parse(strings.NewReader(s))
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestEras(t *testing.T) {
	f := parse(t, `
Zone America/Example -4:56:02 - LMT 1883 Nov 18 12:03:58
                     -5:00    US E%sT 1920
                     -5:00    - EST 1967 Oct 29
                     -5:00    US E%sT
`)
	type span struct{ From, To tzdata.Year }
	var got []span
	for _, e := range Eras(f.Zones) {
		got = append(got, span{e.From, e.To})
	}
	want := []span{
		{tzdata.MinYear, 1883},
		{1884, 1919},
		{1920, 1967},
		{1968, tzdata.MaxYear},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Eras() mismatch (-want +got):\n%s", diff)
	}
}

func TestEra_Empty(t *testing.T) {
	f := parse(t, `
Zone Example 1:00 - A 1990 Mar
             2:00 - B 1990 Oct
             3:00 - C
`)
	eras := Eras(f.Zones)
	if eras[0].Empty() {
		t.Errorf("era 0 %v..%v is empty", eras[0].From, eras[0].To)
	}
	if !eras[1].Empty() {
		t.Errorf("era 1 %v..%v is not empty", eras[1].From, eras[1].To)
	}
	if eras[2].Empty() {
		t.Errorf("era 2 is empty")
	}
}

func TestSegments(t *testing.T) {
	f := parse(t, `
Rule US 1967 2006 - Oct lastSun 2:00 0 S
Rule US 1967 1973 - Apr lastSun 2:00 1:00 D
Rule US 1974 only - Jan 6 2:00 1:00 D
Rule US 1975 only - Feb lastSun 2:00 1:00 D
Rule US 1976 1986 - Apr lastSun 2:00 1:00 D
Rule US 1987 2006 - Apr Sun>=1 2:00 1:00 D
Rule US 2007 max - Mar Sun>=8 2:00 1:00 D
Rule US 2007 max - Nov Sun>=1 2:00 0 S
`)
	segs := Segments(f.Rules, 1960, tzdata.MaxYear)

	type summary struct {
		From, To    tzdata.Year
		Start, End  string
		HasDaylight bool
	}
	var got []summary
	for _, s := range segs {
		sum := summary{From: s.From, To: s.To, HasDaylight: s.HasDaylight()}
		if len(s.Starts) > 0 {
			sum.Start = s.Starts[0].On.String()
		}
		if len(s.Ends) > 0 {
			sum.End = s.Ends[0].On.String()
		}
		got = append(got, sum)
	}
	want := []summary{
		{From: 1960, To: 1966},
		{From: 1967, To: 1973, Start: "lastSun", End: "lastSun", HasDaylight: true},
		{From: 1974, To: 1974, Start: "6", End: "lastSun", HasDaylight: true},
		{From: 1975, To: 1975, Start: "lastSun", End: "lastSun", HasDaylight: true},
		{From: 1976, To: 1986, Start: "lastSun", End: "lastSun", HasDaylight: true},
		{From: 1987, To: 2006, Start: "Sun>=1", End: "lastSun", HasDaylight: true},
		{From: 2007, To: tzdata.MaxYear, Start: "Sun>=8", End: "Sun>=1", HasDaylight: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Segments() mismatch (-want +got):\n%s", diff)
	}
}

func TestSegments_Clipped(t *testing.T) {
	f := parse(t, `
Rule NZ 1974 only - Nov Sun>=1 2:00s 1:00 D
Rule NZ 1975 only - Feb lastSun 2:00s 0 S
Rule NZ 1975 1988 - Oct lastSun 2:00s 1:00 D
Rule NZ 1976 1989 - Mar Sun>=1 2:00s 0 S
`)
	segs := Segments(f.Rules, 1974, 1976)
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}
	if !segs[0].Partial() || segs[0].HasDaylight() {
		t.Errorf("1974 should only start daylight saving time: %+v", segs[0])
	}
	if segs[1].From != 1975 || segs[1].To != 1975 || !segs[1].HasDaylight() {
		t.Errorf("unexpected 1975 segment %+v", segs[1])
	}
	if segs[2].From != 1976 || segs[2].To != 1976 || segs[2].Ends[0].Month != 3 {
		t.Errorf("unexpected 1976 segment %+v", segs[2])
	}
}

func TestSegments_Ambiguous(t *testing.T) {
	f := parse(t, `
Rule GB 1941 1943 - Apr Sun>=2 1:00s 2:00 BDST
Rule GB 1941 1943 - Aug Sun>=9 1:00s 1:00 BST
Rule GB 1941 1943 - Sep Sun>=15 1:00s 0 GMT
`)
	segs := Segments(f.Rules, 1941, 1943)
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	if !segs[0].Ambiguous() {
		t.Error("expected an ambiguous segment")
	}
	if segs[0].Starts[0].Month != 4 || segs[0].Starts[1].Month != 8 {
		t.Errorf("starts not in month order: %+v", segs[0].Starts)
	}
}
