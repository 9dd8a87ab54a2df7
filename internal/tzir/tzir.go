// Package tzir splits tzdata zone and rule lines into year ranges that map
// onto zone.DstRule: a zone's eras, and within an era the ranges of years in
// which the same rule lines apply.
package tzir

import (
	"slices"

	"github.com/ngrash/go-reltime/tzdata"
)

// Era is a zone or continuation line with the years it governs.
//
// An UNTIL column ending exactly at the start of a year hands that year to
// the next line; any later UNTIL keeps the year, so the line in effect for
// most of the changing year is not decided here.
type Era struct {
	Line     tzdata.ZoneLine
	From, To tzdata.Year
}

// Empty reports whether the era governs no whole year.
func (e Era) Empty() bool {
	return e.From != tzdata.MinYear && e.To != tzdata.MaxYear && e.From > e.To
}

// Eras returns the eras of one zone's lines, in order.
func Eras(lines []tzdata.ZoneLine) []Era {
	eras := make([]Era, 0, len(lines))
	from := tzdata.MinYear
	for _, l := range lines {
		e := Era{Line: l, From: from, To: tzdata.MaxYear}
		if l.Until.Defined {
			e.To = tzdata.Year(l.Until.Year)
			if l.Until.Parts == tzdata.UntilYear {
				e.To--
			}
			from = e.To + 1
		}
		eras = append(eras, e)
	}
	return eras
}

// Segment is a maximal range of years in which the same rule lines apply.
type Segment struct {
	From, To tzdata.Year
	// Starts holds the lines that switch to daylight saving time, in
	// month order.
	Starts []tzdata.RuleLine
	// Ends holds the lines that switch back to standard time.
	Ends []tzdata.RuleLine
}

// HasDaylight reports whether the segment has both a start and an end.
func (s Segment) HasDaylight() bool {
	return len(s.Starts) > 0 && len(s.Ends) > 0
}

// Ambiguous reports whether the segment switches more than twice a year.
func (s Segment) Ambiguous() bool {
	return len(s.Starts) > 1 || len(s.Ends) > 1
}

// Partial reports whether the segment only starts or only ends daylight
// saving time, as in a year in which it began the year before.
func (s Segment) Partial() bool {
	return (len(s.Starts) > 0) != (len(s.Ends) > 0)
}

// Segments splits the years from..to into segments of rules. A rule line
// with a non-zero SAVE starts daylight saving time; one with zero SAVE ends
// it. Segments are returned in ascending order of years.
func Segments(rules []tzdata.RuleLine, from, to tzdata.Year) []Segment {
	breaks := []tzdata.Year{from}
	for _, r := range rules {
		if r.From != tzdata.MinYear && r.From > from && (to == tzdata.MaxYear || r.From <= to) {
			breaks = append(breaks, r.From)
		}
		if r.To != tzdata.MaxYear && r.To >= from && (to == tzdata.MaxYear || r.To < to) {
			breaks = append(breaks, r.To+1)
		}
	}
	slices.Sort(breaks)
	breaks = slices.Compact(breaks)

	segs := make([]Segment, 0, len(breaks))
	for i, b := range breaks {
		seg := Segment{From: b, To: to}
		if i+1 < len(breaks) {
			seg.To = breaks[i+1] - 1
		}
		for _, r := range rules {
			if !covers(r, b) {
				continue
			}
			if r.Save.Seconds != 0 {
				seg.Starts = append(seg.Starts, r)
			} else {
				seg.Ends = append(seg.Ends, r)
			}
		}
		byMonth := func(a, b tzdata.RuleLine) int { return a.Month - b.Month }
		slices.SortStableFunc(seg.Starts, byMonth)
		slices.SortStableFunc(seg.Ends, byMonth)
		segs = append(segs, seg)
	}
	return segs
}

func covers(r tzdata.RuleLine, year tzdata.Year) bool {
	return r.From <= year && year <= r.To
}
