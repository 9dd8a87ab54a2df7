// Package sequence generates runs of instants by applying a relative time
// expression repeatedly.
package sequence

import (
	"fmt"
	"slices"

	"github.com/ngrash/go-reltime/calendar"
	"github.com/ngrash/go-reltime/reltime"
	"github.com/ngrash/go-reltime/timeerr"
	"github.com/ngrash/go-reltime/zone"
)

// CompatibilityMode selects how the first element of a sequence is chosen.
type CompatibilityMode int

const (
	// Original always starts the sequence with the start instant.
	Original CompatibilityMode = iota
	// AvoidBadStartDay steps back once from the start and then forward,
	// so that a start which does not satisfy the expression (a Saturday
	// for "+1biz", say) is replaced by the first instant that does.
	// Expressions whose first term is aligned behave as in Original.
	AvoidBadStartDay
)

var modeNames = map[CompatibilityMode]string{
	Original:         "original",
	AvoidBadStartDay: "avoid-bad-start-day",
}

func (m CompatibilityMode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("CompatibilityMode(%d)", int(m))
}

// ParseCompatibilityMode parses "original" or "avoid-bad-start-day".
func ParseCompatibilityMode(s string) (CompatibilityMode, error) {
	for m, name := range modeNames {
		if s == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown compatibility mode %q", s)
}

func (m CompatibilityMode) MarshalText() ([]byte, error) {
	if _, ok := modeNames[m]; !ok {
		return nil, fmt.Errorf("unknown compatibility mode %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *CompatibilityMode) UnmarshalText(text []byte) error {
	v, err := ParseCompatibilityMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Bound ends a sequence either after a number of elements or at an instant.
type Bound struct {
	length int
	end    calendar.Instant
	until  bool
}

// Length bounds a sequence to n elements.
func Length(n int) Bound { return Bound{length: n} }

// Until bounds a sequence to the elements between the start and end,
// inclusive. The direction of the sequence is that from start to end.
func Until(end calendar.Instant) Bound { return Bound{end: end, until: true} }

func (b Bound) String() string {
	if b.until {
		return "until " + b.end.String()
	}
	return fmt.Sprintf("length %d", b.length)
}

const op = "sequence.Generate"

// GenerateString parses expr and calls Generate.
func GenerateString(start calendar.Instant, bound Bound, expr string, tz zone.TimeZone, hol reltime.HolidaySet, mode CompatibilityMode) ([]calendar.Instant, error) {
	e, err := reltime.Parse(expr)
	if err != nil {
		return nil, err
	}
	return Generate(start, bound, e, tz, hol, mode)
}

// Generate applies expr repeatedly, starting at the GMT instant start.
//
// Every element must differ from its predecessor, and all steps must move
// in the same direction. With an Until bound that direction is the one from
// start to end; otherwise it is taken from the first step.
func Generate(start calendar.Instant, bound Bound, expr reltime.Expr, tz zone.TimeZone, hol reltime.HolidaySet, mode CompatibilityMode) ([]calendar.Instant, error) {
	if !bound.until && bound.length < 0 {
		return nil, timeerr.BadExpression(op, fmt.Sprintf("negative sequence length %d", bound.length), nil, "")
	}
	if len(expr.Terms) == 0 {
		return nil, timeerr.BadExpression(op, "empty expression", nil, expr.Source)
	}

	g := &generator{expr: expr, tz: tz, hol: hol}
	if bound.until {
		g.direction = bound.end.Compare(start)
		if g.direction == 0 {
			return []calendar.Instant{start}, nil
		}
		days := bound.end.Day - start.Day
		if days < 0 {
			days = -days
		}
		size := 100
		if days > 100 {
			size = int(days) + 20
		}
		g.out = make([]calendar.Instant, 0, size)
	} else {
		if bound.length == 0 {
			return []calendar.Instant{}, nil
		}
		g.out = make([]calendar.Instant, 0, bound.length)
	}

	if err := g.begin(start, mode); err != nil {
		return nil, err
	}

	for {
		if !bound.until && len(g.out) >= bound.length {
			return g.out, nil
		}
		if bound.until {
			if g.direction*g.prev.Compare(bound.end) > 0 {
				// The element that passed the end is not part of the run.
				if len(g.out) > 0 {
					g.out = g.out[:len(g.out)-1]
				}
				break
			}
			if len(g.out) >= cap(g.out)-1 {
				g.out = slices.Grow(g.out, 200)
			}
		}
		if err := g.step(); err != nil {
			return nil, err
		}
	}
	out := make([]calendar.Instant, len(g.out))
	copy(out, g.out)
	return out, nil
}

type generator struct {
	expr reltime.Expr
	tz   zone.TimeZone
	hol  reltime.HolidaySet

	out       []calendar.Instant
	prev      calendar.Instant
	direction int
}

// begin sets the instant the first step is taken from.
func (g *generator) begin(start calendar.Instant, mode CompatibilityMode) error {
	if mode != AvoidBadStartDay || g.expr.Terms[0].Align {
		g.out = append(g.out, start)
		g.prev = start
		return nil
	}

	back := reltime.Expr{Terms: slices.Clone(g.expr.Terms)}
	back.Terms[0].Sign = -back.Terms[0].Sign
	pre, err := back.Apply(start, g.tz, g.hol)
	if err != nil {
		return fmt.Errorf("%s: stepping back from start: %w", op, err)
	}
	g.prev = pre
	return nil
}

func (g *generator) step() error {
	next, err := g.expr.Apply(g.prev, g.tz, g.hol)
	if err != nil {
		return err
	}
	dir := next.Compare(g.prev)
	if dir == 0 {
		return timeerr.StationaryStep(op, "%q does not move %v", g.expr.String(), g.prev)
	}
	switch g.direction {
	case 0:
		g.direction = dir
	case -dir:
		return timeerr.NonMonotonic(op, "%q moved from %v to %v against the direction of the sequence", g.expr.String(), g.prev, next)
	}
	g.out = append(g.out, next)
	g.prev = next
	return nil
}
