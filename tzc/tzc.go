// Package tzc compiles parsed tzdata into zone rule chains.
//
// A zone.TimeZone has a single base offset, so only the final era of a zone
// and the earlier eras sharing its offset are compiled. Within those eras
// every range of years with one daylight start and one daylight end becomes
// a zone.DstRule; other years run on standard time.
package tzc

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ngrash/go-reltime/internal/tzir"
	"github.com/ngrash/go-reltime/tzdata"
	"github.com/ngrash/go-reltime/zone"
)

// Options configure Compile.
type Options struct {
	// Logger receives notes about eras and years that could not be
	// represented. It defaults to slog.Default().
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// CompileBytes parses each source and compiles them together, so that rule
// sets and link targets may be defined in another source.
func CompileBytes(srcs [][]byte, opts Options) (*zone.Registry, error) {
	var f tzdata.File
	for i, src := range srcs {
		part, err := tzdata.Parse(bytes.NewReader(src))
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		f.Append(part)
	}
	return Compile(f, opts)
}

// Compile builds a registry holding every zone in f, with links as aliases.
func Compile(f tzdata.File, opts Options) (*zone.Registry, error) {
	log := opts.logger()

	// Group zone lines by zone name.
	var (
		names    []string
		zones    = make(map[string][]tzdata.ZoneLine)
		lastName string
	)
	for _, l := range f.Zones {
		if !l.Continuation {
			lastName = l.Name
			if _, dup := zones[lastName]; dup {
				return nil, fmt.Errorf("zone %s defined twice", lastName)
			}
			names = append(names, lastName)
		}
		zones[lastName] = append(zones[lastName], l)
	}

	reg := zone.NewRegistry()
	var errs []error
	for _, name := range names {
		tz, err := compileZone(f, name, zones[name], log)
		if err != nil {
			errs = append(errs, fmt.Errorf("compiling zone %s: %w", name, err))
			continue
		}
		if err := zone.Validate(tz); err != nil {
			errs = append(errs, fmt.Errorf("compiling zone %s: invalid rules: %w", name, err))
			continue
		}
		reg.Add(tz)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	for _, l := range f.Links {
		reg.Alias(l.Name, l.Target)
	}
	for _, l := range f.Links {
		if _, err := reg.Lookup(l.Name); err != nil {
			log.Warn("link target not found", "link", l.Name, "target", l.Target)
		}
	}
	log.Debug("compiled tzdata", "zones", reg.Len(), "links", len(f.Links))
	return reg, nil
}

func compileZone(f tzdata.File, name string, lines []tzdata.ZoneLine, log *slog.Logger) (zone.TimeZone, error) {
	eras := tzir.Eras(lines)
	final := eras[len(eras)-1].Line
	tz := zone.TimeZone{Name: name, Offset: final.Offset}

	if final.Rules.Form == tzdata.ZoneRulesSave {
		// Daylight saving time all year round is a different standard time.
		tz.Offset += final.Rules.Save.Seconds
		log.Debug("folded fixed save into offset", "zone", name, "save", final.Rules.Save)
		return tz, nil
	}

	for i := len(eras) - 1; i >= 0; i-- {
		e := eras[i]
		if e.Line.Offset != final.Offset || e.Line.Rules.Form == tzdata.ZoneRulesSave {
			log.Debug("dropped earlier eras with another offset", "zone", name, "eras", i+1, "before", e.To+1)
			break
		}
		if e.Empty() || e.Line.Rules.Form != tzdata.ZoneRulesName {
			continue
		}

		rules := f.RuleSet(e.Line.Rules.Name)
		if len(rules) == 0 {
			return zone.TimeZone{}, fmt.Errorf("no rule lines named %s", e.Line.Rules.Name)
		}
		segs := tzir.Segments(rules, e.From, e.To)
		for j := len(segs) - 1; j >= 0; j-- {
			r, ok := dstRule(name, segs[j], tz.Offset, log)
			if !ok {
				continue
			}
			tz.Rules = appendRule(tz.Rules, r)
		}
	}
	return tz, nil
}

// dstRule converts a segment to a rule with boundary times in local
// standard time.
func dstRule(name string, seg tzir.Segment, offset int32, log *slog.Logger) (zone.DstRule, bool) {
	if !seg.HasDaylight() {
		if seg.Partial() {
			log.Debug("years start or end daylight saving time only; using standard time",
				"zone", name, "from", seg.From, "to", seg.To)
		}
		return zone.DstRule{}, false
	}

	start := seg.Starts[0]
	end := seg.Ends[len(seg.Ends)-1]
	if seg.Ambiguous() {
		log.Warn("years switch more than twice; using first start and last end",
			"zone", name, "from", seg.From, "to", seg.To, "start", start.On, "end", end.On)
	}

	extra := start.Save.Seconds
	return zone.DstRule{
		From:        seg.From.ZoneYear(),
		To:          seg.To.ZoneYear(),
		HasDaylight: true,
		Extra:       extra,
		Start:       start.On.Boundary(start.Month, standardSeconds(start.At, offset, 0)),
		End:         end.On.Boundary(end.Month, standardSeconds(end.At, offset, extra)),
	}, true
}

// standardSeconds converts an AT time to local standard time. save is the
// daylight saving in effect on the wall clock just before the transition.
func standardSeconds(at tzdata.Time, offset, save int32) int32 {
	switch at.Form {
	case tzdata.UniversalTime:
		return at.Seconds + offset
	case tzdata.StandardTime:
		return at.Seconds
	}
	return at.Seconds - save
}

// appendRule appends r to rules, which are most recent first, merging it
// into the last rule when they differ only in adjoining years.
func appendRule(rules []zone.DstRule, r zone.DstRule) []zone.DstRule {
	if n := len(rules); n > 0 {
		last := rules[n-1]
		if last.From != zone.AnyYear && r.To != zone.AnyYear && last.From == r.To+1 &&
			last.Extra == r.Extra && last.Start == r.Start && last.End == r.End {
			rules[n-1].From = r.From
			return rules
		}
	}
	return append(rules, r)
}
