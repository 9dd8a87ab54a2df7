package config

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/ngrash/go-reltime/tzdata"
	"github.com/ngrash/go-reltime/zone"
	"github.com/ngrash/go-reltime/zonefile"
)

// Registry returns a registry holding the zones of base, then those of the
// zones file, then the zones and aliases defined in f. Later definitions
// replace earlier ones of the same name. base is not modified and may be nil.
func (f *File) Registry(base *zone.Registry) (*zone.Registry, error) {
	reg := zone.NewRegistry()
	if base != nil {
		reg.Merge(base)
	}

	if f.ZonesFile != "" {
		r, err := os.Open(f.path(f.ZonesFile))
		if err != nil {
			return nil, fmt.Errorf("zones file: %w", err)
		}
		compiled, _, err := zonefile.Decode(r)
		_ = r.Close()
		if err != nil {
			return nil, fmt.Errorf("zones file %s: %w", f.ZonesFile, err)
		}
		reg.Merge(compiled)
	}

	var errs []error
	ruleSets := make(map[string][]zone.DstRule, len(f.RuleSets))
	for _, name := range slices.Sorted(maps.Keys(f.RuleSets)) {
		rules, err := buildRules(f.RuleSets[name])
		if err != nil {
			errs = append(errs, fmt.Errorf("rule set %s: %w", name, err))
			continue
		}
		ruleSets[name] = rules
	}

	for _, name := range slices.Sorted(maps.Keys(f.Zones)) {
		def := f.Zones[name]
		tz, err := buildZone(name, def, ruleSets)
		if err != nil {
			errs = append(errs, fmt.Errorf("zone %s: %w", name, err))
			continue
		}
		reg.Add(tz)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	for _, name := range slices.Sorted(maps.Keys(f.Aliases)) {
		reg.Alias(name, f.Aliases[name])
	}
	return reg, nil
}

func buildZone(name string, def ZoneDef, ruleSets map[string][]zone.DstRule) (zone.TimeZone, error) {
	offset, err := tzdata.ParseOffset(def.Offset)
	if err != nil {
		return zone.TimeZone{}, fmt.Errorf("offset: %w", err)
	}
	tz := zone.Fixed(name, offset)
	if def.Rules != "" {
		rules, ok := ruleSets[def.Rules]
		if !ok {
			return zone.TimeZone{}, fmt.Errorf("unknown rule set %q", def.Rules)
		}
		tz.Rules = slices.Clone(rules)
	}
	if err := zone.Validate(tz); err != nil {
		return zone.TimeZone{}, err
	}
	return tz, nil
}

// buildRules converts defs and orders them most recent first.
func buildRules(defs []RuleDef) ([]zone.DstRule, error) {
	rules := make([]zone.DstRule, 0, len(defs))
	var errs []error
	for i, def := range defs {
		r, err := buildRule(def)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %d: %w", i, err))
			continue
		}
		rules = append(rules, r)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	slices.SortStableFunc(rules, func(a, b zone.DstRule) int {
		return -cmp.Compare(sortYear(a.From), sortYear(b.From))
	})
	return rules, nil
}

// sortYear places an open start before every year.
func sortYear(y int) int {
	if y == zone.AnyYear {
		return -1 << 31
	}
	return y
}

func buildRule(def RuleDef) (zone.DstRule, error) {
	r := zone.DstRule{From: zone.AnyYear, To: zone.AnyYear}
	if def.From != 0 {
		r.From = def.From
	}
	if def.To != 0 {
		r.To = def.To
	}
	if def.Save == "" {
		if def.Start != "" || def.End != "" {
			return r, errors.New("start and end need a save amount")
		}
		return r, nil
	}

	save, err := tzdata.ParseSave(def.Save)
	if err != nil {
		return r, fmt.Errorf("save: %w", err)
	}
	if save.Seconds == 0 {
		return r, nil
	}
	r.HasDaylight = true
	r.Extra = save.Seconds
	if r.Start, err = ParseBoundary(def.Start); err != nil {
		return r, fmt.Errorf("start: %w", err)
	}
	if r.End, err = ParseBoundary(def.End); err != nil {
		return r, fmt.Errorf("end: %w", err)
	}
	return r, nil
}

// ParseBoundary parses "IN ON AT", such as "Mar Sun>=8 2:00", into a
// boundary. AT is read as local standard time and may be omitted for
// midnight.
func ParseBoundary(s string) (zone.Boundary, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 || len(fields) > 3 {
		return zone.Boundary{}, fmt.Errorf("boundary %q: expected month, day and time", s)
	}
	month, err := tzdata.ParseMonth(fields[0])
	if err != nil {
		return zone.Boundary{}, err
	}
	day, err := tzdata.ParseDay(fields[1])
	if err != nil {
		return zone.Boundary{}, err
	}
	var at tzdata.Time
	if len(fields) == 3 {
		if at, err = tzdata.ParseTime(fields[2]); err != nil {
			return zone.Boundary{}, err
		}
		if at.Form == tzdata.UniversalTime {
			return zone.Boundary{}, fmt.Errorf("boundary %q: universal time is not supported in rule sets", s)
		}
	}
	return day.Boundary(month, at.Seconds), nil
}
