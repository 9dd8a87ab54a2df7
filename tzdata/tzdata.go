// Package tzdata parses the Rule, Zone and Link lines of the IANA tz source
// files published at https://www.iana.org/time-zones.
//
// Times and offsets are kept in whole seconds, months are 1-12 and weekdays
// count from 0 for Sunday, matching the conventions of package zone.
package tzdata

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// File holds the lines of one or more tz source files, each kind in the
// order it appears.
type File struct {
	Zones []ZoneLine
	Rules []RuleLine
	Links []LinkLine

	// Skipped counts Leap and Expires lines. Leap second tables are not used.
	Skipped int
}

// Append adds the lines of other to f.
func (f *File) Append(other File) {
	f.Zones = append(f.Zones, other.Zones...)
	f.Rules = append(f.Rules, other.Rules...)
	f.Links = append(f.Links, other.Links...)
	f.Skipped += other.Skipped
}

// RuleSet returns the rule lines named name in file order.
func (f File) RuleSet(name string) []RuleLine {
	var out []RuleLine
	for _, r := range f.Rules {
		if r.Name == name {
			out = append(out, r)
		}
	}
	return out
}

// parseError records the line a parse failure happened on.
type parseError struct {
	lineNumber int
	line       string
	err        error
}

func (e *parseError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.lineNumber, e.line, e.err)
}

func (e *parseError) Unwrap() error { return e.err }

func lineError(lineNumber int, line, kind string, err error) error {
	return &parseError{lineNumber, line, fmt.Errorf("parse %s: %w", kind, err)}
}

// Parse reads tz source lines from r.
func Parse(r io.Reader) (File, error) {
	var result File
	scanner := bufio.NewScanner(r)

	var (
		lineNumber           int
		continuationExpected bool
	)
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		fields, err := splitLine(line)
		if err != nil {
			return result, &parseError{lineNumber, line, err}
		}
		if fields == nil {
			continue
		}

		if continuationExpected {
			zone, err := parseZoneContinuationLine(fields)
			if err != nil {
				return result, lineError(lineNumber, line, "zone continuation", err)
			}
			result.Zones = append(result.Zones, zone)
			continuationExpected = zone.Until.Defined
			continue
		}

		switch keyword(fields[0]) {
		case "Zone":
			zone, err := parseZoneLine(fields)
			if err != nil {
				return result, lineError(lineNumber, line, "zone", err)
			}
			result.Zones = append(result.Zones, zone)
			// A zone line with an UNTIL column is followed by a continuation.
			continuationExpected = zone.Until.Defined
		case "Rule":
			rule, err := parseRuleLine(fields)
			if err != nil {
				return result, lineError(lineNumber, line, "rule", err)
			}
			result.Rules = append(result.Rules, rule)
		case "Link":
			link, err := parseLinkLine(fields)
			if err != nil {
				return result, lineError(lineNumber, line, "link", err)
			}
			result.Links = append(result.Links, link)
		case "Leap", "Expires":
			result.Skipped++
		default:
			return result, &parseError{lineNumber, line, errors.New("unexpected line")}
		}
	}

	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("scanner: %w", err)
	}
	return result, nil
}

// keyword resolves the abbreviations zic accepts for the line type.
func keyword(s string) string {
	l := strings.ToLower(s)
	for _, k := range []struct{ long, min string }{
		{"zone", "z"}, {"rule", "r"}, {"link", "li"}, {"leap", "le"}, {"expires", "e"},
	} {
		if isAbbrev(l, k.long, k.min) {
			return strings.ToUpper(k.long[:1]) + k.long[1:]
		}
	}
	return s
}

// LinkLine makes Name an alternative name for Target.
//
//	Link  TARGET           LINK-NAME
//	Link  Europe/Istanbul  Asia/Istanbul
type LinkLine struct {
	Target string
	Name   string
}

func parseLinkLine(fields []string) (LinkLine, error) {
	if len(fields) != 3 {
		return LinkLine{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}
	return LinkLine{Target: fields[1], Name: fields[2]}, nil
}

// RuleLine is one line of a named rule set.
//
//	Rule  NAME  FROM  TO    -  IN   ON       AT     SAVE   LETTER/S
//	Rule  US    1967  1973  -  Apr  lastSun  2:00w  1:00d  D
type RuleLine struct {
	Name   string
	From   Year
	To     Year
	Month  int
	On     Day
	At     Time
	Save   Time
	Letter string
}

func parseRuleLine(fields []string) (RuleLine, error) {
	if len(fields) != 10 {
		return RuleLine{}, fmt.Errorf("expected 10 fields, got %d", len(fields))
	}
	var (
		r    RuleLine
		errs []error
		err  error
	)
	column := func(name string, value string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %q: %w", name, value, err))
		}
	}
	r.Name, err = parseRuleName(fields[1])
	column("NAME", fields[1], err)
	r.From, err = parseYear(fields[2], nil)
	column("FROM", fields[2], err)
	r.To, err = parseYear(fields[3], &r.From)
	column("TO", fields[3], err)
	if fields[4] != "-" {
		column("TYPE", fields[4], errors.New(`must be "-"`))
	}
	r.Month, err = ParseMonth(fields[5])
	column("IN", fields[5], err)
	r.On, err = ParseDay(fields[6])
	column("ON", fields[6], err)
	r.At, err = ParseTime(fields[7])
	column("AT", fields[7], err)
	r.Save, err = ParseSave(fields[8])
	column("SAVE", fields[8], err)
	r.Letter = parseLetters(fields[9])
	if err := errors.Join(errs...); err != nil {
		return RuleLine{}, err
	}
	if r.From != MinYear && r.To != MaxYear && r.From > r.To {
		return RuleLine{}, fmt.Errorf("FROM %v is after TO %v", r.From, r.To)
	}
	return r, nil
}

// ZoneLine is a zone line or one of its continuation lines.
//
//	Zone  NAME        STDOFF  RULES   FORMAT  [UNTIL]
//	Zone  Asia/Amman  2:00    Jordan  EE%sT   2017 Oct 27 01:00
type ZoneLine struct {
	Continuation bool
	Name         string // empty for continuation lines
	Offset       int32  // STDOFF in seconds east of UT
	Rules        ZoneRules
	Format       string
	Until        Until
}

func parseZoneLine(fields []string) (ZoneLine, error) {
	if len(fields) < 5 || len(fields) > 9 {
		return ZoneLine{}, fmt.Errorf("expected 5 to 9 fields, got %d", len(fields))
	}
	z, err := parseZoneColumns(fields[2:])
	name, nameErr := parseZoneName(fields[1])
	if nameErr != nil {
		err = errors.Join(fmt.Errorf("NAME %q: %w", fields[1], nameErr), err)
	}
	z.Name = name
	return z, err
}

func parseZoneContinuationLine(fields []string) (ZoneLine, error) {
	if len(fields) < 3 || len(fields) > 7 {
		return ZoneLine{}, fmt.Errorf("expected 3 to 7 fields, got %d", len(fields))
	}
	z, err := parseZoneColumns(fields)
	z.Continuation = true
	return z, err
}

// parseZoneColumns parses STDOFF RULES FORMAT [UNTIL].
func parseZoneColumns(fields []string) (ZoneLine, error) {
	var (
		z    ZoneLine
		errs []error
		err  error
	)
	if z.Offset, err = ParseOffset(fields[0]); err != nil {
		errs = append(errs, fmt.Errorf("STDOFF %q: %w", fields[0], err))
	}
	z.Rules = parseZoneRules(fields[1])
	if z.Format, err = parseZoneFormat(fields[2]); err != nil {
		errs = append(errs, fmt.Errorf("FORMAT %q: %w", fields[2], err))
	}
	if len(fields) > 3 {
		until := strings.Join(fields[3:], " ")
		if z.Until, err = parseUntil(until); err != nil {
			errs = append(errs, fmt.Errorf("UNTIL %q: %w", until, err))
		}
	}
	return z, errors.Join(errs...)
}

func parseZoneName(s string) (string, error) {
	if s == "" {
		return "", errors.New("empty name")
	}
	for _, part := range strings.Split(s, "/") {
		if part == "." || part == ".." {
			return "", fmt.Errorf("name contains a %q component", part)
		}
	}
	return s, nil
}

func parseZoneFormat(s string) (string, error) {
	if s == "" {
		return "", errors.New("empty format")
	}
	return s, nil
}

// ZoneRulesForm tells what the RULES column of a zone line holds.
type ZoneRulesForm int

const (
	// ZoneRulesStandard means standard time always applies ("-").
	ZoneRulesStandard ZoneRulesForm = iota
	// ZoneRulesName references a rule set.
	ZoneRulesName
	// ZoneRulesSave is a fixed amount added to standard time.
	ZoneRulesSave
)

func (f ZoneRulesForm) String() string {
	switch f {
	case ZoneRulesStandard:
		return "Standard"
	case ZoneRulesName:
		return "Name"
	case ZoneRulesSave:
		return "Save"
	default:
		return "<UNDEFINED>"
	}
}

// ZoneRules is the RULES column of a zone line.
type ZoneRules struct {
	Form ZoneRulesForm
	Name string // for ZoneRulesName
	Save Time   // for ZoneRulesSave
}

func parseZoneRules(s string) ZoneRules {
	if s == "-" {
		return ZoneRules{Form: ZoneRulesStandard}
	}
	if save, err := ParseSave(s); err == nil {
		return ZoneRules{Form: ZoneRulesSave, Save: save}
	}
	// Whether the rule set exists is checked when compiling.
	return ZoneRules{Form: ZoneRulesName, Name: s}
}

// UntilParts is a bitmask of the fields given in an UNTIL column. Trailing
// fields may be omitted, so a set part implies all parts before it.
type UntilParts uint8

// Has reports whether all of parts are set.
func (p UntilParts) Has(parts UntilParts) bool {
	return p&parts == parts
}

const (
	untilYearOnly UntilParts = 1 << iota
	untilMonthOnly
	untilDayOnly
	untilTimeOnly

	UntilYear  = untilYearOnly
	UntilMonth = UntilYear | untilMonthOnly
	UntilDay   = UntilMonth | untilDayOnly
	UntilTime  = UntilDay | untilTimeOnly
)

// Until is the UNTIL column of a zone line. The zero value means the column
// is absent and the line is the zone's final era.
type Until struct {
	Defined bool
	Parts   UntilParts
	Year    int
	Month   int  // 1 unless Parts has UntilMonth
	Day     Day  // the 1st unless Parts has UntilDay
	Time    Time // 0:00 unless Parts has UntilTime
}

func parseUntil(s string) (Until, error) {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return Until{}, nil
	}
	if len(parts) > 4 {
		return Until{}, fmt.Errorf("too many fields: %d", len(parts))
	}

	u := Until{Month: 1, Day: Day{Form: DayFormNum, Num: 1}}
	year, err := parseYear(parts[0], nil)
	if err != nil || year == MinYear || year == MaxYear {
		return Until{}, fmt.Errorf("year %q: invalid", parts[0])
	}
	u.Year = int(year)
	u.Parts = UntilYear

	if len(parts) > 1 {
		if u.Month, err = ParseMonth(parts[1]); err != nil {
			return Until{}, err
		}
		u.Parts = UntilMonth
	}
	if len(parts) > 2 {
		if u.Day, err = ParseDay(parts[2]); err != nil {
			return Until{}, fmt.Errorf("day: %w", err)
		}
		u.Parts = UntilDay
	}
	if len(parts) > 3 {
		if u.Time, err = ParseTime(parts[3]); err != nil {
			return Until{}, fmt.Errorf("time: %w", err)
		}
		u.Parts = UntilTime
	}
	u.Defined = true
	return u, nil
}

// splitLine splits a line into fields. Fields are separated by white space,
// '#' starts a comment, and double quotes protect white space and '#'
// within a field. It returns nil for blank lines.
func splitLine(line string) ([]string, error) {
	var (
		fields  []string
		field   strings.Builder
		inField bool
		quoted  bool
	)
	flush := func() {
		if inField {
			fields = append(fields, field.String())
			field.Reset()
			inField = false
		}
	}
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			quoted = !quoted
			inField = true
		case quoted:
			field.WriteByte(ch)
		case ch == '#':
			i = len(line)
		case strings.IndexByte(" \f\r\n\t\v", ch) >= 0:
			flush()
		default:
			field.WriteByte(ch)
			inField = true
		}
	}
	if quoted {
		return nil, errors.New("no closing quote")
	}
	flush()
	return fields, nil
}
