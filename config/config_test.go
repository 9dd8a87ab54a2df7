package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngrash/go-reltime/sequence"
	"github.com/ngrash/go-reltime/zone"
	"github.com/ngrash/go-reltime/zonefile"
)

const yamlConfig = `
default_zone: us/eastern
compatibility: avoid-bad-start-day
rulesets:
  us:
    - from: 2007
      save: "1:00"
      start: Mar Sun>=8 2:00
      end: Nov Sun>=1 1:00
    - to: 2006
      save: "1:00"
      start: Apr lastSun 2:00
      end: Oct lastSun 1:00
zones:
  us/eastern:
    offset: "-5:00"
    rules: us
  utc:
    offset: "0"
aliases:
  est5edt: us/eastern
holidays:
  dates: ["2024-12-25", "2024-01-01"]
  easter:
    offsets: [-2, 1]
    from: 2024
    to: 2024
`

const tomlConfig = `
default_zone = "us/eastern"
compatibility = "avoid-bad-start-day"

[[rulesets.us]]
from = 2007
save = "1:00"
start = "Mar Sun>=8 2:00"
end = "Nov Sun>=1 1:00"

[[rulesets.us]]
to = 2006
save = "1:00"
start = "Apr lastSun 2:00"
end = "Oct lastSun 1:00"

[zones."us/eastern"]
offset = "-5:00"
rules = "us"

[zones.utc]
offset = "0"

[aliases]
est5edt = "us/eastern"

[holidays]
dates = ["2024-12-25", "2024-01-01"]

[holidays.easter]
offsets = [-2, 1]
from = 2024
to = 2024
`

const jsoncConfig = `{
  // Eastern time with the rules since 1967.
  "default_zone": "us/eastern",
  "compatibility": "avoid-bad-start-day",
  "rulesets": {
    "us": [
      {"from": 2007, "save": "1:00", "start": "Mar Sun>=8 2:00", "end": "Nov Sun>=1 1:00"},
      {"to": 2006, "save": "1:00", "start": "Apr lastSun 2:00", "end": "Oct lastSun 1:00"},
    ],
  },
  "zones": {
    "us/eastern": {"offset": "-5:00", "rules": "us"},
    "utc": {"offset": "0"},
  },
  "aliases": {"est5edt": "us/eastern"},
  "holidays": {
    "dates": ["2024-12-25", "2024-01-01"],
    /* Good Friday and Easter Monday */
    "easter": {"offsets": [-2, 1], "from": 2024, "to": 2024},
  },
}`

var wantFile = &File{
	DefaultZone:   "us/eastern",
	Compatibility: sequence.AvoidBadStartDay,
	RuleSets: map[string][]RuleDef{
		"us": {
			{From: 2007, Save: "1:00", Start: "Mar Sun>=8 2:00", End: "Nov Sun>=1 1:00"},
			{To: 2006, Save: "1:00", Start: "Apr lastSun 2:00", End: "Oct lastSun 1:00"},
		},
	},
	Zones: map[string]ZoneDef{
		"us/eastern": {Offset: "-5:00", Rules: "us"},
		"utc":        {Offset: "0"},
	},
	Aliases: map[string]string{"est5edt": "us/eastern"},
	Holidays: HolidayDefs{
		Dates:  []string{"2024-12-25", "2024-01-01"},
		Easter: &EasterDef{Offsets: []int{-2, 1}, From: 2024, To: 2024},
	},
}

func TestParse(t *testing.T) {
	cases := []struct {
		format Format
		data   string
	}{
		{FormatYAML, yamlConfig},
		{FormatTOML, tomlConfig},
		{FormatJSON, jsoncConfig},
	}
	for _, c := range cases {
		t.Run(c.format.String(), func(t *testing.T) {
			got, err := Parse([]byte(c.data), c.format)
			require.NoError(t, err)
			if diff := cmp.Diff(wantFile, got, cmp.AllowUnexported(File{})); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	f, err := Parse(nil, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, sequence.Original, f.Compatibility)
	assert.Empty(t, f.Zones)
}

func TestParse_UnknownKeys(t *testing.T) {
	cases := []struct {
		format Format
		data   string
	}{
		{FormatYAML, "default_zne: utc\n"},
		{FormatTOML, "default_zne = \"utc\"\n"},
		{FormatJSON, `{"default_zne": "utc"}`},
	}
	for _, c := range cases {
		t.Run(c.format.String(), func(t *testing.T) {
			_, err := Parse([]byte(c.data), c.format)
			assert.Error(t, err)
		})
	}
}

func TestParse_BadCompatibility(t *testing.T) {
	_, err := Parse([]byte("compatibility: sometimes\n"), FormatYAML)
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{
		"reltime.yaml":       FormatYAML,
		"/etc/reltime.YML":   FormatYAML,
		"reltime.toml":       FormatTOML,
		"conf/reltime.json":  FormatJSON,
		"conf/reltime.jsonc": FormatJSON,
	} {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
	_, err := FormatFromPath("reltime.ini")
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	f, err := Parse([]byte(yamlConfig), FormatYAML)
	require.NoError(t, err)

	reg, err := f.Registry(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	got, err := reg.Lookup("EST5EDT")
	require.NoError(t, err)
	want := zone.TimeZone{
		Name:   "us/eastern",
		Offset: -5 * 3600,
		Rules: []zone.DstRule{
			{
				From: 2007, To: zone.AnyYear, HasDaylight: true, Extra: 3600,
				Start: zone.Boundary{Month: 3, Code: zone.WeekdayOnOrAfter, Day: 0, AuxDay: 8, Time: 7200},
				End:   zone.Boundary{Month: 11, Code: zone.WeekdayOnOrAfter, Day: 0, AuxDay: 1, Time: 3600},
			},
			{
				From: zone.AnyYear, To: 2006, HasDaylight: true, Extra: 3600,
				Start: zone.Boundary{Month: 4, Code: zone.LastWeekday, Day: 0, Time: 7200},
				End:   zone.Boundary{Month: 10, Code: zone.LastWeekday, Day: 0, Time: 3600},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lookup() mismatch (-want +got):\n%s", diff)
	}

	utc, err := reg.Lookup("UTC")
	require.NoError(t, err)
	assert.Equal(t, zone.Fixed("utc", 0), utc)
}

func TestRegistry_Base(t *testing.T) {
	base := zone.NewRegistry(zone.Fixed("utc", 3600), zone.Fixed("st/japan", 9*3600))
	f := &File{Zones: map[string]ZoneDef{"utc": {Offset: "0"}}}

	reg, err := f.Registry(base)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	utc, err := reg.Lookup("utc")
	require.NoError(t, err)
	assert.Equal(t, int32(0), utc.Offset)

	orig, err := base.Lookup("utc")
	require.NoError(t, err)
	assert.Equal(t, int32(3600), orig.Offset, "base registry must not change")
}

func TestRegistry_ZonesFile(t *testing.T) {
	dir := t.TempDir()
	out, err := os.Create(filepath.Join(dir, "zones.rtz"))
	require.NoError(t, err)
	require.NoError(t, zonefile.Encode(out, zone.NewRegistry(zone.Fixed("Asia/Tokyo", 9*3600)), zonefile.Meta{}))
	require.NoError(t, out.Close())

	cfgPath := filepath.Join(dir, "reltime.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("zones_file: zones.rtz\naliases:\n  japan: asia/tokyo\n"), 0o644))

	f, err := Load(cfgPath)
	require.NoError(t, err)
	reg, err := f.Registry(nil)
	require.NoError(t, err)

	tz, err := reg.Lookup("Japan")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", tz.Name)
}

func TestRegistry_Errors(t *testing.T) {
	cases := []struct {
		name string
		file File
	}{
		{"bad offset", File{Zones: map[string]ZoneDef{"x": {Offset: "five"}}}},
		{"unknown rule set", File{Zones: map[string]ZoneDef{"x": {Offset: "1", Rules: "eu"}}}},
		{"bad boundary", File{
			RuleSets: map[string][]RuleDef{"eu": {{Save: "1:00", Start: "Mar", End: "Oct lastSun 1:00"}}},
		}},
		{"bad month", File{
			RuleSets: map[string][]RuleDef{"eu": {{Save: "1:00", Start: "Mars lastSun", End: "Oct lastSun"}}},
		}},
		{"boundaries without save", File{
			RuleSets: map[string][]RuleDef{"eu": {{Start: "Mar lastSun", End: "Oct lastSun"}}},
		}},
		{"overlap", File{
			RuleSets: map[string][]RuleDef{"eu": {
				{From: 1990, Save: "1:00", Start: "Mar lastSun 1:00", End: "Oct lastSun 1:00"},
				{From: 1980, To: 1995, Save: "1:00", Start: "Mar lastSun 1:00", End: "Sep lastSun 1:00"},
			}},
			Zones: map[string]ZoneDef{"europe/central": {Offset: "1", Rules: "eu"}},
		}},
		{"missing zones file", File{ZonesFile: "/nonexistent/zones.rtz"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := c.file.Registry(nil)
			assert.Error(t, err)
		})
	}
}

func TestParseBoundary(t *testing.T) {
	cases := []struct {
		in   string
		want zone.Boundary
	}{
		{"Mar Sun>=8 2:00", zone.Boundary{Month: 3, Code: zone.WeekdayOnOrAfter, Day: 0, AuxDay: 8, Time: 7200}},
		{"Oct lastSun", zone.Boundary{Month: 10, Code: zone.LastWeekday, Day: 0}},
		{"Dec 31 24:00", zone.Boundary{Month: 12, Code: zone.MonthDay, Day: 31, Time: 86400}},
		{"Apr Sat<=7 0:01", zone.Boundary{Month: 4, Code: zone.WeekdayOnOrBefore, Day: 6, AuxDay: 7, Time: 60}},
	}
	for _, c := range cases {
		got, err := ParseBoundary(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}

	for _, in := range []string{"", "Mar", "Mar 8 2:00 extra", "Mar Sun>=8 2:00u", "Foo 8"} {
		_, err := ParseBoundary(in)
		assert.Error(t, err, in)
	}
}

func TestHolidaySet(t *testing.T) {
	f, err := Parse([]byte(yamlConfig), FormatYAML)
	require.NoError(t, err)

	set, err := f.HolidaySet()
	require.NoError(t, err)
	// 2024-01-01, Good Friday, Easter Monday, 2024-12-25.
	assert.Equal(t, []int64{23376, 23464, 23467, 23735}, set.Days())
}

const icalData = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//reltime//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:newyear@example.com\r\n" +
	"DTSTAMP:20231201T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20240101\r\n" +
	"SUMMARY:New Year\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:labor@example.com\r\n" +
	"DTSTAMP:20231201T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20240902\r\n" +
	"SUMMARY:Labor Day\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestHolidaySet_ICal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "holidays.ics"), []byte(icalData), 0o644))
	cfgPath := filepath.Join(dir, "reltime.toml")
	cfg := "[holidays]\ndates = [\"2024-01-01\"]\nical = [\"holidays.ics\"]\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	f, err := Load(cfgPath)
	require.NoError(t, err)
	set, err := f.HolidaySet()
	require.NoError(t, err)
	// 2024-01-01 appears twice and counts once.
	assert.Equal(t, []int64{23376, 23621}, set.Days())
}

func TestHolidaySet_Errors(t *testing.T) {
	cases := []struct {
		name string
		defs HolidayDefs
	}{
		{"bad date", HolidayDefs{Dates: []string{"2024-02-30"}}},
		{"easter without years", HolidayDefs{Easter: &EasterDef{Offsets: []int{0}}}},
		{"easter before 1752", HolidayDefs{Easter: &EasterDef{Offsets: []int{0}, From: 1700, To: 1800}}},
		{"missing ical", HolidayDefs{ICal: []string{"/nonexistent/holidays.ics"}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := &File{Holidays: c.defs}
			_, err := f.HolidaySet()
			assert.Error(t, err)
		})
	}
}
