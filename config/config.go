// Package config loads reltime configuration: the default zone, user defined
// zones and rule sets, holidays and the sequence compatibility mode.
//
// A configuration file is YAML, TOML or JSON with comments (JSONC); the
// format follows from the file extension.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/ngrash/go-reltime/sequence"
)

// Format is a configuration file syntax.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatJSON:
		return "jsonc"
	default:
		return "unknown"
	}
}

// FormatFromPath picks the format by file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json", ".jsonc":
		return FormatJSON, nil
	default:
		return 0, fmt.Errorf("unsupported config file extension %q", ext)
	}
}

// File is the content of a configuration file.
type File struct {
	// DefaultZone names the zone used when none is given.
	DefaultZone string `yaml:"default_zone" toml:"default_zone" json:"default_zone"`
	// Compatibility selects how sequences treat an unaligned start.
	Compatibility sequence.CompatibilityMode `yaml:"compatibility" toml:"compatibility" json:"compatibility"`
	// ZonesFile is a compiled zone file whose zones are added first.
	ZonesFile string `yaml:"zones_file" toml:"zones_file" json:"zones_file"`

	RuleSets map[string][]RuleDef `yaml:"rulesets" toml:"rulesets" json:"rulesets"`
	Zones    map[string]ZoneDef   `yaml:"zones" toml:"zones" json:"zones"`
	// Aliases maps alternative names to zone names.
	Aliases map[string]string `yaml:"aliases" toml:"aliases" json:"aliases"`

	Holidays HolidayDefs `yaml:"holidays" toml:"holidays" json:"holidays"`

	// dir resolves relative paths; it is the directory of the loaded file.
	dir string
}

// RuleDef is one daylight saving rule of a rule set.
//
// Start and End read like the IN, ON and AT columns of a tzdata rule line,
// for example "Mar Sun>=8 2:00", with the time in local standard time. A
// rule without Save has no daylight saving time in its years.
type RuleDef struct {
	// From and To bound the years of the rule; zero leaves a side open.
	From  int    `yaml:"from" toml:"from" json:"from"`
	To    int    `yaml:"to" toml:"to" json:"to"`
	Save  string `yaml:"save" toml:"save" json:"save"`
	Start string `yaml:"start" toml:"start" json:"start"`
	End   string `yaml:"end" toml:"end" json:"end"`
}

// ZoneDef is a user defined zone.
type ZoneDef struct {
	// Offset is the standard offset east of GMT, such as "-5:00".
	Offset string `yaml:"offset" toml:"offset" json:"offset"`
	// Rules names a rule set; empty means standard time all year.
	Rules string `yaml:"rules" toml:"rules" json:"rules"`
}

// HolidayDefs lists the sources of holidays.
type HolidayDefs struct {
	// Dates are YYYY-MM-DD dates.
	Dates  []string   `yaml:"dates" toml:"dates" json:"dates"`
	Easter *EasterDef `yaml:"easter" toml:"easter" json:"easter"`
	// ICal lists iCalendar files; the start date of every event is a holiday.
	ICal []string `yaml:"ical" toml:"ical" json:"ical"`
}

// EasterDef adds holidays at fixed offsets from Easter Sunday, such as -2
// for Good Friday and 1 for Easter Monday, in the years From to To.
type EasterDef struct {
	Offsets []int `yaml:"offsets" toml:"offsets" json:"offsets"`
	From    int   `yaml:"from" toml:"from" json:"from"`
	To      int   `yaml:"to" toml:"to" json:"to"`
}

// Load reads the configuration file at path.
func Load(path string) (*File, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	slog.Debug("loading config", "path", path, "format", format)

	f, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.dir = filepath.Dir(path)
	return f, nil
}

// Parse decodes a configuration in the given format. Relative paths in it
// are resolved against the working directory.
func Parse(data []byte, format Format) (*File, error) {
	var f File
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing yaml: %w", err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &f)
		if err != nil {
			return nil, fmt.Errorf("parsing toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("parsing toml: unknown keys %v", undecoded)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parsing json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown format %v", format)
	}
	return &f, nil
}

// path resolves p against the directory of the loaded file.
func (f *File) path(p string) string {
	if p == "" || filepath.IsAbs(p) || f.dir == "" {
		return p
	}
	return filepath.Join(f.dir, p)
}
