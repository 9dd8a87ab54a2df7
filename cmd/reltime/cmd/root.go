// Package cmd implements the reltime command line.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ngrash/go-reltime/config"
	"github.com/ngrash/go-reltime/reltime"
	"github.com/ngrash/go-reltime/sequence"
	"github.com/ngrash/go-reltime/timeerr"
	"github.com/ngrash/go-reltime/zone"
	"github.com/ngrash/go-reltime/zonefile"
	"github.com/ngrash/go-reltime/zoneinfo"
)

const defaultZone = "utc"

// options holds the persistent flags and the environment built from them.
type options struct {
	cfgFile   string
	zonesFile string
	zoneName  string
	local     bool
	raw       bool
	verbose   bool
	logFormat string

	loaded bool
	cfg    *config.File
	reg    *zone.Registry
	tz     zone.TimeZone
	hol    reltime.HolidaySet
}

// Execute runs the command line with os.Args and prints errors to stderr.
func Execute() error {
	root := newRootCmd()
	err := root.Execute()
	if err != nil {
		printError(root.ErrOrStderr(), err)
	}
	return err
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "reltime",
		Short: "Calendar arithmetic with relative time expressions",
		Long: `reltime applies relative time expressions such as "+3biz" or "-1amth"
to instants, generates sequences of instants and inspects time zones.

Times are written as "YYYY-MM-DD[ HH:MM[:SS[.mmm]]]" (GMT unless --local),
as "day:ms" with day 0 being 1960-01-01, or as "now".`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setupLogging(cmd.ErrOrStderr())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.cfgFile, "config", "", "config file (.yaml, .toml or .json)")
	pf.StringVar(&o.zonesFile, "zones-file", "", "compiled zone file to add to the built-in zones")
	pf.StringVarP(&o.zoneName, "zone", "z", "", "time zone (default from config, else utc)")
	pf.BoolVarP(&o.local, "local", "l", false, "read and print times in the zone's wall clock")
	pf.BoolVar(&o.raw, "raw", false, "print times as day:ms")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "log debug messages")
	pf.StringVar(&o.logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(
		newApplyCmd(o),
		newSeqCmd(o),
		newConvertCmd(o),
		newFloorCmd(o),
		newCeilCmd(o),
		newEasterCmd(o),
		newZonesCmd(o),
		newCompileCmd(),
		newFetchCmd(),
		newInspectCmd(),
	)
	return root
}

func (o *options) setupLogging(w io.Writer) error {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch o.logFormat {
	case "text":
		h = slog.NewTextHandler(w, hopts)
	case "json":
		h = slog.NewJSONHandler(w, hopts)
	default:
		return fmt.Errorf("unknown log format %q: want text or json", o.logFormat)
	}
	slog.SetDefault(slog.New(h))
	return nil
}

// load reads the config, zones and holidays once.
func (o *options) load() error {
	if o.loaded {
		return nil
	}

	cfg := &config.File{}
	if o.cfgFile != "" {
		var err error
		if cfg, err = config.Load(o.cfgFile); err != nil {
			return err
		}
	}

	reg, err := cfg.Registry(zoneinfo.Builtin())
	if err != nil {
		return fmt.Errorf("config zones: %w", err)
	}
	if o.zonesFile != "" {
		compiled, err := readZoneFile(o.zonesFile)
		if err != nil {
			return err
		}
		reg.Merge(compiled)
	}

	name := o.zoneName
	if name == "" {
		name = cfg.DefaultZone
	}
	if name == "" {
		name = defaultZone
	}
	tz, err := reg.Lookup(name)
	if err != nil {
		return err
	}

	hol, err := cfg.HolidaySet()
	if err != nil {
		return fmt.Errorf("config holidays: %w", err)
	}

	slog.Debug("environment loaded", "zone", tz.Name, "zones", reg.Len(), "holidays", hol.Len())
	o.cfg, o.reg, o.tz, o.hol = cfg, reg, tz, hol
	o.loaded = true
	return nil
}

// compat returns mode if it is set, else the configured mode.
func (o *options) compat(mode string) (sequence.CompatibilityMode, error) {
	if mode == "" {
		return o.cfg.Compatibility, nil
	}
	return sequence.ParseCompatibilityMode(mode)
}

func readZoneFile(path string) (*zone.Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	reg, _, err := zonefile.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

func printError(w io.Writer, err error) {
	var te *timeerr.Error
	if errors.As(err, &te) && te.Span != nil {
		fmt.Fprintln(w, te.DisplayRich())
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
