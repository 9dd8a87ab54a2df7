// Command zonediff compares two compiled zone files.
package main

import (
	"fmt"
	"os"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"

	"github.com/ngrash/go-reltime/zone"
	"github.com/ngrash/go-reltime/zonefile"
)

var metaFlag = pflag.BoolP("meta", "m", false, "also compare source and comment")

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// contents is what a zone file holds, in comparable form.
type contents struct {
	Meta    zonefile.Meta
	Zones   map[string]zone.TimeZone
	Aliases map[string]string
}

func run() error {
	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zonediff [--meta] <zone file A> <zone file B>")
		pflag.PrintDefaults()
	}
	pflag.Parse()
	args := pflag.Args()
	if len(args) != 2 {
		pflag.Usage()
		return fmt.Errorf("expected two zone files, got %d", len(args))
	}

	a, err := read(args[0])
	if err != nil {
		return err
	}
	b, err := read(args[1])
	if err != nil {
		return err
	}
	if !*metaFlag {
		a.Meta, b.Meta = zonefile.Meta{}, zonefile.Meta{}
	}

	if diff := cmp.Diff(a, b); diff != "" {
		fmt.Println("files are different: -A +B")
		fmt.Println(diff)
	} else {
		fmt.Println("files are identical")
	}
	return nil
}

func read(path string) (contents, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return contents{}, err
	}
	reg, meta, err := zonefile.DecodeBytes(data)
	if err != nil {
		return contents{}, fmt.Errorf("%s: %w", path, err)
	}
	c := contents{Meta: meta, Zones: make(map[string]zone.TimeZone, reg.Len()), Aliases: reg.Aliases()}
	for _, name := range reg.Names() {
		if c.Zones[name], err = reg.Lookup(name); err != nil {
			return contents{}, err
		}
	}
	return c, nil
}
