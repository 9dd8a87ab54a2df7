// Package zoneinfo provides the built-in time zone table: fixed standard
// zones ("st/...") and zones with the daylight saving rules of the United
// States, Canada, Europe, Britain, Australia, New Zealand, Hong Kong and
// Singapore.
package zoneinfo

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/ngrash/go-reltime/config"
	"github.com/ngrash/go-reltime/zone"
)

//go:embed builtin.yaml
var builtinYAML []byte

var (
	once    sync.Once
	builtin *zone.Registry
)

func load() {
	f, err := config.Parse(builtinYAML, config.FormatYAML)
	if err != nil {
		panic(fmt.Sprintf("zoneinfo: parsing built-in zones: %v", err))
	}
	reg, err := f.Registry(nil)
	if err != nil {
		panic(fmt.Sprintf("zoneinfo: building built-in zones: %v", err))
	}
	builtin = reg
}

// Builtin returns a new registry holding the built-in zones. Callers may
// add to it freely.
func Builtin() *zone.Registry {
	once.Do(load)
	reg := zone.NewRegistry()
	reg.Merge(builtin)
	return reg
}

// Lookup finds a built-in zone by name.
func Lookup(name string) (zone.TimeZone, error) {
	once.Do(load)
	return builtin.Lookup(name)
}
