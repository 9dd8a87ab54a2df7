package zone

import (
	"maps"
	"slices"
	"strings"

	"github.com/ngrash/go-reltime/timeerr"
)

// maxAliasDepth bounds alias chains so that cycles fail instead of looping.
const maxAliasDepth = 8

// Registry maps case-insensitive names to time zones.
//
// A Registry is not safe for concurrent mutation. Once built it may be
// shared for lookups.
type Registry struct {
	zones   map[string]TimeZone
	aliases map[string]string
}

// NewRegistry returns a registry holding zones.
func NewRegistry(zones ...TimeZone) *Registry {
	r := &Registry{
		zones:   make(map[string]TimeZone),
		aliases: make(map[string]string),
	}
	for _, tz := range zones {
		r.Add(tz)
	}
	return r
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Add registers tz under its name, replacing any zone or alias of that name.
func (r *Registry) Add(tz TimeZone) {
	k := key(tz.Name)
	delete(r.aliases, k)
	r.zones[k] = tz
}

// Alias makes name resolve to target. target need not be registered yet.
func (r *Registry) Alias(name, target string) {
	r.aliases[key(name)] = key(target)
}

// Lookup returns the zone registered as name, following aliases.
func (r *Registry) Lookup(name string) (TimeZone, error) {
	k := key(name)
	for range maxAliasDepth {
		if tz, ok := r.zones[k]; ok {
			return tz, nil
		}
		target, ok := r.aliases[k]
		if !ok {
			break
		}
		k = target
	}
	return TimeZone{}, timeerr.UnknownZone("zone.Lookup", name)
}

// Names returns the names of all registered zones, sorted, without aliases.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.zones))
}

// Aliases returns a copy of the alias table.
func (r *Registry) Aliases() map[string]string {
	return maps.Clone(r.aliases)
}

// Len returns the number of zones, not counting aliases.
func (r *Registry) Len() int {
	return len(r.zones)
}

// Merge copies all zones and aliases of other into r.
// Entries of other win over entries of r with the same name.
func (r *Registry) Merge(other *Registry) {
	for k, tz := range other.zones {
		delete(r.aliases, k)
		r.zones[k] = tz
	}
	for k, target := range other.aliases {
		delete(r.zones, k)
		r.aliases[k] = target
	}
}
