package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ngrash/go-reltime/calendar"
	"github.com/ngrash/go-reltime/internal/unixtime"
	"github.com/ngrash/go-reltime/zone"
)

// parseInstant reads a time argument without any zone conversion: "now",
// "day:ms" or "YYYY-MM-DD[ HH:MM[:SS[.mmm]]]".
func parseInstant(s string) (calendar.Instant, error) {
	s = strings.TrimSpace(s)
	if s == "now" {
		return unixtime.Now(), nil
	}
	if day, ms, ok := strings.Cut(s, ":"); ok {
		d, derr := strconv.ParseInt(day, 10, 64)
		m, merr := strconv.ParseInt(ms, 10, 64)
		if derr == nil && merr == nil {
			if m < 0 || m >= calendar.MsPerLeapDay {
				return calendar.Instant{}, fmt.Errorf("time %q: millisecond of day out of range", s)
			}
			return calendar.Instant{Day: d, Ms: m}, nil
		}
	}
	f, err := calendar.ParseFields(s)
	if err != nil {
		return calendar.Instant{}, err
	}
	return f.Instant()
}

// gmt reads a time argument as GMT, or as a wall clock reading of the
// selected zone with --local. "now" is always the current GMT instant.
func (o *options) gmt(s string) (calendar.Instant, error) {
	in, err := parseInstant(s)
	if err != nil || !o.local || strings.TrimSpace(s) == "now" {
		return in, err
	}
	return zone.ToGMT(in, o.tz, false)
}

// format renders a GMT instant, in the selected zone's wall clock with
// --local.
func (o *options) format(gmt calendar.Instant) (string, error) {
	in := gmt
	if o.local {
		var err error
		if in, _, err = zone.ToLocal(gmt, o.tz); err != nil {
			return "", err
		}
	}
	return formatInstant(in, o.raw)
}

func formatInstant(in calendar.Instant, raw bool) (string, error) {
	if raw {
		return in.String(), nil
	}
	f, err := calendar.FieldsFromInstant(in)
	if err != nil {
		return "", err
	}
	return f.String(), nil
}
