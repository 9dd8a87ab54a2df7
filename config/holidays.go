package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/emersion/go-ical"

	"github.com/ngrash/go-reltime/calendar"
	"github.com/ngrash/go-reltime/reltime"
)

// HolidaySet collects the holidays of every configured source into one set.
func (f *File) HolidaySet() (reltime.HolidaySet, error) {
	var errs []error

	dates := make([]calendar.Date, 0, len(f.Holidays.Dates))
	for _, s := range f.Holidays.Dates {
		d, err := calendar.ParseDate(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("holiday %q: %w", s, err))
			continue
		}
		dates = append(dates, d)
	}
	set, err := reltime.HolidaysFromDates(dates)
	if err != nil {
		errs = append(errs, err)
	}

	if e := f.Holidays.Easter; e != nil {
		days, err := easterDays(*e)
		if err != nil {
			errs = append(errs, err)
		}
		set = set.Union(reltime.NewHolidaySet(days...))
	}

	for _, p := range f.Holidays.ICal {
		days, err := icalDays(f.path(p))
		if err != nil {
			errs = append(errs, fmt.Errorf("ical %s: %w", p, err))
			continue
		}
		set = set.Union(reltime.NewHolidaySet(days...))
	}

	if err := errors.Join(errs...); err != nil {
		return reltime.HolidaySet{}, err
	}
	slog.Debug("loaded holidays", "count", set.Len())
	return set, nil
}

func easterDays(e EasterDef) ([]int64, error) {
	if e.From == 0 || e.To == 0 || e.From > e.To {
		return nil, fmt.Errorf("easter: invalid years %d to %d", e.From, e.To)
	}
	if len(e.Offsets) == 0 {
		return nil, errors.New("easter: no offsets")
	}
	days := make([]int64, 0, (e.To-e.From+1)*len(e.Offsets))
	for year := e.From; year <= e.To; year++ {
		sunday, err := calendar.Easter(year)
		if err != nil {
			return nil, fmt.Errorf("easter: %w", err)
		}
		for _, off := range e.Offsets {
			days = append(days, sunday+int64(off))
		}
	}
	return days, nil
}

// icalDays returns the start day of every event in the iCalendar file at
// path. Start times are taken as they are written, without zone conversion.
func icalDays(path string) ([]int64, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var days []int64
	dec := ical.NewDecoder(r)
	for {
		cal, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		for _, event := range cal.Events() {
			start, err := event.DateTimeStart(nil)
			if err != nil {
				return nil, err
			}
			day, err := calendar.DayFromDate(int(start.Month()), start.Day(), start.Year())
			if err != nil {
				return nil, err
			}
			days = append(days, day)
		}
	}
	return days, nil
}
