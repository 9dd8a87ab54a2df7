package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ngrash/go-reltime/calendar"
	"github.com/ngrash/go-reltime/reltime"
	"github.com/ngrash/go-reltime/sequence"
	"github.com/ngrash/go-reltime/zone"
)

func newApplyCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply TIME EXPR...",
		Short: "Apply a relative time expression to a time",
		Long: `Apply a relative time expression to a time. The remaining arguments
are joined into one expression and applied left to right. Put -- before
an expression that starts with a minus sign.

Examples:
  reltime apply 2024-03-08 +1biz
  reltime apply --zone us/eastern -- "2024-03-10 12:00" -1amth +2wk`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.load(); err != nil {
				return err
			}
			start, err := o.gmt(args[0])
			if err != nil {
				return err
			}
			got, err := reltime.ApplyString(start, strings.Join(args[1:], " "), o.tz, o.hol)
			if err != nil {
				return err
			}
			s, err := o.format(got)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func newSeqCmd(o *options) *cobra.Command {
	var (
		from, to, compat string
		length           int
	)
	cmd := &cobra.Command{
		Use:   "seq --from TIME (--to TIME | --length N) EXPR...",
		Short: "Generate a sequence by applying an expression repeatedly",
		Long: `Generate a sequence of times starting at --from. Each element is the
expression applied to its predecessor. The sequence stops after --length
elements or before passing --to. Put -- before an expression that starts
with a minus sign.

Examples:
  reltime seq --from 2024-01-31 --length 4 +1mth
  reltime seq --from 2024-01-01 --to 2024-02-01 +1biz
  reltime seq --from 2024-12-31 --to 2024-01-01 -- -1amth`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.load(); err != nil {
				return err
			}
			start, err := o.gmt(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			var bound sequence.Bound
			switch {
			case to != "":
				end, err := o.gmt(to)
				if err != nil {
					return fmt.Errorf("--to: %w", err)
				}
				bound = sequence.Until(end)
			case cmd.Flags().Changed("length"):
				bound = sequence.Length(length)
			default:
				return errors.New("one of --to and --length is required")
			}
			mode, err := o.compat(compat)
			if err != nil {
				return err
			}

			seq, err := sequence.GenerateString(start, bound, strings.Join(args, " "), o.tz, o.hol, mode)
			if err != nil {
				return err
			}
			return o.printAll(cmd, seq)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first time of the sequence")
	cmd.Flags().StringVar(&to, "to", "", "stop before passing this time")
	cmd.Flags().IntVarP(&length, "length", "n", 0, "number of elements")
	cmd.Flags().StringVar(&compat, "compat", "", "original or avoid-bad-start-day (default from config)")
	_ = cmd.MarkFlagRequired("from")
	cmd.MarkFlagsMutuallyExclusive("to", "length")
	return cmd
}

func (o *options) printAll(cmd *cobra.Command, ins []calendar.Instant) error {
	w := cmd.OutOrStdout()
	for _, in := range ins {
		s, err := o.format(in)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, s)
	}
	return nil
}

func newConvertCmd(o *options) *cobra.Command {
	var toGMT, daylight bool
	cmd := &cobra.Command{
		Use:   "convert TIME",
		Short: "Convert between GMT and the wall clock of a zone",
		Long: `Convert a GMT time to the wall clock of the selected zone, or with
--to-gmt a wall clock reading to GMT. Readings that occur twice when the
clocks go back are taken as standard time unless --daylight is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.load(); err != nil {
				return err
			}
			in, err := parseInstant(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if toGMT {
				gmt, err := zone.ToGMT(in, o.tz, daylight)
				if err != nil {
					return err
				}
				s, err := formatInstant(gmt, o.raw)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s GMT\n", s)
				return nil
			}

			offset, isDaylight, err := zone.Offset(in, o.tz, false, false)
			if err != nil {
				return err
			}
			s, err := formatInstant(zone.AddOffset(in, int64(offset)), o.raw)
			if err != nil {
				return err
			}
			kind := "standard"
			if isDaylight {
				kind = "daylight"
			}
			fmt.Fprintf(w, "%s %s (%s %s)\n", s, o.tz.Name, offsetString(offset), kind)
			return nil
		},
	}
	cmd.Flags().BoolVar(&toGMT, "to-gmt", false, "TIME is a wall clock reading; print GMT")
	cmd.Flags().BoolVar(&daylight, "daylight", false, "take repeated wall clock readings as daylight time")
	return cmd
}

func offsetString(secs int32) string {
	s := zone.FormatSeconds(int64(secs))
	if secs >= 0 {
		return "+" + s
	}
	return s
}

func newFloorCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "floor TIME",
		Short: "Print the start of the local day containing TIME",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.roundDay(cmd, args[0], zone.Floor)
		},
	}
}

func newCeilCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ceil TIME",
		Short: "Print the next local midnight at or after TIME",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.roundDay(cmd, args[0], zone.Ceil)
		},
	}
}

func (o *options) roundDay(cmd *cobra.Command, arg string, round func(calendar.Instant, zone.TimeZone) (calendar.Instant, error)) error {
	if err := o.load(); err != nil {
		return err
	}
	in, err := o.gmt(arg)
	if err != nil {
		return err
	}
	got, err := round(in, o.tz)
	if err != nil {
		return err
	}
	return o.printAll(cmd, []calendar.Instant{got})
}

func newEasterCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "easter YEAR...",
		Short: "Print the date of Easter Sunday",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, arg := range args {
				year, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("year %q: %w", arg, err)
				}
				day, err := calendar.Easter(year)
				if err != nil {
					return err
				}
				if o.raw {
					fmt.Fprintln(w, day)
					continue
				}
				fmt.Fprintln(w, calendar.DateFromDay(day))
			}
			return nil
		},
	}
}
