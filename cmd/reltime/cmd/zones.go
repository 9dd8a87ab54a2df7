package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/ngrash/go-reltime/calendar"
	"github.com/ngrash/go-reltime/internal/tzexpand"
	"github.com/ngrash/go-reltime/internal/unixtime"
	"github.com/ngrash/go-reltime/zone"
)

func newZonesCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zones",
		Short: "List and inspect time zones",
	}
	cmd.AddCommand(newZonesListCmd(o), newZonesShowCmd(o), newZonesDiffCmd(o))
	return cmd
}

func newZonesListCmd(o *options) *cobra.Command {
	var aliases bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the known zones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.load(); err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tOFFSET\tRULES")
			for _, name := range o.reg.Names() {
				tz, err := o.reg.Lookup(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\n", tz.Name, offsetString(tz.Offset), len(tz.Rules))
			}
			if aliases {
				all := o.reg.Aliases()
				for _, name := range slices.Sorted(maps.Keys(all)) {
					fmt.Fprintf(tw, "%s\t-> %s\t\n", name, all[name])
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVarP(&aliases, "aliases", "a", false, "also list aliases")
	return cmd
}

func newZonesShowCmd(o *options) *cobra.Command {
	var from, to int
	cmd := &cobra.Command{
		Use:   "show [NAME]",
		Short: "Show the rules and transitions of a zone",
		Long: `Show the daylight saving rules of a zone and the transitions they
produce in the years --from to --to. Without NAME the selected zone is
shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.load(); err != nil {
				return err
			}
			tz := o.tz
			if len(args) == 1 {
				var err error
				if tz, err = o.reg.Lookup(args[0]); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("from") {
				from = calendar.DateFromDay(unixtime.Now().Day).Year
			}
			if !cmd.Flags().Changed("to") {
				to = from
			}
			tr, err := tzexpand.Transitions(tz, from, to)
			if err != nil {
				return err
			}
			return writeZone(cmd.OutOrStdout(), tz, tr)
		},
	}
	cmd.Flags().IntVar(&from, "from", 0, "first year of transitions (default current year)")
	cmd.Flags().IntVar(&to, "to", 0, "last year of transitions (default --from)")
	return cmd
}

func writeZone(w io.Writer, tz zone.TimeZone, tr []tzexpand.Transition) error {
	fmt.Fprintf(w, "Zone %s\n", tz.Name)
	fmt.Fprintf(w, "  offset = %s\n", offsetString(tz.Offset))
	if len(tz.Rules) > 0 {
		tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
		fmt.Fprintln(tw, "  FROM\tTO\tSAVE\tSTART\tEND")
		for _, r := range tz.Rules {
			if !r.HasDaylight {
				fmt.Fprintf(tw, "  %s\t%s\t-\t\t\n", yearString(r.From), yearString(r.To))
				continue
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%v\t%v\n", yearString(r.From), yearString(r.To), zone.FormatSeconds(int64(r.Extra)), r.Start, r.End)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	fmt.Fprintf(w, "Transitions (%d)\n", len(tr))
	for _, t := range tr {
		fmt.Fprintf(w, "  %v\n", t)
	}
	return nil
}

func yearString(y int) string {
	if y == zone.AnyYear {
		return "-"
	}
	return fmt.Sprint(y)
}

func newZonesDiffCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "diff A B",
		Short: "Compare the rules of two zones",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.load(); err != nil {
				return err
			}
			a, err := o.reg.Lookup(args[0])
			if err != nil {
				return err
			}
			b, err := o.reg.Lookup(args[1])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			// Names always differ; compare what the zones do.
			b.Name = a.Name
			if diff := cmp.Diff(a, b); diff != "" {
				fmt.Fprintln(w, "zones are different: -A +B")
				fmt.Fprintln(w, diff)
			} else {
				fmt.Fprintln(w, "zones are identical")
			}
			return nil
		},
	}
}
