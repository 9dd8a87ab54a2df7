package cmd

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ngrash/go-reltime/tzc"
	"github.com/ngrash/go-reltime/tzdb/ianadist"
	"github.com/ngrash/go-reltime/zone"
	"github.com/ngrash/go-reltime/zonefile"
)

func newCompileCmd() *cobra.Command {
	var out, comment string
	cmd := &cobra.Command{
		Use:   "compile -o OUT TZDATA...",
		Short: "Compile tzdata source files into a zone file",
		Long: `Compile IANA tzdata source files such as "northamerica" and "europe"
into a zone file usable with --zones-file or the zones_file config key.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srcs := make([][]byte, 0, len(args))
			names := make([]string, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				srcs = append(srcs, data)
				names = append(names, filepath.Base(path))
			}
			reg, err := tzc.CompileBytes(srcs, tzc.Options{Logger: slog.Default()})
			if err != nil {
				return err
			}
			meta := zonefile.Meta{Source: strings.Join(names, ","), Comment: comment}
			if err := writeZoneFile(out, reg, meta); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d zones to %s\n", reg.Len(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "zone file to write")
	cmd.Flags().StringVar(&comment, "comment", "", "comment stored in the zone file")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newFetchCmd() *cobra.Command {
	var out, etag, baseURL string
	cmd := &cobra.Command{
		Use:   "fetch -o OUT",
		Short: "Download the latest tzdata release and compile it",
		Long: `Download the latest tzdata release from IANA and compile it into a
zone file. The ETag of the download is printed; pass it to --etag next time
to skip the download when nothing changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &ianadist.Client{BaseURL: baseURL, Logger: slog.Default()}
			release, newEtag, err := client.Latest(cmd.Context(), etag)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if release == nil {
				fmt.Fprintf(w, "not modified (etag %s)\n", newEtag)
				return nil
			}

			reg, err := tzc.CompileBytes(release.Sources(), tzc.Options{Logger: slog.Default()})
			if err != nil {
				return fmt.Errorf("tzdata%s: %w", release.Version, err)
			}
			meta := zonefile.Meta{Source: "tzdata" + release.Version}
			if err := writeZoneFile(out, reg, meta); err != nil {
				return err
			}
			fmt.Fprintf(w, "wrote %d zones of tzdata%s to %s (etag %s)\n", reg.Len(), release.Version, out, newEtag)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "zone file to write")
	cmd.Flags().StringVar(&etag, "etag", "", "ETag of the previous download")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "mirror of https://data.iana.org/time-zones/")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// writeZoneFile encodes reg into path. Nothing is written on error.
func writeZoneFile(path string, reg *zone.Registry, meta zonefile.Meta) error {
	var buf bytes.Buffer
	if err := zonefile.Encode(&buf, reg, meta); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func newInspectCmd() *cobra.Command {
	var diag bool
	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the header and zones of a zone file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			if diag {
				h, text, err := zonefile.Diagnose(bytes.NewReader(data))
				if err != nil {
					return err
				}
				fmt.Fprintln(w, "Version:", h.Version)
				fmt.Fprintln(w, text)
				return nil
			}

			h, err := zonefile.ReadHeader(bytes.NewReader(data))
			if err != nil {
				return err
			}
			reg, meta, err := zonefile.DecodeBytes(data)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "Header")
			fmt.Fprintln(w, "  version =", h.Version)
			fmt.Fprintln(w, "  length  =", h.Length)
			fmt.Fprintf(w, "  digest  = %x\n", h.Digest)
			fmt.Fprintln(w, "Meta")
			fmt.Fprintf(w, "  source  = %q\n", meta.Source)
			fmt.Fprintf(w, "  comment = %q\n", meta.Comment)
			fmt.Fprintf(w, "Zones (%d)\n", reg.Len())
			for _, name := range reg.Names() {
				tz, err := reg.Lookup(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "  %s %s rules=%d\n", tz.Name, offsetString(tz.Offset), len(tz.Rules))
			}
			fmt.Fprintf(w, "Aliases (%d)\n", len(reg.Aliases()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&diag, "diag", false, "print the payload in CBOR diagnostic notation")
	return cmd
}
