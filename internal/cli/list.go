package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/meigma/hexarchive"
)

func newListCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the entries of an archive without extracting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, f)
		},
	}
	addInputFlag(cmd, f)
	return cmd
}

func runList(cmd *cobra.Command, f *flags) error {
	cfg, err := resolve(cmd, f)
	if err != nil {
		return err
	}

	in, err := openInput(f.input)
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // read-only file

	buf, err := hexarchive.ReadArchive(in)
	if err != nil {
		return err
	}

	x := hexarchive.New(nil, hexarchive.WithMaxEntrySize(uint64(cfg.MaxEntrySize)))
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMETHOD\tSTORED\tSIZE\tDIGEST")

	count := 0
	walkErr := x.Inspect(buf, func(e hexarchive.EntryInfo) error {
		count++
		status := e.Digest.String()
		if e.Err != nil {
			status = "error: " + e.Err.Error()
		}
		_, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.Name,
			e.Method,
			humanize.IBytes(e.ProcessedSize),
			humanize.IBytes(e.OriginalSize),
			status,
		)
		return err
	})
	if err := tw.Flush(); err != nil {
		return err
	}
	if walkErr != nil {
		return fmt.Errorf("after %d entries: %w", count, walkErr)
	}
	return nil
}
