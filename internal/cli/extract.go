package cli

import (
	"github.com/spf13/cobra"

	"github.com/meigma/hexarchive"
	"github.com/meigma/hexarchive/internal/logging"
)

func newExtractCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract every entry of an archive (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExtract(cmd, f)
		},
	}
	addInputFlag(cmd, f)
	return cmd
}

func runExtract(cmd *cobra.Command, f *flags) error {
	cfg, err := resolve(cmd, f)
	if err != nil {
		return err
	}

	in, err := openInput(f.input)
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // read-only file

	logOpts := logging.Options{Console: cmd.ErrOrStderr(), Verbosity: cfg.Verbose}
	if cfg.LogFile != "" {
		lf, err := logging.OpenFile(cfg.LogFile)
		if err != nil {
			return err
		}
		defer lf.Close() //nolint:errcheck // best effort on exit
		logOpts.File = lf
	}
	logger := logging.New(logOpts)

	sink := hexarchive.NewFileSink(cfg.Output, hexarchive.WithOverwrite(!cfg.NoClobber))
	x := hexarchive.New(sink,
		hexarchive.WithLogger(logger),
		hexarchive.WithMaxEntrySize(uint64(cfg.MaxEntrySize)),
	)

	m, err := x.ExtractReader(in)
	if err != nil {
		return err
	}

	cmd.Printf("Extracted %d entries to %s", len(m.Rows), cfg.Output)
	if m.Skipped > 0 {
		cmd.Printf(" (%d skipped)", m.Skipped)
	}
	cmd.Println()
	if m.Aborted {
		cmd.Println("Archive is damaged; later entries were not read.")
	}
	return nil
}
