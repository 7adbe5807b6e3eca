// Package cli implements the hexarchive command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meigma/hexarchive/internal/config"
)

// version is set at build time with -ldflags "-X".
var version = "dev"

// flags holds raw flag values shared by every command.
type flags struct {
	input        string
	output       string
	logFile      string
	configPath   string
	maxEntrySize config.ByteSize
	verbose      int
	noClobber    bool
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	f := &flags{maxEntrySize: config.DefaultMaxEntrySize}
	root := &cobra.Command{
		Use:   "hexarchive",
		Short: "Extract files from a hex-dumped archive",
		Long: `hexarchive decodes an archive stored as a hex dump (xxd style or plain
hex lines) and writes the files it contains to an output directory,
together with a metadata.txt manifest.

Entries that cannot be decoded are logged and skipped.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExtract(cmd, f)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.output, "output", "o", config.DefaultOutput, "output directory")
	pf.StringVar(&f.logFile, "log-file", config.DefaultLogFile, "file receiving warnings and errors (empty disables)")
	pf.IntVarP(&f.verbose, "verbose", "v", 0, "console verbosity: 0 quiet, 1 info, 2 debug")
	pf.Var(&f.maxEntrySize, "max-entry-size", "largest decoded entry, e.g. 64MiB (0 disables the limit)")
	pf.BoolVar(&f.noClobber, "no-clobber", false, "skip entries whose output file already exists")
	pf.StringVar(&f.configPath, "config", "", "TOML configuration file")

	addInputFlag(root, f)
	root.AddCommand(newExtractCmd(f), newListCmd(f), newVersionCmd())
	return root
}

func addInputFlag(cmd *cobra.Command, f *flags) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "hex dump to read (required)")
	_ = cmd.MarkFlagRequired("input")
}

// resolve merges defaults, the config file and explicitly set flags, in
// increasing order of precedence.
func resolve(cmd *cobra.Command, f *flags) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	set := cmd.Flags().Changed
	if set("output") {
		cfg.Output = f.output
	}
	if set("log-file") {
		cfg.LogFile = f.logFile
	}
	if set("verbose") {
		cfg.Verbose = f.verbose
	}
	if set("no-clobber") {
		cfg.NoClobber = f.noClobber
	}
	if set("max-entry-size") {
		cfg.MaxEntrySize = f.maxEntrySize
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func openInput(path string) (*os.File, error) {
	in, err := os.Open(path) //nolint:gosec // path is chosen by the user
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return in, nil
}
