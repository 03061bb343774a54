// Package extract implements the extract command for batch envelope extraction.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/bave/unp7m/internal/config"
	extraction "github.com/bave/unp7m/internal/extract"
	"github.com/bave/unp7m/internal/report"
)

// Flag variables for the extract command.
var (
	extractNested      bool
	extractStrict      bool
	extractOutputDir   string
	extractNoOverwrite bool
	extractQuiet       bool
)

// extractFs is the filesystem the command reads and writes.
var extractFs afero.Fs = afero.NewOsFs()

// ExtractCmd extracts the content of envelope files.
var ExtractCmd = &cobra.Command{
	Use:   "extract <path>...",
	Short: "Extract the content of signed envelopes",
	Long: "Extract the content of signed envelopes.\n\n" +
		"Each argument is an envelope file or a directory whose envelope files are " +
		"processed (subdirectories are not descended into). The recovered content is " +
		"written to an output directory next to each input, named after the embedded " +
		"filename when the envelope declares one and after the input file otherwise.\n\n" +
		"A file that cannot be decoded does not stop the batch. Use --strict to exit " +
		"non-zero when any file failed.",
	Example: `  # Extract a single envelope
  unp7m extract invoice.xml.p7m

  # Extract every envelope in a directory, failing the run on any error
  unp7m extract ~/Downloads/pec --strict

  # Unwrap envelopes signed more than once, keeping existing outputs
  unp7m extract contract.pdf.p7m.p7m --nested --no-overwrite`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: validateExtract,
	RunE:    runExtract,
}

func init() {
	ExtractCmd.Flags().BoolVar(&extractNested, "nested", false,
		"Unwrap envelopes whose content is itself an envelope")
	ExtractCmd.Flags().BoolVar(&extractStrict, "strict", false,
		"Exit with an error if any file failed")
	ExtractCmd.Flags().StringVar(&extractOutputDir, "output-dir", "",
		"Name of the output directory created next to each input")
	ExtractCmd.Flags().BoolVar(&extractNoOverwrite, "no-overwrite", false,
		"Fail files whose output already exists instead of replacing it")
	ExtractCmd.Flags().BoolVarP(&extractQuiet, "quiet", "q", false,
		"Print only failures and the summary")
}

func validateExtract(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if flags.Changed("nested") {
		config.Set("extract.nested", extractNested)
	}
	if flags.Changed("output-dir") {
		config.Set("extract.output_dir", extractOutputDir)
	}
	if flags.Changed("no-overwrite") {
		config.Set("extract.overwrite", !extractNoOverwrite)
	}

	if _, err := config.Get(); err != nil {
		return fmt.Errorf("invalid configuration; %w", err)
	}

	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := config.Get()
	if err != nil {
		return fmt.Errorf("invalid configuration; %w", err)
	}

	paths, err := extraction.Expand(extractFs, args)
	if err != nil {
		return fmt.Errorf("failed to expand paths; %w", err)
	}

	ex := extraction.New(
		extraction.WithFs(extractFs),
		extraction.WithLogger(slog.Default()),
		extraction.WithExtension(cfg.Extract.Extension),
		extraction.WithOutputDirName(cfg.Extract.OutputDir),
		extraction.WithOverwrite(cfg.Extract.Overwrite),
		extraction.WithNested(cfg.Extract.Nested),
	)

	printer := report.New(cmd.OutOrStdout(),
		report.WithFailures(cfg.Extract.ReportFailures),
		report.WithQuiet(extractQuiet),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary := ex.Run(ctx, paths, printer.Handle)

	if extractStrict && summary.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", summary.Failed, summary.Total)
	}

	return nil
}
