// Package watch implements the watch command for drop folder extraction.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bave/unp7m/internal/config"
	"github.com/bave/unp7m/internal/extract"
	"github.com/bave/unp7m/internal/report"
	"github.com/bave/unp7m/internal/watch"
)

// Flag variables for the watch command.
var (
	watchScan  bool
	watchQuiet bool
)

// WatchCmd extracts envelopes as they are dropped into a directory.
var WatchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Extract envelopes dropped into a directory",
	Long: "Extract envelopes dropped into a directory.\n\n" +
		"Watches a directory and extracts every envelope file created or rewritten " +
		"in it once the file has been quiet for the configured debounce period. " +
		"Output goes to the same place the extract command would write it. " +
		"Runs until interrupted.",
	Example: `  # Watch a drop folder
  unp7m watch ~/pec/inbox

  # Extract what is already there, then keep watching
  unp7m watch ~/pec/inbox --scan`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateWatch,
	RunE:    runWatch,
}

func init() {
	WatchCmd.Flags().BoolVar(&watchScan, "scan", false,
		"Extract envelopes already present before watching")
	WatchCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false,
		"Print only failures and summaries")
}

func validateWatch(cmd *cobra.Command, args []string) error {
	info, err := os.Stat(args[0])
	if err != nil {
		return fmt.Errorf("failed to stat %q; %w", args[0], err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", args[0])
	}

	// All validation passed - errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Get()
	if err != nil {
		return fmt.Errorf("invalid configuration; %w", err)
	}

	logger := slog.Default().With("component", "watch")

	ex := extract.New(
		extract.WithLogger(logger),
		extract.WithExtension(cfg.Extract.Extension),
		extract.WithOutputDirName(cfg.Extract.OutputDir),
		extract.WithOverwrite(cfg.Extract.Overwrite),
		extract.WithNested(cfg.Extract.Nested),
	)

	printer := report.New(cmd.OutOrStdout(),
		report.WithFailures(cfg.Extract.ReportFailures),
		report.WithQuiet(watchQuiet),
	)

	w, err := watch.New(ex,
		watch.WithLogger(logger),
		watch.WithDebounce(cfg.Watch.Debounce),
		watch.WithHandler(printer.Handle),
	)
	if err != nil {
		return err
	}

	if err := w.Add(args[0]); err != nil {
		_ = w.Close()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watchScan {
		w.Scan(ctx)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", args[0])

	return w.Run(ctx)
}
