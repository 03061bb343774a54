package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	configcmd "github.com/bave/unp7m/cmd/config"
	extractcmd "github.com/bave/unp7m/cmd/extract"
	versioncmd "github.com/bave/unp7m/cmd/version"
	watchcmd "github.com/bave/unp7m/cmd/watch"
	"github.com/bave/unp7m/internal/config"
	"github.com/bave/unp7m/internal/logging"
)

// logManager is the global logging manager, created in init() and upgraded after config loads
var logManager *logging.Manager

var unp7mCmd = &cobra.Command{
	Use:   "unp7m",
	Short: "Extract the content of signed .p7m envelopes",
	Long: "unp7m recovers the original document embedded in CMS/PKCS#7 signed envelopes (.p7m files).\n\n" +
		"Each envelope is decoded without verifying its signature and the embedded content is written " +
		"to an output directory next to the input file. Files can be given on the command line or " +
		"dropped into a watched directory.",
	PersistentPreRunE: runInitialize,
}

func init() {
	logManager = logging.NewManager()
	slog.SetDefault(logManager.Logger())

	unp7mCmd.AddCommand(extractcmd.ExtractCmd)
	unp7mCmd.AddCommand(watchcmd.WatchCmd)
	unp7mCmd.AddCommand(configcmd.ConfigCmd)
	unp7mCmd.AddCommand(versioncmd.VersionCmd)
}

func runInitialize(cmd *cobra.Command, args []string) error {
	logger := logManager.Logger()

	if err := config.Init(); err != nil {
		return err
	}

	logFile := config.GetPath("log_file")
	levelStr := config.GetString("log_level")
	level, ok := logging.ParseLevel(levelStr)
	if !ok {
		level = logging.DefaultLevel
		if levelStr != "" {
			logger.Warn("invalid log level configured, using default", "configured", levelStr, "default", "info")
		}
	}

	if err := logManager.Upgrade(logFile, level); err != nil {
		logger.Warn("failed to enable file logging, continuing with stderr only", "error", err)
	}

	return nil
}

// Execute runs the root command and reports any error on stdout.
func Execute() error {
	unp7mCmd.SilenceErrors = true
	unp7mCmd.SilenceUsage = true

	defer func() { _ = logManager.Close() }()

	err := unp7mCmd.Execute()
	if err != nil {
		cmd, _, _ := unp7mCmd.Find(os.Args[1:])
		if cmd == nil {
			cmd = unp7mCmd
		}

		fmt.Printf("Error: %v\n", err)
		if !cmd.SilenceUsage {
			fmt.Printf("\n")
			cmd.SetOut(os.Stdout)
			_ = cmd.Usage()
		}

		return err
	}

	return nil
}
