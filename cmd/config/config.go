// Package config provides the config parent command and subcommands.
package config

import (
	"github.com/spf13/cobra"

	"github.com/bave/unp7m/cmd/config/subcommands"
)

// ConfigCmd is the parent command for all config-related subcommands.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect unp7m configuration",
	Long: "Inspect unp7m configuration.\n\n" +
		"Configuration is read from a YAML file located at " +
		"~/.config/unp7m/config.yaml by default, overridden by UNP7M_* " +
		"environment variables.",
}

func init() {
	ConfigCmd.AddCommand(subcommands.ShowCmd)
}
