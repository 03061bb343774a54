package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	LogLevel = "info"
	LogFile  = "~/.config/unp7m/unp7m.log"

	ExtractExtension      = ".p7m"
	ExtractOutputDir      = "unsigned output"
	ExtractOverwrite      = true
	ExtractNested         = false
	ExtractReportFailures = true

	WatchDebounce = 500 * time.Millisecond
)

// setDefaults registers all default configuration values with viper.
// Called during Init() before reading config files.
func setDefaults() {
	viper.SetDefault("log_level", LogLevel)
	viper.SetDefault("log_file", LogFile)

	// Extract defaults
	viper.SetDefault("extract.extension", ExtractExtension)
	viper.SetDefault("extract.output_dir", ExtractOutputDir)
	viper.SetDefault("extract.overwrite", ExtractOverwrite)
	viper.SetDefault("extract.nested", ExtractNested)
	viper.SetDefault("extract.report_failures", ExtractReportFailures)

	// Watch defaults
	viper.SetDefault("watch.debounce", WatchDebounce)
}

// NewDefaultConfig returns a Config populated with the default values.
func NewDefaultConfig() Config {
	return Config{
		LogLevel: LogLevel,
		LogFile:  LogFile,
		Extract: ExtractConfig{
			Extension:      ExtractExtension,
			OutputDir:      ExtractOutputDir,
			Overwrite:      ExtractOverwrite,
			Nested:         ExtractNested,
			ReportFailures: ExtractReportFailures,
		},
		Watch: WatchConfig{
			Debounce: WatchDebounce,
		},
	}
}
