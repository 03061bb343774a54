package config

import "time"

// Config is the root configuration structure for the application.
type Config struct {
	LogLevel string        `yaml:"log_level" mapstructure:"log_level"`
	LogFile  string        `yaml:"log_file" mapstructure:"log_file"`
	Extract  ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Watch    WatchConfig   `yaml:"watch" mapstructure:"watch"`
}

// ExtractConfig holds batch extraction settings.
type ExtractConfig struct {
	Extension      string `yaml:"extension" mapstructure:"extension"`
	OutputDir      string `yaml:"output_dir" mapstructure:"output_dir"`
	Overwrite      bool   `yaml:"overwrite" mapstructure:"overwrite"`
	Nested         bool   `yaml:"nested" mapstructure:"nested"`
	ReportFailures bool   `yaml:"report_failures" mapstructure:"report_failures"`
}

// WatchConfig holds drop folder settings.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}
