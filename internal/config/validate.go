package config

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a config validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation failures.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var b strings.Builder
	b.WriteString("config validation failed:\n")
	for _, err := range e {
		b.WriteString("  - ")
		b.WriteString(err.Error())
		b.WriteString("\n")
	}
	return b.String()
}

// IsValidationError reports whether err is a validation failure.
func IsValidationError(err error) bool {
	var errs ValidationErrors
	return errors.As(err, &errs)
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for errors.
// Returns ValidationErrors if validation fails.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		errs = append(errs, ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("must be one of debug, info, warn, error, got %q", cfg.LogLevel),
		})
	}

	ext := strings.TrimPrefix(cfg.Extract.Extension, ".")
	if ext == "" {
		errs = append(errs, ValidationError{
			Field:   "extract.extension",
			Message: "must not be empty",
		})
	} else if strings.ContainsAny(ext, `./\`) {
		errs = append(errs, ValidationError{
			Field:   "extract.extension",
			Message: fmt.Sprintf("must be a single extension, got %q", cfg.Extract.Extension),
		})
	}

	dir := cfg.Extract.OutputDir
	switch {
	case strings.TrimSpace(dir) == "":
		errs = append(errs, ValidationError{
			Field:   "extract.output_dir",
			Message: "must not be empty",
		})
	case strings.ContainsAny(dir, `/\`) || dir == "." || dir == "..":
		errs = append(errs, ValidationError{
			Field:   "extract.output_dir",
			Message: fmt.Sprintf("must be a plain directory name, got %q", dir),
		})
	}

	if cfg.Watch.Debounce <= 0 {
		errs = append(errs, ValidationError{
			Field:   "watch.debounce",
			Message: fmt.Sprintf("must be positive, got %s", cfg.Watch.Debounce),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
