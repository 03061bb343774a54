package logging

import (
	"log/slog"
	"strings"
)

// DefaultLevel is the log level used when not configured.
const DefaultLevel = slog.LevelInfo

// ParseLevel converts one of debug, info, warn or error (any case) to a
// slog.Level. Anything else yields (DefaultLevel, false).
func ParseLevel(s string) (slog.Level, bool) {
	if strings.ContainsAny(s, "+-") {
		return DefaultLevel, false
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel, false
	}
	return level, true
}
