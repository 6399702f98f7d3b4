// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New returns a timestamped zerolog logger writing to w (stdout when nil).
// Unknown levels fall back to info.
func New(level, format string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if strings.EqualFold(format, FormatConsole) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "homeride").Logger()
}

// ValidateFormat reports whether format is supported.
func ValidateFormat(format string) error {
	switch strings.ToLower(format) {
	case FormatJSON, FormatConsole:
		return nil
	default:
		return fmt.Errorf("log format must be %q or %q (got %q)", FormatJSON, FormatConsole, format)
	}
}
