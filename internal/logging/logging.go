// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/conn-castle/datahandle/internal/messages"
	"github.com/conn-castle/datahandle/internal/terminal"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "info"

// ParseLevel accepts debug, info, warn, error (case-insensitive). Empty
// means DefaultLevel.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		s = DefaultLevel
	}
	switch s {
	case "debug", "info", "warn", "error":
		return zerolog.ParseLevel(s)
	default:
		return zerolog.NoLevel, fmt.Errorf(messages.LogInvalidLevelFmt, s)
	}
}

// Setup points the global logger at w with a human-readable console format
// and the given level.
func Setup(w io.Writer, level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	console := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.TimeOnly,
		NoColor:    !terminal.ColorEnabled(w),
	}
	log.Logger = zerolog.New(console).With().Timestamp().Logger().Level(lvl)
	return nil
}
