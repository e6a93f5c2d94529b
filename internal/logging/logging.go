// Package logging builds the *slog.Logger used across panectl.
//
// Text output goes through charmbracelet/log, which renders leveled,
// colorized lines on a terminal; JSON output uses slog's JSON handler so
// logs can be piped into other tools.
package logging

import (
	"io"
	"log/slog"
	"strings"

	charmlog "github.com/charmbracelet/log"

	"github.com/timvw/panectl/internal/hooks"
)

// Log levels accepted by ParseLevel.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New returns a logger writing to w at level in the given format.
// Unknown levels fall back to INFO, unknown formats to text.
func New(w io.Writer, level, format string) *slog.Logger {
	lvl := slogLevel(ParseLevel(level))
	if format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
	}
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmLevel(lvl),
		Prefix:          "panectl",
		ReportTimestamp: lvl <= slog.LevelDebug,
	})
	return slog.New(handler)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel normalizes a user-provided level string. Unknown values
// become INFO.
func ParseLevel(level string) string {
	switch strings.ToUpper(level) {
	case LevelDebug:
		return LevelDebug
	case LevelInfo:
		return LevelInfo
	case LevelWarn, "WARNING":
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

// ValidLevels returns the list of valid log level strings.
func ValidLevels() []string {
	return []string{LevelDebug, LevelInfo, LevelWarn, LevelError}
}

func slogLevel(level string) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func charmLevel(l slog.Level) charmlog.Level {
	switch {
	case l <= slog.LevelDebug:
		return charmlog.DebugLevel
	case l <= slog.LevelInfo:
		return charmlog.InfoLevel
	case l <= slog.LevelWarn:
		return charmlog.WarnLevel
	default:
		return charmlog.ErrorLevel
	}
}

// RegisterCallLogging registers a before-call and an after-call hook that
// log every façade call at DEBUG.
func RegisterCallLogging(d *hooks.Dispatcher, log *slog.Logger) error {
	if err := d.Register(hooks.BeforeCall, func(p hooks.Payload) error {
		log.Debug("calling", p.LogAttrs()...)
		return nil
	}); err != nil {
		return err
	}
	return d.Register(hooks.AfterCall, func(p hooks.Payload) error {
		attrs := p.LogAttrs()
		if p.Result != nil {
			attrs = append(attrs, "result", p.Result)
		}
		log.Debug("called", attrs...)
		return nil
	})
}
