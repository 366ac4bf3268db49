// Package logger wraps zerolog with the two constructors the CLI needs:
// a console logger on stderr gated by verbosity, and a no-op logger for
// tests.
package logger

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Logger embeds zerolog.Logger so the full zerolog API stays available.
type Logger struct {
	zerolog.Logger
}

// New builds a console logger writing to w. Without verbose only warnings
// and errors are emitted.
func New(w io.Writer, verbose bool) *Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	l := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return &Logger{l}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}
