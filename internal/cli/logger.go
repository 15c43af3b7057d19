package cli

import (
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh/terminal"
)

// Logger writes human-readable status messages to stdout/stderr.
type Logger struct {
	out zerolog.Logger
	err zerolog.Logger
}

// NewLogger builds a console logger on stdout/stderr. Every entry carries a
// per-run id so interleaved output from concurrent runs can be told apart.
func NewLogger(debug bool) Logger {
	return NewLoggerTo(os.Stdout, os.Stderr, debug, isTerminal(os.Stdout))
}

// NewLoggerTo builds a Logger on the given writers.
func NewLoggerTo(stdout, stderr io.Writer, debug, color bool) Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	run := uuid.NewString()[:8]
	build := func(w io.Writer) zerolog.Logger {
		cw := zerolog.ConsoleWriter{Out: w, NoColor: !color, TimeFormat: time.TimeOnly}
		return zerolog.New(cw).Level(level).With().Timestamp().Str("run", run).Logger()
	}
	return Logger{out: build(stdout), err: build(stderr)}
}

// Debug prints a diagnostic message, shown only in debug mode.
func (l Logger) Debug(msg string) {
	l.out.Debug().Msg(msg)
}

// Info prints an informational message.
func (l Logger) Info(msg string) {
	l.out.Info().Msg(msg)
}

// Warn prints a warning message.
func (l Logger) Warn(msg string) {
	l.out.Warn().Msg(msg)
}

// Error prints an error message.
func (l Logger) Error(msg string) {
	l.err.Error().Msg(msg)
}

// Success prints a success message.
func (l Logger) Success(msg string) {
	l.out.Info().Str("result", "ok").Msg(msg)
}

// Failure prints a failed-operation message.
func (l Logger) Failure(msg string) {
	l.err.Error().Str("result", "fail").Msg(msg)
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return terminal.IsTerminal(int(f.Fd()))
}
