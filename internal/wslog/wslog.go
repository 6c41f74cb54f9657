// Package wslog is a thin wrapper over log/slog giving Client and the
// default transport typed attribute helpers without forcing every caller
// to nil-check a logger before using it.
package wslog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Logger wraps an *slog.Logger. A nil *Logger is valid and discards every
// call, so components never need a nil check before logging.
type Logger struct {
	s *slog.Logger
}

var defaultLogger = New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// Default returns the package-level Logger used when DialOptions.Logger
// is unset: text-formatted, written to stderr, at Info level.
func Default() *Logger {
	return defaultLogger
}

// New wraps an arbitrary slog.Handler, letting a caller route diagnostics
// into an existing JSON log pipeline.
func New(h slog.Handler) *Logger {
	return &Logger{s: slog.New(h)}
}

// Discard returns a Logger that drops everything; equivalent to a nil
// *Logger but usable where a non-nil value is required.
func Discard() *Logger {
	return New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func (l *Logger) Debug(msg string, attrs ...slog.Attr) { l.log(slog.LevelDebug, msg, attrs) }
func (l *Logger) Info(msg string, attrs ...slog.Attr)  { l.log(slog.LevelInfo, msg, attrs) }
func (l *Logger) Warn(msg string, attrs ...slog.Attr)  { l.log(slog.LevelWarn, msg, attrs) }
func (l *Logger) Error(msg string, attrs ...slog.Attr) { l.log(slog.LevelError, msg, attrs) }

func (l *Logger) log(level slog.Level, msg string, attrs []slog.Attr) {
	if l == nil || l.s == nil {
		return
	}
	l.s.LogAttrs(context.Background(), level, msg, attrs...)
}

// With returns a Logger that prepends args to every subsequent call.
func (l *Logger) With(args ...any) *Logger {
	if l == nil || l.s == nil {
		return l
	}
	return &Logger{s: l.s.With(args...)}
}

// Err is a typed attribute helper for errors.
func Err(e error) slog.Attr {
	return slog.Any("error", e)
}

// State is a typed attribute helper for anything with a String method,
// used for ConnectionState and TransportState.
func State(s fmt.Stringer) slog.Attr {
	return slog.String("state", s.String())
}

// Code is a typed attribute helper for anything with a String method,
// used for CloseCode.
func Code(c fmt.Stringer) slog.Attr {
	return slog.String("code", c.String())
}
