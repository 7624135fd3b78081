// nolint: sloglint
package logger

import (
	"context"
	"log/slog"
	"os"
)

type ctxKey struct{}

// FromContext returns the logger stored in ctx, or the top-level logger.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return logger
}

// NewContext returns a copy of ctx carrying the given logger.
func NewContext(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// WithContext returns a copy of ctx whose logger includes the given attributes
// in each output operation.
func WithContext(ctx context.Context, args ...any) context.Context {
	return NewContext(ctx, FromContext(ctx).With(args...))
}

// LogAttrs logs at the given level with the context logger, accepting only
// slog.Attr arguments.
func LogAttrs(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	FromContext(ctx).LogAttrs(ctx, level, msg, attrs...)
}

// DebugContext logs at [slog.LevelDebug] with the context logger.
func DebugContext(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Log(ctx, slog.LevelDebug, msg, args...)
}

// InfoContext logs at [slog.LevelInfo] with the context logger.
func InfoContext(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Log(ctx, slog.LevelInfo, msg, args...)
}

// WarnContext logs at [slog.LevelWarn] with the context logger.
func WarnContext(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Log(ctx, slog.LevelWarn, msg, args...)
}

// ErrorContext logs at [slog.LevelError] with the context logger.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Log(ctx, slog.LevelError, msg, args...)
}

// PanicContext logs at [slog.LevelError] with the context logger and panics.
func PanicContext(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Log(ctx, slog.LevelError, msg, args...)
	panic(msg)
}

// FatalContext logs at [slog.LevelError] with the context logger and exits
// with status code 1.
func FatalContext(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Log(ctx, slog.LevelError, msg, args...)
	os.Exit(1)
}
