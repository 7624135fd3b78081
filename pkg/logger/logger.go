// nolint: sloglint
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

// DefaultLevel is the default minimum reporting level for the logger
const DefaultLevel = slog.LevelInfo

var (
	// minimum reporting level for the logger
	lvl = new(slog.LevelVar)

	// top-level logger
	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	}))
)

func init() {
	lvl.Set(DefaultLevel)
	slog.SetDefault(logger)
}

type Config struct {
	// Output format of the logs, `TEXT` or `JSON`. Defaults to `TEXT`.
	Output string `mapstructure:"output"`

	// Debug enables debug level logging.
	Debug bool `mapstructure:"debug"`
}

// Init replaces the top-level logger with one built from the given config.
// Loggers previously returned by With/WithGroup keep their old handler.
func Init(cfg Config) error {
	if cfg.Debug {
		lvl.Set(slog.LevelDebug)
	} else {
		lvl.Set(DefaultLevel)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToUpper(cfg.Output) {
	case "", "TEXT":
		logger = slog.New(slog.NewTextHandler(os.Stdout, opts))
	case "JSON":
		logger = slog.New(slog.NewJSONHandler(os.Stdout, opts))
	default:
		return errors.Errorf("unsupported logger output %q", cfg.Output)
	}
	slog.SetDefault(logger)
	return nil
}

// SetLevel sets the minimum reporting level for the logger
func SetLevel(level slog.Level) (old slog.Level) {
	old = lvl.Level()
	lvl.Set(level)
	return old
}

// With returns a Logger that includes the given attributes
// in each output operation.
func With(args ...any) *slog.Logger {
	return logger.With(args...)
}

// WithGroup returns a Logger that starts a group, if name is non-empty.
func WithGroup(group string) *slog.Logger {
	return logger.WithGroup(group)
}

// Debug logs at [slog.LevelDebug].
func Debug(msg string, args ...any) {
	logger.Log(context.Background(), slog.LevelDebug, msg, args...)
}

// Info logs at [slog.LevelInfo].
func Info(msg string, args ...any) {
	logger.Log(context.Background(), slog.LevelInfo, msg, args...)
}

// Warn logs at [slog.LevelWarn].
func Warn(msg string, args ...any) {
	logger.Log(context.Background(), slog.LevelWarn, msg, args...)
}

// Error logs at [slog.LevelError].
func Error(msg string, args ...any) {
	logger.Log(context.Background(), slog.LevelError, msg, args...)
}

// Panic logs at [slog.LevelError] and panics.
func Panic(msg string, args ...any) {
	logger.Log(context.Background(), slog.LevelError, msg, args...)
	panic(msg)
}

// Fatal logs at [slog.LevelError] and exits with status code 1.
func Fatal(msg string, args ...any) {
	logger.Log(context.Background(), slog.LevelError, msg, args...)
	os.Exit(1)
}
