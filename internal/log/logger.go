// Package log is the structured slog logger shared by the server, the
// services and the command line. Every record carries the component that
// emitted it.
package log

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

type Logger struct {
	*slog.Logger
	component string
}

// Config selects the level and sink of a Logger. A nil Handler writes text
// to stdout at Level.
type Config struct {
	Level     slog.Level
	Component string
	Handler   slog.Handler
}

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: config.Level})
	}
	return &Logger{Logger: slog.New(handler), component: config.Component}
}

// SetDefault routes the slog package functions through logger.
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}

// With returns a logger that adds args to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), component: l.component}
}

// WithComponent returns a logger tagged with component instead of l's.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger, component: component}
}

func (l *Logger) Component() string {
	return l.component
}

func (l *Logger) Info(msg string, args ...any) {
	l.emit(context.Background(), slog.LevelInfo, msg, args)
}

func (l *Logger) Error(msg string, args ...any) {
	l.emit(context.Background(), slog.LevelError, msg, args)
}

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, slog.LevelDebug, msg, args)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, slog.LevelInfo, msg, args)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, slog.LevelWarn, msg, args)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, slog.LevelError, msg, args)
}

func (l *Logger) emit(ctx context.Context, level slog.Level, msg string, args []any) {
	l.Logger.Log(ctx, level, msg, append([]any{FieldComponent, l.component}, args...)...)
}
