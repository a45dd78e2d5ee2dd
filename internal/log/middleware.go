package log

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey struct{}

// Middleware puts logger into every request context. Later layers narrow it
// with request and account attributes.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), logger)))
		})
	}
}

func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the request logger, or one over slog.Default tagged
// "unknown" outside a request.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return logger
	}
	return &Logger{Logger: slog.Default(), component: "unknown"}
}

// StructuredLogger writes the fixed-shape records of the request trace and
// the balance ledger.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")).
		WithClientIP(clientIP)
	sl.logger.DebugContext(ctx, "Request started", fields.ToSlice()...)
}

// LogHTTPEnd logs at Warn for 4xx and Error for 5xx.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	switch {
	case statusCode >= 500:
		level = slog.LevelError
	case statusCode >= 400:
		level = slog.LevelWarn
	}
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "").
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP)
	sl.logger.emit(ctx, level, "Request completed", fields.ToSlice())
}

// LogLedgerMutation records a committed balance change. deltaCents is the
// signed change to the cached balance.
func (sl *StructuredLogger) LogLedgerMutation(ctx context.Context, op string, accountID, amountCents, deltaCents int64) {
	fields := NewFields().
		WithLedger(accountID, amountCents, deltaCents).
		WithOperation(op)
	sl.logger.InfoContext(ctx, "Balance updated", fields.ToSlice()...)
}
