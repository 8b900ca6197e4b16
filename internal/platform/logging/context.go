package logging

import (
	"context"
	"log/slog"
	"os"
)

// RequestIDKey is the echo.Context key holding the request ID.
const RequestIDKey = "request_id"

// scope is what RequestLogger attaches to a request context.
type scope struct {
	logger        *slog.Logger
	correlationID string
}

type scopeKey struct{}

func scopeFrom(ctx context.Context) scope {
	if ctx == nil {
		return scope{}
	}
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

func withScope(ctx context.Context, s scope) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, scopeKey{}, s)
}

// LoggerFromContext returns the request-scoped logger, or the global logger
// outside a request.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if l := scopeFrom(ctx).logger; l != nil {
		return l
	}
	return Logger()
}

// CorrelationID returns the Cloud Trace resource of the request, falling
// back to its request ID. It is empty outside a request.
func CorrelationID(ctx context.Context) string {
	return scopeFrom(ctx).correlationID
}

func LogDebug(ctx context.Context, msg string, attrs ...slog.Attr) {
	LoggerFromContext(ctx).LogAttrs(ctx, slog.LevelDebug, msg, attrs...)
}

func LogInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	LoggerFromContext(ctx).LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func LogWarn(ctx context.Context, msg string, attrs ...slog.Attr) {
	LoggerFromContext(ctx).LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
}

// LogError logs at error level, adding err as the "error" attribute when set.
func LogError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	LoggerFromContext(ctx).LogAttrs(ctx, slog.LevelError, msg, withError(attrs, err)...)
}

// LogFatal logs at EMERGENCY severity and exits the process.
func LogFatal(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	LoggerFromContext(ctx).LogAttrs(ctx, levelEmergency, msg, withError(attrs, err)...)
	os.Exit(1)
}

func withError(attrs []slog.Attr, err error) []slog.Attr {
	if err == nil {
		return attrs
	}
	return append(attrs, slog.Any("error", err))
}
