package logging

import (
	"context"
	"log/slog"
)

// AuditEvent describes one change to a resource, for security review.
type AuditEvent struct {
	Action       string // e.g. "card.update"
	Actor        string // user ID, empty when anonymous
	ResourceType string
	ResourceID   string
	Result       string // "success" or a failure category
	Details      map[string]any
}

// Audit logs ev. Anything but a successful result is logged as a warning.
func Audit(ctx context.Context, ev AuditEvent) {
	level := slog.LevelInfo
	if ev.Result != "success" {
		level = slog.LevelWarn
	}
	attrs := []slog.Attr{
		slog.String("audit.action", ev.Action),
		slog.String("audit.user_id", ev.Actor),
		slog.String("audit.resource_type", ev.ResourceType),
		slog.String("audit.resource_id", ev.ResourceID),
		slog.String("audit.result", ev.Result),
	}
	if id := CorrelationID(ctx); id != "" {
		attrs = append(attrs, slog.String("audit.correlation_id", id))
	}
	if len(ev.Details) > 0 {
		attrs = append(attrs, slog.Any("audit.details", ev.Details))
	}
	LoggerFromContext(ctx).LogAttrs(ctx, level, "Audit event", attrs...)
}
