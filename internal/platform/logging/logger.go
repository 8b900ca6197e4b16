// Package logging writes structured JSON logs in the shape Cloud Logging
// ingests, with request-scoped loggers and audit events.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/janisto/echo-cards/internal/platform/timeutil"
)

// Severities above ERROR understood by Cloud Logging.
const (
	levelCritical  = slog.LevelError + 4
	levelAlert     = slog.LevelError + 8
	levelEmergency = slog.LevelError + 12
)

var gcpLevelNames = map[slog.Level]string{
	slog.LevelDebug: "DEBUG",
	slog.LevelInfo:  "INFO",
	slog.LevelWarn:  "WARNING",
	slog.LevelError: "ERROR",
	levelCritical:   "CRITICAL",
	levelAlert:      "ALERT",
	levelEmergency:  "EMERGENCY",
}

var (
	level      slog.LevelVar
	baseLogger = sync.OnceValue(func() *slog.Logger { return newLogger(os.Stdout, &level) })
)

// gcpHandler keeps record times in UTC so timestamps never carry an offset.
type gcpHandler struct {
	slog.Handler
}

func (h *gcpHandler) Handle(ctx context.Context, r slog.Record) error {
	r.Time = r.Time.UTC()
	return h.Handler.Handle(ctx, r)
}

func (h *gcpHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &gcpHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *gcpHandler) WithGroup(name string) slog.Handler {
	return &gcpHandler{Handler: h.Handler.WithGroup(name)}
}

// gcpAttr renames the built-in keys to timestamp, severity and message and
// maps levels to Cloud Logging severity names.
func gcpAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		return slog.String("timestamp", a.Value.Time().UTC().Format(timeutil.RFC3339Micros))
	case slog.LevelKey:
		lvl, _ := a.Value.Any().(slog.Level)
		if name, ok := gcpLevelNames[lvl]; ok {
			return slog.String("severity", name)
		}
		return slog.String("severity", lvl.String())
	case slog.MessageKey:
		return slog.Attr{Key: "message", Value: a.Value}
	}
	return a
}

func newLogger(w io.Writer, lvl slog.Leveler) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl, ReplaceAttr: gcpAttr})
	return slog.New(&gcpHandler{Handler: h})
}

// Logger returns the process-wide logger, writing to stdout.
func Logger() *slog.Logger {
	return baseLogger()
}

// SetLevel sets the minimum level of the process-wide logger. It accepts
// debug, info, warn and error, case-insensitively.
func SetLevel(name string) error {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "", "info":
		level.Set(slog.LevelInfo)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level %q", name)
	}
	return nil
}
