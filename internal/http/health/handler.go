// Package health serves the liveness and readiness probe.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"

	applog "github.com/janisto/echo-cards/internal/platform/logging"
)

const pingTimeout = 2 * time.Second

// Response is the payload for the health endpoint.
type Response struct {
	Status string `json:"status"`
}

// Pinger is implemented by backends that can report their connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler reports healthy without probing any backend.
func Handler(c *echo.Context) error {
	return c.JSON(http.StatusOK, Response{Status: "healthy"})
}

// NewHandler returns a health handler that pings backend when it implements
// Pinger. A failed ping answers 503.
func NewHandler(backend any) echo.HandlerFunc {
	pinger, ok := backend.(Pinger)
	if !ok {
		return Handler
	}
	return func(c *echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
		defer cancel()
		if err := pinger.Ping(ctx); err != nil {
			applog.LogWarn(ctx, "health check failed", slog.String("error", err.Error()))
			return c.JSON(http.StatusServiceUnavailable, Response{Status: "unhealthy"})
		}
		return c.JSON(http.StatusOK, Response{Status: "healthy"})
	}
}
