package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/labstack/echo/v5"
)

// RequestLogger returns Echo middleware that stores a request-scoped logger
// in the request context. The logger carries the request ID and, behind a
// valid traceparent, the Cloud Trace correlation fields.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			req := c.Request()
			reqID, _ := c.Get(RequestIDKey).(string)
			sc := requestScope(Logger(), req.Header.Get(traceparentHeader), projectID(), reqID)
			c.SetRequest(req.WithContext(withScope(req.Context(), sc)))
			return next(c)
		}
	}
}

// AccessLogger returns Echo middleware that writes one entry per finished
// request. A returned error is passed to the error handler first so the
// logged status is the one the client receives. The httpRequest group uses
// the Cloud Logging HttpRequest field names.
func AccessLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Echo().HTTPErrorHandler(c, err)
			}
			elapsed := time.Since(start)

			var status int
			var size int64
			if resp, uerr := echo.UnwrapResponse(c.Response()); uerr == nil {
				status, size = resp.Status, resp.Size
			}

			req := c.Request()
			ctx := req.Context()
			LoggerFromContext(ctx).LogAttrs(ctx, accessLevel(status), "request completed",
				slog.String("route", c.Path()),
				slog.Group("httpRequest",
					slog.String("requestMethod", req.Method),
					slog.String("requestUrl", req.URL.RequestURI()),
					slog.Int("status", status),
					slog.String("responseSize", strconv.FormatInt(size, 10)),
					slog.String("userAgent", req.UserAgent()),
					slog.String("remoteIp", c.RealIP()),
					slog.String("latency", fmt.Sprintf("%.6fs", elapsed.Seconds())),
				),
			)
			return err
		}
	}
}

// accessLevel maps a status to a severity: 5xx error, 4xx warning.
func accessLevel(status int) slog.Level {
	if status >= 500 {
		return slog.LevelError
	}
	if status >= 400 {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}
