package middleware

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	applog "github.com/janisto/echo-cards/internal/platform/logging"
)

const (
	// HeaderXRequestID is the canonical request ID header name.
	HeaderXRequestID = "X-Request-ID"

	maxRequestIDLength = 128
)

// isValidRequestID accepts printable ASCII only, so a client-supplied ID
// cannot break log lines.
func isValidRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	return strings.IndexFunc(id, func(r rune) bool { return r < 0x20 || r > 0x7E }) < 0
}

// newRequestID returns a time-ordered UUIDv7 so IDs sort with the access log.
func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// RequestID returns Echo middleware that assigns every request an identifier.
// A valid incoming X-Request-ID is reused after trimming surrounding blanks;
// anything else is replaced. The ID is echoed on the response and stored
// under applog.RequestIDKey for the request logger.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			reqID := strings.TrimSpace(c.Request().Header.Get(HeaderXRequestID))
			if !isValidRequestID(reqID) {
				reqID = newRequestID()
			}
			c.Request().Header.Set(HeaderXRequestID, reqID)
			c.Set(applog.RequestIDKey, reqID)
			c.Response().Header().Set(HeaderXRequestID, reqID)
			return next(c)
		}
	}
}
