package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"
)

// Vary returns Echo middleware that lists Accept in the Vary header, since
// JSON and CBOR are negotiated from it. Requests under skipPrefixes are left
// alone: vCard, QR and media responses have a fixed representation.
func Vary(skipPrefixes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			path := c.Request().URL.Path
			for _, p := range skipPrefixes {
				if strings.HasPrefix(path, p) {
					return next(c)
				}
			}
			addVary(c.Response().Header(), echo.HeaderAccept)
			return next(c)
		}
	}
}

// addVary adds value unless Vary already names it or is "*".
func addVary(h http.Header, value string) {
	for _, line := range h.Values(echo.HeaderVary) {
		for _, v := range strings.Split(line, ",") {
			v = strings.TrimSpace(v)
			if v == "*" || strings.EqualFold(v, value) {
				return
			}
		}
	}
	h.Add(echo.HeaderVary, value)
}
