package middleware

import (
	"strings"

	"github.com/labstack/echo/v5"
)

// SecurityConfig selects which paths get relaxed headers.
type SecurityConfig struct {
	// SkipPaths are prefixes that get no security headers, such as the docs UI.
	SkipPaths []string
	// PublicPaths are prefixes of embeddable artifacts: QR images, vCards and
	// media. They are cacheable and may be loaded cross-origin.
	PublicPaths []string
}

type headerPair struct{ name, value string }

// apiHeaders follow the OWASP REST Security Cheat Sheet.
var apiHeaders = []headerPair{
	{"Content-Security-Policy", "frame-ancestors 'none'"},
	{"Cross-Origin-Opener-Policy", "same-origin"},
	{"Permissions-Policy", "accelerometer=(), camera=(), geolocation=(), gyroscope=(), magnetometer=(), microphone=(), payment=(), usb=()"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
}

var (
	privateHeaders = []headerPair{
		{echo.HeaderCacheControl, "no-store"},
		{"Cross-Origin-Resource-Policy", "same-origin"},
	}
	publicHeaders = []headerPair{
		{echo.HeaderCacheControl, "public, max-age=300"},
		{"Cross-Origin-Resource-Policy", "cross-origin"},
	}
)

// Security returns Echo middleware that sets security headers on every
// response outside cfg.SkipPaths. API responses are never cached; public
// artifacts are cached briefly and may be embedded by other sites.
func Security(cfg SecurityConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			path := c.Request().URL.Path
			if matchesPrefix(path, cfg.SkipPaths) {
				return next(c)
			}

			scoped := privateHeaders
			if matchesPrefix(path, cfg.PublicPaths) {
				scoped = publicHeaders
			}
			h := c.Response().Header()
			for _, set := range [][]headerPair{apiHeaders, scoped} {
				for _, p := range set {
					h.Set(p.name, p.value)
				}
			}
			return next(c)
		}
	}
}

func matchesPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
