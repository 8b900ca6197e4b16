package middleware

import (
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
)

// CORS returns Echo middleware allowing cross-origin calls from
// allowOrigins, or from any origin when none are given. Credentials are
// never allowed: admin calls carry bearer tokens, not cookies.
func CORS(allowOrigins ...string) echo.MiddlewareFunc {
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"*"}
	}
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			echo.HeaderContentType,
			HeaderXRequestID,
			"traceparent",
		},
		ExposeHeaders: []string{
			echo.HeaderContentDisposition,
			"Link",
			echo.HeaderLocation,
			HeaderXRequestID,
		},
		MaxAge: 300,
	})
}
