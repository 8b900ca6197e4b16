package routes

import (
	"github.com/labstack/echo/v5"

	"github.com/janisto/echo-cards/internal/http/v1/cards"
	"github.com/janisto/echo-cards/internal/platform/auth"
)

// Register wires all v1 routes into the provided group. Every v1 route
// requires an authenticated editor.
func Register(v1 *echo.Group, verifier auth.Verifier, dir cards.Directory) {
	protected := v1.Group("", auth.Middleware(verifier))
	cards.Register(protected, dir)
}
