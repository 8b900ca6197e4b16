// Package docs serves the OpenAPI document generated by swag and a
// Swagger UI page for it.
package docs

import (
	_ "embed"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v5"
)

const (
	uiPath   = "/api-docs"
	specPath = "/api-docs/openapi.json"
)

//go:embed swagger-ui.html
var swaggerUI []byte

// Register mounts GET /api-docs and GET /api-docs/openapi.json. The document
// is read from specFile on every request, so a regenerated file is picked up
// without a restart; relative paths resolve against the working directory.
// A missing file answers 404.
func Register(e *echo.Echo, specFile string) {
	dir, name := filepath.Split(filepath.Clean(specFile))
	if dir == "" {
		dir = "."
	}
	specFS := os.DirFS(dir)

	e.GET(specPath, func(c *echo.Context) error {
		c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
		return c.FileFS(name, specFS)
	})

	e.GET(uiPath, func(c *echo.Context) error {
		return c.HTMLBlob(http.StatusOK, swaggerUI)
	})
}
