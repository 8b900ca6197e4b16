package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v5"
)

func TestVary(t *testing.T) {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			if preset := c.Request().Header.Get("X-Preset-Vary"); preset != "" {
				c.Response().Header().Set("Vary", preset)
			}
			return next(c)
		}
	})
	e.Use(Vary("/qr/", "/media/"))
	ok := func(c *echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/v1/cards", ok)
	e.GET("/qr/:file", ok)
	e.GET("/media/*", ok)

	tests := []struct {
		name   string
		path   string
		preset string
		want   []string
	}{
		{"adds accept", "/v1/cards", "", []string{"Accept"}},
		{"keeps existing", "/v1/cards", "Origin", []string{"Origin", "Accept"}},
		{"no duplicate", "/v1/cards", "Origin, accept", []string{"Origin, accept"}},
		{"star", "/v1/cards", "*", []string{"*"}},
		{"skipped qr", "/qr/john-doe.png", "", nil},
		{"skipped media", "/media/photos/a.png", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.preset != "" {
				req.Header.Set("X-Preset-Vary", tt.preset)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			got := rec.Header().Values("Vary")
			if len(got) != len(tt.want) {
				t.Fatalf("expected Vary %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("expected Vary %v, got %v", tt.want, got)
				}
			}
		})
	}
}
