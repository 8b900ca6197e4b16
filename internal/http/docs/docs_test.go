package docs

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"
)

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRegister_SwaggerUI(t *testing.T) {
	e := echo.New()
	Register(e, "testdata/swagger.json")

	rec := get(e, "/api-docs")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Fatalf("expected text/html content type, got %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "swagger-ui") {
		t.Fatal("expected swagger-ui content in response")
	}
	if !strings.Contains(body, specPath) {
		t.Fatalf("expected swagger UI to reference %s", specPath)
	}
}

func TestRegister_OpenAPISpec(t *testing.T) {
	abs, err := filepath.Abs("testdata/swagger.json")
	if err != nil {
		t.Fatal(err)
	}
	for name, file := range map[string]string{
		"relative": "testdata/swagger.json",
		"absolute": abs,
	} {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			Register(e, file)

			rec := get(e, specPath)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
				t.Fatalf("expected application/json content type, got %q", ct)
			}
			if cc := rec.Header().Get("Cache-Control"); cc != "no-cache" {
				t.Fatalf("expected Cache-Control no-cache, got %q", cc)
			}
			if !strings.Contains(rec.Body.String(), "openapi") {
				t.Fatal("expected response to contain openapi spec content")
			}
		})
	}
}

func TestRegister_OpenAPISpecReloaded(t *testing.T) {
	file := filepath.Join(t.TempDir(), "openapi.json")
	if err := os.WriteFile(file, []byte(`{"openapi":"3.1.0","info":{"version":"1"}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	e := echo.New()
	Register(e, file)

	if body := get(e, specPath).Body.String(); !strings.Contains(body, `"version":"1"`) {
		t.Fatalf("unexpected body %s", body)
	}
	if err := os.WriteFile(file, []byte(`{"openapi":"3.1.0","info":{"version":"2"}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if body := get(e, specPath).Body.String(); !strings.Contains(body, `"version":"2"`) {
		t.Fatalf("expected regenerated document, got %s", body)
	}
}

func TestRegister_MissingSpec(t *testing.T) {
	e := echo.New()
	Register(e, filepath.Join(t.TempDir(), "missing.json"))

	if rec := get(e, specPath); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
