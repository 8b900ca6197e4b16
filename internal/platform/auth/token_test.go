package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v5"

	"github.com/janisto/echo-cards/internal/platform/respond"
)

func TestTokenVerifier(t *testing.T) {
	v := NewTokenVerifier("s3cret-admin-token")
	ctx := context.Background()

	user, err := v.Verify(ctx, "s3cret-admin-token")
	if err != nil {
		t.Fatalf("expected token to verify, got %v", err)
	}
	if user.UID != AdminUID {
		t.Fatalf("expected uid %q, got %q", AdminUID, user.UID)
	}

	for _, bad := range []string{"", "s3cret-admin-toke", "S3CRET-ADMIN-TOKEN"} {
		if _, err := v.Verify(ctx, bad); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", bad, err)
		}
	}
}

func TestTokenVerifier_EmptyRejectsAll(t *testing.T) {
	v := NewTokenVerifier("")
	if _, err := v.Verify(context.Background(), ""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestMiddleware_TokenVerifierSetsActor(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = respond.NewHTTPErrorHandler()
	e.Use(Middleware(NewTokenVerifier("abc")))
	e.GET("/whoami", func(c *echo.Context) error {
		return c.String(http.StatusOK, UIDFromContext(c.Request().Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != AdminUID {
		t.Fatalf("expected %q, got %q", AdminUID, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") != `Bearer error="invalid_token"` {
		t.Fatal("expected invalid_token challenge")
	}
}

func TestUIDFromContext_Anonymous(t *testing.T) {
	if uid := UIDFromContext(context.Background()); uid != "" {
		t.Fatalf("expected empty uid, got %q", uid)
	}
}
