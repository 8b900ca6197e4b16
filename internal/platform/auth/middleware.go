package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v5"

	applog "github.com/janisto/echo-cards/internal/platform/logging"
	"github.com/janisto/echo-cards/internal/platform/respond"
)

type userContextKey struct{}

// rejection is how a failed authentication is answered.
type rejection struct {
	reason    string // logged, never sent
	status    int
	detail    string
	challenge string // WWW-Authenticate value, RFC 6750
}

func rejectionFor(err error) rejection {
	const invalid = `Bearer error="invalid_token"`
	switch {
	case errors.Is(err, ErrNoToken):
		return rejection{"no_token", http.StatusUnauthorized, "missing or invalid authorization header", "Bearer"}
	case errors.Is(err, ErrNotEditor):
		return rejection{"not_editor", http.StatusForbidden, "editor access required", `Bearer error="insufficient_scope"`}
	case errors.Is(err, ErrCertificateFetch):
		return rejection{"certificate_fetch_failed", http.StatusServiceUnavailable, "authentication service temporarily unavailable", ""}
	case errors.Is(err, ErrTokenExpired):
		return rejection{"token_expired", http.StatusUnauthorized, "invalid or expired token", invalid}
	case errors.Is(err, ErrTokenRevoked):
		return rejection{"token_revoked", http.StatusUnauthorized, "invalid or expired token", invalid}
	case errors.Is(err, ErrUserDisabled):
		return rejection{"user_disabled", http.StatusUnauthorized, "invalid or expired token", invalid}
	case errors.Is(err, ErrInvalidToken):
		return rejection{"invalid_token", http.StatusUnauthorized, "invalid or expired token", invalid}
	}
	return rejection{"unknown", http.StatusUnauthorized, "invalid or expired token", invalid}
}

// Middleware returns Echo middleware that admits only requests carrying a
// bearer token verifier accepts. The user is stored in the request context.
func Middleware(verifier Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			ctx := c.Request().Context()
			user, err := authenticate(ctx, verifier, c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				rej := rejectionFor(err)
				applog.LogWarn(ctx, "authentication rejected", slog.String("reason", rej.reason))
				if rej.challenge != "" {
					c.Response().Header().Set(echo.HeaderWWWAuthenticate, rej.challenge)
				}
				if rej.status == http.StatusServiceUnavailable {
					c.Response().Header().Set(echo.HeaderRetryAfter, "30")
				}
				return respond.NewError(rej.status, rej.detail)
			}

			c.SetRequest(c.Request().WithContext(context.WithValue(ctx, userContextKey{}, user)))
			return next(c)
		}
	}
}

func authenticate(ctx context.Context, verifier Verifier, header string) (*User, error) {
	token, err := ExtractBearerToken(header)
	if err != nil {
		return nil, err
	}
	return verifier.Verify(ctx, token)
}

// UserFromContext returns the authenticated user, or nil outside Middleware.
func UserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(userContextKey{}).(*User)
	return user
}

// UIDFromContext returns the authenticated user's UID, or "" when the
// request is anonymous.
func UIDFromContext(ctx context.Context) string {
	if user := UserFromContext(ctx); user != nil {
		return user.UID
	}
	return ""
}
