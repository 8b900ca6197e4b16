// Package public serves the unauthenticated card endpoints: the published
// card, its vCard download and its QR code.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v5"

	applog "github.com/janisto/echo-cards/internal/platform/logging"
	"github.com/janisto/echo-cards/internal/platform/respond"
	"github.com/janisto/echo-cards/internal/service/artifact"
	"github.com/janisto/echo-cards/internal/service/directory"
	"github.com/janisto/echo-cards/internal/service/profile"
)

// Cards is the read side of the card directory.
type Cards interface {
	Get(ctx context.Context, slug string) (*profile.Profile, error)
	VCard(ctx context.Context, slug string) ([]byte, error)
	QRCode(ctx context.Context, slug, requestOrigin string, format artifact.Format) ([]byte, error)
}

// Register wires the public card routes.
func Register(e *echo.Echo, cards Cards) {
	e.GET("/:slug", handleGetCard(cards))
	e.GET("/vcard/:file", handleVCard(cards))
	e.GET("/qr/:file", handleQRCode(cards))
}

// handleGetCard godoc
//
//	@Summary		Get public card
//	@Description	Returns the published view of a card
//	@Tags			public
//	@Produce		json,application/cbor
//	@Param			slug	path		string	true	"Card slug"
//	@Success		200		{object}	Card
//	@Failure		404		{object}	respond.ProblemDetails
//	@Failure		500		{object}	respond.ProblemDetails
//	@Router			/{slug} [get]
func handleGetCard(cards Cards) echo.HandlerFunc {
	return func(c *echo.Context) error {
		ctx := c.Request().Context()
		p, err := cards.Get(ctx, c.Param("slug"))
		if err != nil {
			return mapError(ctx, err)
		}
		return respond.Negotiate(c, http.StatusOK, toCard(p))
	}
}

// handleVCard godoc
//
//	@Summary		Download vCard
//	@Description	Returns the card as a vCard 3.0 attachment
//	@Tags			public
//	@Produce		text/vcard
//	@Param			file	path		string	true	"Card slug followed by .vcf"	example(john-doe.vcf)
//	@Success		200		{string}	string
//	@Failure		404		{object}	respond.ProblemDetails
//	@Failure		500		{object}	respond.ProblemDetails
//	@Router			/vcard/{file} [get]
func handleVCard(cards Cards) echo.HandlerFunc {
	return func(c *echo.Context) error {
		slug, ok := strings.CutSuffix(c.Param("file"), ".vcf")
		if !ok || slug == "" {
			return respond.Error404("card not found")
		}

		ctx := c.Request().Context()
		data, err := cards.VCard(ctx, slug)
		if err != nil {
			return mapError(ctx, err)
		}

		c.Response().Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf("attachment; filename=%q", profile.NormalizeSlug(slug)+".vcf"))
		return c.Blob(http.StatusOK, "text/vcard; charset=utf-8", data)
	}
}

// handleQRCode godoc
//
//	@Summary		Get QR code
//	@Description	Returns a QR code encoding the public card URL
//	@Tags			public
//	@Produce		png,image/svg+xml
//	@Param			file	path		string	true	"Card slug followed by .png or .svg"	example(john-doe.png)
//	@Success		200		{file}		binary
//	@Failure		404		{object}	respond.ProblemDetails
//	@Failure		500		{object}	respond.ProblemDetails
//	@Router			/qr/{file} [get]
func handleQRCode(cards Cards) echo.HandlerFunc {
	return func(c *echo.Context) error {
		file := c.Param("file")
		ext := path.Ext(file)
		slug := strings.TrimSuffix(file, ext)
		format, err := artifact.ParseFormat(ext)
		if err != nil || slug == "" {
			return respond.Error404("card not found")
		}

		ctx := c.Request().Context()
		data, err := cards.QRCode(ctx, slug, requestOrigin(c), format)
		if err != nil {
			return mapError(ctx, err)
		}
		return c.Blob(http.StatusOK, format.ContentType(), data)
	}
}

// requestOrigin is the scheme and host the client used to reach the server.
func requestOrigin(c *echo.Context) string {
	host := c.Request().Host
	if host == "" {
		return ""
	}
	return c.Scheme() + "://" + host
}

func mapError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, profile.ErrNotFound):
		return respond.Error404("card not found")
	case errors.Is(err, directory.ErrNoBaseURL):
		applog.LogError(ctx, "public URL unavailable", err)
		return respond.Error500("public URL unavailable")
	default:
		applog.LogError(ctx, "unexpected card read error", err)
		return respond.Error500("internal error")
	}
}
