// Package cards serves the editor API for agent cards under /v1/cards.
package cards

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"

	applog "github.com/janisto/echo-cards/internal/platform/logging"
	"github.com/janisto/echo-cards/internal/platform/pagination"
	"github.com/janisto/echo-cards/internal/platform/respond"
	"github.com/janisto/echo-cards/internal/platform/validate"
	"github.com/janisto/echo-cards/internal/service/directory"
	"github.com/janisto/echo-cards/internal/service/media"
	"github.com/janisto/echo-cards/internal/service/profile"
)

const (
	cursorType = "card"
	basePath   = "/v1/cards"
)

// Directory is the card directory as used by the editor API.
type Directory interface {
	Create(ctx context.Context, fields directory.Fields, uploads directory.Uploads) (*directory.Result, error)
	Update(ctx context.Context, slug string, fields directory.Fields, uploads directory.Uploads) (*directory.Result, error)
	Delete(ctx context.Context, slug string) error
	Get(ctx context.Context, slug string) (*profile.Profile, error)
	List(ctx context.Context) ([]*profile.Profile, error)
}

// Register wires card routes into the provided group.
// The group is expected to have auth middleware applied.
func Register(g *echo.Group, dir Directory) {
	g.GET("/cards", handleListCards(dir))
	g.POST("/cards", handleCreateCard(dir))
	g.GET("/cards/:slug", handleGetCard(dir))
	g.PUT("/cards/:slug", handleUpdateCard(dir))
	g.DELETE("/cards/:slug", handleDeleteCard(dir))
}

// handleListCards godoc
//
//	@Summary		List cards
//	@Description	Returns a paginated list of cards sorted by name
//	@Tags			cards
//	@Produce		json,application/cbor
//	@Param			cursor	query		string	false	"Pagination cursor"
//	@Param			limit	query		int		false	"Items per page"	minimum(1)	maximum(100)
//	@Success		200		{object}	ListData
//	@Failure		400		{object}	respond.ProblemDetails
//	@Failure		401		{object}	respond.ProblemDetails
//	@Failure		422		{object}	respond.ProblemDetails
//	@Failure		500		{object}	respond.ProblemDetails
//	@Header			200		{string}	Link	"RFC 8288 pagination links"
//	@Security		BearerAuth
//	@Router			/cards [get]
func handleListCards(dir Directory) echo.HandlerFunc {
	return func(c *echo.Context) error {
		var input ListInput
		if err := c.Bind(&input); err != nil {
			return err
		}
		if err := c.Validate(&input); err != nil {
			return err
		}

		cursor, err := pagination.DecodeCursor(input.Cursor)
		if err != nil {
			return respond.Error400("invalid cursor format")
		}
		if cursor.Type != "" && cursor.Type != cursorType {
			return respond.Error400("cursor type mismatch")
		}

		ctx := c.Request().Context()
		all, err := dir.List(ctx)
		if err != nil {
			return mapServiceError(ctx, err)
		}
		items := make([]Card, len(all))
		for i, p := range all {
			items[i] = toHTTPCard(p)
		}

		result := pagination.Paginate(
			items,
			pagination.Resume(items, cursor, listKey),
			input.PageSize(),
			cursorType,
			listKey,
			basePath,
			input.LinkQuery(),
		)

		if result.LinkHeader != "" {
			c.Response().Header().Set("Link", result.LinkHeader)
		}
		return respond.Negotiate(c, http.StatusOK, ListData{
			Items: result.Items,
			Total: result.Total,
		})
	}
}

// handleCreateCard godoc
//
//	@Summary		Create card
//	@Description	Creates a card from a multipart form. Media slots that fail to store are reported in upload_failures.
//	@Tags			cards
//	@Accept			multipart/form-data
//	@Produce		json,application/cbor
//	@Param			slug			formData	string	true	"URL slug"
//	@Param			name			formData	string	true	"Display name"
//	@Param			emails			formData	string	false	"Comma separated email addresses"
//	@Param			websites		formData	string	false	"Comma separated websites"
//	@Param			addresses		formData	string	false	"One address per line"
//	@Param			photo			formData	file	false	"Profile photo"
//	@Param			document1		formData	file	false	"Document slot 1"
//	@Param			gallery			formData	file	false	"Gallery images"
//	@Param			gallery_urls	formData	string	false	"Gallery image URLs, one per line"
//	@Success		201				{object}	WriteResponse
//	@Failure		400				{object}	respond.ProblemDetails
//	@Failure		401				{object}	respond.ProblemDetails
//	@Failure		409				{object}	respond.ProblemDetails
//	@Failure		422				{object}	respond.ProblemDetails
//	@Failure		500				{object}	respond.ProblemDetails
//	@Header			201				{string}	Location	"URI of the created card"
//	@Security		BearerAuth
//	@Router			/cards [post]
func handleCreateCard(dir Directory) echo.HandlerFunc {
	return func(c *echo.Context) error {
		var input WriteInput
		if err := c.Bind(&input); err != nil {
			return err
		}

		uploads, release, err := openUploads(&input)
		defer release()
		if err != nil {
			return respond.Error400("could not read uploaded file")
		}

		ctx := c.Request().Context()
		result, err := dir.Create(ctx, input.Fields, uploads)
		if err != nil {
			return mapServiceError(ctx, err)
		}

		c.Response().Header().Set("Location", basePath+"/"+result.Profile.Slug)
		return respond.Negotiate(c, http.StatusCreated, toWriteResponse(result))
	}
}

// handleGetCard godoc
//
//	@Summary		Get card
//	@Description	Returns a card as stored
//	@Tags			cards
//	@Produce		json,application/cbor
//	@Param			slug	path		string	true	"Card slug"
//	@Success		200		{object}	Card
//	@Failure		401		{object}	respond.ProblemDetails
//	@Failure		404		{object}	respond.ProblemDetails
//	@Failure		500		{object}	respond.ProblemDetails
//	@Security		BearerAuth
//	@Router			/cards/{slug} [get]
func handleGetCard(dir Directory) echo.HandlerFunc {
	return func(c *echo.Context) error {
		ctx := c.Request().Context()
		p, err := dir.Get(ctx, c.Param("slug"))
		if err != nil {
			return mapServiceError(ctx, err)
		}
		return respond.Negotiate(c, http.StatusOK, toHTTPCard(p))
	}
}

// handleUpdateCard godoc
//
//	@Summary		Update card
//	@Description	Replaces the text fields of a card and merges media. A different slug renames the card.
//	@Description	Gallery uploads are appended unless replace_gallery is set.
//	@Tags			cards
//	@Accept			multipart/form-data
//	@Produce		json,application/cbor
//	@Param			slug			path		string	true	"Current card slug"
//	@Param			name			formData	string	true	"Display name"
//	@Param			photo			formData	file	false	"Profile photo"
//	@Param			gallery			formData	file	false	"Gallery images"
//	@Param			replace_gallery	formData	bool	false	"Replace the gallery instead of appending"
//	@Success		200				{object}	WriteResponse
//	@Failure		400				{object}	respond.ProblemDetails
//	@Failure		401				{object}	respond.ProblemDetails
//	@Failure		404				{object}	respond.ProblemDetails
//	@Failure		409				{object}	respond.ProblemDetails
//	@Failure		422				{object}	respond.ProblemDetails
//	@Failure		500				{object}	respond.ProblemDetails
//	@Security		BearerAuth
//	@Router			/cards/{slug} [put]
func handleUpdateCard(dir Directory) echo.HandlerFunc {
	return func(c *echo.Context) error {
		var input WriteInput
		if err := c.Bind(&input); err != nil {
			return err
		}
		slug := c.Param("slug")
		if input.Slug == "" {
			input.Slug = slug
		}

		uploads, release, err := openUploads(&input)
		defer release()
		if err != nil {
			return respond.Error400("could not read uploaded file")
		}

		ctx := c.Request().Context()
		result, err := dir.Update(ctx, slug, input.Fields, uploads)
		if err != nil {
			return mapServiceError(ctx, err)
		}

		return respond.Negotiate(c, http.StatusOK, toWriteResponse(result))
	}
}

// handleDeleteCard godoc
//
//	@Summary		Delete card
//	@Description	Deletes a card. Stored media is kept.
//	@Tags			cards
//	@Param			slug	path	string	true	"Card slug"
//	@Success		204
//	@Failure		401	{object}	respond.ProblemDetails
//	@Failure		404	{object}	respond.ProblemDetails
//	@Failure		500	{object}	respond.ProblemDetails
//	@Security		BearerAuth
//	@Router			/cards/{slug} [delete]
func handleDeleteCard(dir Directory) echo.HandlerFunc {
	return func(c *echo.Context) error {
		ctx := c.Request().Context()
		if err := dir.Delete(ctx, c.Param("slug")); err != nil {
			return mapServiceError(ctx, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// openUploads opens the submitted files. release closes whatever was
// opened and is safe to call when err is non-nil.
func openUploads(in *WriteInput) (uploads directory.Uploads, release func(), err error) {
	var opened []io.Closer
	release = func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	open := func(fh *multipart.FileHeader) (*media.File, error) {
		// Browsers send an empty part for untouched file inputs.
		if fh == nil || (fh.Size == 0 && fh.Filename == "") {
			return nil, nil
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		opened = append(opened, f)
		return &media.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get(echo.HeaderContentType),
			Body:        f,
		}, nil
	}

	uploads.ReplaceGallery = in.ReplaceGallery
	if uploads.Photo, err = open(in.Photo); err != nil {
		return uploads, release, err
	}
	for slot, fh := range in.documents() {
		file, err := open(fh)
		if err != nil {
			return uploads, release, err
		}
		if file != nil {
			if uploads.Documents == nil {
				uploads.Documents = make(map[int]*media.File)
			}
			uploads.Documents[slot] = file
		}
	}
	for _, fh := range in.Gallery {
		file, err := open(fh)
		if err != nil {
			return uploads, release, err
		}
		if file != nil {
			uploads.Gallery = append(uploads.Gallery, *file)
		}
	}
	return uploads, release, nil
}

func mapServiceError(ctx context.Context, err error) error {
	var ve *validate.ValidationError
	switch {
	case errors.As(err, &ve):
		return err
	case errors.Is(err, profile.ErrNotFound):
		return respond.Error404("card not found")
	case errors.Is(err, profile.ErrDuplicateSlug):
		return respond.Error409("slug already exists")
	case errors.Is(err, profile.ErrInvalidSlug),
		errors.Is(err, profile.ErrSeparatorInValue),
		errors.Is(err, profile.ErrTooManyDocuments):
		return respond.Error422(err.Error())
	default:
		applog.LogError(ctx, "unexpected service error", err)
		return respond.Error500("internal error")
	}
}

// listKey orders cards the way the directory lists them: by lowercased
// name, then slug. Cursors carry it so paging survives deleted cards.
func listKey(card Card) string {
	return strings.ToLower(card.Name) + "\x00" + card.Slug
}
