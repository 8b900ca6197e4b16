package cards

import (
	"mime/multipart"

	"github.com/janisto/echo-cards/internal/platform/pagination"
	"github.com/janisto/echo-cards/internal/service/directory"
)

// ListInput defines query parameters for listing cards.
type ListInput struct {
	pagination.Params
}

// WriteInput is the multipart form accepted by create and update. Text
// fields are validated by the directory after normalization.
type WriteInput struct {
	directory.Fields

	ReplaceGallery bool `form:"replace_gallery"`

	Photo     *multipart.FileHeader   `form:"photo"`
	Document1 *multipart.FileHeader   `form:"document1"`
	Document2 *multipart.FileHeader   `form:"document2"`
	Document3 *multipart.FileHeader   `form:"document3"`
	Document4 *multipart.FileHeader   `form:"document4"`
	Gallery   []*multipart.FileHeader `form:"gallery"`
}

func (in *WriteInput) documents() map[int]*multipart.FileHeader {
	return map[int]*multipart.FileHeader{
		1: in.Document1,
		2: in.Document2,
		3: in.Document3,
		4: in.Document4,
	}
}
