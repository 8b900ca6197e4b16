package cards

import (
	"errors"

	"github.com/janisto/echo-cards/internal/platform/timeutil"
	"github.com/janisto/echo-cards/internal/service/directory"
	"github.com/janisto/echo-cards/internal/service/media"
	"github.com/janisto/echo-cards/internal/service/profile"
)

// Social holds social network links as entered.
type Social struct {
	Facebook  string `json:"facebook"  cbor:"facebook"`
	Instagram string `json:"instagram" cbor:"instagram"`
	LinkedIn  string `json:"linkedin"  cbor:"linkedin"`
	TikTok    string `json:"tiktok"    cbor:"tiktok"`
	Telegram  string `json:"telegram"  cbor:"telegram"`
	WhatsApp  string `json:"whatsapp"  cbor:"whatsapp"`
}

// Card is the editor view of an agent card.
type Card struct {
	Slug        string        `json:"slug"         cbor:"slug"         example:"john-doe"`
	Name        string        `json:"name"         cbor:"name"         example:"John Doe"`
	Company     string        `json:"company"      cbor:"company"      example:"Acme Realty"`
	Role        string        `json:"role"         cbor:"role"         example:"Agent"`
	Bio         string        `json:"bio"          cbor:"bio"`
	PhoneMobile string        `json:"phone_mobile" cbor:"phone_mobile" example:"+39 333 1234567"`
	PhoneOffice string        `json:"phone_office" cbor:"phone_office"`
	Emails      []string      `json:"emails"       cbor:"emails"`
	Websites    []string      `json:"websites"     cbor:"websites"`
	Addresses   []string      `json:"addresses"    cbor:"addresses"`
	Social      Social        `json:"social"       cbor:"social"`
	PEC         string        `json:"pec"          cbor:"pec"`
	VATNumber   string        `json:"piva"         cbor:"piva"`
	SDICode     string        `json:"sdi"          cbor:"sdi"`
	Notes       string        `json:"notes"        cbor:"notes"`
	PhotoURL    string        `json:"photo_url"    cbor:"photo_url"`
	Documents   []string      `json:"documents"    cbor:"documents"`
	Gallery     []string      `json:"gallery"      cbor:"gallery"`
	CreatedAt   timeutil.Time `json:"created_at"   cbor:"created_at"   example:"2024-01-15T10:30:00.000Z"`
	UpdatedAt   timeutil.Time `json:"updated_at"   cbor:"updated_at"   example:"2024-01-15T10:30:00.000Z"`
}

// UploadFailure reports a media slot that was not stored. The rest of the
// write was committed.
type UploadFailure struct {
	Slot   string `json:"slot"   cbor:"slot"   example:"gallery[2]"`
	Code   string `json:"code"   cbor:"code"   example:"rejected"`
	Detail string `json:"detail" cbor:"detail"`
}

// WriteResponse is returned by create and update.
type WriteResponse struct {
	Card
	UploadFailures []UploadFailure `json:"upload_failures,omitempty" cbor:"upload_failures,omitempty"`
}

// ListData is the response body for the card listing.
type ListData struct {
	Items []Card `json:"items" cbor:"items"`
	Total int    `json:"total" cbor:"total" example:"42"`
}

func toHTTPCard(p *profile.Profile) Card {
	return Card{
		Slug:        p.Slug,
		Name:        p.Name,
		Company:     p.Company,
		Role:        p.Role,
		Bio:         p.Bio,
		PhoneMobile: p.PhoneMobile,
		PhoneOffice: p.PhoneOffice,
		Emails:      nonNil(p.Emails),
		Websites:    nonNil(p.Websites),
		Addresses:   nonNil(p.Addresses),
		Social: Social{
			Facebook:  p.Social.Facebook,
			Instagram: p.Social.Instagram,
			LinkedIn:  p.Social.LinkedIn,
			TikTok:    p.Social.TikTok,
			Telegram:  p.Social.Telegram,
			WhatsApp:  p.Social.WhatsApp,
		},
		PEC:       p.PEC,
		VATNumber: p.VATNumber,
		SDICode:   p.SDICode,
		Notes:     p.Notes,
		PhotoURL:  p.PhotoURL,
		Documents: nonNil(p.Documents),
		Gallery:   nonNil(p.Gallery),
		CreatedAt: timeutil.Time{Time: p.CreatedAt},
		UpdatedAt: timeutil.Time{Time: p.UpdatedAt},
	}
}

func toWriteResponse(r *directory.Result) WriteResponse {
	resp := WriteResponse{Card: toHTTPCard(r.Profile)}
	for _, f := range r.Failures {
		resp.UploadFailures = append(resp.UploadFailures, UploadFailure{
			Slot:   f.Slot,
			Code:   failureCode(f.Err),
			Detail: f.Err.Error(),
		})
	}
	return resp
}

func failureCode(err error) string {
	switch {
	case errors.Is(err, media.ErrRejected):
		return "rejected"
	case errors.Is(err, media.ErrUnconfigured):
		return "unconfigured"
	case errors.Is(err, directory.ErrGalleryFull):
		return "gallery_full"
	case errors.Is(err, directory.ErrInvalidSlot):
		return "invalid_slot"
	default:
		return "write_failed"
	}
}

// nonNil keeps empty lists as [] on the wire.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
