package public

import (
	"github.com/janisto/echo-cards/internal/service/artifact"
	"github.com/janisto/echo-cards/internal/service/profile"
)

// Social holds normalized social network links.
type Social struct {
	Facebook  string `json:"facebook,omitempty"  cbor:"facebook,omitempty"  example:"https://facebook.com/johndoe"`
	Instagram string `json:"instagram,omitempty" cbor:"instagram,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"  cbor:"linkedin,omitempty"`
	TikTok    string `json:"tiktok,omitempty"    cbor:"tiktok,omitempty"`
	Telegram  string `json:"telegram,omitempty"  cbor:"telegram,omitempty"`
	WhatsApp  string `json:"whatsapp,omitempty"  cbor:"whatsapp,omitempty"`
}

// Card is the published view of an agent card.
type Card struct {
	Slug        string   `json:"slug"                   cbor:"slug"                   example:"john-doe"`
	Name        string   `json:"name"                   cbor:"name"                   example:"John Doe"`
	Company     string   `json:"company,omitempty"      cbor:"company,omitempty"      example:"Acme Realty"`
	Role        string   `json:"role,omitempty"         cbor:"role,omitempty"         example:"Agent"`
	Bio         string   `json:"bio,omitempty"          cbor:"bio,omitempty"`
	PhoneMobile string   `json:"phone_mobile,omitempty" cbor:"phone_mobile,omitempty" example:"+39 333 1234567"`
	PhoneOffice string   `json:"phone_office,omitempty" cbor:"phone_office,omitempty"`
	Emails      []string `json:"emails,omitempty"       cbor:"emails,omitempty"       example:"john@example.com"`
	Websites    []string `json:"websites,omitempty"     cbor:"websites,omitempty"     example:"https://example.com"`
	Addresses   []string `json:"addresses,omitempty"    cbor:"addresses,omitempty"`
	Social      Social   `json:"social"                 cbor:"social"`
	PEC         string   `json:"pec,omitempty"          cbor:"pec,omitempty"`
	VATNumber   string   `json:"piva,omitempty"         cbor:"piva,omitempty"`
	SDICode     string   `json:"sdi,omitempty"          cbor:"sdi,omitempty"`
	Notes       string   `json:"notes,omitempty"        cbor:"notes,omitempty"`
	PhotoURL    string   `json:"photo_url,omitempty"    cbor:"photo_url,omitempty"`
	Documents   []string `json:"documents,omitempty"    cbor:"documents,omitempty"`
	Gallery     []string `json:"gallery,omitempty"      cbor:"gallery,omitempty"`
	VCardURL    string   `json:"vcard_url"              cbor:"vcard_url"              example:"/vcard/john-doe.vcf"`
	QRCodeURL   string   `json:"qr_url"                 cbor:"qr_url"                 example:"/qr/john-doe.png"`
}

// toCard builds the published view. Links without a scheme get https://.
func toCard(p *profile.Profile) Card {
	websites := make([]string, 0, len(p.Websites))
	for _, w := range p.Websites {
		websites = append(websites, artifact.EnsureHTTP(w))
	}
	return Card{
		Slug:        p.Slug,
		Name:        p.Name,
		Company:     p.Company,
		Role:        p.Role,
		Bio:         p.Bio,
		PhoneMobile: p.PhoneMobile,
		PhoneOffice: p.PhoneOffice,
		Emails:      p.Emails,
		Websites:    websites,
		Addresses:   p.Addresses,
		Social: Social{
			Facebook:  artifact.EnsureHTTP(p.Social.Facebook),
			Instagram: artifact.EnsureHTTP(p.Social.Instagram),
			LinkedIn:  artifact.EnsureHTTP(p.Social.LinkedIn),
			TikTok:    artifact.EnsureHTTP(p.Social.TikTok),
			Telegram:  artifact.EnsureHTTP(p.Social.Telegram),
			WhatsApp:  artifact.EnsureHTTP(p.Social.WhatsApp),
		},
		PEC:       p.PEC,
		VATNumber: p.VATNumber,
		SDICode:   p.SDICode,
		Notes:     p.Notes,
		PhotoURL:  p.PhotoURL,
		Documents: p.Documents,
		Gallery:   p.Gallery,
		VCardURL:  "/vcard/" + p.Slug + ".vcf",
		QRCodeURL: "/qr/" + p.Slug + ".png",
	}
}
