package directory

import (
	"fmt"
	"strings"

	"github.com/janisto/echo-cards/internal/service/media"
	"github.com/janisto/echo-cards/internal/service/profile"
)

// Fields is the editable field set of a card as submitted by an editor.
// List fields carry their serialized form: emails and websites are comma
// separated, addresses and gallery URLs one per line.
type Fields struct {
	Slug        string `form:"slug"         validate:"required,slug,max=64"`
	Name        string `form:"name"         validate:"required,max=200"`
	Company     string `form:"company"      validate:"max=200"`
	Role        string `form:"role"         validate:"max=200"`
	Bio         string `form:"bio"          validate:"max=4000"`
	PhoneMobile string `form:"phone_mobile" validate:"max=40"`
	PhoneOffice string `form:"phone_office" validate:"max=40"`
	Emails      string `form:"emails"       validate:"max=1000"`
	Websites    string `form:"websites"     validate:"max=2000"`
	Addresses   string `form:"addresses"    validate:"max=2000"`

	Facebook  string `form:"facebook"  validate:"max=300"`
	Instagram string `form:"instagram" validate:"max=300"`
	LinkedIn  string `form:"linkedin"  validate:"max=300"`
	TikTok    string `form:"tiktok"    validate:"max=300"`
	Telegram  string `form:"telegram"  validate:"max=300"`
	WhatsApp  string `form:"whatsapp"  validate:"max=300"`

	PEC       string `form:"pec"   validate:"omitempty,email"`
	VATNumber string `form:"piva"  validate:"max=32"`
	SDICode   string `form:"sdi"   validate:"max=16"`
	Notes     string `form:"notes" validate:"max=4000"`

	// Media given by reference instead of upload.
	PhotoURL     string `form:"photo_url"     validate:"max=2000"`
	Document1URL string `form:"document1_url" validate:"max=2000"`
	Document2URL string `form:"document2_url" validate:"max=2000"`
	Document3URL string `form:"document3_url" validate:"max=2000"`
	Document4URL string `form:"document4_url" validate:"max=2000"`
	GalleryURLs  string `form:"gallery_urls"  validate:"max=20000"`
}

// Uploads holds the files submitted with a write. Nil or empty slots keep
// the card's previous reference.
type Uploads struct {
	Photo *media.File
	// Documents is keyed by slot number, 1 through profile.MaxDocuments.
	Documents map[int]*media.File
	Gallery   []media.File
	// ReplaceGallery replaces the gallery instead of appending, when at
	// least one new gallery reference is supplied.
	ReplaceGallery bool
}

// UploadFailure reports a slot whose new file could not be stored.
type UploadFailure struct {
	Slot string
	Err  error
}

// Result is the outcome of a successful write.
type Result struct {
	Profile  *profile.Profile
	Failures []UploadFailure
}

func (f *Fields) normalize() {
	f.Slug = profile.NormalizeSlug(f.Slug)
	for _, s := range []*string{
		&f.Name, &f.Company, &f.Role, &f.PhoneMobile, &f.PhoneOffice,
		&f.Facebook, &f.Instagram, &f.LinkedIn, &f.TikTok, &f.Telegram, &f.WhatsApp,
		&f.PEC, &f.VATNumber, &f.SDICode,
		&f.PhotoURL, &f.Document1URL, &f.Document2URL, &f.Document3URL, &f.Document4URL,
	} {
		*s = strings.TrimSpace(*s)
	}
	f.Bio = strings.TrimSpace(f.Bio)
	f.Notes = strings.TrimSpace(f.Notes)
}

func (f *Fields) documentURL(slot int) string {
	switch slot {
	case 1:
		return f.Document1URL
	case 2:
		return f.Document2URL
	case 3:
		return f.Document3URL
	case 4:
		return f.Document4URL
	}
	return ""
}

// galleryURLs splits GalleryURLs one reference per line. Commas are valid
// inside URLs and data URIs, so they never separate entries.
func (f *Fields) galleryURLs() []string {
	return profile.SplitList(strings.ReplaceAll(f.GalleryURLs, "\r\n", "\n"), profile.LineSeparator)
}

// apply copies the display fields onto p, replacing them wholesale.
// Media references are left untouched.
func (f *Fields) apply(p *profile.Profile) {
	p.Slug = f.Slug
	p.Name = f.Name
	p.Company = f.Company
	p.Role = f.Role
	p.Bio = f.Bio
	p.PhoneMobile = f.PhoneMobile
	p.PhoneOffice = f.PhoneOffice
	p.Emails = profile.SplitList(f.Emails, profile.ListSeparator)
	p.Websites = profile.SplitList(f.Websites, profile.ListSeparator)
	p.Addresses = profile.SplitList(strings.ReplaceAll(f.Addresses, "\r\n", "\n"), profile.LineSeparator)
	p.Social = profile.SocialLinks{
		Facebook:  f.Facebook,
		Instagram: f.Instagram,
		LinkedIn:  f.LinkedIn,
		TikTok:    f.TikTok,
		Telegram:  f.Telegram,
		WhatsApp:  f.WhatsApp,
	}
	p.PEC = f.PEC
	p.VATNumber = f.VATNumber
	p.SDICode = f.SDICode
	p.Notes = f.Notes
}

// FieldsFromProfile returns the field set that reproduces p's display fields.
func FieldsFromProfile(p *profile.Profile) Fields {
	return Fields{
		Slug:        p.Slug,
		Name:        p.Name,
		Company:     p.Company,
		Role:        p.Role,
		Bio:         p.Bio,
		PhoneMobile: p.PhoneMobile,
		PhoneOffice: p.PhoneOffice,
		Emails:      profile.JoinList(p.Emails, profile.ListSeparator),
		Websites:    profile.JoinList(p.Websites, profile.ListSeparator),
		Addresses:   profile.JoinList(p.Addresses, profile.LineSeparator),
		Facebook:    p.Social.Facebook,
		Instagram:   p.Social.Instagram,
		LinkedIn:    p.Social.LinkedIn,
		TikTok:      p.Social.TikTok,
		Telegram:    p.Social.Telegram,
		WhatsApp:    p.Social.WhatsApp,
		PEC:         p.PEC,
		VATNumber:   p.VATNumber,
		SDICode:     p.SDICode,
		Notes:       p.Notes,
	}
}

func documentSlot(n int) string { return fmt.Sprintf("document%d", n) }

func gallerySlot(i int) string { return fmt.Sprintf("gallery[%d]", i) }

const photoSlot = "photo"
