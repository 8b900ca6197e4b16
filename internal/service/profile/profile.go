package profile

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
)

var (
	ErrNotFound         = errors.New("profile not found")
	ErrDuplicateSlug    = errors.New("slug already exists")
	ErrInvalidSlug      = errors.New("invalid slug")
	ErrSeparatorInValue = errors.New("value contains list separator")
	ErrTooManyDocuments = errors.New("too many documents")
)

const (
	// ListSeparator joins single-line lists (emails, websites).
	ListSeparator = ","
	// LineSeparator joins multi-line lists (addresses) and media references.
	LineSeparator = "\n"

	// MaxDocuments is the number of document slots on a card.
	MaxDocuments = 4
	// MaxGallery caps the number of gallery images on a card.
	MaxGallery = 24
	// MaxSlugLength bounds slug size; slugs double as URL path segments.
	MaxSlugLength = 64
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// reservedSlugs are top-level path segments served by fixed routes; a card
// named after one would never be reachable at /{slug}.
var reservedSlugs = map[string]struct{}{
	"api-docs": {},
	"health":   {},
	"media":    {},
	"qr":       {},
	"v1":       {},
	"vcard":    {},
}

// SocialLinks holds optional social network profile links.
type SocialLinks struct {
	Facebook  string
	Instagram string
	LinkedIn  string
	TikTok    string
	Telegram  string
	WhatsApp  string
}

// Profile is an agent card.
//
// Media fields hold opaque references returned by a media store, never bytes.
// Documents is slot-indexed: Documents[i] belongs to slot i+1 and may be empty.
type Profile struct {
	Slug        string
	Name        string
	Company     string
	Role        string
	Bio         string
	PhoneMobile string
	PhoneOffice string
	Emails      []string
	Websites    []string
	Addresses   []string
	Social      SocialLinks
	PEC         string
	VATNumber   string
	SDICode     string
	Notes       string
	PhotoURL    string
	Documents   []string
	Gallery     []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NormalizeSlug trims and lowercases s.
func NormalizeSlug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidSlug reports whether s is a normalized, URL-safe slug that does not
// shadow a fixed route.
func ValidSlug(s string) bool {
	if _, reserved := reservedSlugs[s]; reserved {
		return false
	}
	return len(s) <= MaxSlugLength && slugPattern.MatchString(s)
}

// SplitList splits a serialized list on sep, trimming entries and dropping empty ones.
func SplitList(s, sep string) []string {
	var out []string
	for part := range strings.SplitSeq(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// JoinList serializes values with sep. Values must not contain sep.
func JoinList(values []string, sep string) string {
	return strings.Join(values, sep)
}

// Clone returns a deep copy of p.
func (p *Profile) Clone() *Profile {
	c := *p
	c.Emails = slices.Clone(p.Emails)
	c.Websites = slices.Clone(p.Websites)
	c.Addresses = slices.Clone(p.Addresses)
	c.Documents = slices.Clone(p.Documents)
	c.Gallery = slices.Clone(p.Gallery)
	return &c
}

// Validate checks the invariants every stored card must satisfy.
func (p *Profile) Validate() error {
	if !ValidSlug(p.Slug) {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, p.Slug)
	}
	if len(p.Documents) > MaxDocuments {
		return fmt.Errorf("%w: %d > %d", ErrTooManyDocuments, len(p.Documents), MaxDocuments)
	}
	checks := []struct {
		field  string
		values []string
		seps   []string
	}{
		{"emails", p.Emails, []string{ListSeparator, LineSeparator}},
		{"websites", p.Websites, []string{ListSeparator, LineSeparator}},
		{"addresses", p.Addresses, []string{LineSeparator}},
		{"documents", p.Documents, []string{LineSeparator}},
		{"gallery", p.Gallery, []string{LineSeparator}},
	}
	for _, c := range checks {
		for _, v := range c.values {
			for _, sep := range c.seps {
				if strings.Contains(v, sep) {
					return fmt.Errorf("%w: %s entry %q", ErrSeparatorInValue, c.field, v)
				}
			}
		}
	}
	return nil
}

// now is the repository clock. Firestore keeps microseconds, so every backend does.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// prepareCreate returns the copy of p that a store commits on create.
func prepareCreate(p *Profile) (*Profile, error) {
	next := p.Clone()
	next.Slug = NormalizeSlug(next.Slug)
	ts := now()
	next.CreatedAt = ts
	next.UpdatedAt = ts
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return next, nil
}

// applyUpdate runs mutate on a copy of current and restamps it.
func applyUpdate(current *Profile, mutate func(*Profile) error) (*Profile, error) {
	next := current.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	next.Slug = NormalizeSlug(next.Slug)
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = now()
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return next, nil
}
