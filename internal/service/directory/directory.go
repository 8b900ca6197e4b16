// Package directory orchestrates card writes and reads: it validates field
// sets, stores uploaded media, commits records and derives artifacts.
package directory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	applog "github.com/janisto/echo-cards/internal/platform/logging"
	"github.com/janisto/echo-cards/internal/platform/validate"
	"github.com/janisto/echo-cards/internal/service/artifact"
	"github.com/janisto/echo-cards/internal/service/media"
	"github.com/janisto/echo-cards/internal/service/profile"
)

// GalleryMode decides how gallery uploads combine with existing images.
type GalleryMode string

const (
	GalleryAppend  GalleryMode = "append"
	GalleryReplace GalleryMode = "replace"
)

var (
	// ErrNoBaseURL is returned when neither a configured base URL nor a
	// request origin is available to build a public URL.
	ErrNoBaseURL = errors.New("no base URL available")
	// ErrGalleryFull is reported for gallery items past the size limit.
	ErrGalleryFull = errors.New("gallery is full")
	// ErrInvalidSlot is reported for document uploads outside slots 1-4.
	ErrInvalidSlot = errors.New("invalid document slot")
)

// Service is the card directory.
type Service struct {
	repo        profile.Repository
	store       media.Store
	validator   *validate.AppValidator
	baseURL     string
	galleryMode GalleryMode
	maxGallery  int
	qrSize      int
	actor       func(context.Context) string
}

// Option configures a Service.
type Option func(*Service)

// WithBaseURL sets the absolute base URL used for public links.
func WithBaseURL(baseURL string) Option {
	return func(s *Service) { s.baseURL = strings.TrimSpace(baseURL) }
}

// WithGalleryMode sets the default gallery policy.
func WithGalleryMode(mode GalleryMode) Option {
	return func(s *Service) {
		if mode == GalleryReplace {
			s.galleryMode = GalleryReplace
			return
		}
		s.galleryMode = GalleryAppend
	}
}

// WithMaxGallery caps the gallery size. Values outside 1..profile.MaxGallery are ignored.
func WithMaxGallery(n int) Option {
	return func(s *Service) {
		if n > 0 && n <= profile.MaxGallery {
			s.maxGallery = n
		}
	}
}

// WithQRSize sets the QR image edge length in pixels.
func WithQRSize(px int) Option {
	return func(s *Service) {
		if px > 0 {
			s.qrSize = px
		}
	}
}

// WithValidator shares an existing validator. The slug rule is registered on it.
func WithValidator(v *validate.AppValidator) Option {
	return func(s *Service) { s.validator = v }
}

// WithActor sets how the acting user is resolved for audit events.
func WithActor(fn func(context.Context) string) Option {
	return func(s *Service) { s.actor = fn }
}

// New creates a directory over repo and store. A nil store makes every
// upload fail as unconfigured while the rest of the write proceeds.
func New(repo profile.Repository, store media.Store, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		store:       store,
		galleryMode: GalleryAppend,
		maxGallery:  profile.MaxGallery,
		qrSize:      artifact.DefaultQRSize,
		actor:       func(context.Context) string { return "" },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.validator == nil {
		s.validator = validate.New()
	}
	if err := s.validator.RegisterRule("slug", profile.ValidSlug, "must contain only lowercase letters, digits and single hyphens, and not name a reserved path"); err != nil {
		panic(fmt.Sprintf("directory: register slug rule: %v", err))
	}
	return s
}

// Create validates fields, stores uploads and commits a new card.
func (s *Service) Create(ctx context.Context, fields Fields, uploads Uploads) (*Result, error) {
	fields.normalize()
	if err := s.validator.Validate(fields); err != nil {
		return nil, err
	}

	// Checked up front so a taken slug does not leave orphaned uploads.
	if err := s.ensureAbsent(ctx, fields.Slug); err != nil {
		return nil, err
	}

	r := s.resolve(ctx, &fields, uploads, s.maxGallery)

	p := &profile.Profile{}
	fields.apply(p)
	dropped := r.merge(p, true, s.maxGallery)

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		s.auditFailure(ctx, "card.create", fields.Slug, err)
		return nil, err
	}

	result := &Result{Profile: created, Failures: append(r.failures, dropped...)}
	s.audit(ctx, "card.create", created.Slug, map[string]any{
		"upload_failures": len(result.Failures),
	})
	return result, nil
}

// Update replaces the display fields of the card at slug, merges media and
// renames it when fields.Slug differs.
func (s *Service) Update(ctx context.Context, slug string, fields Fields, uploads Uploads) (*Result, error) {
	key := profile.NormalizeSlug(slug)
	fields.normalize()
	if err := s.validator.Validate(fields); err != nil {
		return nil, err
	}

	current, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if fields.Slug != current.Slug {
		if err := s.ensureAbsent(ctx, fields.Slug); err != nil {
			return nil, err
		}
	}

	replace := uploads.ReplaceGallery || s.galleryMode == GalleryReplace
	room := s.maxGallery
	if !replace {
		room -= len(current.Gallery)
	}
	r := s.resolve(ctx, &fields, uploads, room)

	var dropped []UploadFailure
	updated, err := s.repo.Update(ctx, key, func(p *profile.Profile) error {
		fields.apply(p)
		dropped = r.merge(p, replace, s.maxGallery)
		return nil
	})
	if err != nil {
		s.auditFailure(ctx, "card.update", key, err)
		return nil, err
	}

	result := &Result{Profile: updated, Failures: append(r.failures, dropped...)}
	details := map[string]any{"upload_failures": len(result.Failures)}
	if updated.Slug != key {
		details["renamed_from"] = key
	}
	s.audit(ctx, "card.update", updated.Slug, details)
	return result, nil
}

// Delete removes the card at slug. Media objects are left in place.
func (s *Service) Delete(ctx context.Context, slug string) error {
	key := profile.NormalizeSlug(slug)
	deleted, err := s.repo.Delete(ctx, key)
	if err != nil {
		s.auditFailure(ctx, "card.delete", key, err)
		return err
	}
	if !deleted {
		return profile.ErrNotFound
	}
	s.audit(ctx, "card.delete", key, nil)
	return nil
}

// Get returns the card at slug.
func (s *Service) Get(ctx context.Context, slug string) (*profile.Profile, error) {
	return s.repo.Get(ctx, slug)
}

// List returns every card sorted by name, case-insensitively, then by slug.
func (s *Service) List(ctx context.Context) ([]*profile.Profile, error) {
	cards, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(cards, func(a, b *profile.Profile) int {
		return cmp.Or(
			cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
			cmp.Compare(a.Slug, b.Slug),
		)
	})
	return cards, nil
}

// VCard renders the card at slug as vCard text.
func (s *Service) VCard(ctx context.Context, slug string) ([]byte, error) {
	p, err := s.repo.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	return artifact.VCard(p), nil
}

// PublicURL returns the public page URL of the card at slug. The configured
// base URL wins over requestOrigin.
func (s *Service) PublicURL(ctx context.Context, slug, requestOrigin string) (string, error) {
	p, err := s.repo.Get(ctx, slug)
	if err != nil {
		return "", err
	}
	base := s.baseURL
	if base == "" {
		base = strings.TrimSpace(requestOrigin)
	}
	if base == "" {
		return "", ErrNoBaseURL
	}
	return artifact.PublicURL(base, p.Slug), nil
}

// QRCode encodes the public URL of the card at slug.
func (s *Service) QRCode(ctx context.Context, slug, requestOrigin string, format artifact.Format) ([]byte, error) {
	link, err := s.PublicURL(ctx, slug, requestOrigin)
	if err != nil {
		return nil, err
	}
	return artifact.QRCode(link, s.qrSize, format)
}

func (s *Service) ensureAbsent(ctx context.Context, slug string) error {
	_, err := s.repo.Get(ctx, slug)
	switch {
	case err == nil:
		return profile.ErrDuplicateSlug
	case errors.Is(err, profile.ErrNotFound):
		return nil
	default:
		return err
	}
}

func (s *Service) audit(ctx context.Context, action, slug string, details map[string]any) {
	applog.Audit(ctx, applog.AuditEvent{
		Action:       action,
		Actor:        s.actor(ctx),
		ResourceType: "card",
		ResourceID:   slug,
		Result:       "success",
		Details:      details,
	})
}

func (s *Service) auditFailure(ctx context.Context, action, slug string, err error) {
	result := "failure"
	switch {
	case errors.Is(err, profile.ErrDuplicateSlug):
		result = "conflict"
	case errors.Is(err, profile.ErrNotFound):
		result = "not_found"
	case errors.Is(err, profile.ErrSeparatorInValue), errors.Is(err, profile.ErrInvalidSlug):
		result = "invalid"
	}
	applog.Audit(ctx, applog.AuditEvent{
		Action:       action,
		Actor:        s.actor(ctx),
		ResourceType: "card",
		ResourceID:   slug,
		Result:       result,
	})
	if result == "failure" {
		applog.LogError(ctx, "card write failed", err, slog.String("action", action), slog.String("slug", slug))
	}
}
