package directory

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	applog "github.com/janisto/echo-cards/internal/platform/logging"
	"github.com/janisto/echo-cards/internal/service/media"
	"github.com/janisto/echo-cards/internal/service/profile"
)

// resolved holds the new media references of one write. Empty photo and
// absent document slots mean "keep the previous reference".
type resolved struct {
	photo     string
	documents map[int]string
	gallery   []string
	failures  []UploadFailure
}

// resolve stores every upload before the record is touched. Each slot is
// independent: a failed slot is recorded and the others proceed.
// galleryRoom is how many gallery references may still be added.
func (s *Service) resolve(ctx context.Context, fields *Fields, uploads Uploads, galleryRoom int) *resolved {
	r := &resolved{documents: make(map[int]string)}

	if uploads.Photo != nil {
		if ref, ok := s.save(ctx, r, photoSlot, media.FolderPhotos, *uploads.Photo); ok {
			r.photo = ref
		}
	} else if fields.PhotoURL != "" {
		r.photo = fields.PhotoURL
	}

	for _, slot := range sortedSlots(uploads.Documents) {
		if slot < 1 || slot > profile.MaxDocuments {
			r.fail(documentSlot(slot), fmt.Errorf("%w: %d", ErrInvalidSlot, slot))
		}
	}
	for slot := 1; slot <= profile.MaxDocuments; slot++ {
		if file := uploads.Documents[slot]; file != nil {
			if ref, ok := s.save(ctx, r, documentSlot(slot), media.FolderDocuments, *file); ok {
				r.documents[slot] = ref
			}
			continue
		}
		if ref := fields.documentURL(slot); ref != "" {
			r.documents[slot] = ref
		}
	}

	room := max(galleryRoom, 0)
	for i, ref := range fields.galleryURLs() {
		if len(r.gallery) >= room {
			r.fail(fmt.Sprintf("gallery_urls[%d]", i), ErrGalleryFull)
			continue
		}
		r.gallery = append(r.gallery, ref)
	}
	for i, file := range uploads.Gallery {
		if len(r.gallery) >= room {
			r.fail(gallerySlot(i), ErrGalleryFull)
			continue
		}
		if ref, ok := s.save(ctx, r, gallerySlot(i), media.FolderGallery, file); ok {
			r.gallery = append(r.gallery, ref)
		}
	}

	return r
}

func (s *Service) save(ctx context.Context, r *resolved, slot string, folder media.Folder, file media.File) (string, bool) {
	var (
		ref string
		err error
	)
	if s.store == nil {
		err = &media.StorageError{Kind: media.ErrUnconfigured, Folder: folder}
	} else {
		ref, err = s.store.Save(ctx, folder, file)
	}
	if err != nil {
		applog.LogWarn(ctx, "media upload failed",
			slog.String("slot", slot),
			slog.String("folder", string(folder)),
			slog.String("error", err.Error()))
		r.fail(slot, err)
		return "", false
	}
	applog.LogDebug(ctx, "media stored", slog.String("slot", slot), slog.String("ref", ref))
	return ref, true
}

func (r *resolved) fail(slot string, err error) {
	r.failures = append(r.failures, UploadFailure{Slot: slot, Err: err})
}

// merge applies the resolved references to p. It runs inside repository
// mutators, which may be retried, so it must not modify r. Gallery items
// that no longer fit under maxGallery are returned as failures.
func (r *resolved) merge(p *profile.Profile, replaceGallery bool, maxGallery int) []UploadFailure {
	if r.photo != "" {
		p.PhotoURL = r.photo
	}

	for slot, ref := range r.documents {
		for len(p.Documents) < slot {
			p.Documents = append(p.Documents, "")
		}
		p.Documents[slot-1] = ref
	}
	for len(p.Documents) > 0 && p.Documents[len(p.Documents)-1] == "" {
		p.Documents = p.Documents[:len(p.Documents)-1]
	}

	if len(r.gallery) == 0 {
		return nil
	}
	base := p.Gallery
	if replaceGallery {
		base = nil
	}
	room := max(maxGallery-len(base), 0)
	added := r.gallery[:min(room, len(r.gallery))]
	p.Gallery = append(slices.Clone(base), added...)

	var dropped []UploadFailure
	for range r.gallery[len(added):] {
		dropped = append(dropped, UploadFailure{Slot: "gallery", Err: ErrGalleryFull})
	}
	return dropped
}

func sortedSlots(m map[int]*media.File) []int {
	slots := make([]int, 0, len(m))
	for slot := range m {
		slots = append(slots, slot)
	}
	slices.Sort(slots)
	return slots
}
