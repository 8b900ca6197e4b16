package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	applog "github.com/janisto/echo-cards/internal/platform/logging"
)

const cardsCollection = "cards"

// FirestoreStore implements Repository on a Firestore collection.
// Document IDs are normalized slugs; renames run inside a transaction.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a card store backed by client.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

type socialDocument struct {
	Facebook  string `firestore:"facebook,omitempty"`
	Instagram string `firestore:"instagram,omitempty"`
	LinkedIn  string `firestore:"linkedin,omitempty"`
	TikTok    string `firestore:"tiktok,omitempty"`
	Telegram  string `firestore:"telegram,omitempty"`
	WhatsApp  string `firestore:"whatsapp,omitempty"`
}

type cardDocument struct {
	Slug        string         `firestore:"slug"`
	Name        string         `firestore:"name"`
	Company     string         `firestore:"company"`
	Role        string         `firestore:"role"`
	Bio         string         `firestore:"bio"`
	PhoneMobile string         `firestore:"phoneMobile"`
	PhoneOffice string         `firestore:"phoneOffice"`
	Emails      []string       `firestore:"emails"`
	Websites    []string       `firestore:"websites"`
	Addresses   []string       `firestore:"addresses"`
	Social      socialDocument `firestore:"social"`
	PEC         string         `firestore:"pec"`
	VATNumber   string         `firestore:"vatNumber"`
	SDICode     string         `firestore:"sdiCode"`
	Notes       string         `firestore:"notes"`
	PhotoURL    string         `firestore:"photoUrl"`
	Documents   []string       `firestore:"documents"`
	Gallery     []string       `firestore:"gallery"`
	CreatedAt   time.Time      `firestore:"createdAt"`
	UpdatedAt   time.Time      `firestore:"updatedAt"`
}

func toDocument(p *Profile) cardDocument {
	return cardDocument{
		Slug:        p.Slug,
		Name:        p.Name,
		Company:     p.Company,
		Role:        p.Role,
		Bio:         p.Bio,
		PhoneMobile: p.PhoneMobile,
		PhoneOffice: p.PhoneOffice,
		Emails:      p.Emails,
		Websites:    p.Websites,
		Addresses:   p.Addresses,
		Social:      socialDocument(p.Social),
		PEC:         p.PEC,
		VATNumber:   p.VATNumber,
		SDICode:     p.SDICode,
		Notes:       p.Notes,
		PhotoURL:    p.PhotoURL,
		Documents:   p.Documents,
		Gallery:     p.Gallery,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func fromSnapshot(snap *firestore.DocumentSnapshot) (*Profile, error) {
	var d cardDocument
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("decode card %s: %w", snap.Ref.ID, err)
	}
	return &Profile{
		Slug:        d.Slug,
		Name:        d.Name,
		Company:     d.Company,
		Role:        d.Role,
		Bio:         d.Bio,
		PhoneMobile: d.PhoneMobile,
		PhoneOffice: d.PhoneOffice,
		Emails:      d.Emails,
		Websites:    d.Websites,
		Addresses:   d.Addresses,
		Social:      SocialLinks(d.Social),
		PEC:         d.PEC,
		VATNumber:   d.VATNumber,
		SDICode:     d.SDICode,
		Notes:       d.Notes,
		PhotoURL:    d.PhotoURL,
		Documents:   d.Documents,
		Gallery:     d.Gallery,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}, nil
}

func (s *FirestoreStore) doc(slug string) *firestore.DocumentRef {
	return s.client.Collection(cardsCollection).Doc(slug)
}

func (s *FirestoreStore) Create(ctx context.Context, p *Profile) (*Profile, error) {
	next, err := prepareCreate(p)
	if err != nil {
		return nil, err
	}

	if _, err := s.doc(next.Slug).Create(ctx, toDocument(next)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, ErrDuplicateSlug
		}
		logStoreError(ctx, "create", next.Slug, err)
		return nil, fmt.Errorf("create card: %w", err)
	}

	return next, nil
}

func (s *FirestoreStore) Get(ctx context.Context, slug string) (*Profile, error) {
	key := NormalizeSlug(slug)
	if !ValidSlug(key) {
		return nil, ErrNotFound
	}

	snap, err := s.doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		logStoreError(ctx, "get", key, err)
		return nil, fmt.Errorf("get card: %w", err)
	}

	return fromSnapshot(snap)
}

func (s *FirestoreStore) Update(ctx context.Context, slug string, mutate func(*Profile) error) (*Profile, error) {
	key := NormalizeSlug(slug)
	if !ValidSlug(key) {
		return nil, ErrNotFound
	}

	var result *Profile
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		oldRef := s.doc(key)
		snap, err := tx.Get(oldRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}
		current, err := fromSnapshot(snap)
		if err != nil {
			return err
		}

		next, err := applyUpdate(current, mutate)
		if err != nil {
			return err
		}

		if next.Slug == key {
			if err := tx.Set(oldRef, toDocument(next)); err != nil {
				return err
			}
			result = next
			return nil
		}

		newRef := s.doc(next.Slug)
		if _, err := tx.Get(newRef); err == nil {
			return ErrDuplicateSlug
		} else if status.Code(err) != codes.NotFound {
			return err
		}
		if err := tx.Create(newRef, toDocument(next)); err != nil {
			return err
		}
		if err := tx.Delete(oldRef); err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, ErrDuplicateSlug
		}
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrDuplicateSlug) {
			logStoreError(ctx, "update", key, err)
		}
		return nil, err
	}

	return result, nil
}

func (s *FirestoreStore) Delete(ctx context.Context, slug string) (bool, error) {
	key := NormalizeSlug(slug)
	if !ValidSlug(key) {
		return false, nil
	}

	if _, err := s.doc(key).Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		logStoreError(ctx, "delete", key, err)
		return false, fmt.Errorf("delete card: %w", err)
	}

	return true, nil
}

func (s *FirestoreStore) List(ctx context.Context) ([]*Profile, error) {
	iter := s.client.Collection(cardsCollection).Documents(ctx)
	defer iter.Stop()

	var out []*Profile
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			logStoreError(ctx, "list", "", err)
			return nil, fmt.Errorf("list cards: %w", err)
		}
		p, err := fromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, nil
}

func logStoreError(ctx context.Context, op, slug string, err error) {
	applog.LogError(ctx, "card store operation failed", err,
		slog.String("op", op),
		slog.String("slug", slug),
		slog.String("category", categorizeError(err)))
}

// categorizeError returns a stable label for logging.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, ErrDuplicateSlug):
		return "duplicate_slug"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case status.Code(err) == codes.Unavailable, status.Code(err) == codes.DeadlineExceeded:
		return "unavailable"
	default:
		return "internal_error"
	}
}

var _ Repository = (*FirestoreStore)(nil)
