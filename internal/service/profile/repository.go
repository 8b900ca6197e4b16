package profile

import "context"

// Repository stores agent cards keyed by normalized slug.
//
// Implementations serialize writes so that two creates or renames targeting
// the same slug never both succeed; the loser gets ErrDuplicateSlug.
// Returned profiles are copies owned by the caller.
type Repository interface {
	// Create commits p under its normalized slug and stamps both timestamps.
	Create(ctx context.Context, p *Profile) (*Profile, error)
	// Get looks up a card case-insensitively.
	Get(ctx context.Context, slug string) (*Profile, error)
	// Update applies mutate to a copy of the stored card and commits it.
	// If mutate changes the slug, the old key is removed and the new key
	// written atomically.
	Update(ctx context.Context, slug string, mutate func(*Profile) error) (*Profile, error)
	// Delete removes a card. Deleting an absent slug is not an error;
	// the boolean reports whether anything was removed.
	Delete(ctx context.Context, slug string) (bool, error)
	// List returns every card in no particular order.
	List(ctx context.Context) ([]*Profile, error)
}
