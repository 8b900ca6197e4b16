package media

import (
	"context"
	"errors"
)

// FallbackStore saves to Primary and falls through to Secondary only when
// Primary reports ErrUnconfigured. Any other failure is returned as is.
type FallbackStore struct {
	Primary   Store
	Secondary Store
}

func NewFallbackStore(primary, secondary Store) *FallbackStore {
	return &FallbackStore{Primary: primary, Secondary: secondary}
}

func (s *FallbackStore) Save(ctx context.Context, folder Folder, file File) (string, error) {
	ref, err := s.Primary.Save(ctx, folder, file)
	if err == nil || !errors.Is(err, ErrUnconfigured) || s.Secondary == nil {
		return ref, err
	}
	return s.Secondary.Save(ctx, folder, file)
}

var _ Store = (*FallbackStore)(nil)
