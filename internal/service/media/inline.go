package media

import (
	"context"
	"encoding/base64"
)

// InlineStore encodes the upload itself into a data URI reference.
// The reference grows with the file, so pair it with a small MaxBytes.
type InlineStore struct {
	policies Policies
}

func NewInlineStore(policies Policies) *InlineStore {
	if policies == nil {
		policies = DefaultPolicies(0)
	}
	return &InlineStore{policies: policies}
}

func (s *InlineStore) Save(_ context.Context, folder Folder, file File) (string, error) {
	obj, err := s.policies.Prepare(folder, file)
	if err != nil {
		return "", err
	}
	return "data:" + obj.ContentType + ";base64," + base64.StdEncoding.EncodeToString(obj.Data), nil
}

var _ Store = (*InlineStore)(nil)
