package media

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

const publicStorageHost = "https://storage.googleapis.com"

// BucketStore writes objects to a Cloud Storage bucket, typically the
// Firebase project's default bucket.
type BucketStore struct {
	bucket   *storage.BucketHandle
	name     string
	policies Policies
}

// NewBucketStore creates a store on bucket. A nil bucket leaves the store
// unconfigured.
func NewBucketStore(bucket *storage.BucketHandle, policies Policies) *BucketStore {
	if policies == nil {
		policies = DefaultPolicies(0)
	}
	s := &BucketStore{bucket: bucket, policies: policies}
	if bucket != nil {
		s.name = bucket.BucketName()
	}
	return s
}

func (s *BucketStore) Save(ctx context.Context, folder Folder, file File) (string, error) {
	if s.bucket == nil {
		return "", storageError(ErrUnconfigured, folder, nil)
	}

	obj, err := s.policies.Prepare(folder, file)
	if err != nil {
		return "", err
	}

	w := s.bucket.Object(obj.Name).
		If(storage.Conditions{DoesNotExist: true}).
		NewWriter(ctx)
	w.ContentType = obj.ContentType
	w.CacheControl = "public, max-age=31536000, immutable"

	if _, err := io.Copy(w, obj.reader()); err != nil {
		_ = w.Close()
		return "", storageError(ErrWriteFailed, folder, fmt.Errorf("upload %s: %w", obj.Name, err))
	}
	if err := w.Close(); err != nil {
		return "", storageError(ErrWriteFailed, folder, fmt.Errorf("finalize %s: %w", obj.Name, err))
	}

	return s.PublicURL(obj.Name), nil
}

// PublicURL returns the download URL for an object in the bucket.
func (s *BucketStore) PublicURL(object string) string {
	return fmt.Sprintf("%s/%s/%s", publicStorageHost, s.name, object)
}

var _ Store = (*BucketStore)(nil)
