package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes objects below a root directory. References are
// URLPrefix + "/" + object name, served by the HTTP layer.
type LocalStore struct {
	root      string
	urlPrefix string
	policies  Policies
}

// NewLocalStore creates a store rooted at root. An empty root leaves the
// store unconfigured.
func NewLocalStore(root, urlPrefix string, policies Policies) *LocalStore {
	if policies == nil {
		policies = DefaultPolicies(0)
	}
	return &LocalStore{
		root:      root,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		policies:  policies,
	}
}

// Root returns the directory objects are written to.
func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) Save(ctx context.Context, folder Folder, file File) (string, error) {
	if s.root == "" {
		return "", storageError(ErrUnconfigured, folder, nil)
	}
	if err := ctx.Err(); err != nil {
		return "", storageError(ErrWriteFailed, folder, err)
	}

	obj, err := s.policies.Prepare(folder, file)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(s.root, filepath.FromSlash(obj.Name))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", storageError(ErrWriteFailed, folder, err)
	}

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", storageError(ErrWriteFailed, folder, err)
	}
	if _, err := io.Copy(f, obj.reader()); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", storageError(ErrWriteFailed, folder, fmt.Errorf("write %s: %w", obj.Name, err))
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return "", storageError(ErrWriteFailed, folder, errors.Join(fmt.Errorf("close %s", obj.Name), err))
	}

	return s.urlPrefix + "/" + obj.Name, nil
}

var _ Store = (*LocalStore)(nil)
