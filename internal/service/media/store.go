// Package media stores card attachments (photos, documents, gallery images)
// and hands back opaque references the profile repository can persist.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/oklog/ulid/v2"
)

// Folder groups stored objects. It only shapes the reference path.
type Folder string

const (
	FolderPhotos    Folder = "photos"
	FolderGallery   Folder = "gallery"
	FolderDocuments Folder = "documents"
)

// DefaultMaxBytes is the per-file size limit when none is configured.
const DefaultMaxBytes int64 = 10 << 20

// Error kinds carried by StorageError.
var (
	ErrUnconfigured = errors.New("media backend not configured")
	ErrWriteFailed  = errors.New("media write failed")
	ErrRejected     = errors.New("media rejected")
)

// StorageError reports a failed Save. Kind is one of ErrUnconfigured,
// ErrWriteFailed or ErrRejected and matches through errors.Is.
type StorageError struct {
	Kind   error
	Folder Folder
	Err    error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Folder, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Folder, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func storageError(kind error, folder Folder, err error) *StorageError {
	return &StorageError{Kind: kind, Folder: folder, Err: err}
}

// File is an upload as received from a client.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// Store persists a file and returns a reference usable as a URL.
// Every call yields a new reference; existing objects are never overwritten.
type Store interface {
	Save(ctx context.Context, folder Folder, file File) (string, error)
}

// Policy restricts what may be stored in a folder.
type Policy struct {
	MaxBytes   int64
	Types      []string
	Extensions []string
}

var imageTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif"}

// Policies maps each folder to its upload policy.
type Policies map[Folder]Policy

// DefaultPolicies accepts common web images for photos and gallery and PDF
// for documents, each capped at maxBytes (DefaultMaxBytes when <= 0).
func DefaultPolicies(maxBytes int64) Policies {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	images := Policy{
		MaxBytes:   maxBytes,
		Types:      imageTypes,
		Extensions: []string{".jpg", ".jpeg", ".png", ".webp", ".gif"},
	}
	return Policies{
		FolderPhotos:  images,
		FolderGallery: images,
		FolderDocuments: {
			MaxBytes:   maxBytes,
			Types:      []string{"application/pdf"},
			Extensions: []string{".pdf"},
		},
	}
}

// Object is a checked upload ready to be written by a backend.
type Object struct {
	Name        string
	ContentType string
	Data        []byte
}

// Prepare reads file, checks it against the folder policy and assigns a
// fresh object name of the form <folder>/<stem>-<ulid><ext>.
func (ps Policies) Prepare(folder Folder, file File) (*Object, error) {
	policy, ok := ps[folder]
	if !ok {
		return nil, storageError(ErrRejected, folder, errors.New("unknown folder"))
	}
	if file.Body == nil {
		return nil, storageError(ErrRejected, folder, errors.New("empty upload"))
	}

	data, err := io.ReadAll(io.LimitReader(file.Body, policy.MaxBytes+1))
	if err != nil {
		return nil, storageError(ErrWriteFailed, folder, fmt.Errorf("read upload: %w", err))
	}
	if len(data) == 0 {
		return nil, storageError(ErrRejected, folder, errors.New("empty upload"))
	}
	if int64(len(data)) > policy.MaxBytes {
		return nil, storageError(ErrRejected, folder, fmt.Errorf("file exceeds %d bytes", policy.MaxBytes))
	}

	detected := mimetype.Detect(data)
	if !policy.allowsType(detected) {
		return nil, storageError(ErrRejected, folder, fmt.Errorf("content type %s not allowed", detected.String()))
	}

	if declared := declaredType(file.ContentType); declared != "" && !slices.Contains(policy.Types, declared) {
		return nil, storageError(ErrRejected, folder, fmt.Errorf("declared type %s not allowed", declared))
	}

	ext := strings.ToLower(path.Ext(file.Name))
	if ext != "" && !slices.Contains(policy.Extensions, ext) {
		return nil, storageError(ErrRejected, folder, fmt.Errorf("extension %s not allowed", ext))
	}
	if ext == "" {
		ext = detected.Extension()
	}

	return &Object{
		Name:        objectName(folder, file.Name, ext),
		ContentType: detected.String(),
		Data:        data,
	}, nil
}

func (p Policy) allowsType(m *mimetype.MIME) bool {
	for _, t := range p.Types {
		if m.Is(t) {
			return true
		}
	}
	return false
}

// declaredType returns the media type a client declared, ignoring
// parameters and the generic octet-stream placeholder.
func declaredType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	if mediaType == "application/octet-stream" {
		return ""
	}
	return mediaType
}

const maxStemLength = 40

func objectName(folder Folder, filename, ext string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	stem := sanitizeStem(strings.TrimSuffix(base, path.Ext(base)))
	return fmt.Sprintf("%s/%s-%s%s", folder, stem, strings.ToLower(ulid.Make().String()), ext)
}

func sanitizeStem(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= maxStemLength {
			break
		}
	}
	stem := strings.TrimRight(b.String(), "-")
	if stem == "" {
		return "file"
	}
	return stem
}

// reader returns the object bytes as a fresh reader.
func (o *Object) reader() io.Reader { return bytes.NewReader(o.Data) }
