package media

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/require"

	"github.com/janisto/echo-cards/internal/testutil"
)

const emulatorBucket = testutil.EmulatorProjectID + ".appspot.com"

func TestBucketStore_Emulator(t *testing.T) {
	host := testutil.RequireEmulator(t, testutil.StorageEmulator)
	t.Setenv("STORAGE_EMULATOR_HOST", host)

	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	bucket := client.Bucket(emulatorBucket)
	store := NewBucketStore(bucket, nil)

	ref, err := store.Save(ctx, FolderDocuments, File{Name: "Price List.pdf", Body: bytes.NewReader(pdfBytes)})
	require.NoError(t, err)

	prefix := publicStorageHost + "/" + emulatorBucket + "/"
	require.True(t, strings.HasPrefix(ref, prefix+"documents/price-list-"), ref)

	object := strings.TrimPrefix(ref, prefix)
	t.Cleanup(func() { _ = bucket.Object(object).Delete(ctx) })

	r, err := bucket.Object(object).NewReader(ctx)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, pdfBytes, data)
	require.Equal(t, "application/pdf", r.Attrs.ContentType)

	second, err := store.Save(ctx, FolderDocuments, File{Name: "Price List.pdf", Body: bytes.NewReader(pdfBytes)})
	require.NoError(t, err)
	require.NotEqual(t, ref, second)
	t.Cleanup(func() { _ = bucket.Object(strings.TrimPrefix(second, prefix)).Delete(ctx) })
}

func TestBucketStore_PublicURL(t *testing.T) {
	store := &BucketStore{name: "cards-media"}
	require.Equal(t, "https://storage.googleapis.com/cards-media/photos/a.png", store.PublicURL("photos/a.png"))
}
