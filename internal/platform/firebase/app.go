// Package firebase initializes the Firebase app and the clients the
// service needs from it.
package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
)

// Config holds Firebase settings.
type Config struct {
	ProjectID string
	// StorageBucket is the default bucket for media. Empty leaves
	// Clients.Bucket nil.
	StorageBucket string
}

// Clients holds initialized Firebase service clients.
type Clients struct {
	Auth      *auth.Client
	Firestore *firestore.Client
	Bucket    *gcs.BucketHandle
}

// InitializeClients creates the Firebase app and its Auth, Firestore and
// Storage clients.
func InitializeClients(ctx context.Context, cfg Config) (*Clients, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
	})
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth: %w", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore: %w", err)
	}

	clients := &Clients{Auth: authClient, Firestore: fsClient}
	if cfg.StorageBucket == "" {
		return clients, nil
	}

	storageClient, err := app.Storage(ctx)
	if err != nil {
		_ = fsClient.Close()
		return nil, fmt.Errorf("firebase storage: %w", err)
	}
	bucket, err := storageClient.DefaultBucket()
	if err != nil {
		_ = fsClient.Close()
		return nil, fmt.Errorf("storage bucket %q: %w", cfg.StorageBucket, err)
	}
	clients.Bucket = bucket
	return clients, nil
}

// Close releases the Firestore connection. It is safe on a partially
// initialized Clients.
func (c *Clients) Close() error {
	if c == nil || c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}
