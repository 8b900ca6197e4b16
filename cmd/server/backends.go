package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/janisto/echo-cards/internal/platform/auth"
	"github.com/janisto/echo-cards/internal/platform/config"
	"github.com/janisto/echo-cards/internal/platform/firebase"
	applog "github.com/janisto/echo-cards/internal/platform/logging"
	"github.com/janisto/echo-cards/internal/service/media"
	"github.com/janisto/echo-cards/internal/service/profile"
)

// openRepository returns the configured profile store and a function that
// releases it.
func openRepository(ctx context.Context, cfg config.Config, clients *firebase.Clients) (profile.Repository, func(), error) {
	switch cfg.ProfileStore {
	case config.StoreMemory:
		applog.LogWarn(ctx, "using in-memory profile store; cards are lost on restart")
		return profile.NewMemoryStore(), func() {}, nil
	case config.StoreFirestore:
		return profile.NewFirestoreStore(clients.Firestore), func() {}, nil
	case config.StoreSQLite:
		store, err := profile.OpenSQLiteStore(ctx, cfg.DatabaseFile)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				applog.LogError(ctx, "sqlite close error", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown profile store %q", cfg.ProfileStore)
	}
}

// newMediaStore returns the configured media store and, when objects are
// written to local disk, the directory to serve them from.
func newMediaStore(cfg config.Config, clients *firebase.Clients) (media.Store, string, error) {
	policies := media.DefaultPolicies(cfg.MaxUploadBytes)

	switch cfg.MediaBackend {
	case config.MediaInline:
		return media.NewInlineStore(policies), "", nil
	case config.MediaLocal:
		if err := os.MkdirAll(cfg.MediaRoot, 0o755); err != nil {
			return nil, "", fmt.Errorf("create media root: %w", err)
		}
		return media.NewLocalStore(cfg.MediaRoot, cfg.MediaURLPrefix, policies), cfg.MediaRoot, nil
	case config.MediaFirebase:
		bucket := media.NewBucketStore(clients.Bucket, policies)
		// Local disk takes over only if the bucket handle is missing.
		if cfg.MediaRoot == "" || !strings.HasPrefix(cfg.MediaURLPrefix, "/") {
			return bucket, "", nil
		}
		if err := os.MkdirAll(cfg.MediaRoot, 0o755); err != nil {
			return nil, "", fmt.Errorf("create media root: %w", err)
		}
		local := media.NewLocalStore(cfg.MediaRoot, cfg.MediaURLPrefix, policies)
		return media.NewFallbackStore(bucket, local), cfg.MediaRoot, nil
	default:
		return nil, "", fmt.Errorf("unknown media backend %q", cfg.MediaBackend)
	}
}

func newVerifier(cfg config.Config, clients *firebase.Clients) auth.Verifier {
	if cfg.AuthMode == config.AuthFirebase {
		return auth.NewFirebaseVerifier(clients.Auth, cfg.AuthEditorClaim)
	}
	return auth.NewTokenVerifier(cfg.AdminToken)
}
