// Package config loads service settings from the environment. A .env file
// in the working directory is loaded first by the server binary.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Profile store backends.
const (
	StoreMemory    = "memory"
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"
)

// Media backends.
const (
	MediaLocal    = "local"
	MediaFirebase = "firebase"
	MediaInline   = "inline"
)

// Auth modes.
const (
	AuthFirebase = "firebase"
	AuthToken    = "token"
)

// DevProjectID is the Firebase project used in development when none is set.
const DevProjectID = "demo-test-project"

type Config struct {
	Port        string // PORT (default: 8080)
	Environment string // APP_ENVIRONMENT (default: production)
	LogLevel    string // LOG_LEVEL: debug, info, warn, error (default: info)
	BaseURL     string // BASE_URL: absolute URL public links are built on; empty uses the request origin

	CORSAllowOrigins []string // CORS_ALLOW_ORIGINS: comma separated origins (default: any)

	ProfileStore string // PROFILE_STORE: memory, sqlite, firestore (default: sqlite)
	DatabaseFile string // DATABASE_FILE (default: cards.db)

	MediaBackend   string // MEDIA_BACKEND: local, firebase, inline (default: local)
	MediaRoot      string // MEDIA_ROOT (default: media)
	MediaURLPrefix string // MEDIA_URL_PREFIX (default: /media)
	MaxUploadBytes int64  // MAX_UPLOAD_BYTES per file (default: 10 MiB)

	MaxRequestBytes int64 // MAX_REQUEST_BYTES per request body (default: 64 MiB)

	GalleryMode string // GALLERY_MODE: append, replace (default: append)
	MaxGallery  int    // MAX_GALLERY (default: 24)
	QRSize      int    // QR_SIZE in pixels (default: 512)

	FirebaseProjectID     string // FIREBASE_PROJECT_ID
	FirebaseStorageBucket string // FIREBASE_STORAGE_BUCKET

	AuthMode   string // AUTH_MODE: firebase, token (default: token)
	AdminToken string // ADMIN_TOKEN, required in token mode
	// AUTH_EDITOR_CLAIM: custom claim a Firebase user needs set to true.
	// Empty admits every verified user.
	AuthEditorClaim string

	OpenAPISpecPath string        // OPENAPI_SPEC_PATH (default: api-docs/openapi.json)
	ShutdownTimeout time.Duration // SHUTDOWN_TIMEOUT (default: 10s)
}

// Load reads the configuration from the environment, filling defaults.
func Load() Config {
	cfg := Config{
		Port:                  getEnvOrDefault("PORT", "8080"),
		Environment:           getEnvOrDefault("APP_ENVIRONMENT", "production"),
		LogLevel:              getEnvOrDefault("LOG_LEVEL", "info"),
		BaseURL:               strings.TrimSpace(os.Getenv("BASE_URL")),
		CORSAllowOrigins:      getEnvListOrDefault("CORS_ALLOW_ORIGINS", nil),
		ProfileStore:          strings.ToLower(getEnvOrDefault("PROFILE_STORE", StoreSQLite)),
		DatabaseFile:          getEnvOrDefault("DATABASE_FILE", "cards.db"),
		MediaBackend:          strings.ToLower(getEnvOrDefault("MEDIA_BACKEND", MediaLocal)),
		MediaRoot:             getEnvOrDefault("MEDIA_ROOT", "media"),
		MediaURLPrefix:        getEnvOrDefault("MEDIA_URL_PREFIX", "/media"),
		MaxUploadBytes:        int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", 10<<20)),
		MaxRequestBytes:       int64(getEnvIntOrDefault("MAX_REQUEST_BYTES", 64<<20)),
		GalleryMode:           strings.ToLower(getEnvOrDefault("GALLERY_MODE", "append")),
		MaxGallery:            getEnvIntOrDefault("MAX_GALLERY", 24),
		QRSize:                getEnvIntOrDefault("QR_SIZE", 512),
		FirebaseProjectID:     os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseStorageBucket: os.Getenv("FIREBASE_STORAGE_BUCKET"),
		AuthMode:              strings.ToLower(getEnvOrDefault("AUTH_MODE", AuthToken)),
		AdminToken:            os.Getenv("ADMIN_TOKEN"),
		AuthEditorClaim:       strings.TrimSpace(os.Getenv("AUTH_EDITOR_CLAIM")),
		OpenAPISpecPath:       getEnvOrDefault("OPENAPI_SPEC_PATH", "api-docs/openapi.json"),
		ShutdownTimeout:       getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if cfg.FirebaseProjectID == "" && cfg.IsDevelopment() {
		cfg.FirebaseProjectID = DevProjectID
	}
	return cfg
}

// IsDevelopment reports whether the service runs in local development.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// NeedsFirebase reports whether any configured backend uses Firebase.
func (c Config) NeedsFirebase() bool {
	return c.ProfileStore == StoreFirestore || c.MediaBackend == MediaFirebase || c.AuthMode == AuthFirebase
}

// Validate reports every invalid or missing setting.
func (c Config) Validate() error {
	var errs []error

	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || !u.IsAbs() || u.Host == "" {
			errs = append(errs, fmt.Errorf("BASE_URL must be an absolute URL, got %q", c.BaseURL))
		}
	}

	for _, origin := range c.CORSAllowOrigins {
		if origin == "*" {
			continue
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" || (u.Path != "" && u.Path != "/") {
			errs = append(errs, fmt.Errorf("CORS_ALLOW_ORIGINS entry %q must be scheme://host", origin))
		}
	}

	switch c.ProfileStore {
	case StoreMemory, StoreFirestore:
	case StoreSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("DATABASE_FILE is required for the sqlite store"))
		}
	default:
		errs = append(errs, fmt.Errorf("PROFILE_STORE %q is not one of memory, sqlite, firestore", c.ProfileStore))
	}

	switch c.MediaBackend {
	case MediaLocal:
		if !strings.HasPrefix(c.MediaURLPrefix, "/") {
			errs = append(errs, fmt.Errorf("MEDIA_URL_PREFIX must start with /, got %q", c.MediaURLPrefix))
		}
	case MediaFirebase:
		if c.FirebaseStorageBucket == "" {
			errs = append(errs, errors.New("FIREBASE_STORAGE_BUCKET is required for the firebase media backend"))
		}
	case MediaInline:
	default:
		errs = append(errs, fmt.Errorf("MEDIA_BACKEND %q is not one of local, firebase, inline", c.MediaBackend))
	}

	switch c.AuthMode {
	case AuthFirebase:
	case AuthToken:
		if c.AdminToken == "" {
			errs = append(errs, errors.New("ADMIN_TOKEN is required when AUTH_MODE is token"))
		}
	default:
		errs = append(errs, fmt.Errorf("AUTH_MODE %q is not one of firebase, token", c.AuthMode))
	}

	if c.GalleryMode != "append" && c.GalleryMode != "replace" {
		errs = append(errs, fmt.Errorf("GALLERY_MODE %q is not one of append, replace", c.GalleryMode))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	if c.MaxRequestBytes < c.MaxUploadBytes {
		errs = append(errs, errors.New("MAX_REQUEST_BYTES must be at least MAX_UPLOAD_BYTES"))
	}
	if c.NeedsFirebase() && c.FirebaseProjectID == "" {
		errs = append(errs, errors.New("FIREBASE_PROJECT_ID is required"))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	var list []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			list = append(list, v)
		}
	}
	if len(list) == 0 {
		return defaultValue
	}
	return list
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Bare integers are seconds.
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return defaultValue
}
