package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/janisto/echo-cards/internal/http/docs"
	"github.com/janisto/echo-cards/internal/http/health"
	"github.com/janisto/echo-cards/internal/http/public"
	"github.com/janisto/echo-cards/internal/http/v1/routes"
	"github.com/janisto/echo-cards/internal/platform/auth"
	"github.com/janisto/echo-cards/internal/platform/config"
	"github.com/janisto/echo-cards/internal/platform/firebase"
	applog "github.com/janisto/echo-cards/internal/platform/logging"
	appmiddleware "github.com/janisto/echo-cards/internal/platform/middleware"
	"github.com/janisto/echo-cards/internal/platform/respond"
	"github.com/janisto/echo-cards/internal/platform/validate"
	"github.com/janisto/echo-cards/internal/service/directory"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

func main() {
	ctx := context.Background()

	cfg := config.Load()
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		applog.LogFatal(ctx, "invalid log level", err)
	}
	if cfg.IsDevelopment() && cfg.FirebaseProjectID == config.DevProjectID && cfg.NeedsFirebase() {
		applog.LogWarn(ctx, "using "+config.DevProjectID+" for local development")
	}
	if err := cfg.Validate(); err != nil {
		applog.LogFatal(ctx, "invalid configuration", err)
	}

	var firebaseClients *firebase.Clients
	if cfg.NeedsFirebase() {
		var err error
		firebaseClients, err = firebase.InitializeClients(ctx, firebase.Config{
			ProjectID:     cfg.FirebaseProjectID,
			StorageBucket: cfg.FirebaseStorageBucket,
		})
		if err != nil {
			applog.LogFatal(ctx, "firebase init failed", err)
		}
		defer func() {
			if closeErr := firebaseClients.Close(); closeErr != nil {
				applog.LogError(ctx, "firebase close error", closeErr)
			}
		}()
	}

	repo, closeRepo, err := openRepository(ctx, cfg, firebaseClients)
	if err != nil {
		applog.LogFatal(ctx, "profile store init failed", err)
	}
	defer closeRepo()

	store, mediaRoot, err := newMediaStore(cfg, firebaseClients)
	if err != nil {
		applog.LogFatal(ctx, "media store init failed", err)
	}

	verifier := newVerifier(cfg, firebaseClients)

	validator := validate.New()
	dir := directory.New(repo, store,
		directory.WithValidator(validator),
		directory.WithBaseURL(cfg.BaseURL),
		directory.WithGalleryMode(directory.GalleryMode(cfg.GalleryMode)),
		directory.WithMaxGallery(cfg.MaxGallery),
		directory.WithQRSize(cfg.QRSize),
		directory.WithActor(auth.UIDFromContext),
	)

	e := echo.New()
	e.Validator = validator
	e.HTTPErrorHandler = respond.NewHTTPErrorHandler()
	e.IPExtractor = echo.ExtractIPFromRealIPHeader()
	e.Logger = applog.Logger()

	// Responses under these prefixes are public files with a fixed type.
	filePaths := []string{"/qr/", "/vcard/"}
	if mediaRoot != "" {
		filePaths = append(filePaths, mediaPrefix(cfg))
	}

	e.Use(
		appmiddleware.Security(appmiddleware.SecurityConfig{
			SkipPaths:   []string{"/api-docs"},
			PublicPaths: filePaths,
		}),
		appmiddleware.Vary(filePaths...),
		appmiddleware.CORS(cfg.CORSAllowOrigins...),
		appmiddleware.RequestID(),
		middleware.BodyLimit(cfg.MaxRequestBytes),
		applog.RequestLogger(),
		applog.AccessLogger(),
		respond.Recoverer(),
	)

	e.GET("/health", health.NewHandler(repo))
	docs.Register(e, cfg.OpenAPISpecPath)
	if mediaRoot != "" {
		e.StaticFS(mediaPrefix(cfg), os.DirFS(mediaRoot))
	}
	public.Register(e, dir)

	v1 := e.Group("/v1")
	routes.Register(v1, verifier, dir)

	applog.LogInfo(ctx, "server starting",
		slog.String("addr", ":"+cfg.Port),
		slog.String("version", Version),
		slog.String("profile_store", cfg.ProfileStore),
		slog.String("media_backend", cfg.MediaBackend),
		slog.String("auth_mode", cfg.AuthMode))

	sc := echo.StartConfig{
		Address:         ":" + cfg.Port,
		GracefulTimeout: cfg.ShutdownTimeout,
		BeforeServeFunc: func(s *http.Server) error {
			// ReadTimeout bounds a whole multipart upload.
			s.ReadTimeout = 60 * time.Second
			s.ReadHeaderTimeout = 2 * time.Second
			s.WriteTimeout = 60 * time.Second
			s.IdleTimeout = 60 * time.Second
			s.MaxHeaderBytes = 64 << 10
			return nil
		},
	}

	sigCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := sc.Start(sigCtx, e); err != nil {
		log.Fatal(err)
	}

	applog.LogInfo(ctx, "server exited")
}

// mediaPrefix is the route prefix local media is served under, with a trailing slash.
func mediaPrefix(cfg config.Config) string {
	return strings.TrimRight(cfg.MediaURLPrefix, "/") + "/"
}
