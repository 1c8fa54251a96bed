package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/nano-gallery/internal/identity"
	"github.com/anonto42/nano-gallery/internal/photos"
	"github.com/anonto42/nano-gallery/internal/router"
	"github.com/anonto42/nano-gallery/internal/validators"
	"github.com/anonto42/nano-gallery/pkg/config"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Initialize the live-query store
	st, err := config.InitStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}()

	provider, err := newIdentityProvider(cfg, logger)
	if err != nil {
		return err
	}
	me := provider.GetOrCreate()
	logger.Info("identity ready", "user_id", me.ID, "display_name", me.DisplayName)

	gallery := photos.NewGallery(newPhotoSource(cfg, logger), photos.GalleryOptions{
		PerPage:  cfg.PhotosPerPage,
		Order:    cfg.PhotosOrder,
		CacheTTL: cfg.PhotoCacheTTL,
	}, logger)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	validator := validators.NewValidator()
	e.Validator = validator

	// Setup global middleware
	config.SetupMiddleware(e, logger, cfg.AllowedOrigins)

	// Setup routes and dependencies
	router.SetupRoutes(e, router.Dependencies{
		Store:          st,
		Identity:       provider,
		Gallery:        gallery,
		Validator:      validator,
		FeedLimit:      cfg.FeedLimit,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", cfg.Addr(), "store", cfg.StoreDriver)
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newIdentityProvider(cfg *config.Config, logger *slog.Logger) (*identity.Provider, error) {
	path := cfg.IdentityPath
	if path == "" {
		p, err := identity.DefaultPath()
		if err != nil {
			logger.Warn("no config dir, identity will not survive restarts", "error", err)
			return identity.NewProvider(&identity.MemoryStorage{}, identity.WithLogger(logger)), nil
		}
		path = p
	}
	return identity.NewProvider(identity.NewFileStorage(path), identity.WithLogger(logger)), nil
}

func newPhotoSource(cfg *config.Config, logger *slog.Logger) photos.Source {
	if cfg.UnsplashAccessKey == "" {
		logger.Warn("UNSPLASH_ACCESS_KEY not set, serving placeholder photos")
		return nil
	}
	return photos.NewUnsplashClient(cfg.UnsplashAccessKey, photos.WithBaseURL(cfg.UnsplashBaseURL))
}
