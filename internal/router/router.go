package router

import (
	"log/slog"

	"github.com/anonto42/nano-gallery/internal/handlers"
	"github.com/anonto42/nano-gallery/internal/identity"
	"github.com/anonto42/nano-gallery/internal/interactions"
	"github.com/anonto42/nano-gallery/internal/middleware"
	"github.com/anonto42/nano-gallery/internal/photos"
	"github.com/anonto42/nano-gallery/internal/repositories"
	"github.com/anonto42/nano-gallery/internal/store"
	"github.com/anonto42/nano-gallery/internal/validators"
	"github.com/labstack/echo/v4"
)

// Dependencies are the long-lived services the routes are built on
type Dependencies struct {
	Store     store.Store
	Identity  *identity.Provider
	Gallery   *photos.Gallery
	Validator *validators.Validator
	FeedLimit int

	// AllowedOrigins are the browser origins that may change state or
	// open live streams.
	AllowedOrigins []string
	Logger         *slog.Logger
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	logger := deps.Logger

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	reactionRepo := repositories.NewLiveReactionRepository(deps.Store, deps.Validator, logger)
	commentRepo := repositories.NewLiveCommentRepository(deps.Store, deps.Validator, logger)
	feedRepo := repositories.NewLiveFeedRepository(deps.Store, deps.Validator, deps.FeedLimit, logger)

	svc := interactions.NewService(deps.Store, reactionRepo, commentRepo, deps.Identity, logger)

	api := e.Group("/api/v1")
	api.Use(middleware.OriginGuard(deps.AllowedOrigins))
	api.Use(middleware.IdentityMiddleware(deps.Identity))

	// Identity routes
	identityHandler := handlers.NewIdentityHandler(deps.Identity)
	identityHandler.RegisterIdentityRoutes(api)

	// Photo routes
	photoHandler := handlers.NewPhotoHandler(deps.Gallery)
	photoHandler.RegisterPhotoRoutes(api)

	// Reaction routes
	reactionHandler := handlers.NewReactionHandler(svc)
	reactionHandler.RegisterReactionRoutes(api)

	// Comment routes
	commentHandler := handlers.NewCommentHandler(commentRepo, svc)
	commentHandler.RegisterCommentRoutes(api)

	// Feed routes
	feedHandler := handlers.NewFeedHandler(feedRepo)
	feedHandler.RegisterFeedRoutes(api)

	// Live routes
	liveHandler := handlers.NewLiveHandler(feedRepo, commentRepo, svc, deps.AllowedOrigins, logger)
	liveHandler.RegisterLiveRoutes(api)

	logger.Info("all routes configured", "routes", len(e.Routes()))
}
