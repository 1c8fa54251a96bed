package handlers

import (
	"net/http"

	"github.com/anonto42/nano-gallery/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	feedRepository repositories.FeedRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feedRepo repositories.FeedRepository) *FeedHandler {
	return &FeedHandler{feedRepository: feedRepo}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns the most recent feed events, newest first
func (h *FeedHandler) GetFeed(c echo.Context) error {
	events, err := h.feedRepository.GetRecentFeedEvents(c.Request().Context())
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"events": events,
		"count":  len(events),
	})
}
