package handlers

import (
	"net/http"

	"github.com/anonto42/nano-gallery/internal/interactions"
	"github.com/anonto42/nano-gallery/internal/models"
	"github.com/labstack/echo/v4"
)

// ReactionHandler handles HTTP requests related to reactions
type ReactionHandler struct {
	interactions *interactions.Service
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(svc *interactions.Service) *ReactionHandler {
	return &ReactionHandler{interactions: svc}
}

// RegisterReactionRoutes registers reaction-related routes
func (h *ReactionHandler) RegisterReactionRoutes(g *echo.Group) {
	g.GET("/images/:image_id/reactions", h.GetReactionSummary)
	g.POST("/images/:image_id/reactions", h.ToggleReaction)
	g.GET("/emojis", h.GetEmojis)
}

// GetReactionSummary returns per-emoji counts and the current user's emojis
func (h *ReactionHandler) GetReactionSummary(c echo.Context) error {
	summary, err := h.interactions.ReactionSummary(c.Request().Context(), c.Param("image_id"))
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

// ToggleReaction adds the emoji, or removes it if the user already chose it
func (h *ReactionHandler) ToggleReaction(c echo.Context) error {
	var req models.CreateReactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.interactions.AddReaction(c.Request().Context(), c.Param("image_id"), req.Emoji)
	if err != nil {
		return interactionError(err)
	}
	status := http.StatusOK
	if result.Added {
		status = http.StatusCreated
	}
	return c.JSON(status, result)
}

// GetEmojis returns the reactions the gallery offers
func (h *ReactionHandler) GetEmojis(c echo.Context) error {
	return c.JSON(http.StatusOK, interactions.DefaultEmojis)
}
