package handlers

import (
	"net/http"

	"github.com/anonto42/nano-gallery/internal/interactions"
	"github.com/anonto42/nano-gallery/internal/middleware"
	"github.com/anonto42/nano-gallery/internal/models"
	"github.com/anonto42/nano-gallery/internal/repositories"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	interactions      *interactions.Service
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, svc *interactions.Service) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		interactions:      svc,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/images/:image_id/comments", h.CreateComment)
	g.GET("/images/:image_id/comments", h.GetCommentsByImageID)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CommentView is a comment plus whether the current user may delete it
type CommentView struct {
	models.Comment
	CanDelete bool `json:"can_delete"`
}

// CreateComment creates a new comment on an image
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, err := h.interactions.AddComment(c.Request().Context(), c.Param("image_id"), req.Text)
	if err != nil {
		return interactionError(err)
	}
	return c.JSON(http.StatusCreated, CommentView{Comment: *comment, CanDelete: true})
}

// GetCommentsByImageID returns the comments of an image, newest first
func (h *CommentHandler) GetCommentsByImageID(c echo.Context) error {
	comments, err := h.commentRepository.GetCommentsByImageID(c.Request().Context(), c.Param("image_id"))
	if err != nil {
		return storeError(err)
	}

	me, _ := middleware.CurrentIdentity(c)
	views := make([]CommentView, len(comments))
	for i, comment := range comments {
		views[i] = CommentView{Comment: comment, CanDelete: comment.UserID == me.ID}
	}
	return c.JSON(http.StatusOK, views)
}

// DeleteComment deletes a comment written by the current user
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	if err := h.interactions.DeleteComment(c.Request().Context(), c.Param("id")); err != nil {
		return interactionError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
