package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/nano-gallery/internal/photos"
	"github.com/labstack/echo/v4"
)

// PhotoHandler serves gallery pages
type PhotoHandler struct {
	gallery *photos.Gallery
}

// NewPhotoHandler creates a new PhotoHandler
func NewPhotoHandler(gallery *photos.Gallery) *PhotoHandler {
	return &PhotoHandler{gallery: gallery}
}

// RegisterPhotoRoutes registers photo routes
func (h *PhotoHandler) RegisterPhotoRoutes(g *echo.Group) {
	g.GET("/photos", h.GetPhotos)
}

// GetPhotos returns one page of photos. It always answers 200; a page built
// from placeholders is flagged degraded.
func (h *PhotoHandler) GetPhotos(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 0 || perPage > 30 {
		perPage = 0
	}

	result := h.gallery.Page(c.Request().Context(), c.QueryParam("query"), page, perPage)
	return c.JSON(http.StatusOK, result)
}
