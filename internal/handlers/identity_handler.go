package handlers

import (
	"net/http"

	"github.com/anonto42/nano-gallery/internal/identity"
	"github.com/labstack/echo/v4"
)

// IdentityHandler exposes the local identity
type IdentityHandler struct {
	provider *identity.Provider
}

// NewIdentityHandler creates a new IdentityHandler
func NewIdentityHandler(provider *identity.Provider) *IdentityHandler {
	return &IdentityHandler{provider: provider}
}

// RegisterIdentityRoutes registers identity routes
func (h *IdentityHandler) RegisterIdentityRoutes(g *echo.Group) {
	g.GET("/identity", h.GetIdentity)
	g.POST("/identity/reset", h.ResetIdentity)
}

// GetIdentity returns the current identity
func (h *IdentityHandler) GetIdentity(c echo.Context) error {
	return c.JSON(http.StatusOK, h.provider.GetOrCreate())
}

// ResetIdentity replaces the identity with a freshly generated one
func (h *IdentityHandler) ResetIdentity(c echo.Context) error {
	return c.JSON(http.StatusOK, h.provider.Reset())
}
