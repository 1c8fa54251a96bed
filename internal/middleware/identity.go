package middleware

import (
	"net/http"
	"slices"

	"github.com/anonto42/nano-gallery/internal/identity"
	"github.com/anonto42/nano-gallery/internal/models"
	"github.com/labstack/echo/v4"
)

// IdentityKey is the echo context key holding the current models.Identity.
const IdentityKey = "identity"

// IdentityMiddleware stores the installation's identity in the request
// context. The view server is local and serves a single identity, so there
// is nothing to authenticate.
func IdentityMiddleware(provider *identity.Provider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(IdentityKey, provider.GetOrCreate())
			return next(c)
		}
	}
}

// CurrentIdentity returns the identity stored by IdentityMiddleware.
func CurrentIdentity(c echo.Context) (models.Identity, bool) {
	id, ok := c.Get(IdentityKey).(models.Identity)
	return id, ok
}

// OriginGuard rejects state-changing requests sent by a browser page from
// an origin outside allowed. Requests without an Origin header come from
// local non-browser clients and pass.
func OriginGuard(allowed []string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}
			if !OriginAllowed(req.Header.Get(echo.HeaderOrigin), allowed) {
				return echo.NewHTTPError(http.StatusForbidden, "origin not allowed")
			}
			return next(c)
		}
	}
}

// OriginAllowed reports whether origin is empty or one of allowed.
func OriginAllowed(origin string, allowed []string) bool {
	return origin == "" || slices.Contains(allowed, origin)
}
