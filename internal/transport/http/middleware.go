package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/couponhub/couponhub-backend/internal/util"
)

const (
	headerAdminKey  = "X-Admin-Key"
	contextAdminKey = "admin"
)

// RequireAdminKey guards admin routes with a shared key. With an empty key
// the routes are left open, matching a deployment that hides them instead.
func RequireAdminKey(key string) echo.MiddlewareFunc {
	key = strings.TrimSpace(key)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if key == "" {
				c.Set(contextAdminKey, true)
				return next(c)
			}
			given := strings.TrimSpace(c.Request().Header.Get(headerAdminKey))
			if given == "" {
				return c.JSON(http.StatusUnauthorized, util.Error("missing admin key"))
			}
			if subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
				return c.JSON(http.StatusForbidden, util.Error("invalid admin key"))
			}
			c.Set(contextAdminKey, true)
			return next(c)
		}
	}
}

// AdminGroup returns the /api/v1/admin route group.
func AdminGroup(e *echo.Echo, key string) *echo.Group {
	return e.Group("/api/v1/admin", RequireAdminKey(key))
}

func isAdmin(c echo.Context) bool {
	ok, _ := c.Get(contextAdminKey).(bool)
	return ok
}
