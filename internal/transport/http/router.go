package http

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/couponhub/couponhub-backend/internal/util"
)

// ReadinessCheck reports whether a dependency such as the database can serve
// traffic.
type ReadinessCheck func(ctx context.Context) error

const readinessTimeout = 2 * time.Second

func NewRouter(allowOrigins []string, ready ReadinessCheck) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	registerLogging(e)

	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderOrigin,
			echo.HeaderXRequestedWith,
			headerAdminKey,
		},
		ExposeHeaders:    []string{echo.HeaderContentDisposition, echo.HeaderXRequestID},
		AllowCredentials: !slices.Contains(allowOrigins, "*"),
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})
	e.GET("/ready", func(c echo.Context) error {
		if ready == nil {
			return c.JSON(http.StatusOK, echo.Map{"ok": true})
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
		defer cancel()
		if err := ready(ctx); err != nil {
			c.Logger().Warnf("readiness check failed: %v", err)
			return c.JSON(http.StatusServiceUnavailable, util.Envelope{"ok": false, "error": "database unavailable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})
	return e
}
