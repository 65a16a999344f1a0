package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/couponhub/couponhub-backend/internal/domain"
	"github.com/couponhub/couponhub-backend/internal/service"
	"github.com/couponhub/couponhub-backend/internal/util"
)

type catalogService interface {
	ListStores(ctx context.Context, query string) ([]domain.Store, error)
	GetStore(ctx context.Context, id uuid.UUID) (*domain.Store, error)
	ListStoreCoupons(ctx context.Context, storeID uuid.UUID, activeOnly bool) ([]domain.Coupon, error)
	GetCoupon(ctx context.Context, id uuid.UUID) (*domain.Coupon, error)
}

type CatalogHandler struct {
	catalog catalogService
}

func RegisterCatalog(e *echo.Echo, catalog catalogService) {
	handler := &CatalogHandler{catalog: catalog}

	group := e.Group("/api/v1")
	group.GET("/stores", handler.listStores)
	group.GET("/stores/:id", handler.getStore)
	group.GET("/stores/:id/coupons", handler.listStoreCoupons)
	group.GET("/coupons/:id", handler.getCoupon)
}

func (h *CatalogHandler) listStores(c echo.Context) error {
	stores, err := h.catalog.ListStores(c.Request().Context(), c.QueryParam("query"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"stores": stores,
		"total":  len(stores),
	})
}

func (h *CatalogHandler) getStore(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid store id"))
	}
	store, err := h.catalog.GetStore(c.Request().Context(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("store", store))
}

func (h *CatalogHandler) listStoreCoupons(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid store id"))
	}

	activeOnly := true
	if raw := strings.TrimSpace(c.QueryParam("include_inactive")); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, util.Error("include_inactive must be a boolean"))
		}
		activeOnly = !include
	}

	coupons, err := h.catalog.ListStoreCoupons(c.Request().Context(), id, activeOnly)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"coupons": coupons,
		"total":   len(coupons),
	})
}

func (h *CatalogHandler) getCoupon(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid coupon id"))
	}
	coupon, err := h.catalog.GetCoupon(c.Request().Context(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("coupon", coupon))
}

func (h *CatalogHandler) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrStoreNotFound), errors.Is(err, service.ErrCouponNotFound):
		return c.JSON(http.StatusNotFound, util.Error(err.Error()))
	default:
		c.Logger().Errorf("catalog lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
	}
}
