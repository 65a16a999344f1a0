package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/couponhub/couponhub-backend/internal/domain"
	"github.com/couponhub/couponhub-backend/internal/util"
)

type metadataExtractor interface {
	Extract(ctx context.Context, pageURL string) (*domain.SiteMetadata, error)
}

type MetadataHandler struct {
	extractor metadataExtractor
}

func RegisterMetadata(e *echo.Echo, extractor metadataExtractor) {
	handler := &MetadataHandler{extractor: extractor}
	e.POST("/api/v1/extract-metadata", handler.extract)
}

// extract answers in the same shape as the upstream metadata service so the
// admin UI can call either one.
func (h *MetadataHandler) extract(c echo.Context) error {
	var req struct {
		URL string `json:"url"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, metadataFailure("invalid request body"))
	}
	pageURL := strings.TrimSpace(req.URL)
	if pageURL == "" {
		return c.JSON(http.StatusBadRequest, metadataFailure("url is required"))
	}
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return c.JSON(http.StatusBadRequest, metadataFailure("url must be an absolute http(s) address"))
	}

	meta, err := h.extractor.Extract(c.Request().Context(), pageURL)
	if err != nil {
		c.Logger().Warnf("extract metadata %s: %v", pageURL, err)
		return c.JSON(http.StatusBadGateway, metadataFailure("could not extract metadata"))
	}

	resp := util.Envelope{"success": true}
	if meta != nil {
		resp.With("logoUrl", meta.LogoURL).
			With("name", meta.Name).
			With("description", meta.Description)
	}
	return c.JSON(http.StatusOK, resp)
}

func metadataFailure(message string) util.Envelope {
	return util.Envelope{"success": false, "error": message}
}
