package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/couponhub/couponhub-backend/internal/domain"
	"github.com/couponhub/couponhub-backend/internal/service"
	"github.com/couponhub/couponhub-backend/internal/sheet"
	"github.com/couponhub/couponhub-backend/internal/util"
)

const defaultMaxUpload int64 = 10 * 1024 * 1024

type importService interface {
	Import(ctx context.Context, entity domain.ImportEntity, filename string, contents []byte, dryRun bool) (*domain.ImportJob, *domain.ImportOutcome, []domain.ImportRowResult, error)
	ImportRows(ctx context.Context, entity domain.ImportEntity, rows []domain.ImportRow, dryRun bool) (*domain.ImportOutcome, []domain.ImportRowResult, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*domain.ImportJob, []domain.ImportRowResult, error)
}

type ImportHandler struct {
	service       importService
	maxUploadSize int64
}

// RegisterImports mounts the bulk import endpoints on the admin group.
func RegisterImports(admin *echo.Group, svc importService, maxUpload int64) {
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	handler := &ImportHandler{service: svc, maxUploadSize: maxUpload}

	admin.GET("/imports/:entity/template", handler.template)
	admin.POST("/imports/:entity", handler.upload)
	admin.POST("/imports/:entity/rows", handler.importRows)
	admin.GET("/import-jobs/:id", handler.getJob)
	admin.GET("/import-jobs/:id/errors", handler.downloadErrors)
}

func (h *ImportHandler) template(c echo.Context) error {
	entity, ok := parseEntity(c)
	if !ok {
		return c.JSON(http.StatusNotFound, util.Error("unknown import entity"))
	}
	format := sheet.Format(strings.ToLower(strings.TrimSpace(c.QueryParam("format"))))
	if format == "" {
		format = sheet.FormatCSV
	}

	data, contentType, err := sheet.Template(entity, format)
	if err != nil {
		if errors.Is(err, sheet.ErrUnsupportedFormat) {
			return c.JSON(http.StatusBadRequest, util.Error("format must be csv or xlsx"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not generate template"))
	}

	filename := fmt.Sprintf("%s-import-template.%s", entity, format)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, contentType, data)
}

func (h *ImportHandler) upload(c echo.Context) error {
	entity, ok := parseEntity(c)
	if !ok {
		return c.JSON(http.StatusNotFound, util.Error("unknown import entity"))
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("file is required"))
	}
	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("unable to read upload"))
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.maxUploadSize+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("failed reading upload"))
	}
	if int64(len(data)) > h.maxUploadSize {
		return c.JSON(http.StatusRequestEntityTooLarge, util.Error("upload exceeds size limit"))
	}

	job, outcome, rows, err := h.service.Import(c.Request().Context(), entity, file.Filename, data, parseDryRun(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusAccepted, util.Envelope{
		"job":     job,
		"outcome": outcome,
		"rows":    buildRowResults(rows),
	})
}

func (h *ImportHandler) importRows(c echo.Context) error {
	entity, ok := parseEntity(c)
	if !ok {
		return c.JSON(http.StatusNotFound, util.Error("unknown import entity"))
	}

	var req struct {
		Rows []domain.ImportRow `json:"rows"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if len(req.Rows) == 0 {
		return c.JSON(http.StatusBadRequest, util.Error("rows must not be empty"))
	}

	outcome, rows, err := h.service.ImportRows(c.Request().Context(), entity, req.Rows, parseDryRun(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"outcome": outcome,
		"rows":    buildRowResults(rows),
	})
}

func (h *ImportHandler) getJob(c echo.Context) error {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid job id"))
	}
	job, rows, err := h.service.GetJob(c.Request().Context(), jobID)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"job":  job,
		"rows": buildRowResults(rows),
	})
}

func (h *ImportHandler) downloadErrors(c echo.Context) error {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid job id"))
	}
	_, rows, err := h.service.GetJob(c.Request().Context(), jobID)
	if err != nil {
		return h.writeError(c, err)
	}

	data, err := sheet.ErrorReport(rows)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not generate csv"))
	}
	filename := fmt.Sprintf("import-%s-errors.csv", jobID)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, sheet.ContentTypeCSV, data)
}

func (h *ImportHandler) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrImportUnknownEntity):
		return c.JSON(http.StatusNotFound, util.Error(err.Error()))
	case errors.Is(err, service.ErrImportEmptyFile):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	case errors.Is(err, service.ErrImportUnsupportedFormat):
		return c.JSON(http.StatusUnsupportedMediaType, util.Error(err.Error()))
	case errors.Is(err, service.ErrImportTooLarge), errors.Is(err, service.ErrImportRowLimitExceeded):
		return c.JSON(http.StatusRequestEntityTooLarge, util.Error(err.Error()))
	case errors.Is(err, service.ErrStoreListUnavailable):
		return c.JSON(http.StatusServiceUnavailable, util.Error(err.Error()))
	case errors.Is(err, service.ErrImportJobNotFound):
		return c.JSON(http.StatusNotFound, util.Error(err.Error()))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusServiceUnavailable, util.Error("import interrupted"))
	default:
		c.Logger().Errorf("import failed: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
	}
}

func parseEntity(c echo.Context) (domain.ImportEntity, bool) {
	entity := domain.ImportEntity(strings.ToLower(strings.TrimSpace(c.Param("entity"))))
	return entity, entity.Valid()
}

func parseDryRun(c echo.Context) bool {
	raw := strings.TrimSpace(c.QueryParam("dry_run"))
	if raw == "" {
		return false
	}
	dryRun, err := strconv.ParseBool(raw)
	return err == nil && dryRun
}

func buildRowResults(rows []domain.ImportRowResult) []util.Envelope {
	resp := make([]util.Envelope, 0, len(rows))
	for _, row := range rows {
		item := util.Envelope{
			"row_number": row.RowNumber,
			"label":      row.Label,
			"status":     row.Status,
			"action":     row.Action,
		}
		if row.ID != uuid.Nil {
			item["id"] = row.ID
		}
		if row.RecordID != nil {
			item["record_id"] = *row.RecordID
		}
		if row.Error != nil {
			item["error"] = *row.Error
		}
		resp = append(resp, item)
	}
	return resp
}
