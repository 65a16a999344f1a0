package http

import (
	"net/http"
	"os"
	"sync"

	"github.com/ghodss/yaml"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/couponhub/couponhub-backend/internal/util"
)

// RegisterSwagger serves the YAML API description as JSON for the Swagger UI
// mounted under /swagger. The file is converted once on first request.
func RegisterSwagger(e *echo.Echo, specPath string) {
	load := sync.OnceValues(func() ([]byte, error) {
		data, err := os.ReadFile(specPath)
		if err != nil {
			return nil, err
		}
		return yaml.YAMLToJSON(data)
	})

	e.GET("/swagger/doc.json", func(c echo.Context) error {
		jsonSpec, err := load()
		if err != nil {
			c.Logger().Errorf("load swagger spec %s: %v", specPath, err)
			return c.JSON(http.StatusInternalServerError, util.Error("unable to load swagger spec"))
		}
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, jsonSpec)
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
