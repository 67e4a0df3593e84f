package metadata

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for provider status and cache control.
type Handlers struct {
	service *Service
}

// NewHandlers creates new metadata handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the metadata routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/status", h.GetStatus)
	g.POST("/providers/:name/test", h.TestProvider)
	g.DELETE("/cache", h.ClearCache)
}

// GetStatus returns the configured state of each provider.
// GET /api/v1/metadata/status
func (h *Handlers) GetStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Status())
}

// TestProvider checks connectivity to one provider.
// POST /api/v1/metadata/providers/:name/test
func (h *Handlers) TestProvider(c echo.Context) error {
	name := c.Param("name")
	if err := h.service.TestProvider(c.Request().Context(), name); err != nil {
		if errors.Is(err, ErrProviderNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return c.JSON(http.StatusOK, ProviderStatus{Name: name, Error: err.Error()})
	}
	return c.JSON(http.StatusOK, ProviderStatus{Name: name, Configured: true})
}

// ClearCache drops all cached provider responses.
// DELETE /api/v1/metadata/cache
func (h *Handlers) ClearCache(c echo.Context) error {
	h.service.ClearCache()
	return c.NoContent(http.StatusNoContent)
}
