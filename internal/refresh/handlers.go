package refresh

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/slipstream/flixcat/internal/catalog"
)

// Handlers exposes refresh state and manual triggers over HTTP.
type Handlers struct {
	service *Service
}

// NewHandlers creates new refresh handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the catalog control routes. trigger middleware
// applies to the POST routes only.
func (h *Handlers) RegisterRoutes(g *echo.Group, trigger ...echo.MiddlewareFunc) {
	g.GET("/catalog/status", h.Status)
	g.POST("/catalog/refresh", h.TriggerRefresh, trigger...)
	g.POST("/catalog/rerate", h.TriggerRerate, trigger...)
}

// StatusResponse is the active refresh state plus the last job results.
type StatusResponse struct {
	*catalog.RefreshState
	Refreshing  bool          `json:"refreshing"`
	Rerating    bool          `json:"rerating"`
	LastRefresh *Result       `json:"lastRefresh,omitempty"`
	LastRerate  *RerateReport `json:"lastRerate,omitempty"`
}

// Status returns the active refresh state.
// GET /api/v1/catalog/status
func (h *Handlers) Status(c echo.Context) error {
	state, err := h.service.store.GetRefreshState(c.Request().Context())
	if err != nil {
		if errors.Is(err, catalog.ErrStateNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "catalog has not been refreshed yet")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, StatusResponse{
		RefreshState: state,
		Refreshing:   state.Status == catalog.StatusUpdating && state.LeaseHeld(h.service.now()),
		Rerating:     h.service.Rerating(),
		LastRefresh:  h.service.LastRefresh(),
		LastRerate:   h.service.LastRerate(),
	})
}

// TriggerRefresh starts a refresh in the background.
// POST /api/v1/catalog/refresh
func (h *Handlers) TriggerRefresh(c echo.Context) error {
	h.service.TriggerRefresh()
	return c.JSON(http.StatusAccepted, map[string]string{"message": "Catalog refresh started"})
}

// TriggerRerate starts a re-rate run in the background.
// POST /api/v1/catalog/rerate
func (h *Handlers) TriggerRerate(c echo.Context) error {
	h.service.TriggerRerate()
	return c.JSON(http.StatusAccepted, map[string]string{"message": "Re-rate started"})
}
