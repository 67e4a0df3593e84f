package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/slipstream/flixcat/internal/catalog"
	"github.com/slipstream/flixcat/internal/config"
)

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// getStatus reports the build, uptime and catalog size.
// GET /api/v1/status
func (s *Server) getStatus(c echo.Context) error {
	ctx := c.Request().Context()

	response := map[string]any{
		"version":       config.Version,
		"startTime":     s.startTime.Format(time.RFC3339),
		"region":        s.cfg.Catalog.Region,
		"developerMode": s.cfg.DeveloperMode,
	}

	count, err := s.catalog.Count(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	response["titleCount"] = count

	state, err := s.catalog.GetRefreshState(ctx)
	switch {
	case err == nil:
		response["catalogStatus"] = state.Status
		response["lastUpdated"] = state.LastUpdated
	case errors.Is(err, catalog.ErrStateNotFound):
		response["catalogStatus"] = catalog.StatusPending
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if s.hub != nil {
		response["websocketClients"] = s.hub.ClientCount()
	}

	return c.JSON(http.StatusOK, response)
}
