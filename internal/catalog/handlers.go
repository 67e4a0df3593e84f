package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/slipstream/flixcat/internal/rating"
)

// Handlers provides HTTP handlers for browsing the catalog.
type Handlers struct {
	store *Store
}

// NewHandlers creates new catalog handlers.
func NewHandlers(store *Store) *Handlers {
	return &Handlers{store: store}
}

// RegisterRoutes registers the title routes on the API group.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/titles", h.List)
	g.GET("/titles/stats", h.Stats)
	g.GET("/titles/:id", h.Get)
	g.GET("/catalog/options", h.Options)
}

// List returns a filtered, sorted page of titles.
// GET /api/v1/titles
func (h *Handlers) List(c echo.Context) error {
	opts := parseListOptions(c)

	page, err := h.store.List(c.Request().Context(), opts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, page)
}

// Get returns a single title.
// GET /api/v1/titles/:id
func (h *Handlers) Get(c echo.Context) error {
	title, err := h.store.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrTitleNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, title)
}

// Stats returns catalog aggregates.
// GET /api/v1/titles/stats
func (h *Handlers) Stats(c echo.Context) error {
	stats, err := h.store.Stats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

// Options returns the accepted filter and sort values.
// GET /api/v1/catalog/options
func (h *Handlers) Options(c echo.Context) error {
	return c.JSON(http.StatusOK, FilterOptions())
}

func parseListOptions(c echo.Context) ListOptions {
	opts := ListOptions{
		Search: c.QueryParam("search"),
		Sort:   SortKey(c.QueryParam("sort")),
	}

	for _, r := range multiParam(c, "bbfcRatings", "rating") {
		opts.Ratings = append(opts.Ratings, rating.Rating(r))
	}
	opts.Languages = multiParam(c, "languages", "language")
	opts.Genres = multiParam(c, "genres", "genre")
	for _, ct := range multiParam(c, "contentTypes", "type") {
		opts.ContentTypes = append(opts.ContentTypes, ContentType(ct))
	}

	opts.Page, _ = strconv.Atoi(c.QueryParam("page"))
	opts.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	opts.Normalize()
	return opts
}

// multiParam collects a filter given as repeated keys or comma-separated
// values under any of names.
func multiParam(c echo.Context, names ...string) []string {
	params := c.QueryParams()
	var out []string
	for _, name := range names {
		for _, raw := range params[name] {
			for _, v := range strings.Split(raw, ",") {
				if v = strings.TrimSpace(v); v != "" {
					out = append(out, v)
				}
			}
		}
	}
	return out
}
