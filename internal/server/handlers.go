package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/aggregate"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/fetch"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/parser"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/style"
)

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status       string      `json:"status"`
	CacheEntries int         `json:"cache_entries"`
	Cache        fetch.Stats `json:"cache"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:       "healthy",
		CacheEntries: s.cache.Len(),
		Cache:        s.cache.Stats(),
	})
}

func (s *Server) handleListCards(c echo.Context) error {
	return c.JSON(http.StatusOK, s.board.Cards())
}

// handleGetCard returns the {data, loading, error} triple of one card.
// wait=false answers from the cache and starts a background load on a miss.
func (s *Server) handleGetCard(c echo.Context) error {
	id := c.Param("id")
	if _, ok := s.board.Card(id); !ok {
		return mapError(sheetdash.ErrCardNotFound)
	}

	wait := true
	if raw := c.QueryParam("wait"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "wait must be a boolean")
		}
		wait = b
	}

	ctx := c.Request().Context()
	view := c.QueryParam("view")

	var data models.CardData
	if wait {
		data = s.board.Load(ctx, id, view)
	} else {
		data = s.board.Snapshot(ctx, id, view)
	}
	return c.JSON(http.StatusOK, data)
}

// handleSheet fetches, parses and prepares an export that is not a configured card.
func (s *Server) handleSheet(c echo.Context) error {
	rawURL := strings.TrimSpace(c.QueryParam("url"))
	if rawURL == "" {
		return mapError(sheetdash.ErrNoURL)
	}

	kind, err := parser.ParseKind(c.QueryParam("kind"))
	if err != nil {
		return mapError(err)
	}
	view, err := aggregate.ParseView(c.QueryParam("view"))
	if err != nil {
		return mapError(err)
	}
	chartType, err := style.ParseChartType(c.QueryParam("chart_type"))
	if err != nil {
		return mapError(err)
	}

	colors := sheetdash.DefaultPalette
	if name := c.QueryParam("palette"); name != "" {
		p, ok := s.palettes[name]
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown palette "+strconv.Quote(name))
		}
		colors = p
	}

	result, err := s.cache.Get(c.Request().Context(), fetch.Key{URL: rawURL, Kind: kind})
	if err != nil {
		return mapError(err)
	}

	prepared, report := sheetdash.Prepare(result, sheetdash.Options{
		View:      view,
		ChartType: chartType,
		Colors:    colors,
	}, s.agg)
	if len(report.InvalidLabels) > 0 {
		s.logger.Warn("sheet has undated labels", "url", rawURL, "labels", report.InvalidLabels)
	}
	return c.JSON(http.StatusOK, models.CardData{ID: rawURL, Data: prepared})
}

// invalidateResponse is the body of DELETE /api/cache.
type invalidateResponse struct {
	Invalidated int `json:"invalidated"`
}

// handleInvalidate drops cached results: one key when url and kind are
// given, every kind of a URL when only url is given, everything otherwise.
func (s *Server) handleInvalidate(c echo.Context) error {
	rawURL := strings.TrimSpace(c.QueryParam("url"))
	rawKind := c.QueryParam("kind")

	switch {
	case rawURL == "" && rawKind != "":
		return echo.NewHTTPError(http.StatusBadRequest, "kind requires url")

	case rawURL == "":
		n := s.cache.Len()
		s.cache.Purge()
		return c.JSON(http.StatusOK, invalidateResponse{Invalidated: n})

	case rawKind == "":
		return c.JSON(http.StatusOK, invalidateResponse{Invalidated: s.cache.InvalidateURL(rawURL)})

	default:
		kind, err := parser.ParseKind(rawKind)
		if err != nil {
			return mapError(err)
		}
		n := 0
		if s.cache.Invalidate(fetch.Key{URL: rawURL, Kind: kind}) {
			n = 1
		}
		return c.JSON(http.StatusOK, invalidateResponse{Invalidated: n})
	}
}
