package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/aggregate"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/style"
)

// mapError converts a pipeline error into an echo.HTTPError.
func mapError(err error) *echo.HTTPError {
	var fetchErr *sheetdash.FetchError
	var parseErr *sheetdash.ParseError

	switch {
	case errors.Is(err, sheetdash.ErrCardNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())

	case errors.Is(err, sheetdash.ErrUnknownKind),
		errors.Is(err, aggregate.ErrUnknownView),
		errors.Is(err, style.ErrUnknownChartType),
		errors.Is(err, sheetdash.ErrNoURL):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())

	case errors.As(err, &fetchErr):
		return echo.NewHTTPError(http.StatusBadGateway, fetchErr.Error())

	case errors.As(err, &parseErr):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, parseErr.Error())

	case errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusGatewayTimeout, "export download timed out")

	case errors.Is(err, context.Canceled):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "request cancelled")

	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
