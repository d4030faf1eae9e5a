package common

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrNoSession is returned by endpoints that only make sense for a browser
// whose editor session still exists.
func ErrNoSession() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusNotFound, "no editor session")
}

// ErrUnknownFilter is a 404 for a filter name outside the registry.
func ErrUnknownFilter(name string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusNotFound, "unknown filter "+name)
}

// ErrTooManyStreams is a 429 when a session has too many open preview streams.
func ErrTooManyStreams() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusTooManyRequests, "too many open preview streams")
}

// ErrInternal returns a 500 Internal Server Error.
func ErrInternal(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusInternalServerError, msg)
}
