package common

import (
	"github.com/labstack/echo/v4"

	"thirdcoast.systems/twpics/pkg/filters"
)

// RequireFilterName extracts the :name route parameter and checks it
// against the filter registry, returning a 404 for unknown filters.
func RequireFilterName(c echo.Context) (string, error) {
	name := c.Param("name")
	if !filters.Known(name) {
		return "", ErrUnknownFilter(name)
	}
	return name, nil
}
