package content

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"thirdcoast.systems/twpics/cmd/web/templates"
)

// HandleNotFound renders the static error page for any unknown path. The
// URL is left as it is.
func HandleNotFound() echo.HandlerFunc {
	return func(c echo.Context) error {
		return renderErrorPage(c, http.StatusNotFound, templates.NotFoundBody(c.Request().URL.Path))
	}
}

// NewHTTPErrorHandler renders HTML error pages for page requests and
// defers to echo's JSON errors for /api and Datastar requests.
func NewHTTPErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		req := c.Request()
		if strings.HasPrefix(req.URL.Path, "/api/") || req.Header.Get("Datastar-Request") == "true" {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}

		code := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
		}

		var body string
		switch code {
		case http.StatusNotFound:
			body = templates.NotFoundBody(req.URL.Path)
		case http.StatusRequestEntityTooLarge:
			body = "That request was too large.\n\n[Back to the editor](/)"
		default:
			slog.Error("request failed", "uri", req.RequestURI, "status", code, "error", err)
			body = "Something went wrong.\n\n[Back to the editor](/)"
		}

		if err := renderErrorPage(c, code, body); err != nil {
			slog.Warn("failed to render error page", "error", err)
		}
	}
}

func renderErrorPage(c echo.Context, code int, body string) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	if c.Request().Method == http.MethodHead {
		return nil
	}
	return templates.ErrorPage(code, body).Render(c.Request().Context(), c.Response())
}
