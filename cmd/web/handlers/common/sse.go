package common

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// SetSSEHeaders adds X-Accel-Buffering for nginx and other reverse proxies.
// datastar.NewSSE sets Content-Type, Cache-Control and Connection itself.
func SetSSEHeaders(c echo.Context) {
	c.Response().Header().Set("X-Accel-Buffering", "no")
}

// WriteComment writes an SSE comment line (": text") and flushes, keeping
// idle streams open through proxies.
func WriteComment(c echo.Context, text string) error {
	resp := c.Response()
	if _, err := fmt.Fprintf(resp, ": %s\n\n", text); err != nil {
		return err
	}
	if f, ok := resp.Writer.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
