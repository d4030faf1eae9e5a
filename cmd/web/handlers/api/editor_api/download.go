package editor_api

import (
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"

	"thirdcoast.systems/twpics/cmd/web/auth"
	"thirdcoast.systems/twpics/cmd/web/handlers/common"
	"thirdcoast.systems/twpics/pkg/editor"
)

// HandleDownload sends the current preview as "edited_<name>". With no
// preview there is nothing to download and the response is 204.
func HandleDownload(sm *auth.SessionManager, hub *editor.Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		s, ok := common.ExistingEditorSession(c, sm, hub)
		if !ok {
			return c.NoContent(http.StatusNoContent)
		}
		d, ok := s.Export()
		if !ok {
			return c.NoContent(http.StatusNoContent)
		}

		disposition := mime.FormatMediaType("attachment", map[string]string{"filename": d.FileName})
		c.Response().Header().Set(echo.HeaderContentDisposition, disposition)
		c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
		return c.Blob(http.StatusOK, d.ContentType, d.Bytes)
	}
}
