package content

import (
	"github.com/labstack/echo/v4"

	"thirdcoast.systems/twpics/cmd/web/auth"
	"thirdcoast.systems/twpics/cmd/web/handlers/common"
	"thirdcoast.systems/twpics/cmd/web/templates"
	"thirdcoast.systems/twpics/pkg/editor"
)

// HandleHomePage renders the editor for the browser's session: the file
// picker when nothing is loaded, otherwise the preview and controls. The
// preview then updates over /api/editor/stream.
func HandleHomePage(sm *auth.SessionManager, hub *editor.Hub, maxUpload int64) echo.HandlerFunc {
	return func(c echo.Context) error {
		s := common.EditorSession(c, sm, hub)

		c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
		c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
		return templates.EditorPage(s.Snapshot(), maxUpload).Render(c.Request().Context(), c.Response())
	}
}
