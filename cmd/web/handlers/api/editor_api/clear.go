package editor_api

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/starfederation/datastar-go/datastar"

	"thirdcoast.systems/twpics/cmd/web/auth"
	"thirdcoast.systems/twpics/cmd/web/handlers/common"
	"thirdcoast.systems/twpics/cmd/web/templates"
	"thirdcoast.systems/twpics/pkg/editor"
)

// HandleClear drops the loaded image ("Load new image") and returns to the
// file picker.
func HandleClear(sm *auth.SessionManager, hub *editor.Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s, ok := common.ExistingEditorSession(c, sm, hub); ok {
			if err := s.Clear(); err != nil {
				slog.Debug("clear on closed session", "session", s.ID)
			}
		}
		return c.Redirect(http.StatusSeeOther, "/")
	}
}

// HandleDismissError clears the load error banner.
func HandleDismissError(sm *auth.SessionManager, hub *editor.Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s, ok := common.ExistingEditorSession(c, sm, hub); ok {
			s.DismissError()
		}

		common.SetSSEHeaders(c)
		sse := datastar.NewSSE(c.Response().Writer, c.Request())
		if err := sse.PatchElementTempl(templates.LoadError(""), datastar.WithSelectorID(templates.LoadErrID)); err != nil {
			slog.Error("failed to send load-error SSE patch", "error", err)
			return err
		}
		return nil
	}
}
