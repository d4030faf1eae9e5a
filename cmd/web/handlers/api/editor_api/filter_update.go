package editor_api

import (
	"errors"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/starfederation/datastar-go/datastar"

	"thirdcoast.systems/twpics/cmd/web/auth"
	"thirdcoast.systems/twpics/cmd/web/handlers/common"
	"thirdcoast.systems/twpics/cmd/web/templates"
	"thirdcoast.systems/twpics/pkg/editor"
	"thirdcoast.systems/twpics/pkg/filters"
)

// HandleFilterUpdate sets one filter from the ?value= query parameter and
// patches the controls panel with the stored (clamped) values. The new
// preview arrives on the session's stream.
func HandleFilterUpdate(sm *auth.SessionManager, hub *editor.Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		name, err := common.RequireFilterName(c)
		if err != nil {
			return err
		}

		s := common.EditorSession(c, sm, hub)
		if err := s.UpdateFilter(name, c.QueryParam("value")); err != nil {
			switch {
			case errors.Is(err, filters.ErrUnknownFilter):
				return common.ErrUnknownFilter(name)
			case errors.Is(err, editor.ErrSessionClosed):
				return common.ErrNoSession()
			}
			// Rejected values leave the store as it was; the patch below
			// puts the control back.
			slog.Debug("rejected filter value", "filter", name, "error", err)
		}

		return patchControls(c, s)
	}
}

// HandleFilterReset restores every filter default.
func HandleFilterReset(sm *auth.SessionManager, hub *editor.Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		s := common.EditorSession(c, sm, hub)
		if err := s.ResetFilters(); err != nil {
			return common.ErrNoSession()
		}
		return patchControls(c, s)
	}
}

func patchControls(c echo.Context, s *editor.Session) error {
	common.SetSSEHeaders(c)
	sse := datastar.NewSSE(c.Response().Writer, c.Request())

	if err := sse.PatchElementTempl(templates.Controls(s.Filters()), datastar.WithSelectorID(templates.ControlsID)); err != nil {
		slog.Error("failed to send controls SSE patch", "error", err)
		return err
	}
	return nil
}
