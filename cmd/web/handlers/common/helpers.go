package common

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"thirdcoast.systems/twpics/cmd/web/auth"
	"thirdcoast.systems/twpics/pkg/editor"
)

// EditorSession resolves the browser's editor session from its cookie,
// creating a session (and re-issuing the cookie) when there is none or
// the server no longer knows it.
func EditorSession(c echo.Context, sm *auth.SessionManager, hub *editor.Hub) *editor.Session {
	id, _ := sm.EditorSessionID(c.Request())
	s := hub.GetOrCreate(id)
	if s.ID != id {
		if err := sm.SaveEditorSession(c.Response().Writer, c.Request(), s.ID); err != nil {
			slog.Warn("failed to save editor session cookie", "error", err)
		}
	}
	return s
}

// ExistingEditorSession returns the browser's session only if the hub
// still has it.
func ExistingEditorSession(c echo.Context, sm *auth.SessionManager, hub *editor.Hub) (*editor.Session, bool) {
	id, err := sm.EditorSessionID(c.Request())
	if err != nil {
		return nil, false
	}
	return hub.Get(id)
}
