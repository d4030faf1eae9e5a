package editor_api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/starfederation/datastar-go/datastar"

	"thirdcoast.systems/twpics/cmd/web/auth"
	"thirdcoast.systems/twpics/cmd/web/handlers/common"
	"thirdcoast.systems/twpics/cmd/web/templates"
	"thirdcoast.systems/twpics/pkg/editor"
)

const keepAliveInterval = 15 * time.Second

// HandleStream keeps an SSE connection open and patches #preview every
// time the session retains a new render. When the session leaves the
// Editing state (cleared from another tab) the page is sent back to / and
// the stream ends.
func HandleStream(sm *auth.SessionManager, hub *editor.Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		s, ok := common.ExistingEditorSession(c, sm, hub)
		if !ok {
			return common.ErrNoSession()
		}

		ch, unsubscribe, err := s.Subscribe()
		if err != nil {
			if errors.Is(err, editor.ErrTooManySubscribers) {
				return common.ErrTooManyStreams()
			}
			return common.ErrNoSession()
		}
		defer unsubscribe()

		if _, ok := c.Response().Writer.(http.Flusher); !ok {
			return common.ErrInternal("streaming unsupported")
		}

		common.SetSSEHeaders(c)
		sse := datastar.NewSSE(c.Response().Writer, c.Request())

		lastError := ""
		// patch reports done once the page has been sent away.
		patch := func() (done bool, err error) {
			snap := s.Snapshot()
			if snap.State != editor.StateEditing {
				return true, sse.Redirect("/")
			}
			if snap.Error != lastError {
				lastError = snap.Error
				if err := sse.PatchElementTempl(templates.LoadError(snap.Error), datastar.WithSelectorID(templates.LoadErrID)); err != nil {
					return false, err
				}
			}
			return false, sse.PatchElementTempl(templates.Preview(snap), datastar.WithSelectorID(templates.PreviewID))
		}

		done, err := patch()
		if err != nil {
			slog.Warn("failed to send preview SSE patch", "session", s.ID, "error", err)
			return nil
		}
		if done {
			return nil
		}

		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-c.Request().Context().Done():
				return nil
			case _, ok := <-ch:
				if !ok {
					return nil
				}
				done, err := patch()
				if err != nil {
					slog.Debug("preview stream closed", "session", s.ID, "error", err)
					return nil
				}
				if done {
					slog.Debug("preview stream redirected", "session", s.ID)
					return nil
				}
			case <-ticker.C:
				if err := common.WriteComment(c, "keepalive"); err != nil {
					return nil
				}
			}
		}
	}
}
