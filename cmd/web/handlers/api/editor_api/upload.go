package editor_api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"thirdcoast.systems/twpics/cmd/web/auth"
	"thirdcoast.systems/twpics/cmd/web/handlers/common"
	"thirdcoast.systems/twpics/pkg/editor"
)

// multipartOverhead is the slack allowed on top of the file size limit for
// multipart boundaries and headers.
const multipartOverhead = 64 << 10

// HandleUpload loads the multipart "image" file into the browser's editor
// session and redirects back to the editor. Choosing no file is a no-op;
// any other failure is shown on the editor page.
func HandleUpload(sm *auth.SessionManager, hub *editor.Hub, maxUpload int64) echo.HandlerFunc {
	return func(c echo.Context) error {
		s := common.EditorSession(c, sm, hub)

		req := c.Request()
		if maxUpload > 0 {
			req.Body = http.MaxBytesReader(c.Response().Writer, req.Body, maxUpload+multipartOverhead)
		}

		fh, err := c.FormFile("image")
		if err != nil {
			var tooLarge *http.MaxBytesError
			switch {
			case errors.Is(err, http.ErrMissingFile):
			case errors.As(err, &tooLarge):
				s.ReportError(editor.TooLargeMessage(maxUpload))
			default:
				slog.Warn("failed to read upload", "session", s.ID, "error", err)
				s.ReportError(editor.UserMessage(err))
			}
			return c.Redirect(http.StatusSeeOther, "/")
		}

		f, err := fh.Open()
		if err != nil {
			slog.Error("failed to open uploaded file", "session", s.ID, "error", err)
			s.ReportError(editor.UserMessage(err))
			return c.Redirect(http.StatusSeeOther, "/")
		}
		defer f.Close()

		err = s.Load(fh.Filename, f)
		switch {
		case err == nil:
		case errors.Is(err, editor.ErrSessionClosed):
			slog.Info("upload to closed session dropped", "session", s.ID)
		case maxUpload > 0 && fh.Size > maxUpload:
			s.ReportError(editor.TooLargeMessage(maxUpload))
		}
		return c.Redirect(http.StatusSeeOther, "/")
	}
}
