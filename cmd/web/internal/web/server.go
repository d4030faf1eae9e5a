package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"thirdcoast.systems/twpics/cmd/web/auth"
	"thirdcoast.systems/twpics/cmd/web/ctxkeys"
	"thirdcoast.systems/twpics/cmd/web/handlers/api/editor_api"
	"thirdcoast.systems/twpics/cmd/web/handlers/content"
	staticpkg "thirdcoast.systems/twpics/cmd/web/internal/web/utils/static"
	"thirdcoast.systems/twpics/internal/config"
	"thirdcoast.systems/twpics/pkg/editor"
	"thirdcoast.systems/twpics/static"
)

const uploadPath = "/api/editor/image"

type Webserver struct {
	*echo.Echo
	conf           *config.Config
	sessionManager *auth.SessionManager
	hub            *editor.Hub
	staticCache    *staticpkg.StaticCache
}

func NewWebserver(conf *config.Config, sessionManager *auth.SessionManager, hub *editor.Hub) (*Webserver, error) {
	e := echo.New()

	staticCache, err := staticpkg.NewStaticCache(static.FS)
	if err != nil {
		return nil, err
	}

	webserver := &Webserver{
		Echo:           e,
		conf:           conf,
		sessionManager: sessionManager,
		hub:            hub,
		staticCache:    staticCache,
	}

	e.HTTPErrorHandler = content.NewHTTPErrorHandler(e)

	if err = webserver.setupMiddleware(); err != nil {
		return nil, err
	}

	if err = webserver.registerRoutes(); err != nil {
		return nil, err
	}

	return webserver, nil
}

func (s *Webserver) setupMiddleware() error {
	s.HideBanner = true
	s.HidePort = true
	// Uploads enforce their own limit so an oversized file can be reported
	// on the editor page instead of as a bare 413.
	s.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit: "64K",
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == uploadPath
		},
	}))
	s.Use(middleware.Recover())
	s.Use(middleware.RequestID())
	s.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			// Already-compressed image bytes.
			return c.Path() == "/api/editor/download"
		},
	}))
	s.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/api/editor/stream"
		},
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  false,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				fields = append(fields, "error", v.Error)
			}
			slog.Info("request", fields...)
			return nil
		},
	}))

	// Shell values for templates.
	s.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := context.WithValue(c.Request().Context(), ctxkeys.AppName, s.conf.AppName)
			ctx = context.WithValue(ctx, ctxkeys.ThemeColor, s.conf.ThemeColor)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})

	return nil
}

func (s *Webserver) registerRoutes() error {
	apiGroup := s.Group("/api/editor")
	apiGroup.POST("/image", editor_api.HandleUpload(s.sessionManager, s.hub, s.conf.MaxUploadBytes))
	apiGroup.POST("/filters/reset", editor_api.HandleFilterReset(s.sessionManager, s.hub))
	apiGroup.POST("/filters/:name", editor_api.HandleFilterUpdate(s.sessionManager, s.hub))
	apiGroup.POST("/clear", editor_api.HandleClear(s.sessionManager, s.hub))
	apiGroup.POST("/error/dismiss", editor_api.HandleDismissError(s.sessionManager, s.hub))
	apiGroup.GET("/stream", editor_api.HandleStream(s.sessionManager, s.hub))
	apiGroup.GET("/download", editor_api.HandleDownload(s.sessionManager, s.hub))

	// Health check
	s.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	// Static file serving
	s.GET("/static/*", s.staticCache.ServeStaticFile("/static/"))
	s.GET("/manifest.webmanifest", content.HandleManifest(s.conf.AppName, s.conf.ThemeColor))

	s.GET("/", content.HandleHomePage(s.sessionManager, s.hub, s.conf.MaxUploadBytes))

	// Everything else is the static error page, served in place.
	s.RouteNotFound("/*", content.HandleNotFound())

	return nil
}
