package content

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

// WebManifest is the installable-app manifest.
type WebManifest struct {
	Name            string `json:"name"`
	ShortName       string `json:"short_name"`
	StartURL        string `json:"start_url"`
	Display         string `json:"display"`
	ThemeColor      string `json:"theme_color"`
	BackgroundColor string `json:"background_color"`
}

func HandleManifest(appName, themeColor string) echo.HandlerFunc {
	m := WebManifest{
		Name:            appName,
		ShortName:       appName,
		StartURL:        ".",
		Display:         "standalone",
		ThemeColor:      themeColor,
		BackgroundColor: themeColor,
	}
	body, _ := json.Marshal(m)

	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
		return c.Blob(http.StatusOK, "application/manifest+json", body)
	}
}
