// Package templates renders the editor pages and the fragments patched
// over SSE. The components live in the .templ files; run `templ generate`
// after editing them.
package templates

import (
	"context"
	"fmt"
	"net/http"

	"thirdcoast.systems/twpics/cmd/web/ctxkeys"
	"thirdcoast.systems/twpics/pkg/editor"
	"thirdcoast.systems/twpics/pkg/filters"
	"thirdcoast.systems/twpics/pkg/utils/format"
)

const (
	DefaultAppName    = "TwPicsEditor"
	DefaultThemeColor = "#000000"

	DatastarScriptURL = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"
	FontAwesomeURL    = "https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.7.2/css/all.min.css"
)

// Element ids targeted by SSE patches.
const (
	EditorID   = "editor"
	PreviewID  = "preview"
	ControlsID = "filter-controls"
	LoadErrID  = "load-error"
)

func appName(ctx context.Context) string {
	if v, ok := ctx.Value(ctxkeys.AppName).(string); ok && v != "" {
		return v
	}
	return DefaultAppName
}

func themeColor(ctx context.Context) string {
	if v, ok := ctx.Value(ctxkeys.ThemeColor).(string); ok && v != "" {
		return v
	}
	return DefaultThemeColor
}

func pageTitle(ctx context.Context, title string) string {
	if title == "" {
		return appName(ctx)
	}
	return title + " · " + appName(ctx)
}

func statusTitle(status int) string {
	if t := http.StatusText(status); t != "" {
		return t
	}
	return "Error"
}

func imageMeta(snap editor.Snapshot) string {
	s := format.Dimensions(snap.Image.Width, snap.Image.Height) + " · " + format.Bytes(snap.Image.Size)
	if snap.Preview != nil {
		s += " · rendered in " + format.Elapsed(snap.Preview.Elapsed)
	}
	return s
}

func controlID(name string) string {
	return "filter-" + name
}

// descriptorFor falls back to the registry default for a name missing
// from set.
func descriptorFor(set filters.FilterSet, name string) filters.FilterDescriptor {
	if d, ok := set[name]; ok {
		return d
	}
	def, _ := filters.Lookup(name)
	return def.Default
}

// NotFoundBody is the markdown shown for unknown routes.
func NotFoundBody(path string) string {
	return fmt.Sprintf("There is nothing at `%s`.\n\n[Back to the editor](/)", path)
}
