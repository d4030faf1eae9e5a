package static

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"thirdcoast.systems/twpics/cmd/web/viewtypes"
)

func TestEmbeddedAssets(t *testing.T) {
	var got []string
	err := fs.WalkDir(FS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		got = append(got, path)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"dist/main.css"}, got)
}

func TestStylesheetCoversSharedClasses(t *testing.T) {
	css, err := fs.ReadFile(FS, "dist/main.css")
	require.NoError(t, err)
	require.NotEmpty(t, css)

	classes := []string{
		viewtypes.SectionLabel,
		viewtypes.GhostButton,
		viewtypes.PrimaryButton,
		viewtypes.PageHeading,
		viewtypes.InfoBoxClass,
		viewtypes.AlertError,
	}
	for _, list := range classes {
		for _, class := range strings.Fields(list) {
			require.Contains(t, string(css), "."+class+" ", "no rule for .%s", class)
		}
	}
}

func TestStylesheetCoversEditorLayout(t *testing.T) {
	css, err := fs.ReadFile(FS, "dist/main.css")
	require.NoError(t, err)

	for _, sel := range []string{".app-bar", ".upload", ".editor-grid", ".preview img", ".controls .control", ".actions"} {
		require.Contains(t, string(css), sel)
	}
}
