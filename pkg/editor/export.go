package editor

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"

	"thirdcoast.systems/twpics/pkg/imageload"
	"thirdcoast.systems/twpics/pkg/render"
	"thirdcoast.systems/twpics/pkg/utils/filename"
)

// Download is an exported image ready to be sent as an attachment.
type Download struct {
	FileName    string
	ContentType string
	Bytes       []byte
}

// Export returns the preview as a download named "edited_" + name. It
// reports false, and nothing is downloaded, when there is no preview yet
// or no download name.
func Export(preview *render.Preview, name string) (Download, bool) {
	if preview == nil || len(preview.Bytes) == 0 || name == "" {
		return Download{}, false
	}
	return Download{
		FileName:    filename.Edited(name),
		ContentType: preview.ContentType,
		Bytes:       preview.Bytes,
	}, true
}

// UserMessage turns a load error into text suitable for the page.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, imageload.ErrNoFile):
		return "Choose an image file to edit."
	case errors.Is(err, imageload.ErrTooLarge):
		return "That image is too large to edit."
	case errors.Is(err, imageload.ErrUnsupported):
		return "That file is not an image this editor can open."
	case errors.Is(err, imageload.ErrDecode):
		return "That image could not be read. It may be damaged."
	default:
		return "Something went wrong while loading the image."
	}
}

// TooLargeMessage names the configured size limit.
func TooLargeMessage(limit int64) string {
	if limit <= 0 {
		return UserMessage(imageload.ErrTooLarge)
	}
	return fmt.Sprintf("That image is too large to edit. The limit is %s.", humanize.Bytes(uint64(limit)))
}
