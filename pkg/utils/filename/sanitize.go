// Package filename turns client-supplied file names into names that are
// safe to hand back in a Content-Disposition header or write to disk.
package filename

import (
	"path"
	"strings"
	"unicode"
)

// EditedPrefix is prepended to the original name of an exported image.
const EditedPrefix = "edited_"

// Clean keeps a client file name as the user saw it: spaces, punctuation
// and non-ASCII letters survive. Control characters and path separators
// are dropped and the result is cut to maxLen bytes (255 when maxLen <= 0)
// without splitting a UTF-8 sequence. A name made only of dots and spaces
// cleans to "".
func Clean(name string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = 255
	}

	s := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)

	if strings.Trim(s, ". ") == "" {
		return ""
	}

	if len(s) > maxLen {
		cut := maxLen
		for cut > 0 && !isRuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}

// Base drops any directory part a browser or client may have sent along
// with the name, for both slash styles.
func Base(name string) string {
	b := path.Base(strings.ReplaceAll(name, `\`, "/"))
	if b == "." || b == "/" {
		return ""
	}
	return b
}

// Edited returns the export name for an original file name.
func Edited(name string) string {
	return EditedPrefix + name
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
