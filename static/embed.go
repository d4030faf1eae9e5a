// Package static embeds the stylesheet and other assets served under
// /static/.
package static

import "embed"

//go:embed dist
var FS embed.FS
